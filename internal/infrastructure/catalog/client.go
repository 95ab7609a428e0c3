// internal/infrastructure/catalog/client.go
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/product"
	"golang.org/x/sync/singleflight"
)

// Recorder receives catalog request outcomes
type Recorder interface {
	CatalogRequest(endpoint, result string)
}

type nopRecorder struct{}

func (nopRecorder) CatalogRequest(string, string) {}

// Client talks to a fakestoreapi-compatible product catalog
type Client struct {
	baseURL  string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[[]byte]
	group    singleflight.Group
	cache    ProductCache
	logger   *logrus.Logger
	recorder Recorder
}

// NewClient creates a catalog client from configuration
func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	c := &Client{
		baseURL:  cfg.Catalog.BaseURL,
		http:     &http.Client{Timeout: cfg.Catalog.Timeout},
		logger:   logger,
		recorder: nopRecorder{},
	}

	ratio := cfg.Catalog.BreakerFailureRatio
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: cfg.Catalog.BreakerMaxRequests,
		Interval:    cfg.Catalog.BreakerInterval,
		Timeout:     cfg.Catalog.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 3 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
		},
		// cancellation is not a catalog failure. Deadline errors inside the
		// shared call come from the client timeout and still count.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, product.ErrNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Catalog circuit breaker changed state")
		},
	})

	return c
}

// WithCache enables caching of the product list
func (c *Client) WithCache(cache ProductCache) *Client {
	c.cache = cache
	return c
}

// WithRecorder attaches a request recorder
func (c *Client) WithRecorder(r Recorder) *Client {
	if r != nil {
		c.recorder = r
	}
	return c
}

// GetProduct fetches one product. Unknown ids yield product.ErrNotFound.
func (c *Client) GetProduct(ctx context.Context, id int) (*product.Product, error) {
	body, err := c.fetch(ctx, "product", "/products/"+strconv.Itoa(id))
	if err != nil {
		return nil, err
	}

	// the demo API answers unknown ids with 200 and an empty body
	if len(body) == 0 || string(body) == "null" {
		return nil, product.ErrNotFound
	}

	var p product.Product
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, &product.NetworkError{Op: "decode product", Err: err}
	}
	if p.ID == 0 {
		return nil, product.ErrNotFound
	}

	return &p, nil
}

// ListProducts fetches the whole catalog, consulting the cache first
func (c *Client) ListProducts(ctx context.Context) ([]product.Product, error) {
	if c.cache != nil {
		products, err := c.cache.GetProducts(ctx)
		if err == nil {
			c.recorder.CatalogRequest("products", "cache_hit")
			return products, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.WithError(err).Warn("Catalog cache read failed")
		}
	}

	body, err := c.fetch(ctx, "products", "/products")
	if err != nil {
		return nil, err
	}

	var products []product.Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, &product.NetworkError{Op: "decode products", Err: err}
	}

	if c.cache != nil {
		if err := c.cache.SetProducts(ctx, products); err != nil {
			c.logger.WithError(err).Warn("Catalog cache write failed")
		}
	}

	return products, nil
}

// fetch performs a GET through the breaker, collapsing concurrent identical
// requests into one. The shared request runs detached from any single
// caller's context and is bounded by the client timeout; each caller only
// waits as long as its own context allows.
func (c *Client) fetch(ctx context.Context, endpoint, path string) ([]byte, error) {
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(path, func() (interface{}, error) {
		return c.breaker.Execute(func() ([]byte, error) {
			return c.get(shared, path)
		})
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		c.recorder.CatalogRequest(endpoint, "cancelled")
		return nil, &product.NetworkError{Op: "get " + path, Err: ctx.Err()}
	}

	if err := res.Err; err != nil {
		switch {
		case errors.Is(err, product.ErrNotFound):
			c.recorder.CatalogRequest(endpoint, "not_found")
			return nil, err
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			c.recorder.CatalogRequest(endpoint, "breaker_open")
			return nil, &product.NetworkError{Op: "get " + path, Err: err}
		}
		c.recorder.CatalogRequest(endpoint, "error")
		return nil, err
	}

	c.recorder.CatalogRequest(endpoint, "ok")
	return res.Val.([]byte), nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &product.NetworkError{Op: "get " + path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &product.NetworkError{Op: "read " + path, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, product.ErrNotFound
	case resp.StatusCode >= 300:
		return nil, &product.NetworkError{
			Op:  "get " + path,
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	return body, nil
}
