package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/auth"
	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/domain/product"
	redisstore "github.com/your-org/storefront/internal/infrastructure/database/redis"
	"github.com/your-org/storefront/internal/pkg/logger"
	"github.com/your-org/storefront/internal/pkg/metrics"
	"github.com/your-org/storefront/internal/pkg/pdf"
	"golang.org/x/crypto/bcrypt"
)

type stubCatalog struct {
	products []product.Product
	err      error
}

func (s *stubCatalog) GetProduct(_ context.Context, id int) (*product.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, p := range s.products {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, product.ErrNotFound
}

func (s *stubCatalog) ListProducts(context.Context) ([]product.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.products, nil
}

type testEnv struct {
	server  *Server
	store   *cart.Store
	catalog *stubCatalog
	mr      *miniredis.Miniredis
	metrics *metrics.Metrics
}

func testConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Name: "storefront-test", Environment: "test"},
		Server:  config.ServerConfig{Port: "0", RequestTimeout: 5 * time.Second},
		Storage: config.StorageConfig{Driver: "redis"},
		Cart: config.CartConfig{
			StorageKey:               "cartItems",
			PersistAttempts:          1,
			DomesticShippingFee:      5,
			InternationalShippingFee: 12,
		},
		JWT:      config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", AccessTokenExpiry: time.Hour},
		Auth:     config.AuthConfig{FixedUsername: "nhat", FixedPassword: "123456"},
		Security: config.SecurityConfig{BcryptCost: bcrypt.MinCost},
	}
}

func newTestEnv(t *testing.T, hydrate bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { rdb.Close() })

	cfg := testConfig()
	log := logger.Discard()
	m := metrics.New()
	kv := redisstore.NewClient(rdb, 0)

	store := cart.NewStore(kv, cfg, log).WithRecorder(m)
	if hydrate {
		_, err := store.Hydrate(context.Background())
		require.NoError(t, err)
	}

	catalog := &stubCatalog{products: []product.Product{
		{ID: 1, Title: "Fjallraven Backpack", Price: 10, Category: "men's clothing", Image: "bag.jpg", Rating: product.Rating{Rate: 3.9, Count: 120}},
		{ID: 2, Title: "Mens Casual T-Shirt", Price: 5, Category: "men's clothing", Image: "tee.jpg", Rating: product.Rating{Rate: 4.1, Count: 259}},
		{ID: 3, Title: "Gold Dragon Bracelet", Price: 695, Category: "jewelery", Image: "gold.jpg", Rating: product.Rating{Rate: 4.6, Count: 400}},
	}}

	authService, err := auth.NewService(cfg, log)
	require.NoError(t, err)

	server := NewServer(cfg, Dependencies{
		Store:    store,
		Products: product.NewService(catalog),
		Auth:     authService,
		Receipts: pdf.NewService(cfg),
		Metrics:  m,
		Storage:  kv,
		Logger:   log,
	})

	return &testEnv{server: server, store: store, catalog: catalog, mr: mr, metrics: m}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "nhat",
		"password": "123456",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data auth.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.AccessToken)
	return resp.Data.AccessToken
}

type cartBody struct {
	Message string `json:"message"`
	Warning string `json:"warning"`
	Data    struct {
		Items  []cart.LineItem `json:"items"`
		Totals struct {
			ItemCount     int    `json:"item_count"`
			TotalQuantity int    `json:"total_quantity"`
			Subtotal      string `json:"subtotal"`
			ShippingFee   string `json:"shipping_fee"`
			Total         string `json:"total"`
		} `json:"totals"`
	} `json:"data"`
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) cartBody {
	t.Helper()
	var body cartBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestReadiness(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	_, err := env.store.Hydrate(context.Background())
	require.NoError(t, err)

	rec = env.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cart_key":"cartItems"`)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	env.mr.Close()
	rec = env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "nhat",
		"password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "nhat"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	token := env.login(t)
	rec = env.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"nhat"`)
}

func TestCartRequiresAuth(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.do(t, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/cart", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCartFlow(t *testing.T) {
	env := newTestEnv(t, true)
	token := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", token, map[string]any{
		"product_id": 1, "variant_key": "black", "quantity": 2,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", token, map[string]any{
		"product_id": 2, "quantity": 3,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeCart(t, rec)
	require.Len(t, body.Data.Items, 2)
	assert.Equal(t, "Fjallraven Backpack", body.Data.Items[0].Title)
	assert.Equal(t, cart.DefaultVariant, body.Data.Items[1].VariantKey)
	assert.Equal(t, "35", body.Data.Totals.Subtotal)
	assert.Equal(t, "40", body.Data.Totals.Total)
	assert.Equal(t, 5, body.Data.Totals.TotalQuantity)

	rec = env.do(t, http.MethodGet, "/api/v1/cart?shipping=international", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "47", decodeCart(t, rec).Data.Totals.Total)

	rec = env.do(t, http.MethodPatch, "/api/v1/cart/items/1/black", token, map[string]int{"delta": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decodeCart(t, rec).Data.Items[0].Quantity)

	rec = env.do(t, http.MethodPatch, "/api/v1/cart/items/1/black", token, map[string]int{"delta": 2})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/cart/items/1/black", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeCart(t, rec)
	require.Len(t, body.Data.Items, 1)
	assert.Equal(t, 2, body.Data.Items[0].ProductID)

	persisted, err := env.mr.Get("cartItems")
	require.NoError(t, err)
	assert.Contains(t, persisted, `"productId":2`)
	assert.NotContains(t, persisted, `"productId":1`)

	rec = env.do(t, http.MethodDelete, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeCart(t, rec).Data.Items)

	persisted, err = env.mr.Get("cartItems")
	require.NoError(t, err)
	assert.Equal(t, "[]", persisted)
}

func TestAddToCart_Errors(t *testing.T) {
	env := newTestEnv(t, true)
	token := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", token, map[string]any{"product_id": 99})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", token, map[string]any{"product_id": 1, "quantity": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", token, map[string]any{"product_id": 1, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "an explicit zero is not defaulted to one")

	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", token, map[string]any{"product_id": 1, "quantity": cart.MaxQuantity + 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", token, map[string]any{"product_id": 1, "quantity": math.MaxInt})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", token, map[string]any{"variant_key": "red"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.catalog.err = &product.NetworkError{Op: "get /products/1", Err: errors.New("connection refused")}
	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", token, map[string]any{"product_id": 1})
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	env.catalog.err = &product.NetworkError{Op: "get /products/1", Err: context.DeadlineExceeded}
	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", token, map[string]any{"product_id": 1})
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)

	assert.Empty(t, env.store.Snapshot())
}

func TestAddToCart_QuantityCapAcrossRequests(t *testing.T) {
	env := newTestEnv(t, true)
	token := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", token, map[string]any{"product_id": 2, "quantity": cart.MaxQuantity})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", token, map[string]any{"product_id": 2, "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	snap := env.store.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, cart.MaxQuantity, snap[0].Quantity)
}

func TestCartNotReady(t *testing.T) {
	env := newTestEnv(t, false)
	token := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", token, map[string]any{"product_id": 1})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/cart", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCartWriteFailureReturnsWarning(t *testing.T) {
	env := newTestEnv(t, true)
	token := env.login(t)

	env.mr.SetError("READONLY replica")
	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", token, map[string]any{"product_id": 3})
	env.mr.SetError("")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeCart(t, rec)
	assert.NotEmpty(t, body.Warning)
	require.Len(t, body.Data.Items, 1, "in-memory state advances despite the failed write")
	assert.False(t, env.mr.Exists("cartItems"))
}

func TestReceipt(t *testing.T) {
	env := newTestEnv(t, true)
	token := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", token, map[string]any{"product_id": 1, "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/cart/receipt", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Fjallraven Backpack")
	assert.Contains(t, rec.Body.String(), "25.00")
}

func TestProducts(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.do(t, http.MethodGet, "/api/v1/products?category=jewelery", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Gold Dragon Bracelet")
	assert.NotContains(t, rec.Body.String(), "Backpack")

	rec = env.do(t, http.MethodGet, "/api/v1/products?max_price=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/products/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `["all","men's clothing","jewelery"]`)

	rec = env.do(t, http.MethodGet, "/api/v1/products/hot", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Gold Dragon Bracelet")

	rec = env.do(t, http.MethodGet, "/api/v1/products/sale", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sale_price":"556"`)
	assert.NotContains(t, rec.Body.String(), "Backpack")

	rec = env.do(t, http.MethodGet, "/api/v1/products/suggest?q=shirt", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Mens Casual T-Shirt")

	rec = env.do(t, http.MethodGet, "/api/v1/products/2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/products/42", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/products/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, true)
	token := env.login(t)

	env.do(t, http.MethodPost, "/api/v1/cart/items", token, map[string]any{"product_id": 1})

	rec := env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `storefront_cart_operations_total{op="add",result="ok"} 1`)
	assert.Contains(t, rec.Body.String(), `storefront_http_requests_total{route="/api/v1/cart/items",status="200"} 1`)
}
