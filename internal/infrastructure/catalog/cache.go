package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront/internal/domain/product"
)

// ErrCacheMiss is returned when the product list is not cached
var ErrCacheMiss = errors.New("cache miss")

// ProductCache stores the catalog product list
type ProductCache interface {
	GetProducts(ctx context.Context) ([]product.Product, error)
	SetProducts(ctx context.Context, products []product.Product) error
}

const productsKey = "catalog:products"

// RedisCache keeps the product list in Redis
type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

// NewRedisCache creates a Redis-backed product cache
func NewRedisCache(client *redis.Client, baseTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: baseTTL,
	}
}

func (r *RedisCache) GetProducts(ctx context.Context) ([]product.Product, error) {
	data, err := r.client.Get(ctx, productsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var products []product.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("unmarshal products failed: %w", err)
	}

	return products, nil
}

func (r *RedisCache) SetProducts(ctx context.Context, products []product.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal products failed: %w", err)
	}

	// spread expiry so replicas do not refetch together
	ttl := r.baseTTL
	if ttl > 0 {
		ttl += time.Duration(rand.Int63n(int64(ttl/5) + 1))
	}

	if err := r.client.Set(ctx, productsKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}
