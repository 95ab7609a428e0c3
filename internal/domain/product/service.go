// internal/domain/product/service.go
package product

import (
	"context"
	"fmt"
)

// Catalog is the remote source of product records
type Catalog interface {
	GetProduct(ctx context.Context, id int) (*Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
}

// Service handles product browsing on top of the catalog
type Service struct {
	catalog Catalog
}

// NewService creates a new product service
func NewService(catalog Catalog) *Service {
	return &Service{
		catalog: catalog,
	}
}

// GetProduct resolves a single product
func (s *Service) GetProduct(ctx context.Context, id int) (*Product, error) {
	if id <= 0 {
		return nil, ErrNotFound
	}
	return s.catalog.GetProduct(ctx, id)
}

// List returns the catalog narrowed by filter
func (s *Service) List(ctx context.Context, filter ProductFilter) ([]Product, error) {
	products, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(products, filter), nil
}

// Categories returns the category choices for the product list
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	products, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	return Categories(products), nil
}

// Featured returns the featured products
func (s *Service) Featured(ctx context.Context) ([]Product, error) {
	return s.selection(ctx, Featured)
}

// Hot returns the hot products
func (s *Service) Hot(ctx context.Context) ([]Product, error) {
	return s.selection(ctx, Hot)
}

// Sale returns the sale products
func (s *Service) Sale(ctx context.Context) ([]Product, error) {
	return s.selection(ctx, Sale)
}

// Suggest returns search suggestions for a partial title
func (s *Service) Suggest(ctx context.Context, query string, limit int) ([]Product, error) {
	products, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	return Suggest(products, query, limit), nil
}

func (s *Service) selection(ctx context.Context, pick func([]Product) []Product) ([]Product, error) {
	products, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	return pick(products), nil
}

func (s *Service) all(ctx context.Context) ([]Product, error) {
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}
