// internal/domain/product/entity.go
package product

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Product is a catalog record as served by the demo store API
type Product struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      Rating  `json:"rating"`

	// SalePrice is only set on products returned by the sale selection
	SalePrice *decimal.Decimal `json:"sale_price,omitempty"`
}

// Rating is the aggregate customer rating of a product
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// ProductFilter narrows a product list. Zero values disable a criterion.
type ProductFilter struct {
	Category  string  `form:"category"`
	MaxPrice  float64 `form:"max_price"`
	MinRating float64 `form:"min_rating"`
}

// AllCategories matches every category in a filter
const AllCategories = "all"

// SaleDiscount is the fraction taken off the price of sale products
var SaleDiscount = decimal.RequireFromString("0.2")

// ErrNotFound is returned when the catalog has no product with the given id
var ErrNotFound = errors.New("product not found")

// NetworkError wraps a transport-level catalog failure
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("catalog %s failed: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
