package product

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Filter returns the products matching every criterion of f, in input order
func Filter(products []Product, f ProductFilter) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Category != "" && f.Category != AllCategories && p.Category != f.Category {
			continue
		}
		if f.MaxPrice > 0 && p.Price > f.MaxPrice {
			continue
		}
		if p.Rating.Rate < f.MinRating {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Featured returns well-rated products with a large number of reviews
func Featured(products []Product) []Product {
	return keep(products, func(p Product) bool {
		return p.Rating.Rate > 4 && p.Rating.Count > 300
	})
}

// Hot returns the top rated products
func Hot(products []Product) []Product {
	return keep(products, func(p Product) bool {
		return p.Rating.Rate > 4.5
	})
}

// Sale returns products with more than 300 ratings, each carrying its
// discounted SalePrice rounded to cents
func Sale(products []Product) []Product {
	out := keep(products, func(p Product) bool {
		return p.Rating.Count > 300
	})
	factor := decimal.NewFromInt(1).Sub(SaleDiscount)
	for i := range out {
		price := decimal.NewFromFloat(out[i].Price).Mul(factor).Round(2)
		out[i].SalePrice = &price
	}
	return out
}

// Categories lists "all" followed by each distinct category in first-seen order
func Categories(products []Product) []string {
	seen := make(map[string]bool)
	categories := []string{AllCategories}
	for _, p := range products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		categories = append(categories, p.Category)
	}
	return categories
}

// Suggest returns up to limit products whose title contains query, ignoring case
func Suggest(products []Product, query string, limit int) []Product {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || limit <= 0 {
		return []Product{}
	}

	out := make([]Product, 0, limit)
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Title), query) {
			out = append(out, p)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

func keep(products []Product, pred func(Product) bool) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}
