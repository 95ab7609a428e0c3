package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleProducts() []Product {
	return []Product{
		{ID: 1, Title: "Fjallraven Backpack", Price: 109.95, Category: "men's clothing", Rating: Rating{Rate: 3.9, Count: 120}},
		{ID: 2, Title: "Slim Fit T-Shirt", Price: 22.3, Category: "men's clothing", Rating: Rating{Rate: 4.1, Count: 259}},
		{ID: 3, Title: "Gold Dragon Bracelet", Price: 695, Category: "jewelery", Rating: Rating{Rate: 4.6, Count: 400}},
		{ID: 4, Title: "SSD 1TB", Price: 109, Category: "electronics", Rating: Rating{Rate: 4.8, Count: 319}},
		{ID: 5, Title: "Rain Jacket", Price: 39.99, Category: "women's clothing", Rating: Rating{Rate: 3.8, Count: 679}},
	}
}

func ids(products []Product) []int {
	out := make([]int, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter ProductFilter
		want   []int
	}{
		{"zero filter keeps everything", ProductFilter{}, []int{1, 2, 3, 4, 5}},
		{"all category", ProductFilter{Category: AllCategories}, []int{1, 2, 3, 4, 5}},
		{"category", ProductFilter{Category: "men's clothing"}, []int{1, 2}},
		{"max price is inclusive", ProductFilter{MaxPrice: 109}, []int{2, 4, 5}},
		{"min rating is inclusive", ProductFilter{MinRating: 4.1}, []int{2, 3, 4}},
		{"combined", ProductFilter{Category: "men's clothing", MaxPrice: 100, MinRating: 4}, []int{2}},
		{"no match", ProductFilter{Category: "toys"}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(sampleProducts(), tt.filter)))
		})
	}
}

func TestSelections(t *testing.T) {
	products := sampleProducts()

	assert.Equal(t, []int{3, 4}, ids(Featured(products)))
	assert.Equal(t, []int{3, 4}, ids(Hot(products)))
	assert.Equal(t, []int{3, 4, 5}, ids(Sale(products)))
}

func TestSale_PricesAreDiscounted(t *testing.T) {
	products := sampleProducts()
	sale := Sale(products)

	want := []string{"556", "87.2", "31.99"}
	for i, p := range sale {
		if assert.NotNil(t, p.SalePrice, "product %d", p.ID) {
			assert.Equal(t, want[i], p.SalePrice.String())
		}
	}

	for _, p := range products {
		assert.Nil(t, p.SalePrice, "input products are left untouched")
	}
	assert.Nil(t, Featured(products)[0].SalePrice)
}

func TestCategories(t *testing.T) {
	assert.Equal(t,
		[]string{"all", "men's clothing", "jewelery", "electronics", "women's clothing"},
		Categories(sampleProducts()))
	assert.Equal(t, []string{"all"}, Categories(nil))
}

func TestSuggest(t *testing.T) {
	products := sampleProducts()

	assert.Equal(t, []int{1, 3, 5}, ids(Suggest(products, "  AC ", 5)))
	assert.Equal(t, []int{1}, ids(Suggest(products, "ac", 1)))
	assert.Empty(t, Suggest(products, "   ", 5))
	assert.Empty(t, Suggest(products, "ssd", 0))
}
