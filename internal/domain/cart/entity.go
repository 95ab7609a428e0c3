// internal/domain/cart/entity.go
package cart

import (
	"github.com/shopspring/decimal"
)

// DefaultVariant is the variant key used for products without a variant concept
const DefaultVariant = "default"

// MaxQuantity caps the quantity of a single line item
const MaxQuantity = 9999

// LineItem is one product+variant entry in the cart. Title, ImageRef and
// UnitPrice are captured when the item is first added and never refreshed.
type LineItem struct {
	ProductID  int     `json:"productId"`
	VariantKey string  `json:"variantKey"`
	Title      string  `json:"title"`
	ImageRef   string  `json:"imageRef"`
	UnitPrice  float64 `json:"unitPrice"`
	Quantity   int     `json:"quantity"`
}

// Key returns the identity of the line item
func (i LineItem) Key() ItemKey {
	return ItemKey{ProductID: i.ProductID, VariantKey: i.VariantKey}
}

// ItemKey identifies a cart entry
type ItemKey struct {
	ProductID  int
	VariantKey string
}

// NewItemKey builds a key, normalising an empty variant to DefaultVariant
func NewItemKey(productID int, variantKey string) ItemKey {
	if variantKey == "" {
		variantKey = DefaultVariant
	}
	return ItemKey{ProductID: productID, VariantKey: variantKey}
}

// ProductFields are the catalog fields snapshotted into a new line item
type ProductFields struct {
	Title     string
	ImageRef  string
	UnitPrice float64
}

// Snapshot is the ordered list of line items at a point in time
type Snapshot []LineItem

// Clone returns a copy that shares no backing array with s
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	copy(out, s)
	return out
}

// Find returns the index of the entry with the given key, or -1
func (s Snapshot) Find(key ItemKey) int {
	for i := range s {
		if s[i].Key() == key {
			return i
		}
	}
	return -1
}

// Totals represents calculated cart totals
type Totals struct {
	ItemCount     int             `json:"item_count"`     // Number of distinct lines
	TotalQuantity int             `json:"total_quantity"` // Sum of all quantities
	Subtotal      decimal.Decimal `json:"subtotal"`
	ShippingFee   decimal.Decimal `json:"shipping_fee"`
	Total         decimal.Decimal `json:"total"`
}
