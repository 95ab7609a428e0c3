// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/pkg/pdf"
)

// AddToCartRequest represents the add-to-cart payload. An omitted quantity
// means one unit.
type AddToCartRequest struct {
	ProductID  int    `json:"product_id" binding:"required,min=1"`
	VariantKey string `json:"variant_key"`
	Quantity   *int   `json:"quantity"`
}

// UpdateQuantityRequest steps an item's quantity by one
type UpdateQuantityRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// CartResponse is the cart as returned to clients
type CartResponse struct {
	Items  cart.Snapshot `json:"items"`
	Totals cart.Totals   `json:"totals"`
}

// CartHandler handles cart endpoints
type CartHandler struct {
	store    *cart.Store
	products *product.Service
	receipts *pdf.Service
	config   *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(store *cart.Store, products *product.Service, receipts *pdf.Service, cfg *config.Config) *CartHandler {
	return &CartHandler{
		store:    store,
		products: products,
		receipts: receipts,
		config:   cfg,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    h.response(c, h.store.Snapshot()),
	})
}

// AddToCart handles POST /cart/items. The product is resolved from the
// catalog first so the line item captures its current title, image and price.
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	p, err := h.products.GetProduct(c.Request.Context(), req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}

	snapshot, err := h.store.AddOrMergeItem(c.Request.Context(), p.ID, req.VariantKey, quantity, cart.ProductFields{
		Title:     p.Title,
		ImageRef:  p.Image,
		UnitPrice: p.Price,
	})
	h.respondMutation(c, "Item added to cart successfully", snapshot, err)
}

// UpdateCartItem handles PATCH /cart/items/:productId/:variantKey
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	snapshot, err := h.store.SetQuantity(c.Request.Context(), productID, c.Param("variantKey"), req.Delta)
	h.respondMutation(c, "Cart item updated successfully", snapshot, err)
}

// RemoveFromCart handles DELETE /cart/items/:productId/:variantKey
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	snapshot, err := h.store.RemoveItem(c.Request.Context(), productID, c.Param("variantKey"))
	h.respondMutation(c, "Item removed from cart successfully", snapshot, err)
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	snapshot, err := h.store.Clear(c.Request.Context())
	h.respondMutation(c, "Cart cleared successfully", snapshot, err)
}

// GetReceipt handles GET /cart/receipt
func (h *CartHandler) GetReceipt(c *gin.Context) {
	html, err := h.receipts.RenderHTML(h.receipt(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

// GetReceiptPDF handles GET /cart/receipt.pdf
func (h *CartHandler) GetReceiptPDF(c *gin.Context) {
	data := h.receipt(c)

	buf, err := h.receipts.RenderPDF(data)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+data.ReceiptNumber+".pdf")
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (h *CartHandler) receipt(c *gin.Context) pdf.ReceiptData {
	snapshot := h.store.Snapshot()
	shipping := c.DefaultQuery("shipping", "domestic")
	return h.receipts.BuildReceipt(snapshot, cart.ComputeTotals(snapshot, h.config.ShippingFee(shipping)), shipping)
}

func (h *CartHandler) response(c *gin.Context, snapshot cart.Snapshot) CartResponse {
	fee := h.config.ShippingFee(c.DefaultQuery("shipping", "domestic"))
	return CartResponse{
		Items:  snapshot,
		Totals: cart.ComputeTotals(snapshot, fee),
	}
}

// respondMutation reports a cart mutation. A failed write still returns the
// new cart, since the in-memory state has already advanced.
func (h *CartHandler) respondMutation(c *gin.Context, message string, snapshot cart.Snapshot, err error) {
	if err == nil {
		c.JSON(http.StatusOK, gin.H{
			"message": message,
			"data":    h.response(c, snapshot),
		})
		return
	}

	if perr, ok := cart.IsPersistenceError(err); ok {
		_ = c.Error(perr)
		c.JSON(http.StatusOK, gin.H{
			"message": message,
			"warning": "Cart could not be saved and may be lost on restart",
			"data":    h.response(c, snapshot),
		})
		return
	}

	respondError(c, err)
}

func parseProductID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("productId"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return 0, false
	}
	return id, true
}

