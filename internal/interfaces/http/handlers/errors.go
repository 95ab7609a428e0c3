package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/domain/product"
)

// respondError maps domain errors to HTTP statuses
func respondError(c *gin.Context, err error) {
	var netErr *product.NetworkError

	switch {
	case errors.Is(err, cart.ErrInvalidOperation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart operation", "details": err.Error()})
	case errors.Is(err, cart.ErrNotReady):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Cart is still loading, try again shortly"})
	case errors.Is(err, product.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Request timeout"})
	case errors.As(err, &netErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Product catalog unavailable", "details": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
	_ = c.Error(err)
}
