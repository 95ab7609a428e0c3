// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/interfaces/http/handlers"
	"github.com/your-org/storefront/internal/interfaces/http/middleware"
)

// Handlers groups the API handlers mounted under /api/v1
type Handlers struct {
	Auth    *handlers.AuthHandler
	Product *handlers.ProductHandler
	Cart    *handlers.CartHandler
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, h Handlers, validator middleware.TokenValidator) {
	auth := rg.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(validator))
		{
			protected.GET("/me", h.Auth.Me)
		}
	}
}

// SetupProductRoutes sets up public catalog routes
func SetupProductRoutes(rg *gin.RouterGroup, h Handlers) {
	products := rg.Group("/products")
	{
		products.GET("", h.Product.GetProducts)
		products.GET("/categories", h.Product.GetCategories)
		products.GET("/featured", h.Product.GetFeatured)
		products.GET("/hot", h.Product.GetHot)
		products.GET("/sale", h.Product.GetSale)
		products.GET("/suggest", h.Product.Suggest)
		products.GET("/:id", h.Product.GetProduct)
	}
}

// SetupCartRoutes sets up cart routes. All of them require authentication.
func SetupCartRoutes(rg *gin.RouterGroup, h Handlers, validator middleware.TokenValidator) {
	cart := rg.Group("/cart")
	cart.Use(middleware.AuthMiddleware(validator))
	{
		cart.GET("", h.Cart.GetCart)
		cart.DELETE("", h.Cart.ClearCart)
		cart.POST("/items", h.Cart.AddToCart)
		cart.PATCH("/items/:productId/:variantKey", h.Cart.UpdateCartItem)
		cart.DELETE("/items/:productId/:variantKey", h.Cart.RemoveFromCart)
		cart.GET("/receipt", h.Cart.GetReceipt)
		cart.GET("/receipt.pdf", h.Cart.GetReceiptPDF)
	}
}

// SetupRoutes mounts every API route group
func SetupRoutes(rg *gin.RouterGroup, h Handlers, validator middleware.TokenValidator) {
	SetupAuthRoutes(rg, h, validator)
	SetupProductRoutes(rg, h)
	SetupCartRoutes(rg, h, validator)
}
