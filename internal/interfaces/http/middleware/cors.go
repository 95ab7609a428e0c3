// internal/interfaces/http/middleware/cors.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/config"
)

// CORS answers preflight requests and tags responses for allowed origins
func CORS(cfg *config.Config) gin.HandlerFunc {
	methods := strings.Join(cfg.Security.CORSAllowedMethods, ", ")
	headers := strings.Join(cfg.Security.CORSAllowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		c.Header("Vary", "Origin")

		if origin != "" {
			switch allowed := matchOrigin(origin, cfg.Security.CORSAllowedOrigins); allowed {
			case "":
			case "*":
				c.Header("Access-Control-Allow-Origin", "*")
			default:
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Credentials", "true")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Methods", methods)
			c.Header("Access-Control-Allow-Headers", headers)
			c.Header("Access-Control-Max-Age", "86400")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// matchOrigin returns the allow-list entry that admits origin: "*", the
// origin itself for exact or subdomain matches, or "" when none does
func matchOrigin(origin string, allowedOrigins []string) string {
	host := origin
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}

	for _, allowed := range allowedOrigins {
		switch {
		case allowed == "*":
			return "*"
		case allowed == origin:
			return origin
		case strings.HasPrefix(allowed, "*."):
			if strings.HasSuffix(host, allowed[1:]) {
				return origin
			}
		}
	}
	return ""
}
