package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestObserver records per-route HTTP outcomes
type RequestObserver interface {
	HTTPRequest(route string, status int, elapsed time.Duration)
}

// Metrics reports each request under its route template so that path
// parameters do not explode label cardinality
func Metrics(observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		observer.HTTPRequest(route, c.Writer.Status(), time.Since(start))
	}
}
