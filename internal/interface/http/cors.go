package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// corsMiddleware lets the configured frontend origins call the API with cookies.
// Credentialed requests cannot use a wildcard, so the request origin is echoed
// back when it is allowed.
func corsMiddleware(allowed []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		headers := c.Writer.Header()
		if origin, ok := resolveOrigin(c.GetHeader("Origin"), allowed); ok {
			headers.Set("Access-Control-Allow-Origin", origin)
			headers.Set("Access-Control-Allow-Credentials", "true")
			headers.Add("Vary", "Origin")
		}
		headers.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		headers.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-Id")
		headers.Set("Access-Control-Expose-Headers", "X-Request-Id")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func resolveOrigin(requestOrigin string, allowed []string) (string, bool) {
	if requestOrigin == "" {
		return "", false
	}
	for _, candidate := range allowed {
		if candidate == "*" || strings.EqualFold(strings.TrimRight(candidate, "/"), requestOrigin) {
			return requestOrigin, true
		}
	}
	return "", false
}
