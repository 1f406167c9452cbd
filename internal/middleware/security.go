package middleware

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeaders sets response headers for pages that show patient data:
// no framing, no sniffing and no caching anywhere along the way.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
