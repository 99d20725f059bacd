package middleware

import (
	"github.com/gin-gonic/gin"
)

var securityHeaders = [][2]string{
	{"X-Frame-Options", "DENY"},
	{"X-Content-Type-Options", "nosniff"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Permissions-Policy", "camera=(), microphone=(), geolocation=(), interest-cohort=()"},
	{"X-Permitted-Cross-Domain-Policies", "none"},
}

// SecurityHeadersMiddleware adds security headers to all HTTP responses.
// Evaluations are never cacheable: every call draws fresh scores.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range securityHeaders {
			c.Header(h[0], h[1])
		}
		c.Header("Cache-Control", "no-store, no-cache, must-revalidate, private")
		c.Header("Pragma", "no-cache")

		c.Next()
	}
}
