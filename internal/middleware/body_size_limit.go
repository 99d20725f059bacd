package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxappraiser/appraiser-api/internal/models"
)

// BodySizeLimitMiddleware caps request bodies at maxBodySize bytes.
// Requests that declare a larger Content-Length are rejected up front; bodies
// without one fail with *http.MaxBytesError once the handler reads past the cap.
func BodySizeLimitMiddleware(maxBodySize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBodySize {
			c.Header("Connection", "close")
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{Error: "Request body too large"})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
		c.Next()
	}
}
