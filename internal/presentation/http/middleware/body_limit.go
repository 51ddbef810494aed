package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/presentation/http/dto/response"
)

// BodyLimit caps the request body at maxBytes. Declared lengths over the
// cap are refused up front; chunked bodies fail when the handler reads past it.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			response.ErrorWithCode(c, http.StatusRequestEntityTooLarge, "Request body is too large")
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
