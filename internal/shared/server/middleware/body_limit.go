package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mindmap-backend/internal/shared/server/respond"
)

// MaxBodySize rejects requests whose declared length exceeds limit and caps
// the body reader for the rest, so chunked uploads fail once they cross it.
func MaxBodySize(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > limit {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body exceeds the upload limit")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
