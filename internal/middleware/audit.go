package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-teamwork-api/internal/service"
)

// Audit stamps the request context with the client address and user agent so
// workflow audit rows record where a transition came from.
func Audit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := service.WithAuditOrigin(c.Request.Context(), c.ClientIP(), c.GetHeader("User-Agent"))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
