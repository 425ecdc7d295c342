package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/models"
)

// AuditContext copies the client address and user agent onto the request
// context so that audit rows written by services carry them.
func AuditContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := models.WithRequestInfo(c.Request.Context(), models.RequestInfo{
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
