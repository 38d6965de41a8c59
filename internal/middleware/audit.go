package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"moneta/internal/services"
)

// Audit returns a Gin middleware that records every successful mutating
// request against the audit trail. Reads are not audited.
func Audit(auditService services.AuditServicer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == "GET" || c.Writer.Status() >= 400 {
			return
		}

		userID := c.GetString("userID")
		if userID == "" {
			return
		}

		auditService.Log(
			userID,
			c.Request.Method+" "+c.FullPath(),
			resourceTypeOf(c.FullPath()),
			c.Param("id"),
			c.ClientIP(),
			nil,
		)
	}
}

// resourceTypeOf extracts the top-level resource segment from a route
// template, e.g. "transactions" from "/api/v1/transactions/:id/restore".
func resourceTypeOf(path string) string {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, p := range parts {
		if p == "v1" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	if len(parts) > 0 {
		return parts[len(parts)-1]
	}
	return ""
}
