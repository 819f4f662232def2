package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RoleHeader carries the caller-asserted role. There is no authentication
// layer in front of this; the header is trusted as-is.
const RoleHeader = "X-Role"

// RequireAdmin rejects requests whose X-Role header is not "admin"
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(RoleHeader) != "admin" {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "Admin role required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
