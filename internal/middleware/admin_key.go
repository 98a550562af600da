package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminKeyMiddleware gates the seeding endpoints behind a shared secret.
// Volunteers never see these routes; this is deliberately not a user auth
// scheme.
func AdminKeyMiddleware(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" || c.GetHeader("X-Admin-Key") != adminKey {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid admin key"})
			return
		}
		c.Next()
	}
}
