package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ytdash/ytdash/backend/go-services/internal/models"
)

// RequireAuth rejects requests that the session middleware did not attach a
// usable identity to. Nothing downstream runs on rejection.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := models.IdentityFromContext(c.Request.Context())
		if !ok || !id.Valid() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity attached to the request, if any.
func CurrentIdentity(c *gin.Context) (*models.Identity, bool) {
	return models.IdentityFromContext(c.Request.Context())
}
