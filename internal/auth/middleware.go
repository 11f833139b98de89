package auth

import (
	"crypto/subtle"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EnsureValidAPIKey guards the API with a static service key. The service is
// consumed by trusted first-party frontends and schedulers, so key auth is a
// shared secret per deployment rather than per-tenant credentials.
func EnsureValidAPIKey() gin.HandlerFunc {
	expected := os.Getenv("CARDRAIL_API_KEY")
	return func(c *gin.Context) {
		if expected == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "API key not configured"})
			c.Abort()
			return
		}

		provided := c.GetHeader("X-API-Key")
		if provided == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No authentication provided"})
			c.Abort()
			return
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			c.Abort()
			return
		}

		// Callers act on behalf of a user; the user ID rides a header once
		// the key has been verified.
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			if _, err := uuid.Parse(userID); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
				c.Abort()
				return
			}
			c.Set("userID", userID)
		}
		c.Set("authType", "api_key")
		c.Next()
	}
}
