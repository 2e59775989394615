package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pphilfre/stake-sub000/internal/services"
)

// AdminAuth guards the settings panel: it expects a capability token
// minted by the PIN exchange in the Authorization header and stashes it in
// the context for the settings store to re-check.
func AdminAuth(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
			c.Abort()
			return
		}

		if err := auth.Verify(parts[1]); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired capability token"})
			c.Abort()
			return
		}

		c.Set("capability", parts[1])
		c.Next()
	}
}
