// middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"roombooking/models"
	"roombooking/utils"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// JWTAuthMiddleware verifies the bearer token and stores the caller identity on the context.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.JSONCodedError(c, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header", nil)
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		identity, err := utils.ParseIdentity(tokenString)
		if err != nil {
			utils.JSONCodedError(c, http.StatusUnauthorized, "unauthorized", "Invalid token", nil)
			return
		}

		c.Set(identityKey, identity)
		c.Set("userID", identity.UserID)
		c.Set("role", identity.Role)
		c.Next()
	}
}

// GetIdentity returns the identity stored by JWTAuthMiddleware, if any.
func GetIdentity(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}, false
	}
	identity, ok := v.(models.Identity)
	return identity, ok
}
