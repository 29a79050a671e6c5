package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roombooking/utils"
)

// RequireAdmin must run after JWTAuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			utils.JSONCodedError(c, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
			return
		}
		if !identity.IsAdmin() {
			utils.JSONCodedError(c, http.StatusForbidden, "forbidden", "Admin access required", nil)
			return
		}
		c.Set("isAdmin", true)
		c.Next()
	}
}
