package middleware

import (
	"net/http" // HTTP status codes

	"afrikpay_store/internal/utils" // Claims type

	"github.com/gin-gonic/gin" // Gin web framework
)

// RequireScope rejects requests whose token lacks scope. It must run after
// an enabled JWTAuthMiddleware.
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextClaims) // Claims set by JWTAuthMiddleware
		claims, ok := value.(*utils.Claims)
		// Check the granted scopes
		if !exists || !ok || !claims.HasScope(scope) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Scope " + scope + " required"})
			return
		}
		c.Next()
	}
}
