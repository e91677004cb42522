package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"afrikpay_store/internal/utils" // JWT utility functions

	"github.com/gin-gonic/gin" // Gin web framework
)

// Context keys set by JWTAuthMiddleware
const (
	ContextSubject = "subject" // Calling service
	ContextClaims  = "claims"  // Parsed *utils.Claims
)

// JWTAuthMiddleware validates bearer tokens signed with secret. An empty
// secret disables authentication.
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next() // Auth disabled
			return
		}
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string
		claims, err := utils.ParseJWT(tokenStr, secret)       // Parse the JWT token
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(ContextSubject, claims.Subject) // Store caller in context
		c.Set(ContextClaims, claims)          // Store claims for scope checks
		c.Next()                              // Proceed to the next handler
	}
}
