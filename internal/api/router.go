package api

import (
	"context"  // Health probe
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"time"     // Clock

	"afrikpay_store/internal/domain"     // Record types
	"afrikpay_store/internal/middleware" // Auth middleware
	"afrikpay_store/internal/repository" // Record access
	"afrikpay_store/internal/utils"      // Cache and scopes

	"github.com/gin-gonic/gin"                   // Gin web framework
	"github.com/sirupsen/logrus"                 // Logging library
	"go.mongodb.org/mongo-driver/bson/primitive" // ObjectID parsing
)

// Deps are the collaborators of the HTTP handlers
type Deps struct {
	Users        repository.UserRepository        // User records
	Wallets      repository.WalletRepository      // Wallet records
	Transactions repository.TransactionRepository // Transaction records
	Cache        *utils.Cache                     // Wallet read cache, nil disables
	JWTSecret    string                           // Empty disables auth
	Ping         func(context.Context) error      // Storage health probe, nil skips
	Now          func() time.Time                 // Clock, nil means time.Now
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

// NewRouter wires every route of the record service
func NewRouter(d Deps) *gin.Engine {
	r := gin.Default() // Gin router instance

	r.GET("/health", HealthHandler(d.Ping)) // Unauthenticated probe

	// Record routes (protected by JWT)
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuthMiddleware(d.JWTSecret))
	v1.GET("/users", GetUserByEmailHandler(d))
	v1.GET("/users/:id", GetUserHandler(d))
	v1.GET("/users/:id/wallets", ListUserWalletsHandler(d))
	v1.GET("/transactions", ListTransactionsHandler(d))
	v1.GET("/transactions/:id", GetTransactionHandler(d))

	// Writes additionally need the write scope when auth is on
	write := v1.Group("")
	if d.JWTSecret != "" {
		write.Use(middleware.RequireScope(utils.ScopeWrite))
	}
	write.POST("/users", CreateUserHandler(d))
	write.POST("/wallets", CreateWalletHandler(d))
	write.POST("/transactions", CreateTransactionHandler(d))
	write.PATCH("/transactions/:id/status", UpdateTransactionStatusHandler(d))

	return r
}

// HealthHandler reports whether the storage engine answers
func HealthHandler(ping func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}

// parseID reads an ObjectID path parameter, answering 400 when malformed
func parseID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + param})
		return primitive.NilObjectID, false
	}
	return id, true
}

// writeError maps repository and validation errors to status codes
func writeError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, repository.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "Already exists"})
	case errors.Is(err, repository.ErrStatusChanged), errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrMissingField), errors.Is(err, domain.ErrInvalidField):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(), // Route
			"error": err.Error(),  // Error message
		}).Error(action + " failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": action + " failed"})
	}
}
