package api

import (
	"net/http" // HTTP status codes

	"afrikpay_store/internal/domain" // Record types

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// CreateUserRequest represents a user registration
type CreateUserRequest struct {
	Email     string `json:"email" binding:"required"` // Unique email
	Phone     string `json:"phone"`                    // Optional phone
	FirstName string `json:"first_name"`               // Free text
	LastName  string `json:"last_name"`                // Free text
}

// CreateUserHandler stores a new user
func CreateUserHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateUserRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		now := d.now()
		user := domain.User{
			Email:     req.Email,
			Phone:     req.Phone,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			CreatedAt: now,
			UpdatedAt: &now,
		}
		if err := d.Users.Create(c.Request.Context(), &user); err != nil {
			writeError(c, err, "Create user")
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID.Hex(), // New user ID
			"email":   user.Email,    // Email address
		}).Info("User created")
		c.JSON(http.StatusCreated, gin.H{"user": user})
	}
}

// GetUserByEmailHandler looks a user up by the email query parameter
func GetUserByEmailHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Query("email")
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email query parameter is required"})
			return
		}
		user, err := d.Users.GetByEmail(c.Request.Context(), email)
		if err != nil {
			writeError(c, err, "Fetch user")
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// GetUserHandler returns one user by id
func GetUserHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		user, err := d.Users.GetByID(c.Request.Context(), id)
		if err != nil {
			writeError(c, err, "Fetch user")
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}
