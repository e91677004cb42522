package domain

import (
	"errors"  // Validation errors
	"fmt"     // Error wrapping
	"regexp"  // Email pattern
	"strings" // Whitespace trimming
	"time"    // Timestamps

	"go.mongodb.org/mongo-driver/bson/primitive" // ObjectID
)

// EmailPattern is the pattern enforced by the users collection validator
const EmailPattern = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`

var emailRegex = regexp.MustCompile(EmailPattern)

// Validation errors shared by all record types
var (
	ErrMissingField = errors.New("missing required field")
	ErrInvalidField = errors.New("invalid field value")
)

// User Model
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`                          // System generated identifier
	Email     string             `bson:"email" json:"email"`                               // Unique email address
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`           // Optional, unique when present
	FirstName string             `bson:"first_name,omitempty" json:"first_name,omitempty"` // Free text
	LastName  string             `bson:"last_name,omitempty" json:"last_name,omitempty"`   // Free text
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`                     // Creation time
	UpdatedAt *time.Time         `bson:"updated_at,omitempty" json:"updated_at,omitempty"` // Last update time
}

// Validate checks the fields the users collection validator enforces
func (u *User) Validate() error {
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("email: %w", ErrMissingField)
	}
	if !emailRegex.MatchString(u.Email) {
		return fmt.Errorf("email %q: %w", u.Email, ErrInvalidField)
	}
	if u.CreatedAt.IsZero() {
		return fmt.Errorf("created_at: %w", ErrMissingField)
	}
	return nil
}

// IsValidEmail reports whether s matches EmailPattern
func IsValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}
