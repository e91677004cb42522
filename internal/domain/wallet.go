package domain

import (
	"fmt"  // Error wrapping
	"time" // Timestamps

	"go.mongodb.org/mongo-driver/bson/primitive" // ObjectID
)

// Currency is an ISO or crypto currency code
type Currency string

// Supported currencies
const (
	CurrencyUSD  Currency = "USD"
	CurrencyXAF  Currency = "XAF"
	CurrencyUSDT Currency = "USDT"
	CurrencyBTC  Currency = "BTC"
)

// Currencies lists every supported currency in declaration order
func Currencies() []Currency {
	return []Currency{CurrencyUSD, CurrencyXAF, CurrencyUSDT, CurrencyBTC}
}

// Valid reports whether c is a supported currency
func (c Currency) Valid() bool {
	for _, known := range Currencies() {
		if c == known {
			return true
		}
	}
	return false
}

// Wallet Model
type Wallet struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`                          // System generated identifier
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`                           // Owning user
	Currency  Currency           `bson:"currency" json:"currency"`                         // One wallet per user and currency
	Balance   Amount             `bson:"balance" json:"balance"`                           // Exact decimal balance
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`                     // Creation time
	UpdatedAt *time.Time         `bson:"updated_at,omitempty" json:"updated_at,omitempty"` // Last update time
}

// Validate checks the fields the wallets collection validator enforces,
// plus a non-negative balance
func (w *Wallet) Validate() error {
	if w.UserID.IsZero() {
		return fmt.Errorf("user_id: %w", ErrMissingField)
	}
	if w.Currency == "" {
		return fmt.Errorf("currency: %w", ErrMissingField)
	}
	if !w.Currency.Valid() {
		return fmt.Errorf("currency %q: %w", w.Currency, ErrInvalidField)
	}
	if w.Balance.IsNegative() {
		return fmt.Errorf("balance %s: %w", w.Balance.String(), ErrInvalidField)
	}
	if w.CreatedAt.IsZero() {
		return fmt.Errorf("created_at: %w", ErrMissingField)
	}
	return nil
}
