package domain

import (
	"errors" // Sentinel errors
	"fmt"    // Error wrapping
	"time"   // Timestamps

	"go.mongodb.org/mongo-driver/bson/primitive" // ObjectID
)

// TransactionType classifies a money movement
type TransactionType string

// Supported transaction types
const (
	TypeCryptoPurchase TransactionType = "crypto_purchase"
	TypeWalletDeposit  TransactionType = "wallet_deposit"
	TypeTransfer       TransactionType = "transfer"
)

// TransactionTypes lists every transaction type in declaration order
func TransactionTypes() []TransactionType {
	return []TransactionType{TypeCryptoPurchase, TypeWalletDeposit, TypeTransfer}
}

// Valid reports whether t is a supported transaction type
func (t TransactionType) Valid() bool {
	for _, known := range TransactionTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// TransactionStatus is a step of the transaction lifecycle
type TransactionStatus string

// Lifecycle states
const (
	StatusPending    TransactionStatus = "pending"
	StatusProcessing TransactionStatus = "processing"
	StatusCompleted  TransactionStatus = "completed"
	StatusFailed     TransactionStatus = "failed"
	StatusCancelled  TransactionStatus = "cancelled"
)

// TransactionStatuses lists every status in declaration order
func TransactionStatuses() []TransactionStatus {
	return []TransactionStatus{StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusCancelled}
}

// Valid reports whether s is a known status
func (s TransactionStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no transition leaves s
func (s TransactionStatus) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// transitions is the lifecycle table; terminal states map to nothing
var transitions = map[TransactionStatus][]TransactionStatus{
	StatusPending:    {StatusProcessing, StatusFailed, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusFailed, StatusCancelled},
	StatusCompleted:  nil,
	StatusFailed:     nil,
	StatusCancelled:  nil,
}

// ErrInvalidTransition is returned when the lifecycle table forbids a status change
var ErrInvalidTransition = errors.New("invalid status transition")

// CanTransition reports whether a transaction may move from one status to another
func CanTransition(from, to TransactionStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transaction Model
type Transaction struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`                          // System generated identifier
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`                           // Owning user
	Type      TransactionType    `bson:"type" json:"type"`                                 // crypto_purchase, wallet_deposit, transfer
	Amount    Amount             `bson:"amount" json:"amount"`                             // Exact decimal amount
	Currency  Currency           `bson:"currency" json:"currency"`                         // Same set as wallets
	Status    TransactionStatus  `bson:"status" json:"status"`                             // Lifecycle state
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`                     // Creation time
	UpdatedAt *time.Time         `bson:"updated_at,omitempty" json:"updated_at,omitempty"` // Last status change
}

// Validate checks the fields the transactions collection validator enforces,
// plus a positive amount
func (t *Transaction) Validate() error {
	if t.UserID.IsZero() {
		return fmt.Errorf("user_id: %w", ErrMissingField)
	}
	if !t.Type.Valid() {
		return fmt.Errorf("type %q: %w", t.Type, ErrInvalidField)
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("amount %s: %w", t.Amount.String(), ErrInvalidField)
	}
	if !t.Currency.Valid() {
		return fmt.Errorf("currency %q: %w", t.Currency, ErrInvalidField)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("status %q: %w", t.Status, ErrInvalidField)
	}
	if t.CreatedAt.IsZero() {
		return fmt.Errorf("created_at: %w", ErrMissingField)
	}
	return nil
}

// Transition moves the transaction to a new status and stamps updated_at
func (t *Transaction) Transition(to TransactionStatus, now time.Time) error {
	if !CanTransition(t.Status, to) {
		return fmt.Errorf("%s -> %s: %w", t.Status, to, ErrInvalidTransition)
	}
	t.Status = to
	t.UpdatedAt = &now
	return nil
}
