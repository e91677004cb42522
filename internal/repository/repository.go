// Package repository gives the record service access to users, wallets and
// transactions. Every implementation enforces the same uniqueness rules as
// the declared indexes: unique email, sparse-unique phone and one wallet per
// user and currency.
package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"afrikpay_store/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when no record matches
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write collides with a unique index
	ErrDuplicate = errors.New("duplicate record")
	// ErrStatusChanged is returned when a status update lost a race with
	// another writer
	ErrStatusChanged = errors.New("transaction status changed concurrently")
)

// Pagination limits
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// UserRepository abstracts user storage operations.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Count(ctx context.Context) (int64, error)
}

// WalletRepository abstracts wallet storage operations.
type WalletRepository interface {
	Create(ctx context.Context, w *domain.Wallet) error
	GetByUserAndCurrency(ctx context.Context, userID primitive.ObjectID, currency domain.Currency) (*domain.Wallet, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Wallet, error)
	Count(ctx context.Context) (int64, error)
}

// TransactionRepository abstracts transaction storage operations.
type TransactionRepository interface {
	Create(ctx context.Context, t *domain.Transaction) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Transaction, error)
	List(ctx context.Context, f TransactionFilter, p Page) ([]domain.Transaction, int64, error)
	// UpdateStatus moves a transaction from one status to another. It fails
	// with domain.ErrInvalidTransition when the lifecycle forbids the move and
	// with ErrStatusChanged when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to domain.TransactionStatus, at time.Time) error
	Count(ctx context.Context) (int64, error)
}

// TransactionFilter narrows a transaction listing. Zero fields match all.
type TransactionFilter struct {
	UserID primitive.ObjectID
	Status domain.TransactionStatus
	Type   domain.TransactionType
}

func (f TransactionFilter) matches(t *domain.Transaction) bool {
	if !f.UserID.IsZero() && t.UserID != f.UserID {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	return true
}

// Page selects one page of a listing, numbered from 1
type Page struct {
	Number int
	Size   int
}

// NewPage clamps page and size to valid values. The page number is capped
// so that the offset cannot overflow.
func NewPage(number, size int) Page {
	if size < 1 || size > MaxPageSize {
		size = DefaultPageSize
	}
	if number < 1 {
		number = 1
	}
	if maxNumber := math.MaxInt / size; number > maxNumber {
		number = maxNumber
	}
	return Page{Number: number, Size: size}
}

// Offset is the number of records skipped before the page
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// TotalPages is the number of pages needed for total records
func (p Page) TotalPages(total int64) int {
	return (int(total) + p.Size - 1) / p.Size
}

func checkTransition(from, to domain.TransactionStatus) error {
	if !domain.CanTransition(from, to) {
		return fmt.Errorf("%s -> %s: %w", from, to, domain.ErrInvalidTransition)
	}
	return nil
}

func prepareUser(u *domain.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	return nil
}

func prepareWallet(w *domain.Wallet) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if w.ID.IsZero() {
		w.ID = primitive.NewObjectID()
	}
	return nil
}

func prepareTransaction(t *domain.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	return nil
}
