package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"afrikpay_store/internal/domain"
	"afrikpay_store/internal/schema"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps all three collections in process. It is used by tests and
// by the record service when no database is configured.
type MemoryStore struct {
	mu           sync.RWMutex
	collections  map[string]bool
	indexes      map[string][]schema.Index
	users        map[primitive.ObjectID]domain.User
	wallets      map[primitive.ObjectID]domain.Wallet
	transactions map[primitive.ObjectID]domain.Transaction
}

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections:  make(map[string]bool),
		indexes:      make(map[string][]schema.Index),
		users:        make(map[primitive.ObjectID]domain.User),
		wallets:      make(map[primitive.ObjectID]domain.Wallet),
		transactions: make(map[primitive.ObjectID]domain.Transaction),
	}
}

// Users returns the user repository view of the store
func (s *MemoryStore) Users() UserRepository { return memoryUsers{s} }

// Wallets returns the wallet repository view of the store
func (s *MemoryStore) Wallets() WalletRepository { return memoryWallets{s} }

// Transactions returns the transaction repository view of the store
func (s *MemoryStore) Transactions() TransactionRepository { return memoryTransactions{s} }

// EnsureCollection registers a collection; created is false when it was
// already registered
func (s *MemoryStore) EnsureCollection(_ context.Context, c schema.Collection) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collections[c.Name] {
		return false, nil
	}
	s.collections[c.Name] = true
	return true, nil
}

// EnsureIndexes records the declared indexes of a collection. The unique
// constraints themselves are enforced by the insert paths.
func (s *MemoryStore) EnsureIndexes(_ context.Context, c schema.Collection) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.collections[c.Name] {
		return 0, fmt.Errorf("collection %s does not exist", c.Name)
	}
	s.indexes[c.Name] = append([]schema.Index(nil), c.Indexes...)
	return len(c.Indexes), nil
}

// SeedUsers inserts users whose email is not present yet
func (s *MemoryStore) SeedUsers(_ context.Context, users []domain.User) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inserted := 0
	for i := range users {
		u := users[i]
		if _, ok := s.userByEmailLocked(u.Email); ok {
			continue
		}
		if err := s.insertUserLocked(&u); err != nil {
			return inserted, fmt.Errorf("seed %s: %w", u.Email, err)
		}
		inserted++
	}
	return inserted, nil
}

// Collections returns the registered collection names, sorted
func (s *MemoryStore) Collections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Indexes returns the indexes recorded for a collection
func (s *MemoryStore) Indexes(collection string) []schema.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]schema.Index(nil), s.indexes[collection]...)
}

func (s *MemoryStore) userByEmailLocked(email string) (domain.User, bool) {
	for _, u := range s.users {
		if u.Email == email {
			return u, true
		}
	}
	return domain.User{}, false
}

func (s *MemoryStore) insertUserLocked(u *domain.User) error {
	if err := prepareUser(u); err != nil {
		return err
	}
	if _, ok := s.users[u.ID]; ok {
		return fmt.Errorf("user %s: %w", u.ID.Hex(), ErrDuplicate)
	}
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return fmt.Errorf("email %s: %w", u.Email, ErrDuplicate)
		}
		// Sparse: absent phones never collide
		if u.Phone != "" && existing.Phone == u.Phone {
			return fmt.Errorf("phone %s: %w", u.Phone, ErrDuplicate)
		}
	}
	s.users[u.ID] = *u
	return nil
}

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.insertUserLocked(u)
}

func (r memoryUsers) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.userByEmailLocked(email)
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r memoryUsers) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.users)), nil
}

type memoryWallets struct{ s *MemoryStore }

func (r memoryWallets) Create(_ context.Context, w *domain.Wallet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := prepareWallet(w); err != nil {
		return err
	}
	for _, existing := range r.s.wallets {
		if existing.ID == w.ID || (existing.UserID == w.UserID && existing.Currency == w.Currency) {
			return fmt.Errorf("wallet %s/%s: %w", w.UserID.Hex(), w.Currency, ErrDuplicate)
		}
	}
	r.s.wallets[w.ID] = *w
	return nil
}

func (r memoryWallets) GetByUserAndCurrency(_ context.Context, userID primitive.ObjectID, currency domain.Currency) (*domain.Wallet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, w := range r.s.wallets {
		if w.UserID == userID && w.Currency == currency {
			cp := w
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r memoryWallets) ListByUser(_ context.Context, userID primitive.ObjectID) ([]domain.Wallet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Wallet{}
	for _, w := range r.s.wallets {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out, nil
}

func (r memoryWallets) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.wallets)), nil
}

type memoryTransactions struct{ s *MemoryStore }

func (r memoryTransactions) Create(_ context.Context, t *domain.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := prepareTransaction(t); err != nil {
		return err
	}
	if _, ok := r.s.transactions[t.ID]; ok {
		return fmt.Errorf("transaction %s: %w", t.ID.Hex(), ErrDuplicate)
	}
	r.s.transactions[t.ID] = *t
	return nil
}

func (r memoryTransactions) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.transactions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (r memoryTransactions) List(_ context.Context, f TransactionFilter, p Page) ([]domain.Transaction, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	matched := []domain.Transaction{}
	for _, t := range r.s.transactions {
		if f.matches(&t) {
			matched = append(matched, t)
		}
	}
	// Newest first, same as the created_at index scan
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID.Hex() > matched[j].ID.Hex()
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	start := p.Offset()
	if start < 0 || start >= len(matched) {
		return []domain.Transaction{}, total, nil
	}
	end := start + p.Size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r memoryTransactions) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to domain.TransactionStatus, at time.Time) error {
	if err := checkTransition(from, to); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transactions[id]
	if !ok {
		return ErrNotFound
	}
	if t.Status != from {
		return ErrStatusChanged
	}
	t.Status = to
	t.UpdatedAt = &at
	r.s.transactions[id] = t
	return nil
}

func (r memoryTransactions) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.transactions)), nil
}
