package db

import (
	"context" // Cancellation for engine calls
	"fmt"     // Error wrapping and DDL
	"strings" // Check expression building
	"time"    // Row timestamps

	"afrikpay_store/internal/domain" // Record types
	"afrikpay_store/internal/schema" // Declared collections

	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library
	"gorm.io/gorm/logger"  // GORM log levels
)

// UserRow is the relational rendition of a user document
type UserRow struct {
	ID        string     `gorm:"primaryKey;type:char(24)"`                       // ObjectID hex
	Email     string     `gorm:"type:varchar(320);not null;uniqueIndex:email_1"` // Unique email
	Phone     *string    `gorm:"type:varchar(32);uniqueIndex:phone_1"`           // NULL never collides, so uniqueness is sparse
	FirstName string     `gorm:"type:varchar(100)"`                              // Free text
	LastName  string     `gorm:"type:varchar(100)"`                              // Free text
	CreatedAt time.Time  `gorm:"not null;index:created_at_1"`                    // Creation time
	UpdatedAt *time.Time // Last update time
}

// TableName keeps the document collection name
func (UserRow) TableName() string { return schema.Users }

// WalletRow is the relational rendition of a wallet document
type WalletRow struct {
	ID        string        `gorm:"primaryKey;type:char(24)"`                                                           // ObjectID hex
	UserID    string        `gorm:"type:char(24);not null;uniqueIndex:user_id_1_currency_1,priority:1;index:user_id_1"` // Owning user
	Currency  string        `gorm:"type:varchar(8);not null;uniqueIndex:user_id_1_currency_1,priority:2"`               // One wallet per user and currency
	Balance   domain.Amount `gorm:"type:decimal(36,18);not null"`                                                       // Exact decimal balance
	CreatedAt time.Time     `gorm:"not null"`                                                                           // Creation time
	UpdatedAt *time.Time    // Last update time
}

// TableName keeps the document collection name
func (WalletRow) TableName() string { return schema.Wallets }

// TransactionRow is the relational rendition of a transaction document
type TransactionRow struct {
	ID        string        `gorm:"primaryKey;type:char(24)"`                 // ObjectID hex
	UserID    string        `gorm:"type:char(24);not null;index:user_id_1"`   // Owning user
	Type      string        `gorm:"type:varchar(32);not null;index:type_1"`   // Transaction type
	Amount    domain.Amount `gorm:"type:decimal(36,18);not null"`             // Exact decimal amount
	Currency  string        `gorm:"type:varchar(8);not null"`                 // Same set as wallets
	Status    string        `gorm:"type:varchar(16);not null;index:status_1"` // Lifecycle state
	CreatedAt time.Time     `gorm:"not null;index:created_at_1"`              // Creation time
	UpdatedAt *time.Time    // Last status change
}

// TableName keeps the document collection name
func (TransactionRow) TableName() string { return schema.Transactions }

// check is a named CHECK constraint
type check struct {
	Name string
	Expr string
}

// rowModel maps a collection to its row type
func rowModel(collection string) (any, error) {
	switch collection {
	case schema.Users:
		return &UserRow{}, nil
	case schema.Wallets:
		return &WalletRow{}, nil
	case schema.Transactions:
		return &TransactionRow{}, nil
	}
	return nil, fmt.Errorf("no row model for collection %s", collection)
}

// checks renders the validator enums and the email pattern as CHECK constraints
func checks(collection string) []check {
	currencies := make([]string, 0, len(domain.Currencies()))
	for _, c := range domain.Currencies() {
		currencies = append(currencies, string(c))
	}
	switch collection {
	case schema.Users:
		// [.] instead of \. keeps the pattern free of string escapes
		pattern := strings.ReplaceAll(domain.EmailPattern, `\.`, `[.]`)
		return []check{{Name: "chk_users_email", Expr: "email REGEXP '" + pattern + "'"}}
	case schema.Wallets:
		return []check{
			{Name: "chk_wallets_currency", Expr: inList("currency", currencies)},
		}
	case schema.Transactions:
		types := make([]string, 0, len(domain.TransactionTypes()))
		for _, t := range domain.TransactionTypes() {
			types = append(types, string(t))
		}
		statuses := make([]string, 0, len(domain.TransactionStatuses()))
		for _, s := range domain.TransactionStatuses() {
			statuses = append(statuses, string(s))
		}
		return []check{
			{Name: "chk_transactions_type", Expr: inList("type", types)},
			{Name: "chk_transactions_currency", Expr: inList("currency", currencies)},
			{Name: "chk_transactions_status", Expr: inList("status", statuses)},
		}
	}
	return nil
}

func inList(column string, values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return "`" + column + "` IN (" + strings.Join(quoted, ",") + ")"
}

// OpenSQL opens a MySQL connection through GORM
func OpenSQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return db, nil
}

// SQLTarget provisions the collections as MySQL tables
type SQLTarget struct {
	db *gorm.DB
}

// NewSQLTarget returns a target bound to db
func NewSQLTarget(db *gorm.DB) *SQLTarget {
	return &SQLTarget{db: db}
}

// EnsureCollection migrates the table and adds missing CHECK constraints
func (t *SQLTarget) EnsureCollection(ctx context.Context, c schema.Collection) (bool, error) {
	model, err := rowModel(c.Name)
	if err != nil {
		return false, err
	}
	db := t.db.WithContext(ctx)
	existed := db.Migrator().HasTable(model)
	// AutoMigrate will create tables, missing columns and indexes
	if err := db.AutoMigrate(model); err != nil {
		return false, fmt.Errorf("migration failed: %w", err)
	}
	for _, chk := range checks(c.Name) {
		if db.Migrator().HasConstraint(model, chk.Name) {
			continue
		}
		ddl := fmt.Sprintf("ALTER TABLE `%s` ADD CONSTRAINT `%s` CHECK (%s)", c.Name, chk.Name, chk.Expr)
		if err := db.Exec(ddl).Error; err != nil {
			return false, fmt.Errorf("add constraint %s: %w", chk.Name, err)
		}
	}
	return !existed, nil
}

// EnsureIndexes creates any declared index the table lacks
func (t *SQLTarget) EnsureIndexes(ctx context.Context, c schema.Collection) (int, error) {
	model, err := rowModel(c.Name)
	if err != nil {
		return 0, err
	}
	migrator := t.db.WithContext(ctx).Migrator()
	for _, idx := range c.Indexes {
		if migrator.HasIndex(model, idx.Name) {
			continue
		}
		if err := migrator.CreateIndex(model, idx.Name); err != nil {
			return 0, fmt.Errorf("create index %s: %w", idx.Name, err)
		}
	}
	return len(c.Indexes), nil
}

// SeedUsers inserts the users whose email is absent, in one transaction
func (t *SQLTarget) SeedUsers(ctx context.Context, users []domain.User) (int, error) {
	inserted := 0
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range users {
			u := users[i]
			if err := u.Validate(); err != nil {
				return fmt.Errorf("seed %s: %w", u.Email, err)
			}
			var existing int64
			if err := tx.Model(&UserRow{}).Where("email = ?", u.Email).Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				continue
			}
			row := UserRowFrom(u)
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("seed %s: %w", u.Email, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// UserRowFrom converts a user document into its row
func UserRowFrom(u domain.User) UserRow {
	row := UserRow{
		ID:        u.ID.Hex(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.Phone != "" {
		phone := u.Phone
		row.Phone = &phone
	}
	return row
}
