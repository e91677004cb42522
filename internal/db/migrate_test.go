package db

import (
	"context"
	"sync"
	"testing"

	"afrikpay_store/internal/domain"
	"afrikpay_store/internal/schema"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormschema "gorm.io/gorm/schema"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return gdb, mock
}

func TestSQLTarget_SeedUsers(t *testing.T) {
	gdb, mock := setupMockDB(t)

	mock.ExpectBegin()
	// john is new
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `users` WHERE email = \\?").
		WithArgs("john.doe@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO `users`").WillReturnResult(sqlmock.NewResult(1, 1))
	// jane already exists
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `users` WHERE email = \\?").
		WithArgs("jane.smith@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectCommit()

	inserted, err := NewSQLTarget(gdb).SeedUsers(context.Background(), SeedUsers(fixedNow))
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLTarget_SeedUsersRollsBack(t *testing.T) {
	gdb, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO `users`").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	inserted, err := NewSQLTarget(gdb).SeedUsers(context.Background(), SeedUsers(fixedNow))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 0, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLTarget_SeedRejectsInvalid(t *testing.T) {
	gdb, mock := setupMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := NewSQLTarget(gdb).SeedUsers(context.Background(), []domain.User{{Email: "bad", CreatedAt: fixedNow}})
	assert.ErrorIs(t, err, domain.ErrInvalidField)
}

func TestRowModels_IndexesMatchSchema(t *testing.T) {
	cache := &sync.Map{}
	for _, c := range schema.Collections() {
		model, err := rowModel(c.Name)
		require.NoError(t, err)

		s, err := gormschema.Parse(model, cache, gormschema.NamingStrategy{})
		require.NoError(t, err)
		assert.Equal(t, c.Name, s.Table)

		for _, idx := range c.Indexes {
			parsed := s.LookIndex(idx.Name)
			require.NotNil(t, parsed, "%s.%s", c.Name, idx.Name)
			require.Len(t, parsed.Fields, len(idx.Keys), idx.Name)
			for i, key := range idx.Keys {
				assert.Equal(t, key, parsed.Fields[i].DBName, idx.Name)
			}
			if idx.Unique {
				assert.Equal(t, "UNIQUE", parsed.Class, idx.Name)
			} else {
				assert.Empty(t, parsed.Class, idx.Name)
			}
		}
	}
}

func TestRowModels_SparsePhoneIsNullable(t *testing.T) {
	row := UserRowFrom(domain.User{Email: "a@example.com"})
	assert.Nil(t, row.Phone)

	row = UserRowFrom(SeedUsers(fixedNow)[0])
	require.NotNil(t, row.Phone)
	assert.Equal(t, "+237123456789", *row.Phone)
	assert.Len(t, row.ID, 24)
}

func TestChecks(t *testing.T) {
	users := checks(schema.Users)
	require.Len(t, users, 1)
	assert.Equal(t, "email REGEXP '^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+[.][a-zA-Z]{2,}$'", users[0].Expr)

	wallets := checks(schema.Wallets)
	require.Len(t, wallets, 1)
	assert.Equal(t, "`currency` IN ('USD','XAF','USDT','BTC')", wallets[0].Expr)

	txs := checks(schema.Transactions)
	require.Len(t, txs, 3)
	assert.Equal(t, "`type` IN ('crypto_purchase','wallet_deposit','transfer')", txs[0].Expr)
	assert.Equal(t, "`status` IN ('pending','processing','completed','failed','cancelled')", txs[2].Expr)

	_, err := rowModel("ledgers")
	assert.Error(t, err)
}
