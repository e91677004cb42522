package repository

import (
	"errors"
	"testing"

	"afrikpay_store/internal/domain"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestMapWriteError(t *testing.T) {
	assert.NoError(t, mapWriteError(nil))

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}}}
	assert.ErrorIs(t, mapWriteError(dup), ErrDuplicate)

	other := errors.New("connection reset")
	assert.Equal(t, other, mapWriteError(other))
}

func TestTransactionQuery(t *testing.T) {
	assert.Equal(t, bson.D{}, transactionQuery(TransactionFilter{}))

	user := primitive.NewObjectID()
	q := transactionQuery(TransactionFilter{UserID: user, Status: domain.StatusPending, Type: domain.TypeTransfer})
	assert.Equal(t, bson.D{
		{Key: "user_id", Value: user},
		{Key: "status", Value: domain.StatusPending},
		{Key: "type", Value: domain.TypeTransfer},
	}, q)
}

func TestCheckTransition(t *testing.T) {
	assert.NoError(t, checkTransition(domain.StatusPending, domain.StatusProcessing))
	assert.ErrorIs(t, checkTransition(domain.StatusCompleted, domain.StatusFailed), domain.ErrInvalidTransition)
	assert.ErrorIs(t, checkTransition(domain.StatusProcessing, domain.StatusPending), domain.ErrInvalidTransition)
}
