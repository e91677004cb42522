package db

import (
	"testing"

	"afrikpay_store/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestIndexModels(t *testing.T) {
	users, _ := schema.Lookup(schema.Users)
	models := indexModels(users)
	require.Len(t, models, 3)

	assert.Equal(t, bson.D{{Key: "email", Value: 1}}, models[0].Keys)
	require.NotNil(t, models[0].Options.Unique)
	assert.True(t, *models[0].Options.Unique)
	assert.Nil(t, models[0].Options.Sparse)
	assert.Equal(t, "email_1", *models[0].Options.Name)

	require.NotNil(t, models[1].Options.Sparse)
	assert.True(t, *models[1].Options.Sparse)
	assert.True(t, *models[1].Options.Unique)

	assert.Nil(t, models[2].Options.Unique)

	wallets, _ := schema.Lookup(schema.Wallets)
	compound := indexModels(wallets)[0]
	assert.Equal(t, bson.D{{Key: "user_id", Value: 1}, {Key: "currency", Value: 1}}, compound.Keys)
	assert.True(t, *compound.Options.Unique)
}

func TestCollModCommand(t *testing.T) {
	txs, _ := schema.Lookup(schema.Transactions)
	cmd := collModCommand(txs)
	require.Len(t, cmd, 4)
	assert.Equal(t, bson.E{Key: "collMod", Value: "transactions"}, cmd[0])
	assert.Equal(t, txs.Validator, cmd[1].Value)
	assert.Equal(t, "strict", cmd[2].Value)
	assert.Equal(t, "error", cmd[3].Value)
}
