// Package schema declares the afrikpay collections: their validators, their
// required fields and their indexes. Storage targets render these
// declarations; nothing here talks to a database.
package schema

import (
	"afrikpay_store/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
)

// DatabaseName is the database every target provisions
const DatabaseName = "afrikpay"

// Collection names
const (
	Users        = "users"
	Wallets      = "wallets"
	Transactions = "transactions"
)

// Index describes one index. Keys are ascending and ordered.
type Index struct {
	Name   string
	Keys   []string
	Unique bool
	Sparse bool
}

// Collection is one schema-validated container
type Collection struct {
	Name      string
	Required  []string
	Validator bson.D
	Indexes   []Index
}

// Collections returns the users, wallets and transactions declarations in
// creation order
func Collections() []Collection {
	return []Collection{usersCollection(), walletsCollection(), transactionsCollection()}
}

// Lookup returns the declaration with the given name
func Lookup(name string) (Collection, bool) {
	for _, c := range Collections() {
		if c.Name == name {
			return c, true
		}
	}
	return Collection{}, false
}

// Names returns the collection names in creation order
func Names() []string {
	cols := Collections()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

func usersCollection() Collection {
	required := []string{"email", "created_at"}
	return Collection{
		Name:     Users,
		Required: required,
		Validator: jsonSchema(required, bson.D{
			{Key: "email", Value: bson.D{{Key: "bsonType", Value: "string"}, {Key: "pattern", Value: domain.EmailPattern}}},
			{Key: "phone", Value: bsonType("string")},
			{Key: "created_at", Value: bsonType("date")},
			{Key: "updated_at", Value: bsonType("date")},
		}),
		Indexes: []Index{
			{Name: "email_1", Keys: []string{"email"}, Unique: true},
			{Name: "phone_1", Keys: []string{"phone"}, Unique: true, Sparse: true},
			{Name: "created_at_1", Keys: []string{"created_at"}},
		},
	}
}

func walletsCollection() Collection {
	required := []string{"user_id", "currency", "balance", "created_at"}
	return Collection{
		Name:     Wallets,
		Required: required,
		Validator: jsonSchema(required, bson.D{
			{Key: "user_id", Value: bsonType("objectId")},
			{Key: "currency", Value: enum(currencyValues())},
			{Key: "balance", Value: bsonType("decimal")},
			{Key: "created_at", Value: bsonType("date")},
			{Key: "updated_at", Value: bsonType("date")},
		}),
		Indexes: []Index{
			{Name: "user_id_1_currency_1", Keys: []string{"user_id", "currency"}, Unique: true},
			{Name: "user_id_1", Keys: []string{"user_id"}},
		},
	}
}

func transactionsCollection() Collection {
	required := []string{"user_id", "type", "amount", "currency", "status", "created_at"}

	types := make([]string, 0, len(domain.TransactionTypes()))
	for _, t := range domain.TransactionTypes() {
		types = append(types, string(t))
	}
	statuses := make([]string, 0, len(domain.TransactionStatuses()))
	for _, s := range domain.TransactionStatuses() {
		statuses = append(statuses, string(s))
	}

	return Collection{
		Name:     Transactions,
		Required: required,
		Validator: jsonSchema(required, bson.D{
			{Key: "user_id", Value: bsonType("objectId")},
			{Key: "type", Value: enum(types)},
			{Key: "amount", Value: bsonType("decimal")},
			{Key: "currency", Value: enum(currencyValues())},
			{Key: "status", Value: enum(statuses)},
			{Key: "created_at", Value: bsonType("date")},
			{Key: "updated_at", Value: bsonType("date")},
		}),
		Indexes: []Index{
			{Name: "user_id_1", Keys: []string{"user_id"}},
			{Name: "status_1", Keys: []string{"status"}},
			{Name: "type_1", Keys: []string{"type"}},
			{Name: "created_at_1", Keys: []string{"created_at"}},
		},
	}
}

func jsonSchema(required []string, properties bson.D) bson.D {
	return bson.D{{Key: "$jsonSchema", Value: bson.D{
		{Key: "bsonType", Value: "object"},
		{Key: "required", Value: required},
		{Key: "properties", Value: properties},
	}}}
}

func bsonType(t string) bson.D {
	return bson.D{{Key: "bsonType", Value: t}}
}

func enum(values []string) bson.D {
	return bson.D{{Key: "bsonType", Value: "string"}, {Key: "enum", Value: values}}
}

func currencyValues() []string {
	values := make([]string, 0, len(domain.Currencies()))
	for _, c := range domain.Currencies() {
		values = append(values, string(c))
	}
	return values
}
