package db

import (
	"context" // Deadlines for engine calls
	"errors"  // Error inspection
	"fmt"     // Error wrapping
	"time"    // Connect timeout

	"afrikpay_store/internal/domain" // Record types
	"afrikpay_store/internal/schema" // Declared collections

	"go.mongodb.org/mongo-driver/bson"           // Command documents
	"go.mongodb.org/mongo-driver/mongo"          // MongoDB driver
	"go.mongodb.org/mongo-driver/mongo/options"  // Driver options
	"go.mongodb.org/mongo-driver/mongo/readpref" // Ping read preference
)

// codeNamespaceExists is the server error for createCollection on an existing name
const codeNamespaceExists = 48

// ConnectMongo connects to uri and pings the primary within timeout
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// MongoTarget provisions collections with $jsonSchema validators
type MongoTarget struct {
	db *mongo.Database
}

// NewMongoTarget returns a target bound to db
func NewMongoTarget(db *mongo.Database) *MongoTarget {
	return &MongoTarget{db: db}
}

// EnsureCollection creates the collection with a strict validator. An
// existing collection gets the validator applied through collMod instead.
func (t *MongoTarget) EnsureCollection(ctx context.Context, c schema.Collection) (bool, error) {
	names, err := t.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: c.Name}})
	if err != nil {
		return false, fmt.Errorf("list collections: %w", err)
	}
	if len(names) > 0 {
		return false, t.collMod(ctx, c)
	}
	opts := options.CreateCollection().
		SetValidator(c.Validator).
		SetValidationLevel("strict").
		SetValidationAction("error")
	if err := t.db.CreateCollection(ctx, c.Name, opts); err != nil {
		var cmdErr mongo.CommandError
		if errors.As(err, &cmdErr) && cmdErr.Code == codeNamespaceExists {
			// Another bootstrapper created it between list and create
			return false, t.collMod(ctx, c)
		}
		return false, err
	}
	return true, nil
}

func (t *MongoTarget) collMod(ctx context.Context, c schema.Collection) error {
	return t.db.RunCommand(ctx, collModCommand(c)).Err()
}

func collModCommand(c schema.Collection) bson.D {
	return bson.D{
		{Key: "collMod", Value: c.Name},
		{Key: "validator", Value: c.Validator},
		{Key: "validationLevel", Value: "strict"},
		{Key: "validationAction", Value: "error"},
	}
}

// EnsureIndexes creates the declared indexes in one call
func (t *MongoTarget) EnsureIndexes(ctx context.Context, c schema.Collection) (int, error) {
	if len(c.Indexes) == 0 {
		return 0, nil
	}
	names, err := t.db.Collection(c.Name).Indexes().CreateMany(ctx, indexModels(c))
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

func indexModels(c schema.Collection) []mongo.IndexModel {
	models := make([]mongo.IndexModel, 0, len(c.Indexes))
	for _, idx := range c.Indexes {
		keys := bson.D{}
		for _, k := range idx.Keys {
			keys = append(keys, bson.E{Key: k, Value: 1})
		}
		opts := options.Index().SetName(idx.Name)
		if idx.Unique {
			opts.SetUnique(true)
		}
		if idx.Sparse {
			opts.SetSparse(true)
		}
		models = append(models, mongo.IndexModel{Keys: keys, Options: opts})
	}
	return models
}

// SeedUsers upserts each user on email with $setOnInsert, so stored users
// are never modified
func (t *MongoTarget) SeedUsers(ctx context.Context, users []domain.User) (int, error) {
	col := t.db.Collection(schema.Users)
	inserted := 0
	for i := range users {
		u := users[i]
		if err := u.Validate(); err != nil {
			return inserted, fmt.Errorf("seed %s: %w", u.Email, err)
		}
		res, err := col.UpdateOne(ctx,
			bson.D{{Key: "email", Value: u.Email}},
			bson.D{{Key: "$setOnInsert", Value: u}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return inserted, fmt.Errorf("seed %s: %w", u.Email, err)
		}
		inserted += int(res.UpsertedCount)
	}
	return inserted, nil
}
