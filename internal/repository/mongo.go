package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"afrikpay_store/internal/domain"
	"afrikpay_store/internal/schema"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewMongoRepositories binds the three repositories to their collections in db
func NewMongoRepositories(db *mongo.Database) (*MongoUserRepository, *MongoWalletRepository, *MongoTransactionRepository) {
	return NewMongoUserRepository(db.Collection(schema.Users)),
		NewMongoWalletRepository(db.Collection(schema.Wallets)),
		NewMongoTransactionRepository(db.Collection(schema.Transactions))
}

// mapWriteError turns engine errors into repository sentinels
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func findOne[T any](ctx context.Context, col *mongo.Collection, filter bson.D) (*T, error) {
	var result T
	err := col.FindOne(ctx, filter).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

type MongoUserRepository struct {
	col *mongo.Collection
}

func NewMongoUserRepository(col *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{col: col}
}

func (r *MongoUserRepository) Create(ctx context.Context, u *domain.User) error {
	if err := prepareUser(u); err != nil {
		return err
	}
	_, err := r.col.InsertOne(ctx, u)
	return mapWriteError(err)
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return findOne[domain.User](ctx, r.col, bson.D{{Key: "_id", Value: id}})
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return findOne[domain.User](ctx, r.col, bson.D{{Key: "email", Value: email}})
}

func (r *MongoUserRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.D{})
}

type MongoWalletRepository struct {
	col *mongo.Collection
}

func NewMongoWalletRepository(col *mongo.Collection) *MongoWalletRepository {
	return &MongoWalletRepository{col: col}
}

func (r *MongoWalletRepository) Create(ctx context.Context, w *domain.Wallet) error {
	if err := prepareWallet(w); err != nil {
		return err
	}
	_, err := r.col.InsertOne(ctx, w)
	return mapWriteError(err)
}

func (r *MongoWalletRepository) GetByUserAndCurrency(ctx context.Context, userID primitive.ObjectID, currency domain.Currency) (*domain.Wallet, error) {
	return findOne[domain.Wallet](ctx, r.col, bson.D{
		{Key: "user_id", Value: userID},
		{Key: "currency", Value: currency},
	})
}

func (r *MongoWalletRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Wallet, error) {
	opts := options.Find().SetSort(bson.D{{Key: "currency", Value: 1}})
	cur, err := r.col.Find(ctx, bson.D{{Key: "user_id", Value: userID}}, opts)
	if err != nil {
		return nil, err
	}
	out := []domain.Wallet{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoWalletRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.D{})
}

type MongoTransactionRepository struct {
	col *mongo.Collection
}

func NewMongoTransactionRepository(col *mongo.Collection) *MongoTransactionRepository {
	return &MongoTransactionRepository{col: col}
}

func (r *MongoTransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	if err := prepareTransaction(t); err != nil {
		return err
	}
	_, err := r.col.InsertOne(ctx, t)
	return mapWriteError(err)
}

func (r *MongoTransactionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Transaction, error) {
	return findOne[domain.Transaction](ctx, r.col, bson.D{{Key: "_id", Value: id}})
}

func transactionQuery(f TransactionFilter) bson.D {
	q := bson.D{}
	if !f.UserID.IsZero() {
		q = append(q, bson.E{Key: "user_id", Value: f.UserID})
	}
	if f.Status != "" {
		q = append(q, bson.E{Key: "status", Value: f.Status})
	}
	if f.Type != "" {
		q = append(q, bson.E{Key: "type", Value: f.Type})
	}
	return q
}

func (r *MongoTransactionRepository) List(ctx context.Context, f TransactionFilter, p Page) ([]domain.Transaction, int64, error) {
	q := transactionQuery(f)
	total, err := r.col.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(p.Offset())).
		SetLimit(int64(p.Size))
	cur, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	out := []domain.Transaction{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *MongoTransactionRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to domain.TransactionStatus, at time.Time) error {
	if err := checkTransition(from, to); err != nil {
		return err
	}
	res, err := r.col.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}, {Key: "status", Value: from}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: to}, {Key: "updated_at", Value: at}}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}
	// Nothing matched: either the record is gone or another writer moved it
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrStatusChanged
}

func (r *MongoTransactionRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.D{})
}
