package domain

import (
	"fmt" // Error formatting

	"github.com/shopspring/decimal"              // Exact decimal arithmetic
	"go.mongodb.org/mongo-driver/bson"           // BSON encoding
	"go.mongodb.org/mongo-driver/bson/bsontype"  // BSON type tags
	"go.mongodb.org/mongo-driver/bson/primitive" // Decimal128
)

// Amount is an exact monetary value. It is stored as decimal128 in MongoDB and
// as DECIMAL in SQL, and is never converted through float64.
type Amount struct {
	decimal.Decimal
}

// NewAmount parses a decimal string such as "1500.25"
func NewAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Amount{Decimal: d}, nil
}

// MustAmount is NewAmount for literals known to be valid
func MustAmount(s string) Amount {
	a, err := NewAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// ZeroAmount returns an amount of 0
func ZeroAmount() Amount {
	return Amount{Decimal: decimal.Zero}
}

// MarshalBSONValue encodes the amount as BSON decimal128
func (a Amount) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d, err := primitive.ParseDecimal128(a.Decimal.String()) // String keeps every digit
	if err != nil {
		return 0, nil, fmt.Errorf("encode amount %s: %w", a.Decimal.String(), err)
	}
	return bson.MarshalValue(d)
}

// UnmarshalBSONValue decodes a BSON decimal128 into the amount
func (a *Amount) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	d, ok := raw.Decimal128OK()
	if !ok {
		return fmt.Errorf("amount must be decimal128, got %s", t)
	}
	parsed, err := decimal.NewFromString(d.String())
	if err != nil {
		return fmt.Errorf("decode amount %s: %w", d.String(), err)
	}
	a.Decimal = parsed
	return nil
}
