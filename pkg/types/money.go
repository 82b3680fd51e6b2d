package types

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Money is a decimal amount that round-trips through BSON as Decimal128,
// through SQL as numeric and through JSON as a quoted string.
type Money struct {
	decimal.Decimal
}

// NewMoney wraps d.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// ParseMoney parses a decimal string such as "12.50".
func ParseMoney(value string) (Money, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Money{}, fmt.Errorf("money: parse %q: %w", value, err)
	}
	return Money{Decimal: d}, nil
}

// MustMoney is ParseMoney for literals; it panics on malformed input.
func MustMoney(value string) Money {
	m, err := ParseMoney(value)
	if err != nil {
		panic(err)
	}
	return m
}

// Times returns m multiplied by qty.
func (m Money) Times(qty int) Money {
	return Money{Decimal: m.Mul(decimal.NewFromInt(int64(qty)))}
}

// Plus returns m + other.
func (m Money) Plus(other Money) Money {
	return Money{Decimal: m.Add(other.Decimal)}
}

// Cents rounds m half away from zero to two decimal places.
func (m Money) Cents() Money {
	return Money{Decimal: m.Round(2)}
}

// GormDataType keeps GORM migrations on a numeric column.
func (Money) GormDataType() string {
	return "numeric"
}

// MarshalBSONValue implements bson.ValueMarshaler.
func (m Money) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d128, err := primitive.ParseDecimal128(m.String())
	if err != nil {
		return 0, nil, fmt.Errorf("money: encode %s: %w", m.String(), err)
	}
	return bson.MarshalValue(d128)
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler. Catalogs loaded by
// older tooling store prices as doubles, so numeric BSON types are accepted.
func (m *Money) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Decimal128:
		d, err := decimal.NewFromString(raw.Decimal128().String())
		if err != nil {
			return fmt.Errorf("money: decode decimal128: %w", err)
		}
		m.Decimal = d
	case bsontype.Double:
		m.Decimal = decimal.NewFromFloat(raw.Double())
	case bsontype.Int32:
		m.Decimal = decimal.NewFromInt32(raw.Int32())
	case bsontype.Int64:
		m.Decimal = decimal.NewFromInt(raw.Int64())
	case bsontype.String:
		d, err := decimal.NewFromString(raw.StringValue())
		if err != nil {
			return fmt.Errorf("money: decode string: %w", err)
		}
		m.Decimal = d
	case bsontype.Null, bsontype.Undefined:
		m.Decimal = decimal.Zero
	default:
		return fmt.Errorf("money: unsupported bson type %s", t)
	}
	return nil
}
