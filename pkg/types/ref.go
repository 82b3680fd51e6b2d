package types

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ref points at another document by id. Ids the server assigned are ObjectID
// hex strings; a Ref holding one is written back as an ObjectID so it joins
// against the referenced _id. Any other id is written as a plain string.
type Ref string

func (r Ref) String() string { return string(r) }

// MarshalBSONValue implements bson.ValueMarshaler.
func (r Ref) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if oid, err := primitive.ObjectIDFromHex(string(r)); err == nil {
		return bson.MarshalValue(oid)
	}
	return bson.MarshalValue(string(r))
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler.
func (r *Ref) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.ObjectID:
		*r = Ref(raw.ObjectID().Hex())
	case bsontype.String:
		*r = Ref(raw.StringValue())
	case bsontype.Null, bsontype.Undefined:
		*r = ""
	default:
		return fmt.Errorf("ref: unsupported bson type %s", t)
	}
	return nil
}
