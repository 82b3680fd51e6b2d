package docstore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCollection maps Collection onto a MongoDB collection.
type MongoCollection[T any] struct {
	coll *mongo.Collection
}

func NewMongoCollection[T any](coll *mongo.Collection) *MongoCollection[T] {
	return &MongoCollection[T]{coll: coll}
}

func (c *MongoCollection[T]) Name() string { return c.coll.Name() }

// InsertMany performs one ordered bulk insert; MongoDB assigns ObjectIDs to
// documents without an _id.
func (c *MongoCollection[T]) InsertMany(ctx context.Context, docs []T) ([]string, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	payload := make([]any, len(docs))
	for i := range docs {
		payload[i] = docs[i]
	}
	res, err := c.coll.InsertMany(ctx, payload, options.InsertMany().SetOrdered(true))
	if err != nil {
		return nil, fmt.Errorf("%s: insert many: %w", c.coll.Name(), err)
	}
	ids := make([]string, 0, len(res.InsertedIDs))
	for _, raw := range res.InsertedIDs {
		ids = append(ids, idString(raw))
	}
	return ids, nil
}

func (c *MongoCollection[T]) Find(ctx context.Context, filter Filter, projection ...string) ([]T, error) {
	opts := options.Find().SetSort(bson.D{{Key: idKey, Value: 1}})
	if len(projection) > 0 {
		proj := bson.D{}
		for _, field := range projection {
			proj = append(proj, bson.E{Key: field, Value: 1})
		}
		opts.SetProjection(proj)
	}
	query := bson.M{}
	for k, v := range filter {
		query[k] = v
	}
	cur, err := c.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", c.coll.Name(), err)
	}
	defer cur.Close(ctx)

	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", c.coll.Name(), err)
	}
	return out, nil
}

// UpdateOne applies $set to the document; hex ids are tried as ObjectIDs first.
func (c *MongoCollection[T]) UpdateOne(ctx context.Context, id string, fields map[string]any) error {
	update := bson.M{"$set": bson.M(fields)}
	for _, key := range idCandidates(id) {
		res, err := c.coll.UpdateOne(ctx, bson.M{idKey: key}, update)
		if err != nil {
			return fmt.Errorf("%s: update %s: %w", c.coll.Name(), id, err)
		}
		if res.MatchedCount > 0 {
			return nil
		}
	}
	return ErrNotFound
}

func idCandidates(id string) []any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return []any{oid, id}
	}
	return []any{id}
}
