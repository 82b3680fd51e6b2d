package docstore

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const idKey = "_id"

// MemoryCollection keeps BSON-encoded documents in process. Documents are
// copied on the way in and out, so callers never share state with the store.
type MemoryCollection[T any] struct {
	name string

	mu    sync.RWMutex
	docs  []bson.Raw
	index map[string]int

	// BeforeInsert, when set, can reject a batch before anything is stored.
	BeforeInsert func(batch int, docs []T) error
	batches      int
}

// NewMemoryCollection returns an empty collection.
func NewMemoryCollection[T any](name string) *MemoryCollection[T] {
	return &MemoryCollection[T]{name: name, index: map[string]int{}}
}

func (c *MemoryCollection[T]) Name() string { return c.name }

// Len returns the number of stored documents.
func (c *MemoryCollection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

// InsertMany stores the whole batch or nothing.
func (c *MemoryCollection[T]) InsertMany(ctx context.Context, docs []T) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.batches++
	if c.BeforeInsert != nil {
		if err := c.BeforeInsert(c.batches, docs); err != nil {
			return nil, err
		}
	}

	encoded := make([]bson.Raw, 0, len(docs))
	ids := make([]string, 0, len(docs))
	seen := map[string]struct{}{}
	for i := range docs {
		raw, id, err := encodeWithID(docs[i])
		if err != nil {
			return nil, fmt.Errorf("%s: encode document %d: %w", c.name, i, err)
		}
		if _, dup := c.index[id]; dup {
			return nil, fmt.Errorf("%s: duplicate key %s", c.name, id)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%s: duplicate key %s in batch", c.name, id)
		}
		seen[id] = struct{}{}
		encoded = append(encoded, raw)
		ids = append(ids, id)
	}

	for i, raw := range encoded {
		c.index[ids[i]] = len(c.docs)
		c.docs = append(c.docs, raw)
	}
	return ids, nil
}

// Find returns matching documents in insertion order.
func (c *MemoryCollection[T]) Find(ctx context.Context, filter Filter, projection ...string) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	want, err := normalizeFilter(filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0)
	for _, raw := range c.docs {
		var fields bson.M
		if err := bson.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("%s: decode stored document: %w", c.name, err)
		}
		if !matches(fields, want) {
			continue
		}
		projected, err := project(raw, projection)
		if err != nil {
			return nil, fmt.Errorf("%s: project: %w", c.name, err)
		}
		var doc T
		if err := bson.Unmarshal(projected, &doc); err != nil {
			return nil, fmt.Errorf("%s: decode document: %w", c.name, err)
		}
		out = append(out, doc)
	}
	return out, nil
}

// UpdateOne sets the given fields on the document with the given id.
func (c *MemoryCollection[T]) UpdateOne(ctx context.Context, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	pos, ok := c.index[id]
	if !ok {
		return ErrNotFound
	}
	var doc bson.D
	if err := bson.Unmarshal(c.docs[pos], &doc); err != nil {
		return fmt.Errorf("%s: decode stored document: %w", c.name, err)
	}
	for key, value := range fields {
		if key == idKey {
			return fmt.Errorf("%s: %s is immutable", c.name, idKey)
		}
		doc = setField(doc, key, value)
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%s: encode document: %w", c.name, err)
	}
	c.docs[pos] = raw
	return nil
}

func encodeWithID(doc any) (bson.Raw, string, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, "", err
	}
	var d bson.D
	if err := bson.Unmarshal(raw, &d); err != nil {
		return nil, "", err
	}
	id := ""
	for _, elem := range d {
		if elem.Key == idKey {
			id = idString(elem.Value)
			break
		}
	}
	if id == "" {
		oid := primitive.NewObjectID()
		id = oid.Hex()
		d = append(bson.D{{Key: idKey, Value: oid}}, d...)
	}
	raw, err = bson.Marshal(d)
	if err != nil {
		return nil, "", err
	}
	return raw, id, nil
}

// normalizeFilter runs the filter through the BSON codec so that typed values
// (enums, times) compare equal to their stored representation.
func normalizeFilter(filter Filter) (bson.M, error) {
	if len(filter) == 0 {
		return bson.M{}, nil
	}
	raw, err := bson.Marshal(map[string]any(filter))
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}
	var out bson.M
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode filter: %w", err)
	}
	return out, nil
}

func matches(doc, want bson.M) bool {
	for key, value := range want {
		got, ok := doc[key]
		if !ok || !reflect.DeepEqual(got, value) {
			return false
		}
	}
	return true
}

func project(raw bson.Raw, fields []string) (bson.Raw, error) {
	if len(fields) == 0 {
		return raw, nil
	}
	keep := map[string]struct{}{idKey: {}}
	for _, f := range fields {
		keep[f] = struct{}{}
	}
	elems, err := raw.Elements()
	if err != nil {
		return nil, err
	}
	out := bson.D{}
	for _, elem := range elems {
		if _, ok := keep[elem.Key()]; ok {
			out = append(out, bson.E{Key: elem.Key(), Value: elem.Value()})
		}
	}
	return bson.Marshal(out)
}

func setField(doc bson.D, key string, value any) bson.D {
	for i := range doc {
		if doc[i].Key == key {
			doc[i].Value = value
			return doc
		}
	}
	return append(doc, bson.E{Key: key, Value: value})
}

func idString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case primitive.ObjectID:
		return v.Hex()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
