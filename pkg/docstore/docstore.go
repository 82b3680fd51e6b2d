// Package docstore is the persistence surface of the seeder: bulk inserts
// that return the assigned identifiers in submission order, equality-filtered
// finds with an optional field projection, and single-document updates.
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by UpdateOne when no document has the given id.
var ErrNotFound = errors.New("docstore: document not found")

// Filter matches documents whose fields equal every value in the map.
type Filter map[string]any

// Document exposes the identifier assigned by the store.
type Document interface {
	DocumentID() string
}

// Collection is a typed view over one collection or table.
type Collection[T any] interface {
	Name() string
	InsertMany(ctx context.Context, docs []T) ([]string, error)
	Find(ctx context.Context, filter Filter, projection ...string) ([]T, error)
	UpdateOne(ctx context.Context, id string, fields map[string]any) error
}
