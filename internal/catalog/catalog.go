// Package catalog builds the seed catalog (users, vendors, products) either
// from CSV exports or synthetically, and writes it to the document store.
package catalog

import (
	"context"

	"github.com/angelmondragon/activity-seeder/internal/batch"
	"github.com/angelmondragon/activity-seeder/pkg/db/models"
	"github.com/angelmondragon/activity-seeder/pkg/docstore"
	"github.com/angelmondragon/activity-seeder/pkg/logger"
)

// Catalog is the seed data the generators read.
type Catalog struct {
	Users    []models.User
	Vendors  []models.Vendor
	Products []models.Product
}

// Counts reports how many documents were written per collection.
type Counts struct {
	Vendors  int `json:"vendors"`
	Users    int `json:"users"`
	Products int `json:"products"`
}

// Loader writes a catalog through batched inserts.
type Loader struct {
	Logger    *logger.Logger
	Users     docstore.Collection[models.User]
	Vendors   docstore.Collection[models.Vendor]
	Products  docstore.Collection[models.Product]
	BatchSize int
}

// Load inserts vendors, then users, then products. It stops at the first
// rejected batch; collections written before it are kept.
func (l *Loader) Load(ctx context.Context, c *Catalog) (Counts, error) {
	var counts Counts
	var err error
	if counts.Vendors, err = insertAll(ctx, l, l.Vendors, c.Vendors); err != nil {
		return counts, err
	}
	if counts.Users, err = insertAll(ctx, l, l.Users, c.Users); err != nil {
		return counts, err
	}
	if counts.Products, err = insertAll(ctx, l, l.Products, c.Products); err != nil {
		return counts, err
	}
	return counts, nil
}

func insertAll[T any](ctx context.Context, l *Loader, coll docstore.Collection[T], docs []T) (int, error) {
	size := l.BatchSize
	if size < 1 {
		size = len(docs) + 1
	}
	persister, err := batch.NewPersister[T](coll, size)
	if err != nil {
		return 0, err
	}
	i := 0
	err = batch.PersistAll(ctx, persister, len(docs), func() T {
		doc := docs[i]
		i++
		return doc
	})
	if err == nil && l.Logger != nil {
		l.Logger.InfoFields(l.Logger.WithCollection(ctx, coll.Name()), "catalog collection inserted", map[string]any{
			"inserted": persister.Persisted(),
		})
	}
	return persister.Persisted(), err
}
