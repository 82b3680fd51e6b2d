// Package backend opens the configured document store and exposes the typed
// collections every command works with.
package backend

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/multierr"

	"github.com/angelmondragon/activity-seeder/internal/seeding"
	"github.com/angelmondragon/activity-seeder/pkg/config"
	"github.com/angelmondragon/activity-seeder/pkg/db"
	"github.com/angelmondragon/activity-seeder/pkg/db/models"
	"github.com/angelmondragon/activity-seeder/pkg/docstore"
	pkgerrors "github.com/angelmondragon/activity-seeder/pkg/errors"
	"github.com/angelmondragon/activity-seeder/pkg/logger"
	"github.com/angelmondragon/activity-seeder/pkg/migrate"
	"github.com/angelmondragon/activity-seeder/pkg/mongo"
)

// Backend owns the store connection behind a set of collections.
type Backend struct {
	Stores seeding.Stores
	// Target identifies the store for the run lock, e.g. "mongo/shop".
	Target string

	closers []func(ctx context.Context) error
}

// Open connects to the store selected by cfg.Store.Driver.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*Backend, error) {
	names := cfg.Collections
	switch cfg.Store.DriverName() {
	case config.DriverMongo:
		client, err := mongo.New(ctx, cfg.Store, logg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "connect mongo")
		}
		return &Backend{
			Stores: seeding.Stores{
				Users:    docstore.NewMongoCollection[models.User](client.Collection(names.Users)),
				Vendors:  docstore.NewMongoCollection[models.Vendor](client.Collection(names.Vendors)),
				Products: docstore.NewMongoCollection[models.Product](client.Collection(names.Products)),
				Orders:   docstore.NewMongoCollection[models.Order](client.Collection(names.Orders)),
				Reviews:  docstore.NewMongoCollection[models.Review](client.Collection(names.Reviews)),
			},
			Target:  "mongo/" + cfg.Store.MongoDatabase,
			closers: []func(context.Context) error{client.Close},
		}, nil

	case config.DriverPostgres, config.DriverSQLite:
		client, err := db.New(ctx, cfg.Store, logg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "connect database")
		}
		if err := migrate.MaybeRun(ctx, cfg, logg, client); err != nil {
			_ = client.Close()
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "migrate database")
		}
		b := FromGorm(client, names)
		b.Target = sqlTarget(cfg.Store)
		return b, nil

	case config.DriverMemory:
		return Memory(names), nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeConfig, fmt.Sprintf("unknown store driver %q", cfg.Store.Driver))
}

// FromGorm wraps an open SQL client.
func FromGorm(client *db.Client, names config.CollectionsConfig) *Backend {
	conn := client.DB()
	return &Backend{
		Stores: seeding.Stores{
			Users:    docstore.NewGormCollection[models.User](conn, names.Users),
			Vendors:  docstore.NewGormCollection[models.Vendor](conn, names.Vendors),
			Products: docstore.NewGormCollection[models.Product](conn, names.Products),
			Orders:   docstore.NewGormCollection[models.Order](conn, names.Orders),
			Reviews:  docstore.NewGormCollection[models.Review](conn, names.Reviews),
		},
		Target: client.Dialect(),
		closers: []func(context.Context) error{
			func(context.Context) error { return client.Close() },
		},
	}
}

// Memory returns empty in-process collections.
func Memory(names config.CollectionsConfig) *Backend {
	return &Backend{
		Stores: seeding.Stores{
			Users:    docstore.NewMemoryCollection[models.User](names.Users),
			Vendors:  docstore.NewMemoryCollection[models.Vendor](names.Vendors),
			Products: docstore.NewMemoryCollection[models.Product](names.Products),
			Orders:   docstore.NewMemoryCollection[models.Order](names.Orders),
			Reviews:  docstore.NewMemoryCollection[models.Review](names.Reviews),
		},
		Target: config.DriverMemory,
	}
}

// DryRun keeps catalog reads on the backend but sends every write to memory.
func (b *Backend) DryRun() *Backend {
	mem := Memory(config.CollectionsConfig{
		Orders:  b.Stores.Orders.Name(),
		Reviews: b.Stores.Reviews.Name(),
	})
	stores := b.Stores
	stores.Orders = mem.Stores.Orders
	stores.Reviews = mem.Stores.Reviews
	return &Backend{Stores: stores, Target: b.Target + "/dry-run", closers: b.closers}
}

// Close releases the connection and reports every failure.
func (b *Backend) Close(ctx context.Context) error {
	var errs error
	for _, c := range b.closers {
		errs = multierr.Append(errs, c(ctx))
	}
	return errs
}

func sqlTarget(cfg config.StoreConfig) string {
	if cfg.DriverName() == config.DriverSQLite {
		return "sqlite/" + cfg.SQLitePath
	}
	if u, err := url.Parse(cfg.DSN); err == nil && u.Host != "" && strings.Trim(u.Path, "/") != "" {
		return "postgres/" + u.Host + "/" + strings.Trim(u.Path, "/")
	}
	return config.DriverPostgres
}
