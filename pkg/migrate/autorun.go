package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/activity-seeder/pkg/config"
	"github.com/angelmondragon/activity-seeder/pkg/db"
	"github.com/angelmondragon/activity-seeder/pkg/db/models"
	"github.com/angelmondragon/activity-seeder/pkg/logger"
)

// MaybeRun prepares the SQL schema when SEEDER_AUTO_MIGRATE is set. Postgres
// runs the bundled goose migrations; SQLite gets GORM's AutoMigrate, since
// the migrations use Postgres-only types.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.Store.AutoMigrate || !cfg.Store.IsSQL() {
		return nil
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": cfg.Store.DriverName()})
	logg.Info(ctx, "running schema migrations (auto-run)")

	switch cfg.Store.DriverName() {
	case config.DriverPostgres:
		sqlDB, err := client.DB().DB()
		if err != nil {
			return fmt.Errorf("extracting sql.DB: %w", err)
		}
		if err := RunEmbedded(ctx, sqlDB, "up"); err != nil {
			return fmt.Errorf("running goose up: %w", err)
		}
	case config.DriverSQLite:
		if err := AutoMigrateTables(ctx, client, cfg.Collections); err != nil {
			return err
		}
	}

	logg.Info(ctx, "schema migrations completed")
	return nil
}

// AutoMigrateTables creates the seeder tables with GORM under the configured
// collection names.
func AutoMigrateTables(ctx context.Context, client *db.Client, names config.CollectionsConfig) error {
	tables := []struct {
		name  string
		model any
	}{
		{names.Users, &models.User{}},
		{names.Vendors, &models.Vendor{}},
		{names.Products, &models.Product{}},
		{names.Orders, &models.Order{}},
		{names.Reviews, &models.Review{}},
	}
	conn := client.DB().WithContext(ctx)
	for _, t := range tables {
		if err := conn.Table(t.name).AutoMigrate(t.model); err != nil {
			return fmt.Errorf("auto-migrate %s: %w", t.name, err)
		}
	}
	return nil
}
