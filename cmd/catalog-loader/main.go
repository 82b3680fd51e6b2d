package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/activity-seeder/internal/backend"
	"github.com/angelmondragon/activity-seeder/internal/catalog"
	"github.com/angelmondragon/activity-seeder/internal/sampling"
	"github.com/angelmondragon/activity-seeder/pkg/config"
	pkgerrors "github.com/angelmondragon/activity-seeder/pkg/errors"
	"github.com/angelmondragon/activity-seeder/pkg/logger"
)

const serviceName = "catalog-loader"

func main() {
	defaults := catalog.DefaultSizes()
	dir := flag.String("dir", "data", "directory holding vendors.csv, users.csv and products.csv")
	synthetic := flag.Bool("synthetic", false, "generate a fake catalog instead of reading CSV files")
	customers := flag.Int("customers", defaults.Customers, "synthetic customers")
	vendors := flag.Int("vendors", defaults.Vendors, "synthetic vendors")
	products := flag.Int("products", defaults.Products, "synthetic products")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: serviceName})
	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(pkgerrors.ExitCode(err))
	}
	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": cfg.Store.DriverName()})

	var c *catalog.Catalog
	if *synthetic {
		sizes := defaults
		sizes.Customers, sizes.Vendors, sizes.Products = *customers, *vendors, *products
		c, err = catalog.Synthetic(sampling.NewRand(cfg.Generation.RandomSeed), sizes)
	} else {
		c, err = catalog.LoadDir(*dir)
	}
	if err != nil {
		logg.Error(ctx, "failed to build catalog", err)
		stop()
		os.Exit(pkgerrors.ExitCode(err))
	}

	b, err := backend.Open(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to open document store", err)
		stop()
		os.Exit(pkgerrors.ExitCode(err))
	}

	loader := &catalog.Loader{
		Logger:    logg,
		Users:     b.Stores.Users,
		Vendors:   b.Stores.Vendors,
		Products:  b.Stores.Products,
		BatchSize: cfg.Generation.BatchSize,
	}
	counts, err := loader.Load(ctx, c)
	if closeErr := b.Close(context.WithoutCancel(ctx)); closeErr != nil {
		logg.Error(ctx, "error closing document store", closeErr)
	}
	if err != nil {
		logg.Error(ctx, "catalog load failed", err)
		stop()
		os.Exit(pkgerrors.ExitCode(err))
	}
	logg.InfoFields(ctx, "catalog loaded", map[string]any{
		"vendors":  counts.Vendors,
		"users":    counts.Users,
		"products": counts.Products,
	})
}
