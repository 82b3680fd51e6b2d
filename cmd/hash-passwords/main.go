package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/activity-seeder/internal/backend"
	"github.com/angelmondragon/activity-seeder/internal/passwords"
	"github.com/angelmondragon/activity-seeder/pkg/config"
	pkgerrors "github.com/angelmondragon/activity-seeder/pkg/errors"
	"github.com/angelmondragon/activity-seeder/pkg/logger"
)

const serviceName = "hash-passwords"

func main() {
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
	err = run(ctx, cfg, logg)
	stop()
	if err != nil {
		os.Exit(pkgerrors.ExitCode(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": cfg.Store.DriverName()})

	b, err := backend.Open(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to open document store", err)
		return err
	}
	defer func() {
		if err := b.Close(context.WithoutCancel(ctx)); err != nil {
			logg.Error(ctx, "error closing document store", err)
		}
	}()

	migrator, err := passwords.NewMigrator(b.Stores.Users, cfg.Passwords.BcryptCost, logg)
	if err != nil {
		logg.Error(ctx, "failed to create password migrator", err)
		return err
	}
	res, err := migrator.Run(ctx)
	fields := map[string]any{"scanned": res.Scanned, "hashed": res.Hashed, "skipped": res.Skipped}
	if err != nil {
		logg.Error(logg.WithFields(ctx, fields), "password migration failed", err)
		return err
	}
	logg.InfoFields(ctx, "passwords hashed", fields)
	return nil
}
