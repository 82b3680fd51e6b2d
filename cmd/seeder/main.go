package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/activity-seeder/internal/backend"
	"github.com/angelmondragon/activity-seeder/internal/seeding"
	"github.com/angelmondragon/activity-seeder/pkg/config"
	pkgerrors "github.com/angelmondragon/activity-seeder/pkg/errors"
	"github.com/angelmondragon/activity-seeder/pkg/logger"
	"github.com/angelmondragon/activity-seeder/pkg/metrics"
	"github.com/angelmondragon/activity-seeder/pkg/redis"
)

const serviceName = "seeder"

type flags struct {
	orders  int
	reviews int
	seed    int64
	dryRun  bool
	visited map[string]bool
}

func parseFlags() flags {
	var f flags
	flag.IntVar(&f.orders, "orders", 0, "number of orders to generate (overrides SEEDER_ORDERS)")
	flag.IntVar(&f.reviews, "reviews", 0, "number of reviews to generate (overrides SEEDER_REVIEWS)")
	flag.Int64Var(&f.seed, "seed", 0, "random seed for a reproducible run (overrides SEEDER_RANDOM_SEED)")
	flag.BoolVar(&f.dryRun, "dry-run", false, "read the catalog but keep generated documents in memory")
	flag.Parse()

	f.visited = map[string]bool{}
	flag.Visit(func(fl *flag.Flag) { f.visited[fl.Name] = true })
	return f
}

// apply copies explicitly set flags over the environment configuration.
func (f flags) apply(cfg *config.Config) error {
	if f.visited["orders"] {
		cfg.Generation.Orders = f.orders
	}
	if f.visited["reviews"] {
		cfg.Generation.Reviews = f.reviews
	}
	if f.visited["seed"] {
		seed := f.seed
		cfg.Generation.RandomSeed = &seed
	}
	return cfg.Validate()
}

func main() {
	f := parseFlags()
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err == nil {
		err = f.apply(cfg)
	}
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
	err = run(ctx, cfg, f.dryRun, logg)
	stop()
	if err != nil {
		os.Exit(pkgerrors.ExitCode(err))
	}
}

func run(ctx context.Context, cfg *config.Config, dryRun bool, logg *logger.Logger) error {
	ctx = logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"driver":  cfg.Store.DriverName(),
		"dry_run": dryRun,
	})

	profile, err := seeding.LoadProfile(cfg.Generation.ProfilePath)
	if err != nil {
		logg.Error(ctx, "failed to load generation profile", err)
		return err
	}

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
	if dryRun {
		b = b.DryRun()
	}

	var lock seeding.Lock = seeding.NoopLock{}
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "connect redis")
			logg.Error(ctx, "failed to bootstrap redis", err)
			return err
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(ctx, "error closing redis", err)
			}
		}()
		if lock, err = seeding.NewRedisLock(redisClient, redis.RunLockKey(b.Target), cfg.Redis.LockTTL); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create run lock")
		}
	}

	registry := prometheus.NewRegistry()
	service, err := seeding.NewService(seeding.ServiceParams{
		Logger:     logg,
		Stores:     b.Stores,
		Lock:       lock,
		Metrics:    metrics.NewRunMetrics(registry),
		Generation: cfg.Generation,
		Profile:    profile,
	})
	if err != nil {
		logg.Error(ctx, "failed to create seeding service", err)
		return err
	}

	report, runErr := service.Run(ctx)
	if runErr != nil {
		ctx = logg.WithFields(ctx, report.Fields())
		logg.Error(ctx, "seeding run failed", runErr)
	}

	pushCtx := context.WithoutCancel(ctx)
	if err := metrics.Push(pushCtx, cfg.Metrics.PushgatewayURL, cfg.Metrics.JobName, registry); err != nil {
		logg.Error(pushCtx, "failed to push run metrics", err)
	}
	return runErr
}
