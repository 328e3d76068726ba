package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/delish-app/tiffin-backend/internal/cron"
	"github.com/delish-app/tiffin-backend/internal/orders"
	"github.com/delish-app/tiffin-backend/internal/subscriptions"
	"github.com/delish-app/tiffin-backend/pkg/config"
	"github.com/delish-app/tiffin-backend/pkg/db"
	"github.com/delish-app/tiffin-backend/pkg/instance"
	"github.com/delish-app/tiffin-backend/pkg/logger"
	"github.com/delish-app/tiffin-backend/pkg/metrics"
	"github.com/delish-app/tiffin-backend/pkg/migrate"
	"github.com/delish-app/tiffin-backend/pkg/redis"
)

const (
	lockKeyFormat = "tiffin:cron-worker:lock:%s"
	// a cycle ends this long before the lock lease so release always wins
	lockMargin = 30 * time.Second
)

var once = flag.Bool("once", false, "run a single cycle and exit")

func main() {
	flag.Parse()
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"instance": instance.ID(),
	})

	if err := run(ctx, cfg, logg); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker shutting down gracefully")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		return err
	}

	expiry, err := cron.NewPaymentExpiryJob(cron.PaymentExpiryJobParams{
		Logger:        logg,
		DB:            dbClient,
		Orders:        orders.NewRepository(dbClient.DB()),
		Subscriptions: subscriptions.NewRepository(dbClient.DB()),
		TTL:           cfg.Cron.PaymentTTL,
	})
	if err != nil {
		return err
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:       logg,
		Lock:         lock,
		Jobs:         []cron.Job{expiry},
		Metrics:      metrics.New(prometheus.DefaultRegisterer),
		Interval:     cfg.Cron.Interval,
		CycleTimeout: lock.TTL() - lockMargin,
	})
	if err != nil {
		return err
	}

	if *once {
		logg.Info(ctx, "running a single cron cycle")
		return service.RunOnce(ctx)
	}
	logg.Info(ctx, "starting cron worker")
	return service.Run(ctx)
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
