package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/delish-app/tiffin-backend/api/controllers"
	"github.com/delish-app/tiffin-backend/api/routes"
	"github.com/delish-app/tiffin-backend/internal/admin"
	"github.com/delish-app/tiffin-backend/internal/auth"
	"github.com/delish-app/tiffin-backend/internal/cart"
	"github.com/delish-app/tiffin-backend/internal/catalog"
	"github.com/delish-app/tiffin-backend/internal/checkout"
	"github.com/delish-app/tiffin-backend/internal/orders"
	"github.com/delish-app/tiffin-backend/internal/payments"
	"github.com/delish-app/tiffin-backend/internal/pricing"
	"github.com/delish-app/tiffin-backend/internal/seed"
	"github.com/delish-app/tiffin-backend/internal/subscriptions"
	"github.com/delish-app/tiffin-backend/internal/users"
	"github.com/delish-app/tiffin-backend/pkg/auth/session"
	"github.com/delish-app/tiffin-backend/pkg/config"
	"github.com/delish-app/tiffin-backend/pkg/db"
	"github.com/delish-app/tiffin-backend/pkg/logger"
	"github.com/delish-app/tiffin-backend/pkg/metrics"
	"github.com/delish-app/tiffin-backend/pkg/migrate"
	"github.com/delish-app/tiffin-backend/pkg/redis"
	pkgstripe "github.com/delish-app/tiffin-backend/pkg/stripe"
)

const (
	shutdownTimeout = 15 * time.Second
	webhookEventTTL = 72 * time.Hour
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
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

	if cfg.FeatureFlags.SeedDemo && !cfg.App.IsProd() {
		if err := seed.Run(ctx, dbClient.DB(), cfg.Password, logg); err != nil {
			return err
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	meter := metrics.New(registry)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	userRepo := users.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())
	subscriptionRepo := subscriptions.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return err
	}
	userService, err := users.NewService(userRepo)
	if err != nil {
		return err
	}
	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		return err
	}

	cartStore, err := cart.NewRedisStore(redisClient, cfg.Cart.Namespace)
	if err != nil {
		return err
	}
	cartLock, err := cart.NewSharedLock(redisClient, cfg.Cart.Namespace, cfg.Cart.LockTTL, cfg.Cart.LockWait)
	if err != nil {
		return err
	}
	cartService, err := cart.NewService(cartStore, catalogService, meter, logg, cart.WithSharedLock(cartLock))
	if err != nil {
		return err
	}

	var stripeClient *pkgstripe.Client
	var gateway payments.Gateway = payments.SandboxGateway{}
	if cfg.Stripe.Enabled() {
		stripeClient, err = pkgstripe.NewClient(ctx, cfg.Stripe, logg)
		if err != nil {
			return err
		}
		stripeGateway, err := payments.NewStripeGateway(stripeClient, cfg.Pricing.Currency)
		if err != nil {
			return err
		}
		gateway = stripeGateway
	} else if cfg.App.IsProd() {
		return errors.New("stripe must be configured in production")
	} else {
		logg.Warn(ctx, "stripe not configured, using sandbox payment gateway")
	}
	gateway = payments.WithMetrics(gateway, meter)

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Carts:    cartService,
		Orders:   orderRepo,
		Gateway:  gateway,
		Fees:     checkout.Fees{DeliveryFee: cfg.Pricing.DeliveryFee, TaxRate: cfg.Pricing.CheckoutTaxRate},
		Currency: cfg.Pricing.Currency,
		Metrics:  meter,
		Logger:   logg,
	})
	if err != nil {
		return err
	}
	orderService, err := orders.NewService(orderRepo)
	if err != nil {
		return err
	}
	subscriptionService, err := subscriptions.NewService(subscriptions.ServiceParams{
		Repo:       subscriptionRepo,
		Calculator: pricing.NewCalculator(cfg.Pricing.PlanGSTRate),
		Gateway:    gateway,
		Logger:     logg,
	})
	if err != nil {
		return err
	}
	adminService, err := admin.NewService(admin.ServiceParams{
		Users:       userRepo,
		Restaurants: catalogRepo,
		Orders:      orderRepo,
	})
	if err != nil {
		return err
	}

	params := routes.Params{
		Config:        cfg,
		Logger:        logg,
		Ready:         map[string]controllers.Pinger{"db": dbClient, "redis": redisClient},
		Sessions:      sessionManager,
		Store:         redisClient,
		Metrics:       meter,
		Gatherer:      registry,
		Auth:          authService,
		Users:         userService,
		Catalog:       catalogService,
		Cart:          cartService,
		Checkout:      checkoutService,
		Orders:        orderService,
		Subscriptions: subscriptionService,
		Admin:         adminService,
	}

	if stripeClient != nil {
		orderSettler, err := orders.NewPaymentSettler(orderRepo)
		if err != nil {
			return err
		}
		planSettler, err := subscriptions.NewPaymentSettler(subscriptionRepo)
		if err != nil {
			return err
		}
		webhookService, err := payments.NewWebhookService(orderSettler, planSettler, logg)
		if err != nil {
			return err
		}
		guard, err := payments.NewEventGuard(redisClient, webhookEventTTL, "stripe-webhook")
		if err != nil {
			return err
		}
		params.StripeWebhook = webhookService
		params.StripeEvents = stripeClient
		params.WebhookGuard = guard
	}

	addr := ":" + cfg.App.Port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(params),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
