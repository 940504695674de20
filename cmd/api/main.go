package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/prostore-labs/storefront-backend/api/routes"
	"github.com/prostore-labs/storefront-backend/internal/cart"
	"github.com/prostore-labs/storefront-backend/internal/catalog"
	"github.com/prostore-labs/storefront-backend/internal/inventory"
	"github.com/prostore-labs/storefront-backend/internal/notifications"
	"github.com/prostore-labs/storefront-backend/internal/orders"
	"github.com/prostore-labs/storefront-backend/internal/payments/manual"
	paypalpayments "github.com/prostore-labs/storefront-backend/internal/payments/paypal"
	stripepayments "github.com/prostore-labs/storefront-backend/internal/payments/stripe"
	"github.com/prostore-labs/storefront-backend/internal/users"
	stripewebhook "github.com/prostore-labs/storefront-backend/internal/webhooks/stripe"
	"github.com/prostore-labs/storefront-backend/pkg/config"
	"github.com/prostore-labs/storefront-backend/pkg/db"
	"github.com/prostore-labs/storefront-backend/pkg/logger"
	"github.com/prostore-labs/storefront-backend/pkg/metrics"
	"github.com/prostore-labs/storefront-backend/pkg/migrate"
	"github.com/prostore-labs/storefront-backend/pkg/paypal"
	"github.com/prostore-labs/storefront-backend/pkg/redis"
	"github.com/prostore-labs/storefront-backend/pkg/stripe"
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
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	paypalClient, err := paypal.NewClient(context.Background(), cfg.PayPal, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap paypal client", err)
		os.Exit(1)
	}

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe client", err)
		os.Exit(1)
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())
	cartRepo := cart.NewRepository(dbClient.DB())
	usersRepo := users.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())

	catalogService, err := catalog.NewService(catalogRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(dbClient, cartRepo, catalogRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(usersRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	receiptSender, err := notifications.NewLogSender(cfg.Notifications, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create receipt sender", err)
		os.Exit(1)
	}

	paymentMetrics := metrics.NewPaymentMetrics(prometheus.DefaultRegisterer)

	ordersService, err := orders.NewService(
		dbClient,
		ordersRepo,
		cartRepo,
		usersRepo,
		inventory.NewLedger(),
		receiptSender,
		paymentMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	paypalService, err := paypalpayments.NewService(ordersService, ordersRepo, paypalClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create paypal payments service", err)
		os.Exit(1)
	}

	stripeService, err := stripepayments.NewService(ordersService, ordersRepo, stripepayments.NewStripeClient(stripeClient), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe payments service", err)
		os.Exit(1)
	}

	manualService, err := manual.NewService(ordersService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create manual payments service", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(ordersService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Stripe.WebhookIdempotencyTTL, "stripe-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe webhook guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:             cfg,
			Logger:             logg,
			DBPinger:           dbClient,
			RedisPinger:        redisClient,
			CatalogService:     catalogService,
			CartService:        cartService,
			UsersService:       usersService,
			OrdersService:      ordersService,
			PayPalService:      paypalService,
			StripeService:      stripeService,
			ManualService:      manualService,
			StripeClient:       stripeClient,
			StripeWebhookSvc:   webhookService,
			StripeWebhookGuard: webhookGuard,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
