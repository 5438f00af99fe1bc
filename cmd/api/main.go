package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tubeboost/storefront-backend/api/routes"
	"github.com/tubeboost/storefront-backend/internal/cart"
	"github.com/tubeboost/storefront-backend/internal/catalog"
	"github.com/tubeboost/storefront-backend/internal/customers"
	"github.com/tubeboost/storefront-backend/internal/orders"
	"github.com/tubeboost/storefront-backend/internal/payments"
	"github.com/tubeboost/storefront-backend/internal/receipts"
	"github.com/tubeboost/storefront-backend/pkg/config"
	"github.com/tubeboost/storefront-backend/pkg/db"
	"github.com/tubeboost/storefront-backend/pkg/env"
	"github.com/tubeboost/storefront-backend/pkg/logger"
	"github.com/tubeboost/storefront-backend/pkg/metrics"
	"github.com/tubeboost/storefront-backend/pkg/paypalclient"
	"github.com/tubeboost/storefront-backend/pkg/redis"
	"github.com/tubeboost/storefront-backend/pkg/woocommerce"
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

	shopClient, err := woocommerce.NewClient(context.Background(), cfg.WooCommerce, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build woocommerce client", err)
		os.Exit(1)
	}

	paypalClient, err := paypalclient.NewClient(context.Background(), cfg.PayPal, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build paypal client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	receiptRepo, err := receipts.NewRepository(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to prepare receipts store", err)
		os.Exit(1)
	}

	cartStore, err := cart.NewStore(redisClient, logg, cfg.Cart.SnapshotTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to build cart store", err)
		os.Exit(1)
	}

	provisioner, err := catalog.NewProvisioner(shopClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build product provisioner", err)
		os.Exit(1)
	}

	resolver, err := customers.NewResolver(shopClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build customer resolver", err)
		os.Exit(1)
	}

	assembler, err := orders.NewAssembler(cartStore, resolver, provisioner, shopClient, logg, checkoutMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to build order assembler", err)
		os.Exit(1)
	}

	paymentService, err := payments.NewService(
		paypalClient,
		cartStore,
		redisClient,
		redisClient,
		receiptRepo,
		logg,
		checkoutMetrics,
		cfg.Checkout,
		cfg.Cart.ReceiptTTL,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to build payment service", err)
		os.Exit(1)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			shopClient,
			redisClient,
			cartStore,
			assembler,
			paymentService,
			registry,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
