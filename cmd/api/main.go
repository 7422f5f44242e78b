package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tokosetara/api/internal/gateways/commerce"
	shippinggw "github.com/tokosetara/api/internal/gateways/shipping"
	"github.com/tokosetara/api/internal/handlers"
	"github.com/tokosetara/api/internal/payments"
	"github.com/tokosetara/api/internal/platform/config"
	"github.com/tokosetara/api/internal/platform/idempotency"
	"github.com/tokosetara/api/internal/platform/observability"
	redisrepo "github.com/tokosetara/api/internal/repositories/redis"
	"github.com/tokosetara/api/internal/services"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close error", zap.Error(err))
		}
	}()

	sessionRepo, err := redisrepo.NewSessionRepository(redisClient, cfg.Redis.CartTTL)
	if err != nil {
		logger.Fatal("failed to initialise session repository", zap.Error(err))
	}

	rateGateway, err := shippinggw.NewClient(shippinggw.ClientDeps{
		BaseURL:  cfg.Shipping.BaseURL,
		APIKey:   cfg.Shipping.APIKey,
		OriginID: cfg.Shipping.OriginID,
		Timeout:  cfg.Shipping.Timeout,
	})
	if err != nil {
		logger.Fatal("failed to initialise rate gateway", zap.Error(err))
	}

	commerceGateway, err := commerce.NewClient(commerce.ClientDeps{
		BaseURL: cfg.Commerce.BaseURL,
		APIKey:  cfg.Commerce.APIKey,
		Timeout: cfg.Commerce.Timeout,
	})
	if err != nil {
		logger.Fatal("failed to initialise commerce gateway", zap.Error(err))
	}

	var paymentManager *payments.Manager
	if cfg.Features.EnableGatewayPayments {
		stripeProvider, err := payments.NewStripeProvider(payments.StripeProviderConfig{
			APIKey: cfg.PSP.StripeAPIKey,
			Logger: observability.ServiceLogger(logger.Named("payments")),
			Clock:  time.Now,
		})
		if err != nil {
			logger.Fatal("failed to initialise stripe payment provider", zap.Error(err))
		}
		paymentManager, err = payments.NewManager(map[string]payments.Provider{
			"stripe": stripeProvider,
		})
		if err != nil {
			logger.Fatal("failed to initialise payment manager", zap.Error(err))
		}
	}

	cartService, err := services.NewCartService(services.CartServiceDeps{
		Repository: sessionRepo,
		Clock:      time.Now,
		Logger:     observability.ServiceLogger(logger.Named("cart")),
	})
	if err != nil {
		logger.Fatal("failed to initialise cart service", zap.Error(err))
	}

	voucherService, err := services.NewVoucherService(services.VoucherServiceDeps{
		Repository: sessionRepo,
		Catalog:    services.NewStaticVoucherCatalog(voucherCampaigns()),
		Clock:      time.Now,
		Logger:     observability.ServiceLogger(logger.Named("voucher")),
	})
	if err != nil {
		logger.Fatal("failed to initialise voucher service", zap.Error(err))
	}

	shippingService, err := services.NewShippingService(services.ShippingServiceDeps{
		Repository: sessionRepo,
		Rates:      rateGateway,
		Clock:      time.Now,
		Logger:     observability.ServiceLogger(logger.Named("shipping")),
	})
	if err != nil {
		logger.Fatal("failed to initialise shipping service", zap.Error(err))
	}

	pricingService, err := services.NewPricingService(services.PricingServiceDeps{
		Repository: sessionRepo,
		Logger:     observability.ServiceLogger(logger.Named("pricing")),
	})
	if err != nil {
		logger.Fatal("failed to initialise pricing service", zap.Error(err))
	}

	checkoutDeps := services.CheckoutServiceDeps{
		Repository:            sessionRepo,
		Commerce:              commerceGateway,
		Clock:                 time.Now,
		Logger:                observability.ServiceLogger(logger.Named("checkout")),
		Currency:              cfg.Features.DefaultCurrency,
		SuccessURL:            cfg.PSP.GatewaySuccessURL,
		CancelURL:             cfg.PSP.GatewayCancelURL,
		EnableGatewayPayments: cfg.Features.EnableGatewayPayments,
	}
	if paymentManager != nil {
		checkoutDeps.Payments = paymentManager
	}
	checkoutService, err := services.NewCheckoutService(checkoutDeps)
	if err != nil {
		logger.Fatal("failed to initialise checkout service", zap.Error(err))
	}

	orderService, err := services.NewOrderService(services.OrderServiceDeps{
		Commerce: commerceGateway,
		Logger:   observability.ServiceLogger(logger.Named("orders")),
	})
	if err != nil {
		logger.Fatal("failed to initialise order service", zap.Error(err))
	}

	auditLogger := logger.Named("cart_audit")
	cartService.Subscribe(func(_ context.Context, session services.CheckoutSession) {
		auditLogger.Debug("cart mutated",
			zap.String("session_key", session.Key),
			zap.Int("lines", len(session.Items)),
		)
	})

	idempotencyStore, err := idempotency.NewRedisStore(redisClient)
	if err != nil {
		logger.Fatal("failed to initialise idempotency store", zap.Error(err))
	}
	idempotencyMiddleware := idempotency.Middleware(
		idempotencyStore,
		idempotency.WithMethods(http.MethodPost),
		idempotency.WithLogger(observability.NewPrintfAdapter(logger.Named("idempotency"))),
	)

	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(),
		handlers.SessionKeyMiddleware(),
	}

	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithReadinessCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}),
	)

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithCartRoutes(handlers.NewCartHandlers(cartService, voucherService).Routes),
		handlers.WithShippingRoutes(handlers.NewShippingHandlers(shippingService).Routes),
		handlers.WithCheckoutRoutes(func(r chi.Router) {
			r.Use(idempotencyMiddleware)
			handlers.NewCheckoutHandlers(pricingService, checkoutService).Routes(r)
		}),
		handlers.WithOrderRoutes(handlers.NewOrderHandlers(orderService).Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("tokosetara api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// voucherCampaigns parses API_VOUCHER_CAMPAIGNS, a comma separated list of
// code=kind:amount entries, e.g. "HEMAT10=percentage:10,ONGKIR=fixed:15000".
func voucherCampaigns() []services.Voucher {
	raw := strings.TrimSpace(os.Getenv("API_VOUCHER_CAMPAIGNS"))
	if raw == "" {
		return nil
	}

	entries := strings.Split(raw, ",")
	vouchers := make([]services.Voucher, 0, len(entries))
	for i, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(parts[0]))
		rule := strings.SplitN(strings.TrimSpace(parts[1]), ":", 2)
		if code == "" || len(rule) != 2 {
			continue
		}

		var amount int64
		if _, err := fmt.Sscanf(strings.TrimSpace(rule[1]), "%d", &amount); err != nil || amount < 0 {
			continue
		}

		voucher := services.Voucher{ID: fmt.Sprintf("env-%d", i), Code: code}
		switch strings.ToLower(strings.TrimSpace(rule[0])) {
		case "fixed":
			voucher.Kind = "fixed"
			voucher.FixedAmount = amount
		case "percentage":
			voucher.Kind = "percentage"
			voucher.PercentageAmount = amount
		default:
			continue
		}
		vouchers = append(vouchers, voucher)
	}
	return vouchers
}
