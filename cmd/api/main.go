package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/api"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/auth"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/cache"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/command"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/config"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/account"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/cart"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/catalog"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/coupon"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/order"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/pricing"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/events"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/infrastructure/kafka"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/infrastructure/store"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/payment"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/query"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.Must(logger.New(cfg.App.Env)).Named("api")
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := store.OpenPostgres(ctx, cfg.Database.URL, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	st := store.NewPostgresStore(db)
	if err := st.Migrate(ctx); err != nil {
		log.Fatal("failed to migrate schema", zap.Error(err))
	}
	log.Info("connected to postgres")

	var cartStore cart.Store = st
	if cfg.Cart.Backend == "dynamodb" {
		client, err := store.NewDynamoClient(ctx, cfg.Cart.DynamoRegion, cfg.Cart.DynamoEndpoint)
		if err != nil {
			log.Fatal("failed to create dynamodb client", zap.Error(err))
		}
		cartStore = store.NewDynamoCartStore(client, cfg.Cart.DynamoTable)
		log.Info("carts stored in dynamodb", zap.String("table", cfg.Cart.DynamoTable))
	}

	var publisher events.Publisher = events.NewRecorder()
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		defer producer.Close()
		publisher = producer
		log.Info("publishing events to kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	cacheOpts := cache.DefaultOptions()
	cacheOpts.TTL = cfg.Cache.TTL
	cacheOpts.StaleWindow = cfg.Cache.StaleWindow
	cacheOpts.Size = cfg.Cache.Size

	catalogSvc, err := catalog.NewService(st, cacheOpts, log)
	if err != nil {
		log.Fatal("failed to build product cache", zap.Error(err))
	}
	couponSvc := coupon.NewService(st, log)
	cartSvc := cart.NewService(cartStore, log)
	orderSvc := order.NewService(st, log)
	accounts := account.NewService(st, log)

	bootstrapAdmin(ctx, accounts, cfg.Auth, log)

	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.AccessExpiry, cfg.Auth.RefreshExpiry)

	rules := pricing.Rules{
		DeliveryThreshold: cfg.Pricing.DeliveryThreshold,
		FlatDeliveryFee:   cfg.Pricing.FlatDeliveryFee,
		Currency:          cfg.Pricing.Currency,
	}

	// Webhooks for requests the gateway no longer holds are settled from the stored order.
	var cmdHandler *command.Handler
	gateway := payment.NewHostedGateway(payment.Config{
		CheckoutURL:   cfg.Payment.CheckoutURL,
		WebhookSecret: cfg.Payment.WebhookSecret,
		RequestTTL:    cfg.Payment.RequestTTL,
	}, payment.ResolverFunc(func(ctx context.Context, n payment.Notification) error {
		return cmdHandler.ResolvePayment(ctx, n)
	}), log)

	cmdHandler = command.NewHandler(catalogSvc, couponSvc, cartSvc, orderSvc, gateway, publisher, rules, log)
	queryHandler := query.NewHandler(catalogSvc, cartSvc, orderSvc, couponSvc, cfg.Pricing.Currency, log)

	router := api.NewRouter(api.RouterConfig{
		Handlers:        api.NewHandlers(cmdHandler, queryHandler, log),
		AuthHandlers:    api.NewAuthHandlers(accounts, jwtService, log),
		PaymentHandlers: api.NewPaymentHandlers(gateway, log),
		JWTService:      jwtService,
		Logger:          log,
		RequestTimeout:  30 * time.Second,
	})

	server := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server started", zap.String("addr", server.Addr), zap.String("env", cfg.App.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	catalogSvc.Close()
}

// bootstrapAdmin creates the configured admin profile on first start.
func bootstrapAdmin(ctx context.Context, accounts *account.Service, cfg config.AuthConfig, log *zap.Logger) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return
	}
	_, err := accounts.RegisterAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, "Administrator")
	switch {
	case err == nil:
		log.Info("admin profile created", zap.String("email", cfg.AdminEmail))
	case errors.Is(err, account.ErrEmailTaken):
	default:
		log.Fatal("failed to create admin profile", zap.Error(err))
	}
}
