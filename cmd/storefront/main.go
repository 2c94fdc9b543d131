package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/events"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/fjod/go_cart/storefront/internal/payments"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/fjod/go_cart/storefront/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	log := logger.New(cfg.LogLevel)
	ctx := context.Background()

	tp, err := telemetry.InitTracerProvider(ctx, cfg.OTLPEndpoint, version)
	if err != nil {
		log.WithError(err).Fatal("failed to init tracer provider")
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.WithError(err).Warn("tracer provider shutdown failed")
		}
	}()

	// Metrics
	m := metrics.New()
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := m.Register(reg); err != nil {
		log.WithError(err).Fatal("failed to register metrics")
	}

	// Cart storage
	var repo repository.CartRepository
	switch cfg.CartBackend {
	case config.BackendMongo:
		mongoDB, err := repository.ConnectMongoDB(ctx, repository.MongoConfig{
			URI:            cfg.MongoURI,
			Database:       cfg.MongoDBName,
			MaxPoolSize:    cfg.MongoMaxPoolSize,
			MinPoolSize:    cfg.MongoMinPoolSize,
			ConnectTimeout: cfg.MongoConnectTimeout,
		})
		if err != nil {
			log.WithError(err).Fatal("failed to connect to MongoDB")
		}
		defer func() {
			if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
				log.WithError(err).Warn("mongo disconnect failed")
			}
		}()

		mongoRepo := repository.NewMongoRepository(mongoDB)
		if err := mongoRepo.CreateIndexes(ctx); err != nil {
			log.WithError(err).Fatal("failed to create cart indexes")
		}
		repo = mongoRepo
		log.WithField("database", cfg.MongoDBName).Info("connected to MongoDB")
	default:
		memRepo := repository.NewMemoryRepository()
		defer memRepo.Close()
		repo = memRepo
		log.Info("using in-memory cart storage")
	}

	var cartCache cache.CartCache = cache.NoopCache{}
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.WithError(err).Fatal("redis connection failed")
		}
		cartCache = cache.NewRedisCache(redisClient)
		log.WithField("addr", cfg.RedisAddr).Info("redis ping succeeded")
	}

	carts := service.NewCartService(repo, cartCache, log, m)

	// Payments provider
	if cfg.StripeSecretKey == "" {
		log.Warn("STRIPE_SECRET_KEY is empty, provider calls will fail")
	}
	stripeClient := payments.NewStripeClient(payments.DefaultConfig(cfg.StripeSecretKey, cfg.ProviderTimeout), log, m)

	// Checkout completion: through Kafka when brokers are configured, in-process otherwise
	pollCtx, stopPolling := context.WithCancel(ctx)
	defer stopPolling()

	var sink events.CheckoutSink = events.ClearOnCheckout{Carts: carts}
	if cfg.KafkaEnabled() {
		publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log, m)
		defer publisher.Close()
		sink = publisher

		poller := events.NewPoller(carts, cfg.KafkaBrokers, cfg.KafkaTopic, log, m)
		defer poller.Close()
		go poller.Run(pollCtx)
		log.WithField("topic", cfg.KafkaTopic).Info("checkout events routed through kafka")
	}

	router := h.NewRouter(h.RouterConfig{
		Carts:              carts,
		Products:           catalog.NewProductResolver(stripeClient),
		Checkouts:          checkout.NewCreator(stripeClient, cfg.BaseURL),
		Sessions:           checkout.NewResolver(stripeClient, log, m),
		Sink:               sink,
		WebhookSecret:      cfg.StripeWebhookSecret,
		Currency:           cfg.Currency,
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		SecureCookies:      strings.HasPrefix(cfg.BaseURL, "https://"),
		Log:                log,
		Metrics:            promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, telemetry.ServiceName),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("storefront starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	stopPolling()

	log.Info("server exited")
}
