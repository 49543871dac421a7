// Package app wires together all dependencies and runs the storefront service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/gamingty/storefront/internal/config"
	"github.com/gamingty/storefront/internal/event"
	handler "github.com/gamingty/storefront/internal/handler/http"
	"github.com/gamingty/storefront/internal/platform"
	"github.com/gamingty/storefront/internal/repository"
	"github.com/gamingty/storefront/internal/repository/memory"
	postgresrepo "github.com/gamingty/storefront/internal/repository/postgres"
	redisrepo "github.com/gamingty/storefront/internal/repository/redis"
	"github.com/gamingty/storefront/internal/service"
	"github.com/gamingty/storefront/pkg/database"
	"github.com/gamingty/storefront/pkg/health"
	"github.com/gamingty/storefront/pkg/httpclient"
	pkgkafka "github.com/gamingty/storefront/pkg/kafka"
	"github.com/gamingty/storefront/pkg/middleware"
	"github.com/gamingty/storefront/pkg/tracing"
)

// App holds the long-lived components of the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	pgPool         *pgxpool.Pool
	producer       *pkgkafka.Producer
	consumers      []*pkgkafka.Consumer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Tracing.
	tracingCfg := tracing.DefaultConfig("storefront")
	tracingCfg.Environment = cfg.Environment
	tracingCfg.OTLPEndpoint = cfg.TracingEndpoint
	tracingCfg.SampleRate = cfg.TracingSample
	tracingCfg.Enabled = cfg.TracingEnabled
	tracerShutdown, err := tracing.InitTracer(ctx, tracingCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Redis backs the wishlist mirror regardless of the cart backend.
	rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", cfg.RedisAddr()),
		slog.Int("db", cfg.RedisDB),
	)

	cartTTL := time.Duration(cfg.CartTTL) * time.Hour
	wishlistTTL := time.Duration(cfg.WishlistTTL) * time.Hour
	pendingTTL := time.Duration(cfg.PendingTTL) * time.Hour

	// Cart snapshot backend.
	var (
		cartRepo repository.CartRepository
		pgPool   *pgxpool.Pool
	)
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		pgCfg := database.DefaultPostgresConfig()
		pgCfg.Host = cfg.PostgresHost
		pgCfg.Port = cfg.PostgresPort
		pgCfg.User = cfg.PostgresUser
		pgCfg.Password = cfg.PostgresPass
		pgCfg.DBName = cfg.PostgresDB

		pgPool, err = database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := postgresrepo.Migrate(ctx, pgPool, logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		database.RegisterPoolMetrics(pgPool, "storefront")
		cartRepo = postgresrepo.NewCartRepository(pgPool)
		logger.Info("cart snapshots backed by postgres")
	default:
		cartRepo = redisrepo.NewCartRepository(rdb, cartTTL)
	}

	// Pending-action backend.
	var pendingRepo repository.PendingRepository
	if cfg.PendingBackend == config.PendingMemory {
		pendingRepo = memory.NewPendingStore()
		logger.Warn("pending actions held in memory, slots will not survive a restart")
	} else {
		pendingRepo = redisrepo.NewPendingRepository(rdb, pendingTTL)
	}

	wishlistRepo := redisrepo.NewWishlistRepository(rdb, wishlistTTL)

	// Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Platform wishlist API client behind retry and a circuit breaker.
	hcCfg := httpclient.DefaultConfig()
	hcCfg.Timeout = cfg.PlatformTimeout
	hcCfg.MaxRetries = cfg.PlatformRetries
	cbCfg := httpclient.DefaultCircuitBreakerConfig("platform-wishlist")
	cbCfg.MaxRequests = cfg.BreakerMaxRequests
	cbCfg.Interval = cfg.BreakerInterval
	cbCfg.Timeout = cfg.BreakerTimeout
	cbCfg.MinRequests = cfg.BreakerMinRequests
	cbCfg.FailureRatio = cfg.BreakerFailureRatio
	cbClient := httpclient.NewCircuitBreakerClient(httpclient.New(hcCfg), cbCfg, logger)
	platformClient := platform.NewClient(platform.Config{BaseURL: cfg.PlatformBaseURL}, cbClient, logger)

	// Services.
	eventProducer := event.NewProducer(producer, logger)
	cartService := service.NewCartService(cartRepo, eventProducer, logger)
	wishlistService := service.NewWishlistService(platformClient, wishlistRepo, pendingRepo, logger)

	// Auth event consumers drive the pending-add replay and the logout cleanup.
	var consumers []*pkgkafka.Consumer
	if cfg.KafkaEnabled {
		sessionHandler := event.NewSessionConsumerHandler(wishlistService, logger)
		idempotency := pkgkafka.NewMemoryIdempotencyStore(24 * time.Hour)
		handle := pkgkafka.IdempotentHandler(idempotency, sessionHandler.Handle, logger)

		for _, topic := range []string{event.TopicAuthLoggedIn, event.TopicAuthLoggedOut} {
			consumers = append(consumers, pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
				Brokers: cfg.KafkaBrokers,
				GroupID: event.ConsumerGroupID,
				Topic:   topic,
			}, handle, logger))
		}
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	if pgPool != nil {
		healthHandler.Register("postgres", pgPool.Ping)
	}
	if cfg.KafkaEnabled {
		healthHandler.Register("kafka", func(ctx context.Context) error {
			return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
		})
	}

	// HTTP router.
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.Environment = cfg.Environment

	router := handler.NewRouter(handler.RouterConfig{
		CartService:     cartService,
		WishlistService: wishlistService,
		HealthHandler:   healthHandler,
		Logger:          logger,
		CORS:            corsCfg,
		PprofCIDRs:      cfg.PprofCIDRs,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		rdb:            rdb,
		pgPool:         pgPool,
		producer:       producer,
		consumers:      consumers,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and Kafka consumers, blocking until the context
// is canceled or a component fails.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1+len(a.consumers))

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	for _, c := range a.consumers {
		go func(c *pkgkafka.Consumer) {
			if err := c.Start(ctx); err != nil && ctx.Err() == nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}(c)
	}

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
		}
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	if a.pgPool != nil {
		a.pgPool.Close()
	}

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
