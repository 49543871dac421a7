package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/gamingty/storefront/pkg/config"
)

// Storage backend selectors.
const (
	StorageRedis    = "redis"
	StoragePostgres = "postgres"

	PendingRedis  = "redis"
	PendingMemory = "memory"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8010"`

	// Cart snapshot backend: redis (default) or postgres.
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"redis"`

	// Pending-action backend: redis (default) or memory. Memory slots do not
	// survive a restart and are meant for development.
	PendingBackend string `env:"PENDING_BACKEND" envDefault:"redis"`

	// Redis
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Postgres (used when STORAGE_BACKEND=postgres)
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"storefront"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"storefront_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"storefront"`

	// Snapshot TTLs in hours.
	CartTTL     int `env:"CART_TTL_HOURS" envDefault:"168"`
	WishlistTTL int `env:"WISHLIST_TTL_HOURS" envDefault:"24"`
	PendingTTL  int `env:"PENDING_TTL_HOURS" envDefault:"72"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"true"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Platform wishlist API
	PlatformBaseURL     string        `env:"PLATFORM_BASE_URL" envDefault:"http://localhost:8080"`
	PlatformTimeout     time.Duration `env:"PLATFORM_TIMEOUT" envDefault:"10s"`
	PlatformRetries     int           `env:"PLATFORM_RETRIES" envDefault:"2"`
	BreakerMaxRequests  uint32        `env:"BREAKER_MAX_REQUESTS" envDefault:"3"`
	BreakerInterval     time.Duration `env:"BREAKER_INTERVAL" envDefault:"60s"`
	BreakerTimeout      time.Duration `env:"BREAKER_TIMEOUT" envDefault:"30s"`
	BreakerMinRequests  uint32        `env:"BREAKER_MIN_REQUESTS" envDefault:"5"`
	BreakerFailureRatio float64       `env:"BREAKER_FAILURE_RATIO" envDefault:"0.6"`

	// Tracing
	TracingEnabled  bool    `env:"TRACING_ENABLED" envDefault:"false"`
	TracingEndpoint string  `env:"TRACING_ENDPOINT" envDefault:"localhost:4318"`
	TracingSample   float64 `env:"TRACING_SAMPLE_RATE" envDefault:"0.1"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Pprof endpoints are mounted only for requests from these CIDRs.
	PprofCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.0/8,::1/128" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.StorageBackend != StorageRedis && c.StorageBackend != StoragePostgres {
		return fmt.Errorf("invalid storage backend: %q", c.StorageBackend)
	}
	if c.PendingBackend != PendingRedis && c.PendingBackend != PendingMemory {
		return fmt.Errorf("invalid pending backend: %q", c.PendingBackend)
	}
	if c.CartTTL < 1 {
		return fmt.Errorf("cart TTL must be at least one hour, got %d", c.CartTTL)
	}
	return nil
}

// RedisAddr returns the host:port address for Redis.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}
