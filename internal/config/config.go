package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendMemory = "memory"
	BackendMongo  = "mongo"
)

type Config struct {
	HTTPPort string
	BaseURL  string

	CartBackend         string
	MongoURI            string
	MongoDBName         string
	MongoMaxPoolSize    uint64
	MongoMinPoolSize    uint64
	MongoConnectTimeout time.Duration

	RedisAddr     string
	RedisPassword string

	KafkaBrokers []string
	KafkaTopic   string

	StripeSecretKey     string
	StripeWebhookSecret string
	Currency            string

	ProviderTimeout    time.Duration
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64

	LogLevel     string
	OTLPEndpoint string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("CART_BACKEND", BackendMemory)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB_NAME", "storefront")
	v.SetDefault("MONGO_MAX_POOL_SIZE", 100)
	v.SetDefault("MONGO_MIN_POOL_SIZE", 10)
	v.SetDefault("MONGO_CONNECT_TIMEOUT", 10*time.Second)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "checkout-completed")
	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	v.SetDefault("CURRENCY", "brl")
	v.SetDefault("PROVIDER_TIMEOUT", 5*time.Second)
	v.SetDefault("REQUEST_TIMEOUT", 30*time.Second)
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	v.SetDefault("MAX_REQUEST_BODY_SIZE", 1<<20) // 1MB
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
}

// Load reads the optional .env files and then the process environment.
// Environment variables win over .env values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		HTTPPort:            v.GetString("HTTP_PORT"),
		BaseURL:             strings.TrimRight(v.GetString("BASE_URL"), "/"),
		CartBackend:         strings.ToLower(v.GetString("CART_BACKEND")),
		MongoURI:            v.GetString("MONGO_URI"),
		MongoDBName:         v.GetString("MONGO_DB_NAME"),
		MongoMaxPoolSize:    v.GetUint64("MONGO_MAX_POOL_SIZE"),
		MongoMinPoolSize:    v.GetUint64("MONGO_MIN_POOL_SIZE"),
		MongoConnectTimeout: v.GetDuration("MONGO_CONNECT_TIMEOUT"),
		RedisAddr:           v.GetString("REDIS_ADDR"),
		RedisPassword:       v.GetString("REDIS_PASSWORD"),
		KafkaBrokers:        splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:          v.GetString("KAFKA_TOPIC"),
		StripeSecretKey:     v.GetString("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
		Currency:            strings.ToLower(v.GetString("CURRENCY")),
		ProviderTimeout:     v.GetDuration("PROVIDER_TIMEOUT"),
		RequestTimeout:      v.GetDuration("REQUEST_TIMEOUT"),
		ShutdownTimeout:     v.GetDuration("SHUTDOWN_TIMEOUT"),
		MaxRequestBodySize:  v.GetInt64("MAX_REQUEST_BODY_SIZE"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		OTLPEndpoint:        v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.CartBackend {
	case BackendMemory, BackendMongo:
	default:
		return fmt.Errorf("invalid CART_BACKEND %q: want %q or %q", c.CartBackend, BackendMemory, BackendMongo)
	}
	if c.MongoMinPoolSize > c.MongoMaxPoolSize {
		return fmt.Errorf("MONGO_MIN_POOL_SIZE (%d) exceeds MONGO_MAX_POOL_SIZE (%d)", c.MongoMinPoolSize, c.MongoMaxPoolSize)
	}
	if len(c.Currency) != 3 {
		return fmt.Errorf("invalid CURRENCY %q: want a 3-letter ISO code", c.Currency)
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive, got %s", c.ProviderTimeout)
	}
	return nil
}

// KafkaEnabled reports whether checkout events go through Kafka
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
