package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"

	platformobservability "github.com/Apurer/go-gin-bookstore/internal/platform/observability"
)

// Event backends accepted by EVENTS_BACKEND.
const (
	EventsBackendLog      = "log"
	EventsBackendKafka    = "kafka"
	EventsBackendRabbitMQ = "rabbitmq"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port string

	PostgresDSN string
	SQLitePath  string

	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	CatalogCacheTTL  time.Duration
	CatalogCacheSize int

	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool

	EventsBackend    string
	KafkaBrokers     []string
	KafkaStockTopic  string
	KafkaCartTopic   string
	KafkaAcks        string
	RabbitMQURL      string
	RabbitMQExchange string

	CartIdle            time.Duration
	CartReleaseInterval time.Duration

	SeedCatalog bool

	Observability platformobservability.Settings
}

// LoadConfig reads .env when present, then environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		SQLitePath:        strings.TrimSpace(os.Getenv("SQLITE_PATH")),
		RedisAddr:         strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		EventsBackend:     strings.ToLower(envDefault("EVENTS_BACKEND", EventsBackendLog)),
		KafkaBrokers:      splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaStockTopic:   envDefault("KAFKA_STOCK_TOPIC", "bookstore.inventory.stock"),
		KafkaCartTopic:    envDefault("KAFKA_CART_TOPIC", "bookstore.inventory.carts"),
		KafkaAcks:         envDefault("KAFKA_ACKS", "all"),
		RabbitMQURL:       strings.TrimSpace(os.Getenv("RABBITMQ_URL")),
		RabbitMQExchange:  envDefault("RABBITMQ_EXCHANGE", "bookstore.inventory"),
		SeedCatalog:       isTruthy(os.Getenv("SEED_CATALOG")),
	}

	var err error
	if cfg.Observability, err = platformobservability.SettingsFromEnv(apiServiceName); err != nil {
		return Config{}, err
	}
	if cfg.RedisDB, err = envInt("REDIS_DB", 0, 0); err != nil {
		return Config{}, err
	}
	ttl, err := envInt("CATALOG_CACHE_TTL_SECONDS", 300, 1)
	if err != nil {
		return Config{}, err
	}
	cfg.CatalogCacheTTL = time.Duration(ttl) * time.Second
	if cfg.CatalogCacheSize, err = envInt("CATALOG_CACHE_SIZE", 1024, 1); err != nil {
		return Config{}, err
	}
	idle, err := envInt("CART_IDLE_MINUTES", 30, 1)
	if err != nil {
		return Config{}, err
	}
	cfg.CartIdle = time.Duration(idle) * time.Minute
	interval, err := envInt("CART_RELEASE_INTERVAL_MINUTES", 5, 1)
	if err != nil {
		return Config{}, err
	}
	cfg.CartReleaseInterval = time.Duration(interval) * time.Minute

	switch cfg.EventsBackend {
	case EventsBackendLog:
	case EventsBackendKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return Config{}, fmt.Errorf("KAFKA_BROKERS is required when EVENTS_BACKEND=kafka")
		}
	case EventsBackendRabbitMQ:
		if cfg.RabbitMQURL == "" {
			return Config{}, fmt.Errorf("RABBITMQ_URL is required when EVENTS_BACKEND=rabbitmq")
		}
	default:
		return Config{}, fmt.Errorf("EVENTS_BACKEND must be one of log, kafka, rabbitmq")
	}
	cfg.Observability.StorageBackend = cfg.StorageBackend()
	cfg.Observability.Broker = cfg.EventsBackend
	return cfg, nil
}

const apiServiceName = "bookstore-api"

// StorageBackend names the store the ledger and catalog are persisted in.
func (c Config) StorageBackend() string {
	switch {
	case c.PostgresDSN != "":
		return "postgres"
	case c.SQLitePath != "":
		return "sqlite"
	default:
		return "memory"
	}
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback, minimum int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < minimum {
		return 0, fmt.Errorf("%s must be an integer >= %d", key, minimum)
	}
	return value, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
