package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8000"`
	GRPCAddr        string        `envconfig:"GRPC_ADDR" default:":50051"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`

	StartingBalance decimal.Decimal `envconfig:"STARTING_BALANCE" default:"50.0"`
	DefaultStock    int             `envconfig:"DEFAULT_STOCK" default:"10"`

	JournalQueueSize int `envconfig:"JOURNAL_QUEUE_SIZE" default:"10000"`
	JournalWorkers   int `envconfig:"JOURNAL_WORKERS" default:"1"`

	MySQLDSN     string   `envconfig:"MYSQL_DSN"`
	RedisAddr    string   `envconfig:"REDIS_ADDR"`
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"canteen-events"`

	// OTLP/HTTP collector host:port. Empty keeps tracing off.
	OtelEndpoint    string `envconfig:"OTEL_ENDPOINT"`
	OtelServiceName string `envconfig:"OTEL_SERVICE_NAME" default:"campus-canteen"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.StartingBalance.IsNegative() {
		errs = append(errs, fmt.Errorf("STARTING_BALANCE must not be negative, got %s", c.StartingBalance))
	}
	if c.DefaultStock < 0 {
		errs = append(errs, fmt.Errorf("DEFAULT_STOCK must not be negative, got %d", c.DefaultStock))
	}
	if c.JournalQueueSize <= 0 {
		errs = append(errs, fmt.Errorf("JOURNAL_QUEUE_SIZE must be positive, got %d", c.JournalQueueSize))
	}
	if c.JournalWorkers <= 0 {
		errs = append(errs, fmt.Errorf("JOURNAL_WORKERS must be positive, got %d", c.JournalWorkers))
	}
	return errors.Join(errs...)
}

func (c *Config) JournalEnabled() bool {
	return c.MySQLDSN != "" || c.RedisAddr != "" || len(c.KafkaBrokers) > 0
}
