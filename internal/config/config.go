// Package config provides environment configuration management.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds all environment configuration for the application.
type Config struct {
	Port                  string        `env:"PORT"                    envDefault:"8080"`
	StorageDriver         string        `env:"STORAGE_DRIVER"          envDefault:"postgres"`
	Postgres              Postgres      `envPrefix:"DB_"`
	DatabaseURL           string        `env:"DATABASE_URL"`
	SQLitePath            string        `env:"SQLITE_PATH"             envDefault:"sola-table.db"`
	RedisAddr             string        `env:"REDIS_ADDR"              envDefault:"localhost:6379"`
	OutboxStream          string        `env:"OUTBOX_STREAM"           envDefault:"table:events"`
	PublisherPollInterval time.Duration `env:"PUBLISHER_POLL_INTERVAL" envDefault:"5s"`
	PublisherBatchSize    int           `env:"PUBLISHER_BATCH_SIZE"    envDefault:"10"`
	AuthSecret            string        `env:"AUTH_SECRET"`
	AuthIssuer            string        `env:"AUTH_ISSUER"             envDefault:"sola-table"`
	OTelEndpoint          string        `env:"OTEL_ENDPOINT"`
	OTelSampleRatio       float64       `env:"OTEL_SAMPLE_RATIO"       envDefault:"1"`
	ServiceVersion        string        `env:"SERVICE_VERSION"         envDefault:"dev"`
	LogLevel              string        `env:"LOG_LEVEL"               envDefault:"info"`
	ShutdownTimeout       time.Duration `env:"SHUTDOWN_TIMEOUT"        envDefault:"10s"`
}

// Postgres holds connection settings used when DATABASE_URL is not set.
type Postgres struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     string `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"postgres"`
	Password string `env:"PASSWORD" envDefault:"postgres"`
	DBName   string `env:"NAME"     envDefault:"solatable"`
	SSLMode  string `env:"SSLMODE"  envDefault:"disable"`
}

// DSN builds a libpq-compatible connection string.
func (p Postgres) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode,
	)
}

// PostgresDSN returns DATABASE_URL when set, otherwise the DSN assembled from DB_* variables.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.Postgres.DSN()
}

// LoadConfig parses environment variables into Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	switch cfg.StorageDriver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	return cfg, nil
}
