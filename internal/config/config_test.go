package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.StorageDriver)
	assert.Equal(t, "table:events", cfg.OutboxStream)
	assert.Equal(t, 5*time.Second, cfg.PublisherPollInterval)
	assert.Equal(t, 10, cfg.PublisherBatchSize)
	assert.Equal(t, "sola-table", cfg.AuthIssuer)
	assert.Equal(t, 1.0, cfg.OTelSampleRatio)
	assert.Equal(t, "dev", cfg.ServiceVersion)
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=postgres dbname=solatable sslmode=disable",
		cfg.PostgresDSN())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("PUBLISHER_POLL_INTERVAL", "250ms")
	t.Setenv("OTEL_SAMPLE_RATIO", "0.1")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.StorageDriver)
	assert.Equal(t, "/tmp/x.db", cfg.SQLitePath)
	assert.Equal(t, 250*time.Millisecond, cfg.PublisherPollInterval)
	assert.Contains(t, cfg.PostgresDSN(), "host=db.internal")
	assert.Equal(t, 0.1, cfg.OTelSampleRatio)
}

func TestLoadConfig_DatabaseURLWins(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@h:5432/d")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@h:5432/d", cfg.PostgresDSN())
}

func TestLoadConfig_UnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "cassandra")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "STORAGE_DRIVER")
}
