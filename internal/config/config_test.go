package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("CORS_ALLOW_METHODS", "")
	t.Setenv("NOTIFY_QUEUE_SIZE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverDynamoDB, cfg.Store.Driver)
	assert.Equal(t, "tickets", cfg.Dynamo.Table)
	assert.Equal(t, "*", cfg.CORS.AllowOrigin)
	assert.Contains(t, cfg.CORS.AllowMethods, "PATCH")
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, 64, cfg.Notification.QueueSize)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("CORS_ALLOW_HEADERS", " X-Trace , Content-Type ,")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("NOTIFY_QUEUE_SIZE", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, []string{"X-Trace", "Content-Type"}, cfg.CORS.AllowHeaders)
	assert.Zero(t, cfg.App.RequestTimeout())
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, 5, cfg.Notification.QueueSize)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("POSTGRES_DSN", "")
	_, err = Load()
	assert.Error(t, err)
}
