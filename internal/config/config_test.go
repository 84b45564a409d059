package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8001", cfg.AuthURL)
	assert.Equal(t, "http://127.0.0.1:8002", cfg.CatalogURL)
	assert.Equal(t, "http://127.0.0.1:8003", cfg.CartURL)
	assert.Equal(t, "http://127.0.0.1:8005", cfg.OrderURL)
	assert.Equal(t, "sqlite", cfg.SessionBackend)
	assert.Equal(t, time.Duration(0), cfg.RequestTimeout)
	assert.False(t, cfg.BreakerEnabled)
	assert.Equal(t, uint32(5), cfg.BreakerFailures)
	assert.Equal(t, 120*time.Minute, cfg.FakeShopTTL)
	assert.Empty(t, cfg.ActivitySink)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("STOREFRONT_CART_URL", "http://cart.internal:9000/")
	t.Setenv("STOREFRONT_SESSION_BACKEND", "redis")
	t.Setenv("STOREFRONT_REQUEST_TIMEOUT", "3s")
	t.Setenv("STOREFRONT_BREAKER_ENABLED", "true")
	t.Setenv("STOREFRONT_KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "http://cart.internal:9000", cfg.CartURL)
	assert.Equal(t, "redis", cfg.SessionBackend)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.BreakerEnabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers())
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("STOREFRONT_LOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("STOREFRONT_LOG_LEVEL") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestUseBaseURL(t *testing.T) {
	cfg := &Config{}
	cfg.UseBaseURL("http://127.0.0.1:8080/")

	assert.Equal(t, "http://127.0.0.1:8080", cfg.AuthURL)
	assert.Equal(t, cfg.AuthURL, cfg.CatalogURL)
	assert.Equal(t, cfg.AuthURL, cfg.CartURL)
	assert.Equal(t, cfg.AuthURL, cfg.OrderURL)
}
