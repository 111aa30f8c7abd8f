package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, BackendMongo, cfg.StoreBackend)
	assert.Equal(t, "tourly", cfg.DatabaseName)
	assert.Equal(t, 10*time.Second, cfg.BookingTxTimeout)
	assert.Equal(t, 5, cfg.BookingMaxAttempts)
	assert.False(t, cfg.BookingStrictPricing)
	assert.False(t, cfg.BookingReleaseSeatsOnCancel)
	assert.Equal(t, 24*time.Hour, cfg.ReminderLeadTime)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORE_BACKEND", BackendMemory)
	t.Setenv("BOOKING_STRICT_PRICING", "true")
	t.Setenv("BOOKING_TX_TIMEOUT", "3s")
	t.Setenv("MAX_REQUESTS_PER_MIN", "42")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.True(t, cfg.BookingStrictPricing)
	assert.Equal(t, 3*time.Second, cfg.BookingTxTimeout)
	assert.Equal(t, 42, cfg.MaxRequestsPerMin)
}

func TestIsProduction(t *testing.T) {
	prev := AppConfig
	t.Cleanup(func() { AppConfig = prev })

	AppConfig.Env = "production"
	assert.True(t, IsProduction())
	AppConfig.Env = "development"
	assert.False(t, IsProduction())
}
