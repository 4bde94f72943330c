package config_test

import (
	"testing"
	"time"

	"flavorfix/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	cfg := config.FromViper(v)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.StorageDriver)
	assert.Equal(t, 30*24*time.Hour, cfg.JWTExpire)
	assert.Equal(t, 5*time.Minute, cfg.OTP.TTL)
	assert.Equal(t, 3, cfg.OTP.MaxAttempts)
	assert.Equal(t, 500.0, cfg.Order.FreeDeliveryThreshold)
	assert.Equal(t, 40.0, cfg.Order.DeliveryFee)
	assert.Equal(t, 45*time.Minute, cfg.Order.EstimatedDelivery)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("DELIVERY_FEE", "25")

	v := viper.New()
	config.SetDefaults(v)
	v.AutomaticEnv()
	cfg := config.FromViper(v)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "memory", cfg.StorageDriver)
	assert.Equal(t, 25.0, cfg.Order.DeliveryFee)
}

func TestParseExpire(t *testing.T) {
	fallback := time.Hour
	assert.Equal(t, 30*24*time.Hour, config.ParseExpire("30d", fallback))
	assert.Equal(t, 12*time.Hour, config.ParseExpire("12h", fallback))
	assert.Equal(t, fallback, config.ParseExpire("", fallback))
	assert.Equal(t, fallback, config.ParseExpire("soon", fallback))
	assert.Equal(t, fallback, config.ParseExpire("-5d", fallback))
}
