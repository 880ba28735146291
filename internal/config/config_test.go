package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Success loading from env", func(t *testing.T) {
		t.Setenv("APP_ENV", "test")
		t.Setenv("APP_PORT", "8080")
		t.Setenv("DB_URL", "postgres://app@localhost/irokart")
		t.Setenv("DB_SERVICE_URL", "postgres://service@localhost/irokart")
		t.Setenv("JWT_SECRET", "jwt-secret")
		t.Setenv("JWT_TTL", "2h")
		t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
		t.Setenv("RAZORPAY_KEY_SECRET", "rzp_secret")
		t.Setenv("CURRENCY", "inr")
		t.Setenv("AUTH_ENFORCE_ADMIN", "true")
		t.Setenv("SHIPPING_FREE_THRESHOLD", "1500")
		t.Setenv("DASHBOARD_QUERY_CONCURRENCY", "8")

		cfg := LoadConfig()

		assert.NotNil(t, cfg)
		assert.Equal(t, "test", cfg.AppEnv)
		assert.Equal(t, "8080", cfg.AppPort)
		assert.Equal(t, "postgres://service@localhost/irokart", cfg.ServiceDSN())
		assert.Equal(t, "jwt-secret", cfg.JWTSecret)
		assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
		assert.Equal(t, "rzp_test_key", cfg.RazorpayKeyID)
		assert.Equal(t, "rzp_secret", cfg.RazorpayKeySecret)
		assert.Equal(t, "INR", cfg.Currency)
		assert.True(t, cfg.AuthEnforceAdmin)
		assert.True(t, decimal.NewFromInt(1500).Equal(cfg.ShippingFreeThreshold))
		assert.True(t, decimal.NewFromInt(99).Equal(cfg.ShippingFlatFee))
		assert.Equal(t, 8, cfg.DashboardQueryConcurrency)
	})

	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("DB_URL", "postgres://app@localhost/irokart")
		t.Setenv("DB_SERVICE_URL", "")
		t.Setenv("APP_PORT", "")
		t.Setenv("JWT_TTL", "not-a-duration")
		t.Setenv("APP_TIMEZONE", "")

		cfg := LoadConfig()

		assert.Equal(t, "5000", cfg.AppPort)
		assert.Equal(t, "postgres://app@localhost/irokart", cfg.ServiceDSN())
		assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
		assert.Equal(t, "Asia/Kolkata", cfg.Timezone)
	})
}

func TestLocation(t *testing.T) {
	cfg := &Config{Timezone: "Asia/Kolkata"}
	assert.Equal(t, "Asia/Kolkata", cfg.Location().String())

	cfg.Timezone = "Mars/Olympus"
	assert.Equal(t, time.UTC, cfg.Location())
}
