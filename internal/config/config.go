package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	AppEnv  string
	AppPort string

	// DBURL is the application connection string. DBServiceURL connects as the
	// privileged role that bypasses row level security; when it is empty DBURL is used.
	DBURL        string
	DBServiceURL string

	JWTSecret        string
	JWTTTL           time.Duration
	AuthEnforceAdmin bool

	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string
	Currency              string

	RedisURL         string
	RealtimePGListen bool

	Timezone                  string
	ShippingFreeThreshold     decimal.Decimal
	ShippingFlatFee           decimal.Decimal
	DashboardQueryConcurrency int

	CORSOrigin        string
	InternalSecretKey string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:       getEnv("APP_ENV", "development"),
		AppPort:      getEnv("APP_PORT", "5000"),
		DBURL:        os.Getenv("DB_URL"),
		DBServiceURL: os.Getenv("DB_SERVICE_URL"),

		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTTTL:           getDuration("JWT_TTL", 24*time.Hour),
		AuthEnforceAdmin: getBool("AUTH_ENFORCE_ADMIN", false),

		RazorpayKeyID:         os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:     os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayWebhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
		Currency:              strings.ToUpper(getEnv("CURRENCY", "INR")),

		RedisURL:         os.Getenv("REDIS_URL"),
		RealtimePGListen: getBool("REALTIME_PG_LISTEN", false),

		Timezone:                  getEnv("APP_TIMEZONE", "Asia/Kolkata"),
		ShippingFreeThreshold:     getDecimal("SHIPPING_FREE_THRESHOLD", decimal.NewFromInt(999)),
		ShippingFlatFee:           getDecimal("SHIPPING_FLAT_FEE", decimal.NewFromInt(99)),
		DashboardQueryConcurrency: getInt("DASHBOARD_QUERY_CONCURRENCY", 4),

		CORSOrigin:        getEnv("CORS_ORIGIN", "*"),
		InternalSecretKey: os.Getenv("INTERNAL_SECRET_KEY"),

		ReadTimeout:  getDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:  getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
	}

	if cfg.DBURL == "" && cfg.DBServiceURL == "" {
		log.Fatal("Environment variables not loaded properly: DB_URL is required")
	}

	return cfg
}

// ServiceDSN is the connection string used by repositories.
func (c *Config) ServiceDSN() string {
	if c.DBServiceURL != "" {
		return c.DBServiceURL
	}
	return c.DBURL
}

// Location resolves Timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	v, err := decimal.NewFromString(os.Getenv(key))
	if err != nil || v.IsNegative() {
		return fallback
	}
	return v
}
