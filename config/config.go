package config

import (
	"os"
	"strconv"
	"time"

	"rentease/internal/services/razorpay"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Razorpay configuration
	Razorpay razorpay.Config

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// Payment configuration
	PaymentSessionTTL  time.Duration
	GatewayCallTimeout time.Duration
	ConfirmLockTTL     time.Duration

	// Reconciler configuration
	ReconcileInterval  time.Duration
	ReconcileBatchSize int

	// Rate limiting
	PaymentRateLimit       int
	PaymentRateLimitWindow time.Duration

	// Monitoring
	EnableMetrics bool
	MetricsPort   int
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// Razorpay
		Razorpay: razorpay.Config{
			BaseURL:       getEnv("RAZORPAY_BASE_URL", ""),
			KeyID:         getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret:     getEnv("RAZORPAY_KEY_SECRET", ""),
			WebhookSecret: getEnv("RAZORPAY_WEBHOOK_SECRET", ""),
			Currency:      getEnv("RAZORPAY_CURRENCY", "INR"),
		},

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// Payments
		PaymentSessionTTL:  getEnvAsDuration("PAYMENT_SESSION_TTL", "10m"),
		GatewayCallTimeout: getEnvAsDuration("GATEWAY_CALL_TIMEOUT", "15s"),
		ConfirmLockTTL:     getEnvAsDuration("CONFIRM_LOCK_TTL", "30s"),

		// Reconciler
		ReconcileInterval:  getEnvAsDuration("RECONCILE_INTERVAL", "1m"),
		ReconcileBatchSize: getEnvAsInt("RECONCILE_BATCH_SIZE", 200),

		// Rate limiting
		PaymentRateLimit:       getEnvAsInt("PAYMENT_RATE_LIMIT", 30),
		PaymentRateLimitWindow: getEnvAsDuration("PAYMENT_RATE_LIMIT_WINDOW", "1m"),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnvAsInt("METRICS_PORT", 9090),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, fall back to the default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
