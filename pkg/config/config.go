package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	Environment     string
	FirebaseProject string
	DatabaseURL     string

	StripeSecretKey     string
	StripeWebhookSecret string

	// Checkout return-origin handling. A hosted session needs an exact,
	// pre-registered return URL, so callers from unknown origins fall back
	// to DefaultCheckoutOrigin.
	DefaultCheckoutOrigin  string
	AllowedCheckoutOrigins []string

	CheckoutTimeout time.Duration
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		FirebaseProject: getEnv("FIREBASE_PROJECT_ID", ""),
		DatabaseURL:     getEnv("FIREBASE_DATABASE_URL", ""),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),

		DefaultCheckoutOrigin:  getEnv("DEFAULT_CHECKOUT_ORIGIN", "http://localhost:3000"),
		AllowedCheckoutOrigins: getEnvAsSlice("ALLOWED_CHECKOUT_ORIGINS", nil),

		CheckoutTimeout: time.Duration(getEnvAsInt64("CHECKOUT_TIMEOUT_SECONDS", 15)) * time.Second,
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
