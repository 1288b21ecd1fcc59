package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	CORSOrigins       string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisPricingDB int    `mapstructure:"REDIS_PRICING_DB"`
	RedisTaskDB    int    `mapstructure:"REDIS_TASK_DB"`

	// Reservation provider configuration.
	ProviderBaseURL        string `mapstructure:"PROVIDER_BASE_URL"`
	ProviderClientID       string `mapstructure:"PROVIDER_CLIENT_ID"`
	ProviderClientSecret   string `mapstructure:"PROVIDER_CLIENT_SECRET"`
	ProviderTimeoutSeconds int    `mapstructure:"PROVIDER_TIMEOUT_SECONDS"`

	// Booking engine tunables.
	SessionLifetimeMinutes     int `mapstructure:"SESSION_LIFETIME_MINUTES"`
	TokenRefreshMarginSeconds  int `mapstructure:"TOKEN_REFRESH_MARGIN_SECONDS"`
	PricingCacheTTLSeconds     int `mapstructure:"PRICING_CACHE_TTL_SECONDS"`
	PricingCommitWindowSeconds int `mapstructure:"PRICING_COMMIT_WINDOW_SECONDS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 3)
	viper.SetDefault("REDIS_PRICING_DB", 4)
	viper.SetDefault("REDIS_TASK_DB", 5)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("PROVIDER_BASE_URL", "https://fusionapi.example.net/v1")
	viper.SetDefault("PROVIDER_CLIENT_ID", "")
	viper.SetDefault("PROVIDER_CLIENT_SECRET", "")
	viper.SetDefault("PROVIDER_TIMEOUT_SECONDS", 30)
	viper.SetDefault("SESSION_LIFETIME_MINUTES", 40)
	viper.SetDefault("TOKEN_REFRESH_MARGIN_SECONDS", 120)
	viper.SetDefault("PRICING_CACHE_TTL_SECONDS", 300)
	// The provider does not document a staleness window for grade pricing, so
	// the commit window is deliberately configurable.
	viper.SetDefault("PRICING_COMMIT_WINDOW_SECONDS", 60)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// CORSAllowedOrigins returns the comma-separated allowed origins list.
func CORSAllowedOrigins() []string {
	raw := AppConfig.CORSOrigins
	if raw == "" {
		raw = "*"
	}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// ProviderTimeout returns the ceiling for a single outbound provider call.
func ProviderTimeout() time.Duration {
	return time.Duration(AppConfig.ProviderTimeoutSeconds) * time.Second
}

// SessionLifetime returns the provider's fixed booking-session lifetime.
func SessionLifetime() time.Duration {
	return time.Duration(AppConfig.SessionLifetimeMinutes) * time.Minute
}

// TokenRefreshMargin returns how long before expiry a credential is refreshed.
func TokenRefreshMargin() time.Duration {
	return time.Duration(AppConfig.TokenRefreshMarginSeconds) * time.Second
}

// PricingCacheTTL returns the lifetime of a cached cabin-grade quote set.
func PricingCacheTTL() time.Duration {
	return time.Duration(AppConfig.PricingCacheTTLSeconds) * time.Second
}

// PricingCommitWindow returns the maximum quote age accepted at basket commit.
func PricingCommitWindow() time.Duration {
	return time.Duration(AppConfig.PricingCommitWindowSeconds) * time.Second
}
