// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"seabook/config"

	"github.com/go-redis/redis/v8"
)

var (
	// SessionCacheClient holds live booking sessions (fast path of the
	// dual-store session repository).
	SessionCacheClient *redis.Client
	// PricingCacheClient holds short-TTL cabin-grade quote sets.
	PricingCacheClient *redis.Client
)

// InitSessionCache initializes the Redis client for booking-session caching.
func InitSessionCache() {
	SessionCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSessionDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := SessionCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Session Cache): %v", err)
	}
}

// GetSessionCacheClient returns the booking-session cache client.
func GetSessionCacheClient() *redis.Client {
	if SessionCacheClient == nil {
		InitSessionCache()
	}
	return SessionCacheClient
}

// InitPricingCache initializes the Redis client for pricing caching.
func InitPricingCache() {
	PricingCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisPricingDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := PricingCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Pricing Cache): %v", err)
	}
}

// GetPricingCacheClient returns the pricing cache client.
func GetPricingCacheClient() *redis.Client {
	if PricingCacheClient == nil {
		InitPricingCache()
	}
	return PricingCacheClient
}

// InitRedis initializes all Redis clients up front.
func InitRedis() {
	InitSessionCache()
	InitPricingCache()
}
