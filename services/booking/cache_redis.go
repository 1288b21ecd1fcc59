package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"seabook/models"

	"github.com/go-redis/redis/v8"
)

// redisSessionCache stores booking sessions as JSON blobs with the
// provider-session TTL.
type redisSessionCache struct {
	client *redis.Client
}

// NewRedisSessionCache returns a SessionCache backed by the given client.
func NewRedisSessionCache(client *redis.Client) SessionCache {
	return &redisSessionCache{client: client}
}

func sessionKey(id string) string { return "bsession:" + id }

func (c *redisSessionCache) Get(ctx context.Context, id string) (*models.BookingSession, error) {
	data, err := c.client.Get(ctx, sessionKey(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s from cache: %w", id, err)
	}
	var session models.BookingSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to parse cached session %s: %w", id, err)
	}
	return &session, nil
}

func (c *redisSessionCache) Set(ctx context.Context, session models.BookingSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session %s: %w", session.ID, err)
	}
	if err := c.client.Set(ctx, sessionKey(session.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache session %s: %w", session.ID, err)
	}
	return nil
}

func (c *redisSessionCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, sessionKey(id)).Err()
}

// redisQuoteCache stores quote sets under short TTLs. A plain SET keeps
// population idempotent; racing duplicate populates are harmless.
type redisQuoteCache struct {
	client *redis.Client
}

// NewRedisQuoteCache returns a QuoteCache backed by the given client.
func NewRedisQuoteCache(client *redis.Client) QuoteCache {
	return &redisQuoteCache{client: client}
}

func (c *redisQuoteCache) Get(ctx context.Context, key string) ([]models.CabinGradeQuote, bool, error) {
	data, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read quotes %s from cache: %w", key, err)
	}
	var quotes []models.CabinGradeQuote
	if err := json.Unmarshal([]byte(data), &quotes); err != nil {
		return nil, false, fmt.Errorf("failed to parse cached quotes %s: %w", key, err)
	}
	return quotes, true, nil
}

func (c *redisQuoteCache) Set(ctx context.Context, key string, quotes []models.CabinGradeQuote, ttl time.Duration) error {
	data, err := json.Marshal(quotes)
	if err != nil {
		return fmt.Errorf("failed to marshal quotes %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache quotes %s: %w", key, err)
	}
	return nil
}
