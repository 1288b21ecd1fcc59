package auth

import (
	"context"
	"sync"
	"time"

	"seabook/config"
	"seabook/services/resilience"

	"github.com/golang-jwt/jwt"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// TokenResponse is the provider's client-credential exchange result.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Exchanger performs the provider's client-credential exchange.
type Exchanger interface {
	ExchangeCredentials(ctx context.Context) (TokenResponse, error)
}

// Credential is the process-wide bearer credential for one provider account.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

const refreshAttempts = 2

// Cache lazily refreshes the provider credential. All concurrent callers of
// an expiring credential share a single in-flight refresh; the token is
// never used within the refresh margin of its expiry and never refreshed
// speculatively.
type Cache struct {
	exchanger Exchanger
	margin    time.Duration
	logger    *zap.Logger

	mu    sync.RWMutex
	cred  Credential
	group singleflight.Group
}

// NewCache returns a credential cache using the configured refresh margin.
func NewCache(exchanger Exchanger, logger *zap.Logger) *Cache {
	return &Cache{
		exchanger: exchanger,
		margin:    config.TokenRefreshMargin(),
		logger:    logger,
	}
}

// NewCacheWithMargin is NewCache with an explicit refresh margin.
func NewCacheWithMargin(exchanger Exchanger, margin time.Duration, logger *zap.Logger) *Cache {
	return &Cache{exchanger: exchanger, margin: margin, logger: logger}
}

// GetToken returns the cached token, refreshing it first when it is within
// the refresh margin of expiry.
func (c *Cache) GetToken(ctx context.Context) (string, error) {
	if token, ok := c.current(); ok {
		return token, nil
	}

	v, err, _ := c.group.Do("refresh", func() (interface{}, error) {
		// A caller that queued behind the winning flight sees the fresh
		// credential here and skips the exchange entirely.
		if token, ok := c.current(); ok {
			return token, nil
		}
		return c.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops the cached credential so the next GetToken refreshes.
// Used by the resilience layer when the provider rejects a token early.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.cred = Credential{}
	c.mu.Unlock()
}

func (c *Cache) current() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cred.Token == "" {
		return "", false
	}
	if !time.Now().Before(c.cred.ExpiresAt.Add(-c.margin)) {
		return "", false
	}
	return c.cred.Token, true
}

func (c *Cache) refresh(ctx context.Context) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= refreshAttempts; attempt++ {
		resp, err := c.exchanger.ExchangeCredentials(ctx)
		if err != nil {
			lastErr = err
			c.logger.Warn("credential exchange failed",
				zap.Int("attempt", attempt), zap.Error(err))
			if ctx.Err() != nil {
				// The caller is gone; a second exchange would be wasted.
				break
			}
			continue
		}

		cred := Credential{
			Token:     resp.AccessToken,
			ExpiresAt: expiryFor(resp),
		}
		c.mu.Lock()
		c.cred = cred
		c.mu.Unlock()

		c.logger.Info("provider credential refreshed",
			zap.Time("expiresAt", cred.ExpiresAt))
		return cred.Token, nil
	}
	return "", &resilience.AuthError{Message: "credential exchange exhausted", Err: lastErr}
}

// expiryFor prefers the exp claim of the provider token (the tokens are
// JWTs in practice) and falls back to the advertised expires_in.
func expiryFor(resp TokenResponse) time.Time {
	if claims := parseClaims(resp.AccessToken); claims != nil {
		if exp, ok := claims["exp"].(float64); ok && exp > 0 {
			return time.Unix(int64(exp), 0)
		}
	}
	if resp.ExpiresIn > 0 {
		return time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	// Roughly hourly rotation when the provider tells us nothing.
	return time.Now().Add(time.Hour)
}

func parseClaims(token string) jwt.MapClaims {
	claims := jwt.MapClaims{}
	parser := &jwt.Parser{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}
