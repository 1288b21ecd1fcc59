package resilience

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// TokenSource supplies the provider bearer credential for outbound calls.
type TokenSource interface {
	GetToken(ctx context.Context) (string, error)
	Invalidate()
}

const (
	defaultMaxRetries  = 3
	defaultBackoffBase = 1 * time.Second
	defaultJitter      = 250 * time.Millisecond
)

// Executor wraps outbound provider calls with the shared failure policy:
// refresh-once on auth faults, bounded exponential backoff on transient
// faults, immediate failure on application-level session expiry, and
// cancellation checks before every attempt.
type Executor struct {
	Tokens TokenSource
	Logger *zap.Logger

	// MaxRetries bounds transient retries (not the initial attempt).
	MaxRetries int
	// BackoffBase is the first retry delay; each further retry doubles it.
	BackoffBase time.Duration
	// Jitter is the upper bound of the random delay added to each backoff.
	Jitter time.Duration
}

// NewExecutor returns an Executor with the production retry policy
// (3 retries, 1s/2s/4s backoff plus jitter).
func NewExecutor(tokens TokenSource, logger *zap.Logger) *Executor {
	return &Executor{
		Tokens:      tokens,
		Logger:      logger,
		MaxRetries:  defaultMaxRetries,
		BackoffBase: defaultBackoffBase,
		Jitter:      defaultJitter,
	}
}

func (e *Executor) maxRetries() int {
	if e.MaxRetries > 0 {
		return e.MaxRetries
	}
	return defaultMaxRetries
}

func (e *Executor) backoffBase() time.Duration {
	if e.BackoffBase > 0 {
		return e.BackoffBase
	}
	return defaultBackoffBase
}

// Do runs call with a valid bearer token under the shared failure policy.
// The call must wrap retryable failures in TransientFault and auth-status
// failures in AuthFault; everything else is treated as permanent.
func (e *Executor) Do(ctx context.Context, op string, call func(ctx context.Context, token string) error) error {
	authRetried := false
	retries := 0

	for {
		if err := ctx.Err(); err != nil {
			return &CancelledError{Op: op, Err: err}
		}

		token, err := e.Tokens.GetToken(ctx)
		if err != nil {
			return err
		}

		err = call(ctx, token)
		if err == nil {
			return nil
		}

		var authFault *AuthFault
		if errors.As(err, &authFault) {
			if authRetried {
				e.logger().Warn("provider rejected refreshed credential",
					zap.String("op", op), zap.Int("status", authFault.StatusCode))
				return &SessionInvalidError{Op: op}
			}
			authRetried = true
			e.Tokens.Invalidate()
			continue
		}

		var expired *SessionExpiredError
		if errors.As(err, &expired) {
			// Retrying with a dead provider session can only waste the
			// remaining budget.
			return err
		}

		var transient *TransientFault
		if errors.As(err, &transient) {
			if retries >= e.maxRetries() {
				return &TransientError{Op: op, Attempts: retries + 1, Err: transient.Err}
			}
			delay := e.backoffBase() << retries
			if e.Jitter > 0 {
				delay += time.Duration(rand.Int63n(int64(e.Jitter)))
			}
			e.logger().Debug("retrying provider call",
				zap.String("op", op), zap.Int("retry", retries+1), zap.Duration("delay", delay),
				zap.Error(transient.Err))
			if err := sleepCtx(ctx, delay); err != nil {
				return &CancelledError{Op: op, Err: err}
			}
			retries++
			continue
		}

		return err
	}
}

func (e *Executor) logger() *zap.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return zap.NewNop()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
