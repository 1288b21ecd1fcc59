package booking

import (
	"context"
	"fmt"
	"time"

	"seabook/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateSession opens a provider session for the cruise and records it in
// both halves of the session store. The expiry window always equals the
// provider's fixed session lifetime.
func (s *DefaultBookingSessionService) CreateSession(ctx context.Context, comp models.PassengerComposition, cruiseReference string) (*models.BookingSession, error) {
	if comp.Adults < 1 {
		return nil, NewBookingError(CodeInvalidState, "at least one adult is required")
	}
	if comp.Children != len(comp.ChildAges) {
		return nil, NewBookingError(CodeInvalidState, "child count %d does not match %d child ages", comp.Children, len(comp.ChildAges))
	}

	summary, err := s.Catalog.SearchCruiseByReference(ctx, cruiseReference)
	if err != nil {
		return nil, fmt.Errorf("catalog lookup failed: %w", err)
	}
	if summary == nil {
		return nil, NewBookingError(CodeCruiseNotFound, "cruise %s is not in the catalog", cruiseReference)
	}

	var handle string
	err = s.Exec.Do(ctx, "open_session", func(ctx context.Context, token string) error {
		h, err := s.Provider.OpenSession(ctx, token, cruiseReference, comp)
		if err != nil {
			return err
		}
		handle = h
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := models.BookingSession{
		ID:                    uuid.New().String(),
		ProviderSessionHandle: handle,
		CruiseReference:       cruiseReference,
		Passengers:            comp,
		State:                 models.SessionCreated,
		CreatedAt:             now,
		ExpiresAt:             now.Add(s.SessionLifetime),
	}

	if err := s.Sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to persist booking session: %w", err)
	}
	if err := s.SessionCache.Set(ctx, session, s.SessionLifetime); err != nil {
		// The durable store already has it; the next read repopulates.
		s.Logger.Warn("failed to cache new booking session",
			zap.String("sessionId", session.ID), zap.Error(err))
	}

	s.Logger.Info("booking session created",
		zap.String("sessionId", session.ID),
		zap.String("cruiseReference", cruiseReference),
		zap.Int("adults", comp.Adults), zap.Int("children", comp.Children))
	return &session, nil
}

// GetSession returns a live session. Expired sessions are tombstoned and
// surfaced as CodeSessionExpired, never returned as live.
func (s *DefaultBookingSessionService) GetSession(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	return s.loadLive(ctx, sessionID)
}

// loadLive fetches a session cache-first and enforces expiry on access.
func (s *DefaultBookingSessionService) loadLive(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if expired, err := s.expireIfDue(ctx, session); expired {
		return nil, err
	}
	return session, nil
}

func (s *DefaultBookingSessionService) load(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	session, err := s.SessionCache.Get(ctx, sessionID)
	if err != nil {
		s.Logger.Warn("session cache read failed, falling back to durable store",
			zap.String("sessionId", sessionID), zap.Error(err))
	}
	if session != nil {
		return session, nil
	}

	session, err = s.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking session: %w", err)
	}
	if session == nil {
		return nil, NewBookingError(CodeSessionNotFound, "booking session %s not found", sessionID)
	}

	// Cache-aside repopulate with whatever lifetime remains.
	if remaining := time.Until(session.ExpiresAt); remaining > 0 {
		if err := s.SessionCache.Set(ctx, *session, remaining); err != nil {
			s.Logger.Warn("failed to repopulate session cache",
				zap.String("sessionId", sessionID), zap.Error(err))
		}
	}
	return session, nil
}

// expireIfDue tombstones a session past its provider lifetime. Returns true
// with the expiry error when the session must not be used.
func (s *DefaultBookingSessionService) expireIfDue(ctx context.Context, session *models.BookingSession) (bool, error) {
	if !session.ExpiredAt(time.Now()) {
		return false, nil
	}
	if session.State == models.SessionExpired {
		return true, NewBookingError(CodeSessionExpired, "booking session %s has expired", session.ID)
	}
	if !session.State.Terminal() {
		session.State = models.SessionExpired
		if err := s.Sessions.Update(ctx, *session); err != nil {
			s.Logger.Warn("failed to tombstone expired session",
				zap.String("sessionId", session.ID), zap.Error(err))
		}
		if err := s.SessionCache.Delete(ctx, session.ID); err != nil {
			s.Logger.Warn("failed to evict expired session from cache",
				zap.String("sessionId", session.ID), zap.Error(err))
		}
	}
	return true, NewBookingError(CodeSessionExpired, "booking session %s has expired", session.ID)
}

// mutate applies fn to the session under its per-session lock and writes
// both stores. Terminal sessions are immutable; expiry wins any race with a
// concurrent mutation.
func (s *DefaultBookingSessionService) mutate(ctx context.Context, sessionID string, fn func(*models.BookingSession) error) (*models.BookingSession, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.loadLive(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State.Terminal() {
		return nil, NewBookingError(CodeInvalidState, "booking session %s is %s and can no longer change", sessionID, session.State)
	}

	if err := fn(session); err != nil {
		return nil, err
	}

	if err := s.Sessions.Update(ctx, *session); err != nil {
		return nil, fmt.Errorf("failed to persist booking session update: %w", err)
	}
	if remaining := time.Until(session.ExpiresAt); remaining > 0 {
		if err := s.SessionCache.Set(ctx, *session, remaining); err != nil {
			s.Logger.Warn("failed to refresh session cache after update",
				zap.String("sessionId", sessionID), zap.Error(err))
		}
	}
	return session, nil
}
