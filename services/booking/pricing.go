package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"seabook/models"

	"go.uber.org/zap"
)

// GetCabinGrades returns live cabin-grade pricing for the session's cruise
// and passenger composition, served from the short-TTL cache when possible.
// An empty result from a live session is NoAvailability, a business
// outcome, not a transient failure.
func (s *DefaultBookingSessionService) GetCabinGrades(ctx context.Context, sessionID string) ([]models.CabinGradeQuote, error) {
	return s.cabinGrades(ctx, sessionID, false)
}

func (s *DefaultBookingSessionService) cabinGrades(ctx context.Context, sessionID string, bypassCache bool) ([]models.CabinGradeQuote, error) {
	session, err := s.loadLive(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	key := quoteCacheKey(session.CruiseReference, session.Passengers)
	if !bypassCache {
		cached, ok, err := s.PricingCache.Get(ctx, key)
		if err != nil {
			s.Logger.Warn("pricing cache read failed", zap.String("key", key), zap.Error(err))
		}
		if ok {
			return cached, nil
		}
	}

	var quotes []models.CabinGradeQuote
	err = s.Exec.Do(ctx, "cabin_grades", func(ctx context.Context, token string) error {
		q, err := s.Provider.ListCabinGrades(ctx, token, session.ProviderSessionHandle, session.Passengers)
		if err != nil {
			return err
		}
		quotes = q
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(quotes) == 0 {
		return nil, NewBookingError(CodeNoAvailability, "no cabin grades available for cruise %s", session.CruiseReference)
	}

	fetchedAt := time.Now()
	for i := range quotes {
		quotes[i].FetchedAt = fetchedAt
	}

	// A racing duplicate populate writes the same logical value; last write
	// wins and both are fresh.
	if err := s.PricingCache.Set(ctx, key, quotes, s.PricingTTL); err != nil {
		s.Logger.Warn("pricing cache write failed", zap.String("key", key), zap.Error(err))
	}

	if _, err := s.mutate(ctx, sessionID, func(sess *models.BookingSession) error {
		sess.Quotes = quotes
		if sess.State == models.SessionCreated {
			sess.State = models.SessionPriced
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return quotes, nil
}

// quoteCacheKey identifies one pricing entry: quotes are only valid for the
// exact cruise and passenger composition they were fetched against.
func quoteCacheKey(cruiseReference string, comp models.PassengerComposition) string {
	ages := make([]string, len(comp.ChildAges))
	for i, a := range comp.ChildAges {
		ages[i] = fmt.Sprintf("%d", a)
	}
	return fmt.Sprintf("grades:%s:a%d:c%d:%s", cruiseReference, comp.Adults, comp.Children, strings.Join(ages, "-"))
}
