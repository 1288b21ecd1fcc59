package booking

import (
	"context"
	"time"

	"seabook/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SelectCabin commits a cabin grade to the provider basket. Price
// correctness is only guaranteed immediately after a grades fetch, so every
// attempt re-prices with the cache bypassed before calling basket-add, then
// validates the committed price. The basket-add call is not idempotent on
// the provider side: the re-price+commit sequence runs at most
// 1+DesyncRetries times and never blindly repeats.
func (s *DefaultBookingSessionService) SelectCabin(ctx context.Context, sessionID, gradeID, rateCode, cabinNumber string) (*models.BasketItem, error) {
	session, err := s.loadLive(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State.Terminal() {
		return nil, NewBookingError(CodeInvalidState, "booking session %s is %s and can no longer change", sessionID, session.State)
	}

	attempts := 1 + s.desyncRetries()
	for attempt := 1; attempt <= attempts; attempt++ {
		item, desynced, err := s.commitCabin(ctx, session, gradeID, rateCode, cabinNumber)
		if err != nil {
			return nil, err
		}
		if desynced {
			s.Logger.Warn("provider basket returned a zero price against a non-zero quote",
				zap.String("sessionId", sessionID),
				zap.String("gradeId", gradeID),
				zap.Int("attempt", attempt))
			continue
		}

		if _, err := s.mutate(ctx, sessionID, func(sess *models.BookingSession) error {
			sess.SelectedCabin = &item.SelectedCabin
			sess.Basket = item
			sess.State = models.SessionBasketed
			return nil
		}); err != nil {
			return nil, err
		}

		// Durable snapshot outside the ephemeral store: basket retrieval
		// can transiently come back empty after a successful add.
		if err := s.Baskets.Save(ctx, *item); err != nil {
			s.Logger.Error("failed to persist basket snapshot",
				zap.String("sessionId", sessionID), zap.Error(err))
		}

		s.Logger.Info("cabin committed to provider basket",
			zap.String("sessionId", sessionID),
			zap.String("gradeId", item.SelectedCabin.GradeID),
			zap.Float64("committedPrice", item.CommittedPrice))
		return item, nil
	}

	// Session state stays at Priced: the failure is retryable for the
	// caller without restarting the session.
	return nil, NewBookingError(CodePricingDesync,
		"provider kept returning a zero price for grade %s after %d attempts", gradeID, attempts)
}

// commitCabin runs one re-price+commit round. desynced is true when the
// provider committed a zero price against a non-zero fresh quote.
func (s *DefaultBookingSessionService) commitCabin(ctx context.Context, session *models.BookingSession, gradeID, rateCode, cabinNumber string) (*models.BasketItem, bool, error) {
	quotes, err := s.cabinGrades(ctx, session.ID, true)
	if err != nil {
		return nil, false, err
	}

	var quote *models.CabinGradeQuote
	for i := range quotes {
		if quotes[i].GradeID != gradeID {
			continue
		}
		if rateCode != "" && quotes[i].RateCode != rateCode {
			continue
		}
		quote = &quotes[i]
		break
	}
	if quote == nil {
		return nil, false, NewBookingError(CodeNoAvailability, "cabin grade %s is no longer offered for cruise %s", gradeID, session.CruiseReference)
	}
	if quote.TotalPrice <= 0 {
		// The grades endpoint itself is serving stale zero pricing; another
		// round may catch it settled.
		return nil, true, nil
	}
	if age := time.Since(quote.FetchedAt); age > s.CommitWindow {
		return nil, false, NewBookingError(CodePricingDesync, "fresh quote for grade %s is already %s old, exceeding the commit window", gradeID, age)
	}

	sel := models.CabinSelection{
		GradeID:     quote.GradeID,
		RateCode:    quote.RateCode,
		CabinType:   quote.CabinType,
		CabinNumber: cabinNumber,
	}

	var committed models.BasketItem
	err = s.Exec.Do(ctx, "basket_add", func(ctx context.Context, token string) error {
		res, err := s.Provider.AddToBasket(ctx, token, session.ProviderSessionHandle, sel)
		if err != nil {
			return err
		}
		itemKey := res.ItemKey
		if itemKey == "" {
			itemKey = uuid.New().String()
		}
		currency := res.Currency
		if currency == "" {
			currency = quote.Currency
		}
		committed = models.BasketItem{
			ItemKey:         itemKey,
			SessionID:       session.ID,
			CruiseReference: session.CruiseReference,
			SelectedCabin:   sel,
			CommittedPrice:  res.TotalPrice,
			Currency:        currency,
			CommittedAt:     time.Now(),
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if committed.CommittedPrice <= 0 {
		return nil, true, nil
	}
	return &committed, false, nil
}

// GetBasket returns the committed basket for a session. When the provider
// transiently reports an empty basket for a session that holds one, the
// last good durable snapshot is served instead.
func (s *DefaultBookingSessionService) GetBasket(ctx context.Context, sessionID string) (*models.BasketItem, error) {
	session, err := s.loadLive(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State != models.SessionBasketed && session.State != models.SessionBooked {
		return nil, NewBookingError(CodeInvalidState, "booking session %s has no committed basket", sessionID)
	}

	var lines int
	err = s.Exec.Do(ctx, "basket_get", func(ctx context.Context, token string) error {
		items, err := s.Provider.GetBasket(ctx, token, session.ProviderSessionHandle)
		if err != nil {
			return err
		}
		lines = len(items)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if lines > 0 && session.Basket != nil {
		return session.Basket, nil
	}

	snapshot, err := s.Baskets.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if snapshot != nil && snapshot.CommittedPrice > 0 {
		if lines == 0 {
			s.Logger.Warn("provider returned an empty basket for a basketed session, serving snapshot",
				zap.String("sessionId", sessionID))
		}
		return snapshot, nil
	}

	return nil, NewBookingError(CodeBasketUnavailable, "no basket available for session %s", sessionID)
}
