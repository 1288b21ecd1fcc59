package booking

import (
	"context"
	"time"

	"seabook/models"
	"seabook/services/reservation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBooking submits the held basket to the provider and persists the
// local booking record. The passenger list must match the composition fixed
// at session creation; the check runs before any provider call.
func (s *DefaultBookingSessionService) CreateBooking(ctx context.Context, sessionID string, passengers []models.Passenger, contact models.ContactDetails) (*models.Booking, error) {
	session, err := s.loadLive(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State != models.SessionBasketed {
		return nil, NewBookingError(CodeInvalidState, "booking session %s is %s, expected %s", sessionID, session.State, models.SessionBasketed)
	}
	if session.Basket == nil || session.Basket.CommittedPrice <= 0 {
		return nil, NewBookingError(CodeInvalidState, "booking session %s holds no priced basket item", sessionID)
	}
	if expected := session.Passengers.Total(); len(passengers) != expected {
		return nil, NewBookingError(CodePassengerMismatch,
			"got %d passenger records for a session created with %d passengers", len(passengers), expected)
	}

	var accepted models.Booking
	err = s.Exec.Do(ctx, "create_booking", func(ctx context.Context, token string) error {
		res, err := s.Provider.CreateBooking(ctx, token, session.ProviderSessionHandle, passengers, contact)
		if err != nil {
			return err
		}
		totalAmount := res.TotalAmount
		if totalAmount <= 0 {
			totalAmount = session.Basket.CommittedPrice
		}
		currency := res.Currency
		if currency == "" {
			currency = session.Basket.Currency
		}
		accepted = models.Booking{
			ID:                uuid.New().String(),
			BookingSessionID:  session.ID,
			ProviderBookingID: res.ProviderBookingID,
			CruiseReference:   session.CruiseReference,
			Passengers:        passengers,
			Contact:           contact,
			// Copied, not referenced: later basket mutation must never
			// reach into a completed booking.
			BasketSnapshot: *session.Basket,
			TotalAmount:    totalAmount,
			DepositAmount:  res.DepositAmount,
			Currency:       currency,
			Status:         models.BookingConfirmed,
			CreatedAt:      time.Now(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// From here the provider holds a live reservation. Local failures are
	// reconciliation anomalies, not reasons to pretend the booking does
	// not exist.
	if err := s.Bookings.Create(ctx, accepted); err != nil {
		s.flagReconciliation(&accepted, "local booking persistence failed", err)
	}

	if _, err := s.mutate(ctx, sessionID, func(sess *models.BookingSession) error {
		sess.State = models.SessionBooked
		return nil
	}); err != nil {
		s.flagReconciliation(&accepted, "session state transition to Booked failed", err)
	}

	s.Logger.Info("booking created",
		zap.String("bookingId", accepted.ID),
		zap.String("providerBookingId", accepted.ProviderBookingID),
		zap.Float64("totalAmount", accepted.TotalAmount))
	return &accepted, nil
}

// flagReconciliation records that provider and local state diverged after
// money or holds moved. Logged and queued, never silently dropped.
func (s *DefaultBookingSessionService) flagReconciliation(booking *models.Booking, reason string, cause error) {
	s.Logger.Error("reconciliation required: provider accepted booking but local state is behind",
		zap.String("bookingId", booking.ID),
		zap.String("providerBookingId", booking.ProviderBookingID),
		zap.String("reason", reason),
		zap.Error(cause))
	if s.Tasks == nil {
		return
	}
	payload := models.ReconcilePayload{
		SessionID:         booking.BookingSessionID,
		ProviderBookingID: booking.ProviderBookingID,
		CruiseReference:   booking.CruiseReference,
		TotalAmount:       booking.TotalAmount,
		FailedAt:          time.Now(),
		Reason:            reason,
	}
	if err := s.Tasks.EnqueueReconcile(payload); err != nil {
		s.Logger.Error("failed to enqueue reconciliation task",
			zap.String("bookingId", booking.ID), zap.Error(err))
	}
}

// parkPendingPayment marks a booking as awaiting payment after a failed or
// unsettled payment attempt.
func (s *DefaultBookingSessionService) parkPendingPayment(ctx context.Context, bookingID string, booking *models.Booking) {
	if err := s.Bookings.UpdateStatus(ctx, bookingID, models.BookingPendingPayment); err != nil {
		s.Logger.Error("failed to mark booking pending payment",
			zap.String("bookingId", bookingID), zap.Error(err))
	}
	booking.Status = models.BookingPendingPayment
}

// ProcessPayment submits the deposit for an accepted booking. A failure
// parks the booking at PendingPayment: this component cannot un-make a
// remote reservation, so it never cancels on payment failure.
func (s *DefaultBookingSessionService) ProcessPayment(ctx context.Context, bookingID string, payment models.PaymentRequest) (*models.Booking, error) {
	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, NewBookingError(CodeBookingNotFound, "booking %s not found", bookingID)
	}
	if booking.Status == models.BookingCancelled {
		return nil, NewBookingError(CodeInvalidState, "booking %s is cancelled", bookingID)
	}

	var reference string
	var accepted bool
	err = s.Exec.Do(ctx, "submit_payment", func(ctx context.Context, token string) error {
		res, err := s.Provider.SubmitPayment(ctx, token, booking.ProviderBookingID, payment)
		if err != nil {
			return err
		}
		reference = res.Reference
		accepted = res.Status == reservation.PaymentAccepted
		return nil
	})

	if err != nil {
		// Transport failure or cancellation: the provider may or may not
		// have taken the money. Park the booking and say so, rather than
		// reporting a decline that never happened.
		s.parkPendingPayment(ctx, bookingID, booking)
		s.Logger.Warn("payment outcome unknown, booking remains reserved",
			zap.String("bookingId", bookingID), zap.Error(err))
		return booking, &BookingError{Code: CodePaymentUnsettled, Message: "deposit payment did not reach a settled outcome", Err: err}
	}
	if !accepted {
		s.parkPendingPayment(ctx, bookingID, booking)
		s.Logger.Warn("payment declined, booking remains reserved",
			zap.String("bookingId", bookingID))
		return booking, NewBookingError(CodePaymentFailed, "deposit payment was not accepted")
	}

	summary := models.PaymentSummary{
		ProviderPaymentRef: reference,
		AmountPaid:         payment.Amount,
		Currency:           payment.Currency,
		PaidAt:             time.Now(),
	}
	if err := s.Bookings.SetPayment(ctx, bookingID, summary, models.BookingConfirmed); err != nil {
		s.flagReconciliation(booking, "payment accepted by provider but local record update failed", err)
	}
	booking.Payment = &summary
	booking.Status = models.BookingConfirmed

	s.Logger.Info("deposit payment recorded",
		zap.String("bookingId", bookingID),
		zap.Float64("amount", payment.Amount))
	return booking, nil
}
