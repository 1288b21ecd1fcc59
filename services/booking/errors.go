package booking

import (
	"errors"
	"fmt"
)

// Error codes surfaced by the booking engine. The caller layer picks UX per
// code: sold-out renders differently from try-again, and session expiry
// differently from both.
const (
	CodeCruiseNotFound    = "cruiseNotFound"
	CodeSessionNotFound   = "sessionNotFound"
	CodeSessionExpired    = "sessionExpired"
	CodeInvalidState      = "invalidState"
	CodeNoAvailability    = "noAvailability"
	CodePricingDesync     = "pricingDesync"
	CodePassengerMismatch = "passengerMismatch"
	CodeBasketUnavailable = "basketUnavailable"
	CodeBookingNotFound   = "bookingNotFound"
	CodePaymentFailed     = "paymentFailed"
	// CodePaymentUnsettled means the payment call never reached a provider
	// verdict: the charge may or may not have gone through. Callers must not
	// render it as a declined card.
	CodePaymentUnsettled = "paymentUnsettled"
)

// BookingError is a typed business outcome from the booking engine.
type BookingError struct {
	Code    string
	Message string
	Err     error
}

func (e *BookingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BookingError) Unwrap() error { return e.Err }

// NewBookingError builds a BookingError with the given code.
func NewBookingError(code, format string, args ...interface{}) *BookingError {
	return &BookingError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// HasCode reports whether err is a BookingError carrying the given code.
func HasCode(err error, code string) bool {
	var be *BookingError
	return errors.As(err, &be) && be.Code == code
}
