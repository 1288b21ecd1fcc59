package models

import "time"

// BookingStatus values. A payment failure after the provider accepted the
// booking parks it at PendingPayment; the cabin hold is never released
// automatically.
const (
	BookingConfirmed      = "Confirmed"
	BookingPendingPayment = "PendingPayment"
	BookingCancelled      = "Cancelled"
)

// Passenger is one traveller on the final booking submission.
type Passenger struct {
	Title       string    `bson:"title" json:"title"`
	FirstName   string    `bson:"first_name" json:"firstName"`
	LastName    string    `bson:"last_name" json:"lastName"`
	DateOfBirth time.Time `bson:"date_of_birth" json:"dateOfBirth"`
	Lead        bool      `bson:"lead" json:"lead"`
}

// ContactDetails is the lead contact for the reservation.
type ContactDetails struct {
	Email   string `bson:"email" json:"email"`
	Phone   string `bson:"phone" json:"phone"`
	Address string `bson:"address,omitempty" json:"address,omitempty"`
}

// PaymentRequest carries payment input for the deposit step. The card fields
// pass straight through to the provider and are never persisted.
type PaymentRequest struct {
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	CardToken      string  `json:"cardToken"`
	CardHolderName string  `json:"cardHolderName"`
}

// PaymentSummary is the persisted record of a payment attempt. No raw card
// data, only the provider's reference and the amounts involved.
type PaymentSummary struct {
	ProviderPaymentRef string    `bson:"provider_payment_ref,omitempty" json:"providerPaymentRef,omitempty"`
	AmountPaid         float64   `bson:"amount_paid" json:"amountPaid"`
	Currency           string    `bson:"currency" json:"currency"`
	PaidAt             time.Time `bson:"paid_at,omitempty" json:"paidAt,omitempty"`
}

// Booking is the local record of a reservation the provider accepted. It is
// append-mostly: immutable after creation except for status transitions and
// the payment summary.
type Booking struct {
	ID                string          `bson:"id" json:"id"`
	BookingSessionID  string          `bson:"booking_session_id" json:"bookingSessionId"`
	ProviderBookingID string          `bson:"provider_booking_id" json:"providerBookingId"`
	CruiseReference   string          `bson:"cruise_reference" json:"cruiseReference"`
	Passengers        []Passenger     `bson:"passengers" json:"passengers"`
	Contact           ContactDetails  `bson:"contact" json:"contact"`
	BasketSnapshot    BasketItem      `bson:"basket_snapshot" json:"basketSnapshot"`
	Payment           *PaymentSummary `bson:"payment,omitempty" json:"payment,omitempty"`
	TotalAmount       float64         `bson:"total_amount" json:"totalAmount"`
	DepositAmount     float64         `bson:"deposit_amount" json:"depositAmount"`
	Currency          string          `bson:"currency" json:"currency"`
	Status            string          `bson:"status" json:"status"`
	CreatedAt         time.Time       `bson:"created_at" json:"createdAt"`
}

// ReconcilePayload is queued when the provider accepted a booking but the
// local record could not be persisted. Money or holds have moved remotely,
// so the mismatch must be repaired out of band.
type ReconcilePayload struct {
	SessionID         string    `json:"sessionId"`
	ProviderBookingID string    `json:"providerBookingId"`
	CruiseReference   string    `json:"cruiseReference"`
	TotalAmount       float64   `json:"totalAmount"`
	FailedAt          time.Time `json:"failedAt"`
	Reason            string    `json:"reason"`
}
