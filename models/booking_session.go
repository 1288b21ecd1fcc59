package models

import "time"

// SessionState tracks a booking session through its lifecycle.
type SessionState string

const (
	SessionCreated  SessionState = "Created"
	SessionPriced   SessionState = "Priced"
	SessionBasketed SessionState = "Basketed"
	SessionBooked   SessionState = "Booked"
	SessionExpired  SessionState = "Expired"
	SessionFailed   SessionState = "Failed"
)

// Terminal reports whether a session in this state may no longer change.
func (s SessionState) Terminal() bool {
	return s == SessionBooked || s == SessionExpired || s == SessionFailed
}

// PassengerComposition is the party makeup fixed at session creation.
// Cabin-grade pricing is only valid for the exact composition it was
// quoted against.
type PassengerComposition struct {
	Adults    int   `bson:"adults" json:"adults"`
	Children  int   `bson:"children" json:"children"`
	ChildAges []int `bson:"child_ages,omitempty" json:"childAges,omitempty"`
}

// Total returns the number of passengers in the party.
func (c PassengerComposition) Total() int {
	return c.Adults + c.Children
}

// CabinSelection is the cabin committed to the provider basket.
type CabinSelection struct {
	GradeID     string `bson:"grade_id" json:"gradeId"`
	RateCode    string `bson:"rate_code" json:"rateCode"`
	CabinType   string `bson:"cabin_type" json:"cabinType"`
	CabinNumber string `bson:"cabin_number,omitempty" json:"cabinNumber,omitempty"`
}

// BookingSession holds context for one reservation attempt against the
// provider, from price discovery through booking submission. The provider
// session handle binds every downstream call to the provider-side search
// context.
type BookingSession struct {
	ID                    string               `bson:"id" json:"sessionId"`
	ProviderSessionHandle string               `bson:"provider_session_handle" json:"providerSessionHandle"`
	CruiseReference       string               `bson:"cruise_reference" json:"cruiseReference"`
	Passengers            PassengerComposition `bson:"passengers" json:"passengers"`
	Quotes                []CabinGradeQuote    `bson:"quotes,omitempty" json:"quotes,omitempty"`
	SelectedCabin         *CabinSelection      `bson:"selected_cabin,omitempty" json:"selectedCabin,omitempty"`
	Basket                *BasketItem          `bson:"basket,omitempty" json:"basket,omitempty"`
	State                 SessionState         `bson:"state" json:"state"`
	CreatedAt             time.Time            `bson:"created_at" json:"createdAt"`
	ExpiresAt             time.Time            `bson:"expires_at" json:"expiresAt"`
}

// ExpiredAt reports whether the session has passed its provider lifetime.
func (s *BookingSession) ExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
