package reservation

import "fmt"

// apiError is the application-level error envelope the provider embeds in
// otherwise successful responses.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("provider error %s: %s", e.Code, e.Message)
}

// Error codes the provider embeds in 200 responses.
const (
	codeSessionExpired = "SESSION_EXPIRED"
)

type tokenRequest struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type openSessionRequest struct {
	CruiseReference string `json:"cruiseReference"`
	Adults          int    `json:"adults"`
	Children        int    `json:"children"`
	ChildAges       []int  `json:"childAges,omitempty"`
}

type openSessionResponse struct {
	SessionHandle string    `json:"sessionHandle"`
	Error         *apiError `json:"error,omitempty"`
}

type cabinGradeResult struct {
	GradeID        string  `json:"gradeId"`
	RateCode       string  `json:"rateCode"`
	CabinType      string  `json:"cabinType"`
	TotalPrice     float64 `json:"totalPrice"`
	PerPersonPrice float64 `json:"perPersonPrice"`
	Currency       string  `json:"currency"`
}

type cabinGradesResponse struct {
	Results []cabinGradeResult `json:"results"`
	Error   *apiError          `json:"error,omitempty"`
}

type basketAddRequest struct {
	GradeID     string `json:"gradeId"`
	RateCode    string `json:"rateCode"`
	CabinNumber string `json:"cabinNumber,omitempty"`
}

// BasketAddResult is the provider's committed basket item. A zero
// TotalPrice against a non-zero quote is a pricing desync, not a bargain.
type BasketAddResult struct {
	ItemKey    string  `json:"itemKey"`
	TotalPrice float64 `json:"totalPrice"`
	Currency   string  `json:"currency"`
}

type basketAddResponse struct {
	BasketAddResult
	Error *apiError `json:"error,omitempty"`
}

// BasketLine is one item of the provider's server-side basket.
type BasketLine struct {
	ItemKey    string  `json:"itemKey"`
	GradeID    string  `json:"gradeId"`
	RateCode   string  `json:"rateCode"`
	TotalPrice float64 `json:"totalPrice"`
	Currency   string  `json:"currency"`
}

type basketGetResponse struct {
	Items []BasketLine `json:"items"`
	Error *apiError    `json:"error,omitempty"`
}

type passengerPayload struct {
	Title       string `json:"title"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"`
	Lead        bool   `json:"lead"`
}

type createBookingRequest struct {
	Passengers []passengerPayload `json:"passengers"`
	Contact    contactPayload     `json:"contact"`
}

type contactPayload struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
}

// BookingResult is the provider's acceptance of a booking submission.
type BookingResult struct {
	ProviderBookingID string  `json:"bookingId"`
	TotalAmount       float64 `json:"totalAmount"`
	DepositAmount     float64 `json:"depositAmount"`
	Currency          string  `json:"currency"`
}

type createBookingResponse struct {
	BookingResult
	Error *apiError `json:"error,omitempty"`
}

type paymentRequestPayload struct {
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	CardToken      string  `json:"cardToken"`
	CardHolderName string  `json:"cardHolderName"`
}

// PaymentResult is the provider's answer to a payment submission.
type PaymentResult struct {
	Reference string `json:"paymentReference"`
	Status    string `json:"status"`
}

// PaymentAccepted is the provider status for a settled payment.
const PaymentAccepted = "accepted"

type paymentResponse struct {
	PaymentResult
	Error *apiError `json:"error,omitempty"`
}
