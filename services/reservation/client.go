package reservation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"seabook/config"
	"seabook/models"
	"seabook/services/auth"
	"seabook/services/resilience"

	"go.uber.org/zap"
)

// Client talks to the external reservation provider. The provider is a
// black box here: a stateful HTTP API requiring a bearer credential and a
// session handle on every call after the initial search.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       *zap.Logger
}

// NewClient builds a provider client from the loaded configuration.
func NewClient(logger *zap.Logger) *Client {
	return &Client{
		baseURL:      config.AppConfig.ProviderBaseURL,
		clientID:     config.AppConfig.ProviderClientID,
		clientSecret: config.AppConfig.ProviderClientSecret,
		httpClient:   &http.Client{Timeout: config.ProviderTimeout()},
		logger:       logger,
	}
}

// NewClientWith builds a provider client with explicit settings (tests, tools).
func NewClientWith(baseURL, clientID, clientSecret string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

// ExchangeCredentials performs the client-credential token exchange.
func (c *Client) ExchangeCredentials(ctx context.Context) (auth.TokenResponse, error) {
	body := tokenRequest{
		GrantType:    "client_credentials",
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
	}
	var resp auth.TokenResponse
	if err := c.do(ctx, "", http.MethodPost, "/oauth/token", body, &resp); err != nil {
		return auth.TokenResponse{}, err
	}
	if resp.AccessToken == "" {
		return auth.TokenResponse{}, fmt.Errorf("provider token exchange returned an empty token")
	}
	return resp, nil
}

// OpenSession runs the initial search call and returns the provider session
// handle required on every subsequent call.
func (c *Client) OpenSession(ctx context.Context, token, cruiseReference string, comp models.PassengerComposition) (string, error) {
	body := openSessionRequest{
		CruiseReference: cruiseReference,
		Adults:          comp.Adults,
		Children:        comp.Children,
		ChildAges:       comp.ChildAges,
	}
	var resp openSessionResponse
	if err := c.do(ctx, token, http.MethodPost, "/sessions", body, &resp); err != nil {
		return "", err
	}
	if err := c.envelope("open_session", resp.Error); err != nil {
		return "", err
	}
	if resp.SessionHandle == "" {
		return "", fmt.Errorf("provider returned an empty session handle")
	}
	return resp.SessionHandle, nil
}

// ListCabinGrades fetches live cabin-grade pricing for the session's cruise
// and passenger composition.
func (c *Client) ListCabinGrades(ctx context.Context, token, handle string, comp models.PassengerComposition) ([]models.CabinGradeQuote, error) {
	q := url.Values{}
	q.Set("adults", strconv.Itoa(comp.Adults))
	q.Set("children", strconv.Itoa(comp.Children))
	path := "/sessions/" + url.PathEscape(handle) + "/cabingrades?" + q.Encode()

	var resp cabinGradesResponse
	if err := c.do(ctx, token, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if err := c.envelope("cabin_grades", resp.Error); err != nil {
		return nil, err
	}

	quotes := make([]models.CabinGradeQuote, 0, len(resp.Results))
	for _, r := range resp.Results {
		quotes = append(quotes, models.CabinGradeQuote{
			GradeID:        r.GradeID,
			RateCode:       r.RateCode,
			CabinType:      r.CabinType,
			TotalPrice:     r.TotalPrice,
			PerPersonPrice: r.PerPersonPrice,
			Currency:       r.Currency,
		})
	}
	return quotes, nil
}

// AddToBasket commits a cabin grade to the provider's server-side basket.
// This call carries no idempotency guarantee on the provider side; callers
// cap and validate its retries instead of repeating it blindly.
func (c *Client) AddToBasket(ctx context.Context, token, handle string, sel models.CabinSelection) (*BasketAddResult, error) {
	body := basketAddRequest{
		GradeID:     sel.GradeID,
		RateCode:    sel.RateCode,
		CabinNumber: sel.CabinNumber,
	}
	var resp basketAddResponse
	if err := c.do(ctx, token, http.MethodPost, "/sessions/"+url.PathEscape(handle)+"/basket", body, &resp); err != nil {
		return nil, err
	}
	if err := c.envelope("basket_add", resp.Error); err != nil {
		return nil, err
	}
	return &resp.BasketAddResult, nil
}

// GetBasket retrieves the provider's current basket for the session.
func (c *Client) GetBasket(ctx context.Context, token, handle string) ([]BasketLine, error) {
	var resp basketGetResponse
	if err := c.do(ctx, token, http.MethodGet, "/sessions/"+url.PathEscape(handle)+"/basket", nil, &resp); err != nil {
		return nil, err
	}
	if err := c.envelope("basket_get", resp.Error); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// CreateBooking submits passengers and contact details against the held
// basket.
func (c *Client) CreateBooking(ctx context.Context, token, handle string, passengers []models.Passenger, contact models.ContactDetails) (*BookingResult, error) {
	body := createBookingRequest{
		Contact: contactPayload{Email: contact.Email, Phone: contact.Phone, Address: contact.Address},
	}
	for _, p := range passengers {
		body.Passengers = append(body.Passengers, passengerPayload{
			Title:       p.Title,
			FirstName:   p.FirstName,
			LastName:    p.LastName,
			DateOfBirth: p.DateOfBirth.Format("2006-01-02"),
			Lead:        p.Lead,
		})
	}
	var resp createBookingResponse
	if err := c.do(ctx, token, http.MethodPost, "/sessions/"+url.PathEscape(handle)+"/bookings", body, &resp); err != nil {
		return nil, err
	}
	if err := c.envelope("create_booking", resp.Error); err != nil {
		return nil, err
	}
	return &resp.BookingResult, nil
}

// SubmitPayment submits the deposit payment for an accepted booking. Card
// data passes through to the provider and is never stored locally.
func (c *Client) SubmitPayment(ctx context.Context, token, providerBookingID string, payment models.PaymentRequest) (*PaymentResult, error) {
	body := paymentRequestPayload{
		Amount:         payment.Amount,
		Currency:       payment.Currency,
		CardToken:      payment.CardToken,
		CardHolderName: payment.CardHolderName,
	}
	var resp paymentResponse
	if err := c.do(ctx, token, http.MethodPost, "/bookings/"+url.PathEscape(providerBookingID)+"/payments", body, &resp); err != nil {
		return nil, err
	}
	if err := c.envelope("submit_payment", resp.Error); err != nil {
		return nil, err
	}
	return &resp.PaymentResult, nil
}

// do issues one HTTP call and classifies transport-level failures for the
// resilience layer: network and 5xx are transient, 401 is an auth fault,
// other 4xx are permanent.
func (c *Client) do(ctx context.Context, token, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode provider request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build provider request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &resilience.TransientFault{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		io.Copy(io.Discard, resp.Body)
		return &resilience.AuthFault{StatusCode: resp.StatusCode}
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		io.Copy(io.Discard, resp.Body)
		return &resilience.TransientFault{Err: fmt.Errorf("provider returned status %d for %s %s", resp.StatusCode, method, path)}
	case resp.StatusCode >= 400:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("provider rejected %s %s: status %d: %s", method, path, resp.StatusCode, string(detail))
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &resilience.TransientFault{Err: fmt.Errorf("failed to decode provider response: %w", err)}
	}
	return nil
}

// envelope maps the provider's embedded application errors. Session expiry
// inside a 200 body must fail immediately rather than burn retries.
func (c *Client) envelope(op string, apiErr *apiError) error {
	if apiErr == nil {
		return nil
	}
	if apiErr.Code == codeSessionExpired {
		return &resilience.SessionExpiredError{Op: op}
	}
	c.logger.Warn("provider application error",
		zap.String("op", op), zap.String("code", apiErr.Code), zap.String("message", apiErr.Message))
	return apiErr
}
