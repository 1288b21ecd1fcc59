package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"seabook/models"
	"seabook/services/resilience"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWith(srv.URL, "client-id", "client-secret", 2*time.Second, zap.NewNop())
}

func TestExchangeCredentials(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/oauth/token", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "client_credentials", body["grant_type"])
		assert.Equal(t, "client-id", body["client_id"])
		json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "tok", "expires_in": 3600})
	})

	resp, err := client.ExchangeCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.AccessToken)
	assert.Equal(t, 3600, resp.ExpiresIn)
}

func TestOpenSessionSendsBearerToken(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]string{"sessionHandle": "h-1"})
	})

	handle, err := client.OpenSession(context.Background(), "tok", "CR-1001", models.PassengerComposition{Adults: 2})
	require.NoError(t, err)
	assert.Equal(t, "h-1", handle)
}

func TestDoClassifiesUnauthorizedAsAuthFault(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.OpenSession(context.Background(), "stale", "CR-1001", models.PassengerComposition{Adults: 2})

	var fault *resilience.AuthFault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, http.StatusUnauthorized, fault.StatusCode)
}

func TestDoClassifiesServerErrorAsTransient(t *testing.T) {
	for _, status := range []int{http.StatusInternalServerError, http.StatusBadGateway, http.StatusTooManyRequests} {
		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})

		_, err := client.GetBasket(context.Background(), "tok", "h-1")

		var fault *resilience.TransientFault
		require.ErrorAs(t, err, &fault, "status %d", status)
	}
}

func TestDoClassifiesNetworkErrorAsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewClientWith(srv.URL, "id", "secret", time.Second, zap.NewNop())

	_, err := client.GetBasket(context.Background(), "tok", "h-1")

	var fault *resilience.TransientFault
	require.ErrorAs(t, err, &fault)
}

func TestDoTreatsOtherClientErrorsAsPermanent(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "cabin no longer on sale", http.StatusUnprocessableEntity)
	})

	_, err := client.GetBasket(context.Background(), "tok", "h-1")
	require.Error(t, err)

	var fault *resilience.TransientFault
	assert.False(t, errors.As(err, &fault), "4xx other than 401 must not be retryable")
	assert.Contains(t, err.Error(), "422")
}

func TestEnvelopeMapsEmbeddedSessionExpiry(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"code": "SESSION_EXPIRED", "message": "session timed out"},
		})
	})

	_, err := client.ListCabinGrades(context.Background(), "tok", "h-1", models.PassengerComposition{Adults: 2})

	var expired *resilience.SessionExpiredError
	require.ErrorAs(t, err, &expired)
}

func TestEnvelopePassesThroughOtherApplicationErrors(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"code": "GRADE_CLOSED", "message": "grade closed for sale"},
		})
	})

	_, err := client.AddToBasket(context.Background(), "tok", "h-1", models.CabinSelection{GradeID: "BAL"})
	require.Error(t, err)

	var expired *resilience.SessionExpiredError
	assert.False(t, errors.As(err, &expired))
	assert.Contains(t, err.Error(), "GRADE_CLOSED")
}

func TestDoReturnsContextErrorOnCancellation(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.GetBasket(ctx, "tok", "h-1")

	var fault *resilience.TransientFault
	assert.False(t, errors.As(err, &fault), "cancellation must not look transient")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
