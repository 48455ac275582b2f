// AngelaMos | 2026
// processor_test.go

package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/learnify/internal/config"
)

func TestWebhookSignatureRoundtrip(t *testing.T) {
	body := []byte(`{"type":"checkout.session.completed"}`)

	sig := SignPayload(body, "shh-secret")

	assert.True(t, VerifySignature(body, sig, "shh-secret"))
	assert.False(t, VerifySignature(body, sig, "other-secret"))
	assert.False(t, VerifySignature([]byte("tampered"), sig, "shh-secret"))
	assert.False(t, VerifySignature(body, "", "shh-secret"))
}

func TestCreateCheckoutSession(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]any

	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
				"id":  "sess_123",
				"url": "https://pay.example.com/sess_123",
			})
		},
	))
	defer srv.Close()

	processor := NewHTTPProcessor(config.PaymentConfig{
		CheckoutURL: srv.URL,
		APIKey:      "pk_test_abc",
	})

	session, err := processor.CreateCheckoutSession(
		context.Background(),
		CheckoutInput{
			PurchaseID:  "purchase-1",
			CourseTitle: "Profiling Go",
			Amount:      7900,
			UserEmail:   "buyer@example.com",
			SuccessURL:  "https://app.example.com/done",
			CancelURL:   "https://app.example.com/cancel",
		},
	)
	require.NoError(t, err)

	assert.Equal(t, "sess_123", session.SessionID)
	assert.Equal(t, "https://pay.example.com/sess_123", session.RedirectURL)
	assert.Equal(t, "Bearer pk_test_abc", gotAuth)
	assert.Equal(t, "purchase-1", gotPayload["client_reference_id"])
	assert.Equal(t, float64(7900), gotPayload["amount"])
}

func TestCreateCheckoutSessionRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusBadGateway)
		},
	))
	defer srv.Close()

	processor := NewHTTPProcessor(config.PaymentConfig{CheckoutURL: srv.URL})

	_, err := processor.CreateCheckoutSession(
		context.Background(),
		CheckoutInput{PurchaseID: "purchase-1"},
	)
	assert.Error(t, err)
}
