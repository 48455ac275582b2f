// AngelaMos | 2026
// processor.go

package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/angelamos/learnify/internal/config"
	"github.com/angelamos/learnify/internal/core"
)

// CheckoutInput carries everything the payment provider needs to build
// a hosted checkout page for a single course.
type CheckoutInput struct {
	PurchaseID  string
	CourseID    string
	CourseTitle string
	Amount      int64
	UserEmail   string
	SuccessURL  string
	CancelURL   string
}

type CheckoutSession struct {
	SessionID   string
	RedirectURL string
}

// Processor is the payment collaborator: it creates hosted checkout
// sessions and later notifies us through the webhook endpoint.
type Processor interface {
	CreateCheckoutSession(
		ctx context.Context,
		input CheckoutInput,
	) (*CheckoutSession, error)
}

type HTTPProcessor struct {
	client      *http.Client
	checkoutURL string
	apiKey      string
}

func NewHTTPProcessor(cfg config.PaymentConfig) *HTTPProcessor {
	return &HTTPProcessor{
		client:      &http.Client{Timeout: 30 * time.Second},
		checkoutURL: cfg.CheckoutURL,
		apiKey:      cfg.APIKey,
	}
}

func (p *HTTPProcessor) CreateCheckoutSession(
	ctx context.Context,
	input CheckoutInput,
) (*CheckoutSession, error) {
	payload, err := json.Marshal(map[string]any{
		"client_reference_id": input.PurchaseID,
		"name":                input.CourseTitle,
		"amount":              input.Amount,
		"customer_email":      input.UserEmail,
		"success_url":         input.SuccessURL,
		"cancel_url":          input.CancelURL,
		"metadata": map[string]string{
			"purchase_id": input.PurchaseID,
			"course_id":   input.CourseID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal checkout payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.checkoutURL,
		bytes.NewReader(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("create checkout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, core.ExternalServiceError("payment checkout", err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close

	if resp.StatusCode != http.StatusOK {
		return nil, core.ExternalServiceError(
			"payment checkout",
			fmt.Errorf("unexpected status %d", resp.StatusCode),
		)
	}

	var session struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decode checkout response: %w", err)
	}

	return &CheckoutSession{
		SessionID:   session.ID,
		RedirectURL: session.URL,
	}, nil
}

var _ Processor = (*HTTPProcessor)(nil)

// Webhook event types the provider emits for a checkout session.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutFailed    = "checkout.session.failed"
)

type WebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		SessionID string            `json:"session_id"`
		Metadata  map[string]string `json:"metadata"`
	} `json:"data"`
}

// VerifySignature checks the hex-encoded HMAC-SHA256 of the raw webhook
// body against the shared secret.
func VerifySignature(body []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignPayload produces the signature VerifySignature expects. Exported
// for tests and local webhook replay tooling.
func SignPayload(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
