package chapa

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/shopspring/decimal"
	ierr "github.com/temaribet/temaribet/internal/errors"
)

// WebhookEvent is the callback Chapa posts after a payment attempt.
type WebhookEvent struct {
	Event     string          `json:"event"`
	TxRef     string          `json:"tx_ref"`
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Status    string          `json:"status"`
}

// Succeeded reports whether the callback describes a settled payment
func (e *WebhookEvent) Succeeded() bool {
	return e.Status == "success"
}

// ParseWebhookEvent verifies the HMAC-SHA256 signature Chapa sends in
// the Chapa-Signature header and parses the event. Verification is
// never skipped.
func (c *Client) ParseWebhookEvent(payload []byte, signature string) (*WebhookEvent, error) {
	if !c.verifySignature(payload, signature) {
		c.logger.Errorw("Chapa webhook verification failed")
		return nil, ierr.NewError("failed to verify webhook signature").
			WithHint("Invalid webhook signature or payload").
			Mark(ierr.ErrPermissionDenied)
	}

	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Chapa webhook payload is not valid JSON").
			Mark(ierr.ErrValidation)
	}

	return &event, nil
}

// verifySignature compares the payload HMAC against the header value in
// constant time.
func (c *Client) verifySignature(payload []byte, signature string) bool {
	if c.webhookSecret == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
