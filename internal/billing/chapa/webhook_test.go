package chapa

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temaribet/temaribet/internal/config"
	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/logger"
	"github.com/temaribet/temaribet/internal/types"
)

func newTestClient(t *testing.T, webhookSecret string) *Client {
	t.Helper()
	cfg := &config.Configuration{
		Logging: config.LoggingConfig{Level: types.LogLevelInfo},
		Chapa: config.ChapaConfig{
			SecretKey:     "test-secret",
			WebhookSecret: webhookSecret,
		},
	}
	log, err := logger.NewLogger(cfg)
	require.NoError(t, err)
	return NewClient(cfg, nil, log)
}

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestParseWebhookEvent(t *testing.T) {
	client := newTestClient(t, "whsec_test")
	payload := []byte(`{"event":"charge.success","tx_ref":"txn_123","reference":"ref_9","amount":450,"currency":"ETB","status":"success"}`)

	event, err := client.ParseWebhookEvent(payload, sign("whsec_test", payload))
	require.NoError(t, err)
	assert.Equal(t, "txn_123", event.TxRef)
	assert.True(t, event.Succeeded())
	assert.Equal(t, "450", event.Amount.String())
}

func TestParseWebhookEvent_BadSignature(t *testing.T) {
	client := newTestClient(t, "whsec_test")
	payload := []byte(`{"event":"charge.success","tx_ref":"txn_123","status":"success"}`)

	_, err := client.ParseWebhookEvent(payload, sign("wrong-secret", payload))
	require.Error(t, err)
	assert.True(t, ierr.IsPermissionDenied(err))
}

func TestParseWebhookEvent_TamperedPayload(t *testing.T) {
	client := newTestClient(t, "whsec_test")
	payload := []byte(`{"event":"charge.success","tx_ref":"txn_123","amount":450,"status":"success"}`)
	signature := sign("whsec_test", payload)

	tampered := []byte(`{"event":"charge.success","tx_ref":"txn_123","amount":999,"status":"success"}`)
	_, err := client.ParseWebhookEvent(tampered, signature)
	require.Error(t, err)
	assert.True(t, ierr.IsPermissionDenied(err))
}

func TestParseWebhookEvent_MissingSecretNeverVerifies(t *testing.T) {
	client := newTestClient(t, "")
	payload := []byte(`{"event":"charge.success","tx_ref":"txn_123","status":"success"}`)

	_, err := client.ParseWebhookEvent(payload, sign("", payload))
	require.Error(t, err)
	assert.True(t, ierr.IsPermissionDenied(err))
}

func TestParseWebhookEvent_FailedCharge(t *testing.T) {
	client := newTestClient(t, "whsec_test")
	payload := []byte(`{"event":"charge.failed","tx_ref":"txn_123","status":"failed"}`)

	event, err := client.ParseWebhookEvent(payload, sign("whsec_test", payload))
	require.NoError(t, err)
	assert.False(t, event.Succeeded())
}
