package chapa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/temaribet/temaribet/internal/config"
	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/httpclient"
	"github.com/temaribet/temaribet/internal/logger"
)

const defaultBaseURL = "https://api.chapa.co"

// Client talks to the Chapa API. Chapa settles in ETB and identifies
// payments by the merchant-chosen tx_ref.
type Client struct {
	secretKey     string
	webhookSecret string
	baseURL       string
	httpClient    httpclient.Client
	logger        *logger.Logger
}

// NewClient creates a new Chapa API client
func NewClient(cfg *config.Configuration, httpClient httpclient.Client, logger *logger.Logger) *Client {
	baseURL := cfg.Chapa.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		secretKey:     cfg.Chapa.SecretKey,
		webhookSecret: cfg.Chapa.WebhookSecret,
		baseURL:       baseURL,
		httpClient:    httpClient,
		logger:        logger,
	}
}

// VerifyTransactionResponse is the verification payload returned by
// Chapa for a tx_ref.
type VerifyTransactionResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Data    struct {
		Amount    decimal.Decimal `json:"amount"`
		Currency  string          `json:"currency"`
		TxRef     string          `json:"tx_ref"`
		Status    string          `json:"status"`
		Reference string          `json:"reference"`
		CreatedAt string          `json:"created_at"`
	} `json:"data"`
}

// Succeeded reports whether the transaction settled successfully
func (r *VerifyTransactionResponse) Succeeded() bool {
	return r.Status == "success" && r.Data.Status == "success"
}

// VerifyTransaction confirms a transaction's state with Chapa. Webhook
// handlers call this before trusting the callback amount.
func (c *Client) VerifyTransaction(ctx context.Context, txRef string) (*VerifyTransactionResponse, error) {
	req := &httpclient.Request{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/v1/transaction/verify/%s", c.baseURL, txRef),
		Headers: map[string]string{
			"Authorization": "Bearer " + c.secretKey,
		},
	}

	resp, err := c.httpClient.Send(ctx, req)
	if err != nil {
		c.logger.Errorw("failed to verify Chapa transaction",
			"error", err,
			"tx_ref", txRef)
		return nil, ierr.WithError(err).
			WithHint("Unable to verify transaction with Chapa").
			WithReportableDetails(map[string]interface{}{
				"tx_ref": txRef,
			}).
			Mark(ierr.ErrProvider)
	}

	var verification VerifyTransactionResponse
	if err := json.Unmarshal(resp.Body, &verification); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Chapa returned an unexpected verification payload").
			WithReportableDetails(map[string]interface{}{
				"tx_ref": txRef,
			}).
			Mark(ierr.ErrProvider)
	}

	return &verification, nil
}
