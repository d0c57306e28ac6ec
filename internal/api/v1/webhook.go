package v1

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/logger"
	"github.com/temaribet/temaribet/internal/service"
)

type WebhookHandler struct {
	service service.WebhookService
	log     *logger.Logger
}

func NewWebhookHandler(service service.WebhookService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{service: service, log: log}
}

// @Summary Stripe webhook
// @Description Receive Stripe events. Responds 2xx only once the event is durably applied.
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 401 {object} middleware.ErrorResponse
// @Router /webhooks/stripe [post]
func (h *WebhookHandler) HandleStripe(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Could not read webhook payload").
			Mark(ierr.ErrValidation))
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.service.ProcessStripeEvent(c.Request.Context(), payload, signature); err != nil {
		h.log.Error("Failed to process Stripe webhook", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// @Summary Chapa webhook
// @Description Receive Chapa payment callbacks. Responds 2xx only once the event is durably applied.
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 401 {object} middleware.ErrorResponse
// @Router /webhooks/chapa [post]
func (h *WebhookHandler) HandleChapa(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Could not read webhook payload").
			Mark(ierr.ErrValidation))
		return
	}

	signature := c.GetHeader("Chapa-Signature")
	if signature == "" {
		signature = c.GetHeader("x-chapa-signature")
	}
	if err := h.service.ProcessChapaEvent(c.Request.Context(), payload, signature); err != nil {
		h.log.Error("Failed to process Chapa webhook", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
