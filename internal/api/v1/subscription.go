package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/temaribet/temaribet/internal/api/dto"
	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/logger"
	"github.com/temaribet/temaribet/internal/service"
	"github.com/temaribet/temaribet/internal/types"
)

type SubscriptionHandler struct {
	service service.TransitionService
	log     *logger.Logger
}

func NewSubscriptionHandler(service service.TransitionService, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{service: service, log: log}
}

// @Summary Upgrade a subscription
// @Description Move a subscription to a more expensive package with prorated billing
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Subscription ID"
// @Param change body dto.ChangePlanRequest true "Target package"
// @Success 200 {object} dto.ChangePlanResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /subscriptions/{id}/upgrade [patch]
func (h *SubscriptionHandler) Upgrade(c *gin.Context) {
	h.changePlan(c, types.TransitionKindUpgrade)
}

// @Summary Downgrade a subscription
// @Description Move a subscription to a cheaper package, crediting unused time
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Subscription ID"
// @Param change body dto.ChangePlanRequest true "Target package"
// @Success 200 {object} dto.ChangePlanResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /subscriptions/{id}/downgrade [patch]
func (h *SubscriptionHandler) Downgrade(c *gin.Context) {
	h.changePlan(c, types.TransitionKindDowngrade)
}

func (h *SubscriptionHandler) changePlan(c *gin.Context, kind types.TransitionKind) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Subscription ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	resp, err := h.service.ChangePlan(c.Request.Context(), id, req.NewPackageID, kind)
	if err != nil {
		h.log.Error("Failed to change plan", "error", err, "kind", kind)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Cancel a subscription
// @Description Cancel at the provider, then mirror the state locally
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Subscription ID"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /subscriptions/{id}/cancel [post]
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Subscription ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to cancel subscription", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
