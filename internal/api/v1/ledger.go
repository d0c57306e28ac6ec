package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/temaribet/temaribet/internal/api/dto"
	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/logger"
	"github.com/temaribet/temaribet/internal/service"
)

type LedgerHandler struct {
	service service.LedgerService
	log     *logger.Logger
}

func NewLedgerHandler(service service.LedgerService, log *logger.Logger) *LedgerHandler {
	return &LedgerHandler{service: service, log: log}
}

// @Summary Record a monthly payment
// @Description Record a tuition payment against one student-month
// @Tags Payments
// @Accept json
// @Produce json
// @Param payment body dto.RecordPaymentRequest true "Payment"
// @Success 201 {object} dto.RecordPaymentResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /payments/monthly [post]
func (h *LedgerHandler) RecordPayment(c *gin.Context) {
	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.RecordPayment(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to record payment", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Update a monthly payment
// @Description Update an existing ledger entry
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path string true "Ledger entry ID"
// @Param payment body dto.UpdatePaymentRequest true "Changes"
// @Success 200 {object} dto.LedgerEntryResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /payments/monthly/{id} [put]
func (h *LedgerHandler) UpdatePayment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Ledger entry ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdatePayment(c.Request.Context(), id, &req)
	if err != nil {
		h.log.Error("Failed to update payment", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Delete a monthly payment
// @Description Delete a ledger entry, reopening its month
// @Tags Payments
// @Produce json
// @Param id path string true "Ledger entry ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Router /payments/monthly/{id} [delete]
func (h *LedgerHandler) DeletePayment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Ledger entry ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.service.DeletePayment(c.Request.Context(), id); err != nil {
		h.log.Error("Failed to delete payment", "error", err)
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary List monthly payments
// @Description List a student's ledger entries ordered by month
// @Tags Payments
// @Produce json
// @Param studentId query string true "Student ID"
// @Success 200 {array} dto.LedgerEntryResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /payments/monthly [get]
func (h *LedgerHandler) ListPayments(c *gin.Context) {
	studentID := c.Query("studentId")
	if studentID == "" {
		c.Error(ierr.NewError("studentId is required").
			WithHint("The studentId query parameter is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListPayments(c.Request.Context(), studentID)
	if err != nil {
		h.log.Error("Failed to list payments", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
