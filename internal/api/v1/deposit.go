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

type DepositHandler struct {
	service service.DepositService
	log     *logger.Logger
}

func NewDepositHandler(service service.DepositService, log *logger.Logger) *DepositHandler {
	return &DepositHandler{service: service, log: log}
}

// reviewDepositRequest moves a pending deposit to approved or rejected
type reviewDepositRequest struct {
	Status string `json:"status" binding:"required"`
}

// @Summary Record a deposit
// @Description Record a lump payment held for later application
// @Tags Deposits
// @Accept json
// @Produce json
// @Param deposit body dto.RecordDepositRequest true "Deposit"
// @Success 201 {object} dto.DepositResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /payments/deposit [post]
func (h *DepositHandler) RecordDeposit(c *gin.Context) {
	var req dto.RecordDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.RecordDeposit(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to record deposit", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Review a deposit
// @Description Approve or reject a pending deposit; approval auto-applies it oldest month first
// @Tags Deposits
// @Accept json
// @Produce json
// @Param id path string true "Deposit ID"
// @Param review body reviewDepositRequest true "New status"
// @Success 200 {object} dto.ApproveDepositResult
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /payments/deposit/{id} [put]
func (h *DepositHandler) ReviewDeposit(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Deposit ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	var req reviewDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	switch types.DepositStatus(req.Status) {
	case types.DepositStatusApproved:
		resp, err := h.service.ApproveDeposit(c.Request.Context(), id)
		if err != nil {
			h.log.Error("Failed to approve deposit", "error", err)
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, resp)
	case types.DepositStatusRejected:
		resp, err := h.service.RejectDeposit(c.Request.Context(), id)
		if err != nil {
			h.log.Error("Failed to reject deposit", "error", err)
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, resp)
	default:
		c.Error(ierr.NewError("invalid status").
			WithHint("Status must be approved or rejected").
			Mark(ierr.ErrValidation))
	}
}

// @Summary Edit a deposit
// @Description Edit a pending manual deposit
// @Tags Deposits
// @Accept json
// @Produce json
// @Param id path string true "Deposit ID"
// @Param deposit body dto.EditDepositRequest true "Changes"
// @Success 200 {object} dto.DepositResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /payments/deposit/{id} [patch]
func (h *DepositHandler) EditDeposit(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Deposit ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.EditDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.EditDeposit(c.Request.Context(), id, &req)
	if err != nil {
		h.log.Error("Failed to edit deposit", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Delete a deposit
// @Description Delete a pending manual deposit no ledger entry draws on
// @Tags Deposits
// @Produce json
// @Param id path string true "Deposit ID"
// @Success 204
// @Failure 409 {object} middleware.ErrorResponse
// @Router /payments/deposit/{id} [delete]
func (h *DepositHandler) DeleteDeposit(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Deposit ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.service.DeleteDeposit(c.Request.Context(), id); err != nil {
		h.log.Error("Failed to delete deposit", "error", err)
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary List deposits
// @Description List a student's deposits
// @Tags Deposits
// @Produce json
// @Param studentId query string true "Student ID"
// @Success 200 {array} dto.DepositResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /payments/deposit [get]
func (h *DepositHandler) ListDeposits(c *gin.Context) {
	studentID := c.Query("studentId")
	if studentID == "" {
		c.Error(ierr.NewError("studentId is required").
			WithHint("The studentId query parameter is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListDeposits(c.Request.Context(), studentID)
	if err != nil {
		h.log.Error("Failed to list deposits", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
