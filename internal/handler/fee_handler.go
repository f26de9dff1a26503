package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fredora-academy/school-api/internal/models"
	"github.com/fredora-academy/school-api/internal/service"
	"github.com/fredora-academy/school-api/pkg/response"
)

// FeeHandler exposes fee structure and payment endpoints.
type FeeHandler struct {
	fees *service.FeeService
}

// NewFeeHandler constructs the handler.
func NewFeeHandler(fees *service.FeeService) *FeeHandler {
	return &FeeHandler{fees: fees}
}

// ListFees returns active fee items, optionally for one class.
func (h *FeeHandler) ListFees(c *gin.Context) {
	fees, err := h.fees.ListFees(c.Request.Context(), queryInt64(c, "class_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fees, nil)
}

// CreateFee adds a fee item.
func (h *FeeHandler) CreateFee(c *gin.Context) {
	var req models.FeeRequest
	if !bindJSON(c, &req) {
		return
	}
	fee, err := h.fees.CreateFee(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, fee, "fee created")
}

// UpdateFee edits a fee item.
func (h *FeeHandler) UpdateFee(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.FeeRequest
	if !bindJSON(c, &req) {
		return
	}
	fee, err := h.fees.UpdateFee(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, fee, "fee updated")
}

// RecordPayment godoc
// @Summary Record a fee payment
// @Tags fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payment body models.PaymentRequest true "Payment"
// @Success 201 {object} response.Envelope
// @Router /fees/payments [post]
func (h *FeeHandler) RecordPayment(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	var req models.PaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	payment, err := h.fees.RecordPayment(c.Request.Context(), user, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment, "payment recorded")
}

// PaymentHistory returns a student's payments.
func (h *FeeHandler) PaymentHistory(c *gin.Context) {
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	payments, err := h.fees.PaymentHistory(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, nil)
}

// Balance returns a student's fee position for a term.
func (h *FeeHandler) Balance(c *gin.Context) {
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	balance, err := h.fees.Balance(c.Request.Context(), studentID, c.Query("term"), queryInt(c, "academic_year"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, balance, nil)
}
