package handlers

import (
	"errors"
	"net/http"

	"lawdesk/models"
	"lawdesk/services/booking"
	"lawdesk/services/lifecycle"
	"lawdesk/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	Service booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

// CreateOrderHandler creates a booking and its gateway order.
func (h *BookingHandler) CreateOrderHandler(c *gin.Context) {
	var req struct {
		LawyerID string `json:"lawyerId" binding:"required"`
		Mode     string `json:"mode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	res, err := h.Service.CreateOrder(c.Request.Context(), identityFrom(c), req.LawyerID, req.Mode)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONData(c, http.StatusCreated, "Order created", res)
}

// VerifyPaymentHandler confirms a completed checkout.
func (h *BookingHandler) VerifyPaymentHandler(c *gin.Context) {
	var req models.PaymentVerification
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	res, err := h.Service.VerifyPayment(c.Request.Context(), identityFrom(c), req)
	if err != nil {
		getLogger(c).Warn("payment verification failed", zap.String("bookingId", req.BookingID), zap.Error(err))
		respondError(c, err)
		return
	}
	utils.JSONData(c, http.StatusOK, "Payment verified", res)
}

// UpdateStatusHandler moves a booking through its lifecycle. Accepting an
// already active booking reports the current booking.
func (h *BookingHandler) UpdateStatusHandler(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	b, err := h.Service.UpdateStatus(c.Request.Context(), identityFrom(c), c.Param("id"), req.Status)
	if errors.Is(err, lifecycle.ErrAlreadyActive) && b != nil {
		utils.JSONData(c, http.StatusOK, "Session already active", b)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONData(c, http.StatusOK, "Booking updated", b)
}

func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	b, err := h.Service.Get(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONData(c, http.StatusOK, "Booking fetched", b)
}

// MyBookingsHandler lists a lawyer's requests or a client's case history.
func (h *BookingHandler) MyBookingsHandler(c *gin.Context) {
	id := identityFrom(c)
	var (
		list []models.Booking
		err  error
	)
	if id.Role == models.RoleLawyer {
		list, err = h.Service.ListForLawyer(c.Request.Context(), id.LawyerID)
	} else {
		list, err = h.Service.ListForClient(c.Request.Context(), id.AccountID)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []models.Booking{}
	}
	utils.JSONData(c, http.StatusOK, "Bookings fetched", list)
}
