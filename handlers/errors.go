package handlers

import (
	"errors"
	"net/http"

	bookingRepo "lawdesk/database/repository/booking"
	lawyerRepo "lawdesk/database/repository/lawyer"
	requestRepo "lawdesk/database/repository/request"
	"lawdesk/services/account"
	"lawdesk/services/admin"
	"lawdesk/services/booking"
	"lawdesk/services/chat"
	"lawdesk/services/lifecycle"
	"lawdesk/services/payment"
	"lawdesk/services/request"
	"lawdesk/services/storage"
	"lawdesk/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) int {
	var bookingErr *booking.BookingError
	var orderErr *booking.OrderCreationError
	switch {
	case errors.As(err, &bookingErr):
		return http.StatusBadRequest
	case errors.As(err, &orderErr):
		return http.StatusBadGateway
	case errors.Is(err, account.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, booking.ErrForbidden), errors.Is(err, chat.ErrForbidden),
		errors.Is(err, request.ErrForbidden), errors.Is(err, admin.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, booking.ErrNotFound), errors.Is(err, chat.ErrNotFound),
		errors.Is(err, bookingRepo.ErrNotFound), errors.Is(err, lawyerRepo.ErrNotFound),
		errors.Is(err, requestRepo.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, lifecycle.ErrInvalidTransition), errors.Is(err, bookingRepo.ErrStatusConflict),
		errors.Is(err, chat.ErrSessionNotActive), errors.Is(err, requestRepo.ErrStatusConflict):
		return http.StatusConflict
	case errors.Is(err, booking.ErrPaymentVerification), errors.Is(err, payment.ErrVerificationFailed),
		errors.Is(err, booking.ErrPaymentPending):
		return http.StatusPaymentRequired
	case errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, storage.ErrInvalidDataURL),
		errors.Is(err, payment.ErrInvalidAmount), errors.Is(err, request.ErrEmptyMessage),
		errors.Is(err, request.ErrLongMessage), errors.Is(err, request.ErrInvalidStatus),
		errors.Is(err, admin.ErrInvalidUpdate), errors.Is(err, admin.ErrUnknownRole):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes err in the standard envelope. Internal errors are logged
// and their details hidden.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		getLogger(c).Error("request failed", zap.Error(err))
		utils.JSONError(c, status, "Internal Server Error", "")
		return
	}
	utils.JSONError(c, status, err.Error(), "")
}
