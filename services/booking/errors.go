package booking

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("booking not found")
	ErrForbidden           = errors.New("not a participant of this booking")
	ErrPaymentVerification = errors.New("payment verification failed")
	ErrPaymentPending      = errors.New("booking is not paid")
)

// BookingError is a client-facing validation failure.
type BookingError struct {
	Code    string
	Message string
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newBookingError(code, format string, args ...interface{}) error {
	return &BookingError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// OrderCreationError means the gateway did not return a usable order.
type OrderCreationError struct {
	BookingID string
	Err       error
}

func (e *OrderCreationError) Error() string {
	if e.Err == nil {
		return "order creation failed"
	}
	return "order creation failed: " + e.Err.Error()
}

func (e *OrderCreationError) Unwrap() error { return e.Err }
