package models

import "time"

// Booking event types published on the event queue.
const (
	BookingEventCreated  = "booking.created"
	BookingEventVerified = "booking.verified"
	BookingEventAccepted = "booking.accepted"
	BookingEventRejected = "booking.rejected"
	BookingEventEnded    = "booking.ended"
)

// BookingEvent is published whenever a booking changes state.
type BookingEvent struct {
	Type      string    `json:"type"`
	BookingID string    `json:"bookingId"`
	ClientID  string    `json:"clientId"`
	LawyerID  string    `json:"lawyerId"`
	Mode      string    `json:"mode"`
	Status    string    `json:"status"`
	At        time.Time `json:"at"`
}

// SessionExpiryPayload is the payload of a scheduled session expiry task.
type SessionExpiryPayload struct {
	BookingID string `json:"bookingId"`
}
