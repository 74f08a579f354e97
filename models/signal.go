package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Signaling event names.
const (
	EventJoinLawyer          = "join-lawyer"
	EventJoinUser            = "join-user"
	EventJoinBooking         = "join-booking"
	EventChatMessage         = "chat-message"
	EventTyping              = "typing"
	EventEndSession          = "end-session"
	EventCallStatus          = "call-status"
	EventBookingAccepted     = "booking-accepted"
	EventBookingNotification = "booking-notification"
	EventIncomingCall        = "incoming-call"
	EventSessionStarted      = "session-started"
	EventNewMessage          = "new-message"
	EventSessionEnded        = "session-ended"
	EventMediaCredentials    = "agora-credentials"
	EventLawyerRequest       = "lawyer-request"
	EventError               = "error"
)

// Call status values carried by call-status.
const (
	CallRejected = "rejected"
	CallEnded    = "ended"
)

// ErrInvalidEvent is returned for unknown events and malformed payloads.
var ErrInvalidEvent = errors.New("invalid signaling event")

// Envelope is the wire frame of every signaling message.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type JoinPayload struct {
	ID string `json:"id"`
}

type JoinBookingPayload struct {
	BookingID string `json:"bookingId"`
}

type TypingPayload struct {
	BookingID string `json:"bookingId"`
	SenderID  string `json:"senderId"`
	Typing    bool   `json:"typing"`
}

type EndSessionPayload struct {
	BookingID string `json:"bookingId"`
}

type CallStatusPayload struct {
	BookingID string `json:"bookingId"`
	Status    string `json:"status"`
	UserID    string `json:"userId,omitempty"`
}

type BookingAcceptedPayload struct {
	BookingID string `json:"bookingId"`
	LawyerID  string `json:"lawyerId"`
	UserID    string `json:"userId"`
	Duration  int    `json:"duration"`
}

// BookingNotificationPayload tells a lawyer about a paid booking.
type BookingNotificationPayload struct {
	BookingID  string `json:"bookingId"`
	ClientID   string `json:"userId"`
	ClientName string `json:"userName,omitempty"`
	LawyerID   string `json:"lawyerId"`
	Mode       string `json:"mode"`
	Amount     string `json:"amount,omitempty"`
	Duration   int    `json:"duration"`
}

// IncomingCallPayload rings a lawyer for a call or video booking.
type IncomingCallPayload struct {
	BookingID  string `json:"bookingId"`
	ClientID   string `json:"userId"`
	ClientName string `json:"userName,omitempty"`
	LawyerID   string `json:"lawyerId"`
	Mode       string `json:"mode"`
}

type SessionStartedPayload struct {
	BookingID string    `json:"bookingId"`
	Duration  int       `json:"duration"`
	StartedAt time.Time `json:"startedAt"`
}

type SessionEndedPayload struct {
	BookingID string `json:"bookingId"`
	Reason    string `json:"reason,omitempty"`
}

type MediaCredentialsPayload struct {
	BookingID   string            `json:"bookingId"`
	Mode        string            `json:"mode"`
	Credentials *MediaCredentials `json:"credentials"`
}

type ErrorPayload struct {
	Event   string `json:"event,omitempty"`
	Message string `json:"message"`
}

// NewEnvelope marshals payload under event.
func NewEnvelope(event string, payload interface{}) (*Envelope, error) {
	if payload == nil {
		return &Envelope{Event: event}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", event, err)
	}
	return &Envelope{Event: event, Data: data}, nil
}

func invalid(event, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidEvent, event, fmt.Sprintf(format, args...))
}

// DecodeEvent parses data into the payload type registered for event and
// validates it. Unknown events are rejected rather than passed through.
func DecodeEvent(event string, data json.RawMessage) (interface{}, error) {
	var target interface{}
	switch event {
	case EventJoinLawyer, EventJoinUser:
		target = &JoinPayload{}
	case EventJoinBooking:
		target = &JoinBookingPayload{}
	case EventChatMessage, EventNewMessage:
		target = &Message{}
	case EventTyping:
		target = &TypingPayload{}
	case EventEndSession:
		target = &EndSessionPayload{}
	case EventCallStatus:
		target = &CallStatusPayload{}
	case EventBookingAccepted:
		target = &BookingAcceptedPayload{}
	case EventBookingNotification:
		target = &BookingNotificationPayload{}
	case EventIncomingCall:
		target = &IncomingCallPayload{}
	case EventSessionStarted:
		target = &SessionStartedPayload{}
	case EventSessionEnded:
		target = &SessionEndedPayload{}
	case EventMediaCredentials:
		target = &MediaCredentialsPayload{}
	case EventLawyerRequest:
		target = &LawyerRequest{}
	case EventError:
		target = &ErrorPayload{}
	default:
		return nil, invalid(event, "unknown event")
	}

	if len(data) == 0 {
		return nil, invalid(event, "missing payload")
	}
	if err := json.Unmarshal(data, target); err != nil {
		return nil, invalid(event, "%v", err)
	}
	if err := ValidatePayload(event, target); err != nil {
		return nil, err
	}
	return target, nil
}

// ValidatePayload enforces the per-event required fields.
func ValidatePayload(event string, payload interface{}) error {
	switch p := payload.(type) {
	case *JoinPayload:
		if p.ID == "" {
			return invalid(event, "id is required")
		}
	case *JoinBookingPayload:
		if p.BookingID == "" {
			return invalid(event, "bookingId is required")
		}
	case *Message:
		if p.ID == "" || p.BookingID == "" {
			return invalid(event, "message id and bookingId are required")
		}
		if p.Content == "" && len(p.Files) == 0 {
			return invalid(event, "message is empty")
		}
	case *TypingPayload:
		if p.BookingID == "" {
			return invalid(event, "bookingId is required")
		}
	case *EndSessionPayload:
		if p.BookingID == "" {
			return invalid(event, "bookingId is required")
		}
	case *CallStatusPayload:
		if p.BookingID == "" {
			return invalid(event, "bookingId is required")
		}
		if p.Status != CallRejected && p.Status != CallEnded {
			return invalid(event, "status must be %q or %q", CallRejected, CallEnded)
		}
	case *BookingAcceptedPayload:
		if p.BookingID == "" || p.LawyerID == "" {
			return invalid(event, "bookingId and lawyerId are required")
		}
		if p.Duration <= 0 {
			return invalid(event, "duration must be positive")
		}
	case *BookingNotificationPayload:
		if p.BookingID == "" || !ValidMode(p.Mode) {
			return invalid(event, "bookingId and a valid mode are required")
		}
	case *IncomingCallPayload:
		if p.BookingID == "" {
			return invalid(event, "bookingId is required")
		}
		if !IsMediaMode(p.Mode) {
			return invalid(event, "mode %q cannot ring; chat bookings use %s", p.Mode, EventBookingNotification)
		}
	case *SessionStartedPayload:
		if p.BookingID == "" || p.Duration <= 0 {
			return invalid(event, "bookingId and a positive duration are required")
		}
	case *SessionEndedPayload:
		if p.BookingID == "" {
			return invalid(event, "bookingId is required")
		}
	case *MediaCredentialsPayload:
		if p.BookingID == "" || p.Credentials == nil || p.Credentials.ChannelName == "" {
			return invalid(event, "bookingId and credentials are required")
		}
	case *LawyerRequest:
		if p.ID == "" || p.LawyerID == "" || p.Status == "" {
			return invalid(event, "id, lawyerId and status are required")
		}
	case *ErrorPayload:
		if p.Message == "" {
			return invalid(event, "message is required")
		}
	default:
		return invalid(event, "unexpected payload type %T", payload)
	}
	return nil
}
