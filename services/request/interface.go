// Package request handles free-text enquiries a client sends to a lawyer
// before booking a paid consultation.
package request

import (
	"context"
	"errors"

	"lawdesk/models"
	"lawdesk/services/signaling"
)

var (
	ErrForbidden     = errors.New("not allowed to access this request")
	ErrEmptyMessage  = errors.New("request message is required")
	ErrLongMessage   = errors.New("request message is too long")
	ErrInvalidStatus = errors.New("status must be accepted or rejected")
)

// MaxMessageLength bounds the enquiry text.
const MaxMessageLength = 2000

// Actor is the authenticated caller.
type Actor = signaling.Identity

type RequestService interface {
	Send(ctx context.Context, client Actor, lawyerID, message string) (*models.LawyerRequest, error)
	ListForClient(ctx context.Context, actor Actor, clientID string) ([]models.LawyerRequest, error)
	ListForLawyer(ctx context.Context, actor Actor, lawyerID string) ([]models.LawyerRequest, error)
	Respond(ctx context.Context, lawyer Actor, requestID, status string) (*models.LawyerRequest, error)
}

// Signaler delivers events to signaling rooms.
type Signaler interface {
	Emit(ctx context.Context, room, event string, payload interface{}) error
}

// Pusher sends a device push notification.
type Pusher interface {
	Push(ctx context.Context, token, title, body string, data map[string]string) error
}
