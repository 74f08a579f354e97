package chat

import (
	"context"
	"errors"

	"lawdesk/models"
	"lawdesk/services/signaling"
)

var (
	ErrNotFound         = errors.New("booking not found")
	ErrForbidden        = errors.New("not a participant of this booking")
	ErrSessionNotActive = errors.New("chat session is not active")
	ErrEmptyMessage     = errors.New("message has no content")
)

// Actor is the authenticated sender.
type Actor = signaling.Identity

// ChatService stores and relays booking chat messages.
type ChatService interface {
	Send(ctx context.Context, sender Actor, msg models.Message) (*models.Message, error)
	History(ctx context.Context, actor Actor, bookingID string) ([]models.Message, error)
}

// Relay delivers events to signaling rooms.
type Relay interface {
	Emit(ctx context.Context, room, event string, payload interface{}) error
}
