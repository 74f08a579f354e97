package messageRepo

import (
	"context"

	"lawdesk/models"
)

// MessageRepository stores chat history per booking.
type MessageRepository interface {
	// Save upserts a message keyed by its id. It reports whether the message was new.
	Save(ctx context.Context, msg *models.Message) (bool, error)
	// History returns a booking's messages ordered by timestamp ascending.
	History(ctx context.Context, bookingID string) ([]models.Message, error)
}
