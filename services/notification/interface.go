// Package notification delivers device pushes and booking lifecycle events.
package notification

import (
	"context"
	"errors"

	"firebase.google.com/go/v4/messaging"
)

// ErrNoToken is returned when the recipient has no registered device.
var ErrNoToken = errors.New("recipient has no FCM token")

// sender is the part of the FCM client used here.
type sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}
