package notification

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// FCMPusher sends high priority pushes through Firebase Cloud Messaging.
// A nil *FCMPusher drops every push, so servers without Firebase credentials
// still run.
type FCMPusher struct {
	client sender
	logger *zap.Logger
}

// NewFCMPusher initialises the Firebase app from a service account file.
func NewFCMPusher(ctx context.Context, credentialsFile string, logger *zap.Logger) (*FCMPusher, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("firebase: initializing app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: messaging client: %w", err)
	}
	return newFCMPusher(client, logger), nil
}

func newFCMPusher(client sender, logger *zap.Logger) *FCMPusher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FCMPusher{client: client, logger: logger.Named("fcm")}
}

// Push delivers one notification to token.
func (p *FCMPusher) Push(ctx context.Context, token, title, body string, data map[string]string) error {
	if p == nil || p.client == nil {
		return nil
	}
	if token == "" {
		return ErrNoToken
	}
	id, err := p.client.Send(ctx, buildMessage(token, title, body, data))
	if err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	p.logger.Debug("push sent", zap.String("messageId", id), zap.String("type", data["type"]))
	return nil
}

func buildMessage(token, title, body string, data map[string]string) *messaging.Message {
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "consultations",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}
}
