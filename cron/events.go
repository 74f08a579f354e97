package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lawdesk/services/notification"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// StartEventConsumer logs every booking event from the events queue until ctx
// is cancelled, reconnecting with backoff when the broker goes away.
func StartEventConsumer(ctx context.Context, url string, logger *zap.Logger) {
	log := logger.Named("event-consumer")
	backoff := time.Second
	for ctx.Err() == nil {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("dial broker failed", zap.Error(err), zap.Duration("retryIn", backoff))
			if !sleep(ctx, backoff) {
				return
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeEvents(ctx, conn, log)
		_ = conn.Close()
		if err != nil && ctx.Err() == nil {
			log.Warn("consume loop ended, reconnecting", zap.Error(err))
			sleep(ctx, 2*time.Second)
		}
	}
}

func consumeEvents(ctx context.Context, conn *amqp.Connection, log *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(notification.EventsQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	deliveries, err := ch.Consume(notification.EventsQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			ev, err := notification.DecodeEvent(d.Body)
			if err != nil {
				log.Warn("dropping malformed event", zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			log.Info("booking event",
				zap.String("type", ev.Type),
				zap.String("bookingId", ev.BookingID),
				zap.String("lawyerId", ev.LawyerID),
				zap.String("status", ev.Status),
				zap.Time("at", ev.At),
			)
			_ = d.Ack(false)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
