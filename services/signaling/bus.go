package signaling

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Channel is the Redis pub/sub channel shared by all instances.
const Channel = "lawdesk:signal"

// Frame is an event travelling between instances.
type Frame struct {
	Origin  string          `json:"origin"`
	Room    string          `json:"room"`
	Payload json.RawMessage `json:"payload"`
}

// Bus carries frames between server instances.
type Bus interface {
	Publish(ctx context.Context, f Frame) error
	Subscribe(ctx context.Context, fn func(Frame)) error
}

// RedisBus is a Bus over Redis pub/sub.
type RedisBus struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisBus(client *redis.Client) *RedisBus {
	return &RedisBus{client: client, logger: zap.L().Named("signaling.bus")}
}

func (b *RedisBus) Publish(ctx context.Context, f Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, Channel, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", Channel, err)
	}
	return nil
}

// Subscribe blocks, calling fn for each frame, until ctx is done.
func (b *RedisBus) Subscribe(ctx context.Context, fn func(Frame)) error {
	sub := b.client.Subscribe(ctx, Channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", Channel, err)
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var f Frame
			if err := json.Unmarshal([]byte(msg.Payload), &f); err != nil {
				b.logger.Warn("bad frame on bus", zap.Error(err))
				continue
			}
			fn(f)
		}
	}
}
