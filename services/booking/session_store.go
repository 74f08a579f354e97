package booking

import (
	"context"
	"encoding/json"
	"time"

	"lawdesk/models"
	"lawdesk/utils"

	"github.com/go-redis/redis/v8"
)

// RedisSessionStore keeps active sessions under session:<bookingId> until they expire.
type RedisSessionStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client, now: time.Now}
}

func (s *RedisSessionStore) Save(ctx context.Context, b *models.Booking) error {
	ttl := time.Duration(b.RemainingSeconds(s.now())) * time.Second
	if ttl <= 0 {
		return s.Delete(ctx, b.ID)
	}
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, utils.SessionCachePrefix+b.ID, data, ttl).Err()
}

func (s *RedisSessionStore) Delete(ctx context.Context, bookingID string) error {
	return s.client.Del(ctx, utils.SessionCachePrefix+bookingID).Err()
}
