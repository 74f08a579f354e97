package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lawdesk/models"

	"github.com/hibiken/asynq"
)

const TypeSessionExpire = "session:expire"

// NewExpiryTask builds the task that ends a booking's session at fireAt.
func NewExpiryTask(bookingID string, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(models.SessionExpiryPayload{BookingID: bookingID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSessionExpire, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(fmt.Sprintf("%s:%s:%d", TypeSessionExpire, bookingID, fireAt.Unix())),
		asynq.MaxRetry(5),
	}
	return task, opts, nil
}

// ParseExpiryTask reads the booking id out of a session:expire task.
func ParseExpiryTask(task *asynq.Task) (string, error) {
	var p models.SessionExpiryPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return "", err
	}
	if p.BookingID == "" {
		return "", errors.New("expiry task without booking id")
	}
	return p.BookingID, nil
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Scheduler enqueues session expiry tasks.
type Scheduler struct {
	client enqueuer
}

func NewScheduler(client *asynq.Client) *Scheduler {
	return &Scheduler{client: client}
}

// ScheduleExpiry enqueues the expiry of bookingID at at. Scheduling the same
// booking for the same second twice is a no-op.
func (s *Scheduler) ScheduleExpiry(ctx context.Context, bookingID string, at time.Time) error {
	task, opts, err := NewExpiryTask(bookingID, at)
	if err != nil {
		return err
	}
	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		return fmt.Errorf("enqueue expiry for %s: %w", bookingID, err)
	}
	return nil
}
