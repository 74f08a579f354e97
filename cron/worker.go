package cron

import (
	"context"
	"time"

	"lawdesk/config"
	"lawdesk/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// SessionExpirer ends sessions whose time is up.
type SessionExpirer interface {
	ExpireSession(ctx context.Context, bookingID string) error
}

// RedisTaskOpt is the asynq connection shared by the scheduler and the worker.
func RedisTaskOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskDB,
	}
}

// InitExpiryWorker runs the session expiry worker in the background.
func InitExpiryWorker(expirer SessionExpirer, logger *zap.Logger) *asynq.Server {
	log := logger.Named("expiry-worker")
	srv := asynq.NewServer(
		RedisTaskOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues:      map[string]int{"default": 1},
			Logger:      log.Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSessionExpire, handleExpiryTask(expirer, log))

	go monitorRedisConnection(log)

	go func() {
		log.Info("starting worker")
		const maxAttempts = 5
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			log.Error("worker failed to start", zap.Int("attempt", attempt), zap.Error(err))
			if attempt == maxAttempts {
				log.Fatal("max retry attempts reached")
			}
			time.Sleep(time.Duration(attempt*2) * time.Second)
		}
	}()
	return srv
}

func handleExpiryTask(expirer SessionExpirer, log *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		bookingID, err := tasks.ParseExpiryTask(task)
		if err != nil {
			log.Error("invalid payload", zap.Error(err))
			return asynq.SkipRetry
		}
		if err := expirer.ExpireSession(ctx, bookingID); err != nil {
			log.Warn("expire session failed", zap.String("bookingId", bookingID), zap.Error(err))
			return err
		}
		return nil
	}
}

func monitorRedisConnection(log *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskDB,
	})
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn("redis connection lost", zap.Error(err))
		}
		cancel()
		time.Sleep(10 * time.Second)
	}
}
