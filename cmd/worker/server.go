package main

import (
	"context"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"schoolsite-backend/internal/config"
	"schoolsite-backend/internal/shared"
	"schoolsite-backend/pkg/logger"
)

// ========================================
// WORKER SERVER
// ========================================

// NewWorkerServer builds the asynq server that consumes notification
// tasks. Queue weights favor review notifications over digests.
func NewWorkerServer(cfg *config.Config) *asynq.Server {
	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Host,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				shared.QueueHigh:    20,
				shared.QueueDefault: 10,
				shared.QueueLow:     5,
			},
			RetryDelayFunc: retryDelay,
			ErrorHandler:   asynq.ErrorHandlerFunc(reportTaskError),
		},
	)
}

// retryDelay backs off exponentially: 10s, 20s, 40s...
func retryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	return time.Duration(10*(1<<uint(n))) * time.Second
}

func reportTaskError(_ context.Context, task *asynq.Task, err error) {
	logger.Error("task processing failed: "+task.Type(), err)
}

// ========================================
// SCHEDULER
// ========================================

// NewScheduler builds the asynq scheduler that enqueues periodic tasks.
func NewScheduler(cfg *config.Config) *asynq.Scheduler {
	loc, err := time.LoadLocation("UTC")
	if err != nil {
		log.Fatalf("❌ Failed to load scheduler timezone: %v", err)
	}

	return asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Host,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		&asynq.SchedulerOpts{
			Location: loc,
			LogLevel: asynq.InfoLevel,
		},
	)
}

// RegisterScheduledTasks wires every periodic task onto the scheduler.
func RegisterScheduledTasks(scheduler *asynq.Scheduler) error {
	// Daily pending-submission digest at 07:00 UTC
	digestTask := asynq.NewTask(shared.TypeNotifyPendingDigest, nil)
	entryID, err := scheduler.Register(
		"0 7 * * *",
		digestTask,
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(2),
	)
	if err != nil {
		return err
	}

	log.Printf("✅ Registered pending digest schedule (entry: %s)", entryID)
	return nil
}
