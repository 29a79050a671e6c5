package cron

import (
	"context"
	"fmt"
	"time"

	"roombooking/config"
	"roombooking/services/booking"
	"roombooking/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// BookingWorker runs the asynq server that completes bookings and the
// scheduler that enqueues the periodic sweep.
type BookingWorker struct {
	srv       *asynq.Server
	scheduler *asynq.Scheduler
	logger    *zap.Logger
}

// RedisOpt is the asynq connection for the task queue database.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskDB,
	}
}

// InitBookingWorker starts the worker and sweep scheduler in background.
func InitBookingWorker(svc booking.BookingService, logger *zap.Logger) (*BookingWorker, error) {
	redisOpts := RedisOpt()

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: logger.Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingComplete, handleCompletionTask(svc, logger))
	mux.HandleFunc(tasks.TypeBookingSweep, handleSweepTask(svc, logger))

	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{
		Location: time.UTC,
		Logger:   logger.Sugar(),
	})
	cronspec := fmt.Sprintf("@every %s", config.AppConfig.SweepInterval)
	if _, err := scheduler.Register(cronspec, tasks.NewSweepTask(), asynq.Unique(config.AppConfig.SweepInterval)); err != nil {
		return nil, fmt.Errorf("register sweep task: %w", err)
	}

	w := &BookingWorker{srv: srv, scheduler: scheduler, logger: logger}

	// Start async worker with retry logic
	go func() {
		logger.Info("[BookingWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Start(mux); err != nil {
				logger.Warn("[BookingWorker] Failed to start worker",
					zap.Int("attempt", attempts),
					zap.Int("maxAttempts", maxAttempts),
					zap.Error(err))

				if attempts == maxAttempts {
					logger.Error("[BookingWorker] Max retry attempts reached, completion relies on lazy reads")
					return
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()

	if err := scheduler.Start(); err != nil {
		logger.Error("[BookingWorker] Sweep scheduler failed to start", zap.Error(err))
	}

	return w, nil
}

// Shutdown stops the scheduler and drains the worker.
func (w *BookingWorker) Shutdown() {
	w.scheduler.Shutdown()
	w.srv.Shutdown()
}

func handleCompletionTask(svc booking.BookingService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseCompletionPayload(task)
		if err != nil {
			logger.Warn("[CompletionHandler] Invalid payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		if err := svc.CompleteBooking(ctx, p.BookingID); err != nil {
			logger.Error("[CompletionHandler] Failed to complete booking",
				zap.String("bookingID", p.BookingID), zap.Error(err))
			return err
		}
		return nil
	}
}

func handleSweepTask(svc booking.BookingService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		n, err := svc.CompleteElapsed(ctx)
		if err != nil {
			logger.Error("[SweepHandler] Sweep failed", zap.Int("completed", n), zap.Error(err))
			return err
		}
		logger.Debug("[SweepHandler] Sweep finished", zap.Int("completed", n))
		return nil
	}
}
