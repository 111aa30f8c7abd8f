package cron

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"tourly/config"
	"tourly/services/notification"
	"tourly/services/tasks"
)

// ReminderWorker processes scheduled reservation reminders.
type ReminderWorker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

// RedisOpt is the asynq connection for the reminder queue.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

func NewReminderWorker(redisOpt asynq.RedisConnOpt, notifSvc notification.NotificationService, logger *zap.Logger) *ReminderWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: logger.Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendReminder, HandleReminderTask(notifSvc, logger))

	return &ReminderWorker{srv: srv, mux: mux, logger: logger}
}

// Start runs the worker in the background.
func (w *ReminderWorker) Start() error {
	w.logger.Info("Starting reminder worker")
	if err := w.srv.Start(w.mux); err != nil {
		return fmt.Errorf("failed to start reminder worker: %w", err)
	}
	return nil
}

// Shutdown waits for in-flight reminders and stops the worker.
func (w *ReminderWorker) Shutdown() {
	w.srv.Shutdown()
	w.logger.Info("Reminder worker stopped")
}

// HandleReminderTask decodes a reminder and hands it to the notification service. Malformed
// payloads are skipped rather than retried.
func HandleReminderTask(notifSvc notification.NotificationService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseReminderPayload(task)
		if err != nil {
			logger.Error("Invalid reminder payload", zap.Error(err))
			return fmt.Errorf("invalid reminder payload: %v: %w", err, asynq.SkipRetry)
		}

		logger.Info("Triggering reminder",
			zap.String("reservationId", p.ReservationID),
			zap.String("userId", p.UserID),
		)
		if err := notifSvc.SendReminder(ctx, p); err != nil {
			logger.Warn("Reminder delivery failed", zap.String("reservationId", p.ReservationID), zap.Error(err))
			return err
		}
		return nil
	}
}
