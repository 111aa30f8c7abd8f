package notification

import (
	"context"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"tourly/models"
)

// NotificationService sends booking pushes and reservation reminders.
type NotificationService interface {
	// ReservationCreated alerts the guide and queues the customer's reminder. Failures are
	// logged, never returned, so they cannot affect a committed booking.
	ReservationCreated(ctx context.Context, r models.Reservation, slot models.Slot)
	// SendReminder delivers a due reminder unless the reservation was cancelled meanwhile.
	SendReminder(ctx context.Context, p models.ReminderPayload) error
}

// Sender delivers one FCM message; *messaging.Client satisfies it.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// TaskQueue schedules background tasks; *asynq.Client satisfies it.
type TaskQueue interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ReservationReader is the read side the reminder worker needs.
type ReservationReader interface {
	GetByID(ctx context.Context, id string) (*models.Reservation, error)
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Sender       Sender
	Queue        TaskQueue
	Reservations ReservationReader
	LeadTime     time.Duration
	Logger       *zap.Logger
	Now          func() time.Time
}

func NewDefaultNotificationService(
	sender Sender,
	queue TaskQueue,
	reservations ReservationReader,
	leadTime time.Duration,
	logger *zap.Logger,
) *DefaultNotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultNotificationService{
		Sender:       sender,
		Queue:        queue,
		Reservations: reservations,
		LeadTime:     leadTime,
		Logger:       logger,
		Now:          func() time.Time { return time.Now().UTC() },
	}
}

// NoopNotificationService is used when notifications are disabled.
type NoopNotificationService struct{}

func (NoopNotificationService) ReservationCreated(context.Context, models.Reservation, models.Slot) {}

func (NoopNotificationService) SendReminder(context.Context, models.ReminderPayload) error {
	return nil
}

func GuideTopic(guideID string) string { return "guide-" + guideID }

func UserTopic(userID string) string { return "user-" + userID }
