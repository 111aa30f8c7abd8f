package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"tourly/models"
)

const TypeSendReminder = "reminder:send"

// NewReminderTask builds the reminder task for a reservation, due at fireAt. The task id
// is derived from the reservation so a reminder is only ever queued once.
func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID("reminder:" + payload.ReservationID),
		asynq.MaxRetry(3),
	}
	return task, opts, nil
}

// ParseReminderPayload decodes the body of a reminder task.
func ParseReminderPayload(task *asynq.Task) (models.ReminderPayload, error) {
	var p models.ReminderPayload
	err := json.Unmarshal(task.Payload(), &p)
	return p, err
}
