package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"tourly/models"
	"tourly/services/tasks"
)

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) ReservationCreated(ctx context.Context, r models.Reservation, slot models.Slot) {
	m.Called(ctx, r, slot)
}

func (m *MockNotificationService) SendReminder(ctx context.Context, p models.ReminderPayload) error {
	return m.Called(ctx, p).Error(0)
}

func TestHandleReminderTask(t *testing.T) {
	svc := &MockNotificationService{}
	handler := HandleReminderTask(svc, zap.NewNop())

	payload := models.ReminderPayload{ReservationID: "r1", UserID: "u1", SlotStart: time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)}
	task, _, err := tasks.NewReminderTask(payload, time.Now())
	assert.NoError(t, err)

	svc.On("SendReminder", mock.Anything, mock.MatchedBy(func(p models.ReminderPayload) bool {
		return p.ReservationID == "r1" && p.UserID == "u1"
	})).Return(nil).Once()
	assert.NoError(t, handler(context.Background(), task))

	svc.On("SendReminder", mock.Anything, mock.Anything).Return(errors.New("fcm down")).Once()
	assert.Error(t, handler(context.Background(), task))

	svc.AssertExpectations(t)
}

func TestHandleReminderTaskSkipsMalformedPayload(t *testing.T) {
	svc := &MockNotificationService{}
	handler := HandleReminderTask(svc, zap.NewNop())

	err := handler(context.Background(), asynq.NewTask(tasks.TypeSendReminder, []byte("{not json")))

	assert.ErrorIs(t, err, asynq.SkipRetry)
	svc.AssertNotCalled(t, "SendReminder", mock.Anything, mock.Anything)
}
