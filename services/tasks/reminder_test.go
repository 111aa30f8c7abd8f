package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourly/models"
)

func TestReminderTaskPayload(t *testing.T) {
	start := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	payload := models.ReminderPayload{ReservationID: "r1", UserID: "u1", TourTitle: "Belem", SlotStart: start}

	task, opts, err := NewReminderTask(payload, start.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, TypeSendReminder, task.Type())
	assert.Len(t, opts, 3)

	got, err := ParseReminderPayload(task)
	require.NoError(t, err)
	assert.Equal(t, payload.ReservationID, got.ReservationID)
	assert.Equal(t, payload.UserID, got.UserID)
	assert.True(t, got.SlotStart.Equal(start))
}
