package models

import "time"

// ReminderPayload is the body of a scheduled reservation reminder task.
type ReminderPayload struct {
	ReservationID string    `json:"reservationId"`
	UserID        string    `json:"userId"`
	TourTitle     string    `json:"tourTitle"`
	SlotStart     time.Time `json:"slotStart"`
}
