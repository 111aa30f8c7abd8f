// File: database/repository/reservation/interface.go
package reservationRepo

import (
	"context"

	"tourly/models"
)

// Tx is the transactional view of the store handed to RunTransaction callbacks. All reads
// must happen before the first write, which is what Firestore requires.
type Tx interface {
	GetSlot(ctx context.Context, id string) (*models.Slot, error)
	GetTour(ctx context.Context, id string) (*models.Tour, error)
	GetReservation(ctx context.Context, id string) (*models.Reservation, error)
	InsertReservation(ctx context.Context, r *models.Reservation) error
	// UpdateSlotAvailable writes the new counter for a slot previously read in this
	// transaction and bumps its version.
	UpdateSlotAvailable(ctx context.Context, slot *models.Slot, available int) error
	UpdateReservationStatus(ctx context.Context, r *models.Reservation, status models.ReservationStatus) error
}

// ReservationRepository owns reservations and the transaction primitive used to book them.
type ReservationRepository interface {
	// RunTransaction runs fn atomically. On a concurrency conflict the backend discards fn's
	// writes and runs it again against fresh state; errors returned by fn abort without
	// retry. fn may therefore run more than once and must not have side effects outside tx.
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	GetByID(ctx context.Context, id string) (*models.Reservation, error)
	// ListByUser, ListByTour and ListBySlot return newest reservations first.
	ListByUser(ctx context.Context, userID string) ([]models.Reservation, error)
	ListByTour(ctx context.Context, tourID string) ([]models.Reservation, error)
	ListBySlot(ctx context.Context, slotID string) ([]models.Reservation, error)
	Ping(ctx context.Context) error
}

const (
	collectionName = "reservations"
	slotCollection = "slots"
	tourCollection = "tours"
)
