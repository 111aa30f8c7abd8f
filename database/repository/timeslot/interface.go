// File: database/repository/timeslot/interface.go
package timeslotRepo

import (
	"context"
	"time"

	"tourly/models"
)

// TimeSlotRepository covers the guide-facing slot lifecycle. It never writes the
// available counter after creation; that field belongs to the reservation transaction.
type TimeSlotRepository interface {
	CreateMany(ctx context.Context, slots []models.Slot) ([]string, error)
	GetByID(ctx context.Context, id string) (*models.Slot, error)
	// ListByTour returns slots ordered by start. A zero from or to leaves that side open.
	ListByTour(ctx context.Context, tourID string, from, to time.Time) ([]models.Slot, error)
	// UpdateSchedule applies the patch and bumps the slot version.
	UpdateSchedule(ctx context.Context, id string, patch models.SlotPatch) (*models.Slot, error)
}

// CollectionName is shared with the reservation transaction, which reads and writes slots.
const CollectionName = "slots"

func inWindow(start, from, to time.Time) bool {
	if !from.IsZero() && start.Before(from) {
		return false
	}
	return to.IsZero() || start.Before(to)
}

func applyPatch(slot *models.Slot, patch models.SlotPatch) {
	if patch.Start != nil {
		slot.Start = *patch.Start
	}
	if patch.End != nil {
		slot.End = *patch.End
	}
	if patch.Active != nil {
		slot.Active = *patch.Active
	}
	slot.Version++
}
