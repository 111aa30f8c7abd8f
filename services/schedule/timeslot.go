package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tourly/database"
	"tourly/models"
)

// CreateSlots schedules new slots on a tour the guide owns. Each slot opens with its full
// capacity available.
func (s *DefaultScheduleService) CreateSlots(ctx context.Context, guide *models.UserIdentity, tourID string, inputs []models.SlotInput) ([]models.Slot, error) {
	if !guide.IsGuide() {
		return nil, ErrNotGuide
	}
	if len(inputs) == 0 {
		return nil, InvalidSlotError{Index: -1, Message: "at least one slot is required"}
	}
	tour, err := s.Tours.GetByID(ctx, tourID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("failed to load tour: %w", err)
	}
	if tour.GuideID != guide.UID {
		return nil, ErrNotOwner
	}

	now := s.Now()
	slots := make([]models.Slot, 0, len(inputs))
	for i, in := range inputs {
		if !in.Start.Before(in.End) {
			return nil, InvalidSlotError{Index: i, Message: "start must be before end"}
		}
		if in.Capacity <= 0 {
			return nil, InvalidSlotError{Index: i, Message: "capacity must be greater than zero"}
		}
		slots = append(slots, models.Slot{
			ID:        uuid.New().String(),
			TourID:    tour.ID,
			GuideID:   guide.UID,
			GuideName: guide.DisplayName,
			Start:     in.Start.UTC(),
			End:       in.End.UTC(),
			Capacity:  in.Capacity,
			Available: in.Capacity,
			Active:    true,
			CreatedAt: now,
		})
	}

	if _, err := s.Slots.CreateMany(ctx, slots); err != nil {
		return nil, fmt.Errorf("failed to create slots: %w", err)
	}
	s.Logger.Info("Slots scheduled",
		zap.String("tourId", tourID),
		zap.String("guideId", guide.UID),
		zap.Int("count", len(slots)),
	)
	return slots, nil
}

// UpdateSlot edits the schedule fields of a slot. Capacity and seat counts never change here.
func (s *DefaultScheduleService) UpdateSlot(ctx context.Context, guide *models.UserIdentity, slotID string, patch models.SlotPatch) (*models.Slot, error) {
	if !guide.IsGuide() {
		return nil, ErrNotGuide
	}
	current, err := s.Slots.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to load slot: %w", err)
	}
	if current.GuideID != guide.UID {
		return nil, ErrNotOwner
	}

	start, end := current.Start, current.End
	if patch.Start != nil {
		start = *patch.Start
	}
	if patch.End != nil {
		end = *patch.End
	}
	if !start.Before(end) {
		return nil, InvalidSlotError{Index: -1, Message: "start must be before end"}
	}

	updated, err := s.Slots.UpdateSchedule(ctx, slotID, patch)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to update slot: %w", err)
	}
	s.Logger.Info("Slot updated", zap.String("slotId", slotID), zap.Bool("active", updated.Active))
	return updated, nil
}

func (s *DefaultScheduleService) ListTourSlots(ctx context.Context, tourID string, from, to time.Time, onlyBookable bool) ([]models.Slot, error) {
	slots, err := s.Slots.ListByTour(ctx, tourID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	if !onlyBookable {
		return slots, nil
	}

	now := s.Now()
	bookable := make([]models.Slot, 0, len(slots))
	for _, slot := range slots {
		if slot.Bookable(1) && slot.Start.After(now) {
			bookable = append(bookable, slot)
		}
	}
	return bookable, nil
}
