package timeslotRepo

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"tourly/database/memdb"
	"tourly/models"
)

type memoryTimeSlotRepo struct {
	db *memdb.DB
}

// NewMemoryTimeSlotRepo constructs a TimeSlotRepository on the in-process store.
func NewMemoryTimeSlotRepo(db *memdb.DB) TimeSlotRepository {
	return &memoryTimeSlotRepo{db: db}
}

func (r *memoryTimeSlotRepo) CreateMany(ctx context.Context, slots []models.Slot) ([]string, error) {
	ids := make([]string, 0, len(slots))
	err := r.db.RunTransaction(ctx, func(ctx context.Context, tx *memdb.Txn) error {
		ids = ids[:0]
		for _, slot := range slots {
			if err := tx.Create(CollectionName, slot.ID, slot); err != nil {
				return err
			}
			ids = append(ids, slot.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *memoryTimeSlotRepo) GetByID(ctx context.Context, id string) (*models.Slot, error) {
	var slot models.Slot
	if err := r.db.Get(ctx, CollectionName, id, &slot); err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *memoryTimeSlotRepo) ListByTour(ctx context.Context, tourID string, from, to time.Time) ([]models.Slot, error) {
	raws, err := r.db.All(ctx, CollectionName)
	if err != nil {
		return nil, err
	}
	slots := []models.Slot{}
	for _, raw := range raws {
		var slot models.Slot
		if err := bson.Unmarshal(raw, &slot); err != nil {
			return nil, err
		}
		if slot.TourID == tourID && inWindow(slot.Start, from, to) {
			slots = append(slots, slot)
		}
	}
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })
	return slots, nil
}

func (r *memoryTimeSlotRepo) UpdateSchedule(ctx context.Context, id string, patch models.SlotPatch) (*models.Slot, error) {
	var slot models.Slot
	err := r.db.Update(ctx, CollectionName, id, &slot, func() error {
		applyPatch(&slot, patch)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &slot, nil
}
