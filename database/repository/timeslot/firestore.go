package timeslotRepo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tourly/database"
	"tourly/models"
)

type firestoreTimeSlotRepo struct {
	client *firestore.Client
}

// NewFirestoreTimeSlotRepo constructs a Cloud Firestore TimeSlotRepository.
func NewFirestoreTimeSlotRepo(client *firestore.Client) TimeSlotRepository {
	return &firestoreTimeSlotRepo{client: client}
}

func (r *firestoreTimeSlotRepo) CreateMany(ctx context.Context, slots []models.Slot) ([]string, error) {
	coll := r.client.Collection(CollectionName)
	ids := make([]string, len(slots))
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for i := range slots {
			if err := tx.Create(coll.Doc(slots[i].ID), slots[i]); err != nil {
				return err
			}
			ids[i] = slots[i].ID
		}
		return nil
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, database.ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create timeslots: %w", err)
	}
	return ids, nil
}

func (r *firestoreTimeSlotRepo) GetByID(ctx context.Context, id string) (*models.Slot, error) {
	snap, err := r.client.Collection(CollectionName).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch timeslot: %w", err)
	}
	var slot models.Slot
	if err := snap.DataTo(&slot); err != nil {
		return nil, fmt.Errorf("failed to decode timeslot: %w", err)
	}
	return &slot, nil
}

func (r *firestoreTimeSlotRepo) ListByTour(ctx context.Context, tourID string, from, to time.Time) ([]models.Slot, error) {
	snaps, err := r.client.Collection(CollectionName).Where("tourId", "==", tourID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch timeslots: %w", err)
	}
	slots := []models.Slot{}
	for _, snap := range snaps {
		var slot models.Slot
		if err := snap.DataTo(&slot); err != nil {
			return nil, fmt.Errorf("failed to decode timeslot %s: %w", snap.Ref.ID, err)
		}
		if inWindow(slot.Start, from, to) {
			slots = append(slots, slot)
		}
	}
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })
	return slots, nil
}

func (r *firestoreTimeSlotRepo) UpdateSchedule(ctx context.Context, id string, patch models.SlotPatch) (*models.Slot, error) {
	ref := r.client.Collection(CollectionName).Doc(id)
	var slot models.Slot
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		if err := snap.DataTo(&slot); err != nil {
			return err
		}
		applyPatch(&slot, patch)
		return tx.Update(ref, []firestore.Update{
			{Path: "start", Value: slot.Start},
			{Path: "end", Value: slot.End},
			{Path: "active", Value: slot.Active},
			{Path: "version", Value: slot.Version},
		})
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update timeslot: %w", err)
	}
	return &slot, nil
}
