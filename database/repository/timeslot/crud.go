// File: database/repository/timeslot/crud.go
package timeslotRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tourly/database"
	"tourly/models"
)

type mongoTimeSlotRepo struct {
	coll *mongo.Collection
}

// NewMongoTimeSlotRepo constructs a new MongoDB TimeSlotRepository.
func NewMongoTimeSlotRepo(db *mongo.Database) TimeSlotRepository {
	return &mongoTimeSlotRepo{coll: db.Collection(CollectionName)}
}

func (r *mongoTimeSlotRepo) CreateMany(ctx context.Context, slots []models.Slot) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	docs := make([]interface{}, len(slots))
	ids := make([]string, len(slots))
	for i, slot := range slots {
		docs[i] = slot
		ids[i] = slot.ID
	}

	if _, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, database.ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert timeslots: %w", err)
	}
	return ids, nil
}

func (r *mongoTimeSlotRepo) GetByID(ctx context.Context, id string) (*models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var slot models.Slot
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&slot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch timeslot: %w", err)
	}
	return &slot, nil
}

func (r *mongoTimeSlotRepo) ListByTour(ctx context.Context, tourID string, from, to time.Time) ([]models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"tourId": tourID}
	window := bson.M{}
	if !from.IsZero() {
		window["$gte"] = from
	}
	if !to.IsZero() {
		window["$lt"] = to
	}
	if len(window) > 0 {
		filter["start"] = window
	}

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch timeslots: %w", err)
	}
	defer cursor.Close(ctx)

	slots := []models.Slot{}
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("error decoding timeslots: %w", err)
	}
	return slots, nil
}

func (r *mongoTimeSlotRepo) UpdateSchedule(ctx context.Context, id string, patch models.SlotPatch) (*models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{}
	if patch.Start != nil {
		set["start"] = *patch.Start
	}
	if patch.End != nil {
		set["end"] = *patch.End
	}
	if patch.Active != nil {
		set["active"] = *patch.Active
	}
	update := bson.M{"$inc": bson.M{"version": 1}}
	if len(set) > 0 {
		update["$set"] = set
	}

	var slot models.Slot
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(&slot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update timeslot: %w", err)
	}
	return &slot, nil
}
