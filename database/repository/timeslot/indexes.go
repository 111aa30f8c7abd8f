// FILE: database/repository/timeslot/indexes.go
package timeslotRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the slots collection.
func EnsureIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		// Unique index on slot ID
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Compound index for tourId and start (primary query pattern)
		{
			Keys:    bson.D{{Key: "tourId", Value: 1}, {Key: "start", Value: 1}},
			Options: options.Index().SetName("tour_start_idx"),
		},
		{
			Keys:    bson.D{{Key: "tourId", Value: 1}, {Key: "active", Value: 1}, {Key: "start", Value: 1}},
			Options: options.Index().SetName("tour_active_start_idx"),
		},
	}

	if _, err := db.Collection(CollectionName).Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create timeslot indexes: %w", err)
	}
	return nil
}
