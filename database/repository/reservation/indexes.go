// FILE: database/repository/reservation/indexes.go
package reservationRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the reservation indexes. This also creates the collection up front,
// which transactions cannot do implicitly before MongoDB 4.4.
func EnsureIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("user_created_idx"),
		},
		{
			Keys:    bson.D{{Key: "tourId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("tour_created_idx"),
		},
		{
			Keys:    bson.D{{Key: "slotId", Value: 1}},
			Options: options.Index().SetName("slot_idx"),
		},
	}

	if _, err := db.Collection(collectionName).Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create reservation indexes: %w", err)
	}
	return nil
}
