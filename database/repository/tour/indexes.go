// FILE: database/repository/tour/indexes.go
package tourRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the tours collection.
func EnsureIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Public catalog listing
		{
			Keys:    bson.D{{Key: "active", Value: 1}, {Key: "city", Value: 1}, {Key: "category", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("active_city_category_idx"),
		},
		{
			Keys:    bson.D{{Key: "guideId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("guide_idx"),
		},
	}

	if _, err := db.Collection(collectionName).Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create tour indexes: %w", err)
	}
	return nil
}
