package tourRepo

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

type mongoTourRepo struct {
	coll *mongo.Collection
}

// NewMongoTourRepo constructs a MongoDB TourRepository.
func NewMongoTourRepo(db *mongo.Database) TourRepository {
	return &mongoTourRepo{coll: db.Collection(collectionName)}
}

func (r *mongoTourRepo) Create(ctx context.Context, tour *models.Tour) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, tour); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return database.ErrDuplicate
		}
		return fmt.Errorf("failed to insert tour: %w", err)
	}
	return nil
}

func (r *mongoTourRepo) GetByID(ctx context.Context, id string) (*models.Tour, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var tour models.Tour
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&tour); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch tour: %w", err)
	}
	return &tour, nil
}

func (r *mongoTourRepo) Update(ctx context.Context, tour *models.Tour) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	next := *tour
	next.Version++
	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": tour.ID, "version": tour.Version}, &next)
	if err != nil {
		return fmt.Errorf("failed to update tour: %w", err)
	}
	if res.MatchedCount == 0 {
		n, err := r.coll.CountDocuments(ctx, bson.M{"id": tour.ID})
		if err != nil {
			return fmt.Errorf("failed to check tour: %w", err)
		}
		if n == 0 {
			return database.ErrNotFound
		}
		return fmt.Errorf("tour %s changed concurrently: %w", tour.ID, database.ErrTransactionConflict)
	}
	tour.Version = next.Version
	return nil
}

func (r *mongoTourRepo) List(ctx context.Context, filter models.TourFilter, activeOnly bool) ([]models.Tour, error) {
	q := bson.M{}
	if activeOnly {
		q["active"] = true
	}
	if filter.City != "" {
		q["city"] = filter.City
	}
	if filter.Category != "" {
		q["category"] = filter.Category
	}
	return r.find(ctx, q)
}

func (r *mongoTourRepo) ListByGuide(ctx context.Context, guideID string) ([]models.Tour, error) {
	return r.find(ctx, bson.M{"guideId": guideID})
}

func (r *mongoTourRepo) find(ctx context.Context, filter bson.M) ([]models.Tour, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query tours: %w", err)
	}
	defer cursor.Close(ctx)

	tours := []models.Tour{}
	if err := cursor.All(ctx, &tours); err != nil {
		return nil, fmt.Errorf("failed to decode tours: %w", err)
	}
	return tours, nil
}
