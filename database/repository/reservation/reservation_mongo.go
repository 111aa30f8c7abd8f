package reservationRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"tourly/models"
)

type MongoReservationRepo struct {
	client   *mongo.Client
	coll     *mongo.Collection
	slotColl *mongo.Collection
	tourColl *mongo.Collection
}

// NewMongoReservationRepo constructs a MongoDB ReservationRepository. The database must
// live on a replica set for transactions to work.
func NewMongoReservationRepo(db *mongo.Database) *MongoReservationRepo {
	return &MongoReservationRepo{
		client:   db.Client(),
		coll:     db.Collection(collectionName),
		slotColl: db.Collection(slotCollection),
		tourColl: db.Collection(tourCollection),
	}
}

func (repo *MongoReservationRepo) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var r models.Reservation
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&r); err != nil {
		return nil, translate(err, "fetch reservation")
	}
	return &r, nil
}

func (repo *MongoReservationRepo) ListByUser(ctx context.Context, userID string) ([]models.Reservation, error) {
	return repo.find(ctx, bson.M{"userId": userID})
}

func (repo *MongoReservationRepo) ListByTour(ctx context.Context, tourID string) ([]models.Reservation, error) {
	return repo.find(ctx, bson.M{"tourId": tourID})
}

func (repo *MongoReservationRepo) ListBySlot(ctx context.Context, slotID string) ([]models.Reservation, error) {
	return repo.find(ctx, bson.M{"slotId": slotID})
}

func (repo *MongoReservationRepo) Ping(ctx context.Context) error {
	return repo.client.Ping(ctx, readpref.Primary())
}

func (repo *MongoReservationRepo) find(ctx context.Context, filter bson.M) ([]models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.Reservation{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}
	return out, nil
}
