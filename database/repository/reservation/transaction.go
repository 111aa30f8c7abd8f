package reservationRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.mongodb.org/mongo-driver/x/mongo/driver"

	"tourly/database"
	"tourly/models"
)

// RunTransaction runs fn inside a snapshot multi-document transaction. Two transactions
// writing the same slot make the later one fail with a WriteConflict, which the driver
// labels TransientTransactionError; Session.WithTransaction then reruns fn until it
// commits or ctx expires.
func (repo *MongoReservationRepo) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	sess, err := repo.client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(context.Background())

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, &mongoTx{repo: repo})
	}, txnOpts)
	return mapTxError(ctx, err)
}

// mapTxError turns a transient failure left over after the driver's retries into
// database.ErrTransactionConflict, or into the context error once ctx is done.
func mapTxError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	var labeled mongo.LabeledError
	if errors.As(err, &labeled) && labeled.HasErrorLabel(driver.TransientTransactionError) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", database.ErrTransactionConflict, err)
	}
	return err
}

type mongoTx struct {
	repo *MongoReservationRepo
}

func (t *mongoTx) GetSlot(ctx context.Context, id string) (*models.Slot, error) {
	var slot models.Slot
	if err := t.repo.slotColl.FindOne(ctx, bson.M{"id": id}).Decode(&slot); err != nil {
		return nil, translate(err, "read slot")
	}
	return &slot, nil
}

func (t *mongoTx) GetTour(ctx context.Context, id string) (*models.Tour, error) {
	var tour models.Tour
	if err := t.repo.tourColl.FindOne(ctx, bson.M{"id": id}).Decode(&tour); err != nil {
		return nil, translate(err, "read tour")
	}
	return &tour, nil
}

func (t *mongoTx) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	var r models.Reservation
	if err := t.repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&r); err != nil {
		return nil, translate(err, "read reservation")
	}
	return &r, nil
}

func (t *mongoTx) InsertReservation(ctx context.Context, r *models.Reservation) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if _, err := t.repo.coll.InsertOne(ctx, r); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return database.ErrDuplicate
		}
		return fmt.Errorf("insert reservation failed: %w", err)
	}
	return nil
}

func (t *mongoTx) UpdateSlotAvailable(ctx context.Context, slot *models.Slot, available int) error {
	filter := bson.M{"id": slot.ID, "version": slot.Version}
	update := bson.M{
		"$set": bson.M{"available": available},
		"$inc": bson.M{"version": 1},
	}
	res, err := t.repo.slotColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update slot availability failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("slot %s changed during transaction: %w", slot.ID, database.ErrTransactionConflict)
	}
	slot.Available = available
	slot.Version++
	return nil
}

func (t *mongoTx) UpdateReservationStatus(ctx context.Context, r *models.Reservation, status models.ReservationStatus) error {
	now := time.Now().UTC()
	res, err := t.repo.coll.UpdateOne(ctx,
		bson.M{"id": r.ID},
		bson.M{"$set": bson.M{"status": status, "updatedAt": now}},
	)
	if err != nil {
		return fmt.Errorf("update reservation status failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return database.ErrNotFound
	}
	r.Status = status
	r.UpdatedAt = now
	return nil
}

func translate(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return database.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
