package reservationRepo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tourly/database"
	"tourly/models"
)

type FirestoreReservationRepo struct {
	client      *firestore.Client
	maxAttempts int
}

// NewFirestoreReservationRepo constructs a Cloud Firestore ReservationRepository whose
// transactions run at most maxAttempts times.
func NewFirestoreReservationRepo(client *firestore.Client, maxAttempts int) *FirestoreReservationRepo {
	if maxAttempts <= 0 {
		maxAttempts = firestore.DefaultTransactionMaxAttempts
	}
	return &FirestoreReservationRepo{client: client, maxAttempts: maxAttempts}
}

// RunTransaction uses Firestore's optimistic transactions: documents read through tx are
// checked at commit and the whole function is retried when any of them changed.
func (repo *FirestoreReservationRepo) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	err := repo.client.RunTransaction(ctx, func(ctx context.Context, t *firestore.Transaction) error {
		return fn(ctx, &firestoreTx{client: repo.client, tx: t})
	}, firestore.MaxAttempts(repo.maxAttempts))
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.Aborted:
		return fmt.Errorf("%w: %v", database.ErrTransactionConflict, err)
	case codes.AlreadyExists:
		return database.ErrDuplicate
	case codes.DeadlineExceeded:
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ctx.Err()
		}
	}
	return err
}

func (repo *FirestoreReservationRepo) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	snap, err := repo.client.Collection(collectionName).Doc(id).Get(ctx)
	if err != nil {
		return nil, translateStatus(err, "fetch reservation")
	}
	var r models.Reservation
	if err := snap.DataTo(&r); err != nil {
		return nil, fmt.Errorf("failed to decode reservation: %w", err)
	}
	return &r, nil
}

func (repo *FirestoreReservationRepo) ListByUser(ctx context.Context, userID string) ([]models.Reservation, error) {
	return repo.query(ctx, "userId", userID)
}

func (repo *FirestoreReservationRepo) ListByTour(ctx context.Context, tourID string) ([]models.Reservation, error) {
	return repo.query(ctx, "tourId", tourID)
}

func (repo *FirestoreReservationRepo) ListBySlot(ctx context.Context, slotID string) ([]models.Reservation, error) {
	return repo.query(ctx, "slotId", slotID)
}

func (repo *FirestoreReservationRepo) Ping(ctx context.Context) error {
	_, err := repo.client.Collection(slotCollection).Limit(1).Documents(ctx).GetAll()
	return err
}

func (repo *FirestoreReservationRepo) query(ctx context.Context, field, value string) ([]models.Reservation, error) {
	snaps, err := repo.client.Collection(collectionName).Where(field, "==", value).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	out := make([]models.Reservation, 0, len(snaps))
	for _, snap := range snaps {
		var r models.Reservation
		if err := snap.DataTo(&r); err != nil {
			return nil, fmt.Errorf("failed to decode reservation %s: %w", snap.Ref.ID, err)
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type firestoreTx struct {
	client *firestore.Client
	tx     *firestore.Transaction
}

func (t *firestoreTx) get(collection, id string, dest interface{}) error {
	snap, err := t.tx.Get(t.client.Collection(collection).Doc(id))
	if err != nil {
		return translateStatus(err, "read "+collection)
	}
	return snap.DataTo(dest)
}

func (t *firestoreTx) GetSlot(_ context.Context, id string) (*models.Slot, error) {
	var slot models.Slot
	if err := t.get(slotCollection, id, &slot); err != nil {
		return nil, err
	}
	return &slot, nil
}

func (t *firestoreTx) GetTour(_ context.Context, id string) (*models.Tour, error) {
	var tour models.Tour
	if err := t.get(tourCollection, id, &tour); err != nil {
		return nil, err
	}
	return &tour, nil
}

func (t *firestoreTx) GetReservation(_ context.Context, id string) (*models.Reservation, error) {
	var r models.Reservation
	if err := t.get(collectionName, id, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// InsertReservation leaves CreatedAt to the server timestamp declared on the model.
func (t *firestoreTx) InsertReservation(_ context.Context, r *models.Reservation) error {
	return t.tx.Create(t.client.Collection(collectionName).Doc(r.ID), r)
}

func (t *firestoreTx) UpdateSlotAvailable(_ context.Context, slot *models.Slot, available int) error {
	err := t.tx.Update(t.client.Collection(slotCollection).Doc(slot.ID), []firestore.Update{
		{Path: "available", Value: available},
		{Path: "version", Value: slot.Version + 1},
	})
	if err != nil {
		return err
	}
	slot.Available = available
	slot.Version++
	return nil
}

func (t *firestoreTx) UpdateReservationStatus(_ context.Context, r *models.Reservation, status models.ReservationStatus) error {
	err := t.tx.Update(t.client.Collection(collectionName).Doc(r.ID), []firestore.Update{
		{Path: "status", Value: string(status)},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return err
	}
	r.Status = status
	return nil
}

func translateStatus(err error, op string) error {
	if status.Code(err) == codes.NotFound {
		return database.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
