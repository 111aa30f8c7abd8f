package reservationRepo

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"tourly/database/memdb"
	"tourly/models"
)

type MemoryReservationRepo struct {
	db *memdb.DB
}

// NewMemoryReservationRepo constructs a ReservationRepository on the in-process store.
func NewMemoryReservationRepo(db *memdb.DB) *MemoryReservationRepo {
	return &MemoryReservationRepo{db: db}
}

func (repo *MemoryReservationRepo) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return repo.db.RunTransaction(ctx, func(ctx context.Context, txn *memdb.Txn) error {
		return fn(ctx, &memoryTx{txn: txn})
	})
}

func (repo *MemoryReservationRepo) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	var r models.Reservation
	if err := repo.db.Get(ctx, collectionName, id, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (repo *MemoryReservationRepo) ListByUser(ctx context.Context, userID string) ([]models.Reservation, error) {
	return repo.scan(ctx, func(r models.Reservation) bool { return r.UserID == userID })
}

func (repo *MemoryReservationRepo) ListByTour(ctx context.Context, tourID string) ([]models.Reservation, error) {
	return repo.scan(ctx, func(r models.Reservation) bool { return r.TourID == tourID })
}

func (repo *MemoryReservationRepo) ListBySlot(ctx context.Context, slotID string) ([]models.Reservation, error) {
	return repo.scan(ctx, func(r models.Reservation) bool { return r.SlotID == slotID })
}

func (repo *MemoryReservationRepo) Ping(ctx context.Context) error {
	return repo.db.Ping(ctx)
}

func (repo *MemoryReservationRepo) scan(ctx context.Context, keep func(models.Reservation) bool) ([]models.Reservation, error) {
	raws, err := repo.db.All(ctx, collectionName)
	if err != nil {
		return nil, err
	}
	out := []models.Reservation{}
	for _, raw := range raws {
		var r models.Reservation
		if err := bson.Unmarshal(raw, &r); err != nil {
			return nil, err
		}
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memoryTx struct {
	txn *memdb.Txn
}

func (t *memoryTx) GetSlot(_ context.Context, id string) (*models.Slot, error) {
	var slot models.Slot
	if err := t.txn.Get(slotCollection, id, &slot); err != nil {
		return nil, err
	}
	return &slot, nil
}

func (t *memoryTx) GetTour(_ context.Context, id string) (*models.Tour, error) {
	var tour models.Tour
	if err := t.txn.Get(tourCollection, id, &tour); err != nil {
		return nil, err
	}
	return &tour, nil
}

func (t *memoryTx) GetReservation(_ context.Context, id string) (*models.Reservation, error) {
	var r models.Reservation
	if err := t.txn.Get(collectionName, id, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (t *memoryTx) InsertReservation(_ context.Context, r *models.Reservation) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return t.txn.Create(collectionName, r.ID, r)
}

func (t *memoryTx) UpdateSlotAvailable(_ context.Context, slot *models.Slot, available int) error {
	updated := *slot
	updated.Available = available
	updated.Version++
	if err := t.txn.Set(slotCollection, slot.ID, updated); err != nil {
		return err
	}
	*slot = updated
	return nil
}

func (t *memoryTx) UpdateReservationStatus(_ context.Context, r *models.Reservation, status models.ReservationStatus) error {
	updated := *r
	updated.Status = status
	updated.UpdatedAt = time.Now().UTC()
	if err := t.txn.Set(collectionName, r.ID, updated); err != nil {
		return err
	}
	*r = updated
	return nil
}
