package tourRepo

import (
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"

	"tourly/database"
	"tourly/database/memdb"
	"tourly/models"
)

type memoryTourRepo struct {
	db *memdb.DB
}

// NewMemoryTourRepo constructs a TourRepository on the in-process store.
func NewMemoryTourRepo(db *memdb.DB) TourRepository {
	return &memoryTourRepo{db: db}
}

func (r *memoryTourRepo) Create(ctx context.Context, tour *models.Tour) error {
	return r.db.Insert(ctx, collectionName, tour.ID, tour)
}

func (r *memoryTourRepo) GetByID(ctx context.Context, id string) (*models.Tour, error) {
	var tour models.Tour
	if err := r.db.Get(ctx, collectionName, id, &tour); err != nil {
		return nil, err
	}
	return &tour, nil
}

func (r *memoryTourRepo) Update(ctx context.Context, tour *models.Tour) error {
	var stored models.Tour
	err := r.db.Update(ctx, collectionName, tour.ID, &stored, func() error {
		if stored.Version != tour.Version {
			return fmt.Errorf("tour %s changed concurrently: %w", tour.ID, database.ErrTransactionConflict)
		}
		stored = *tour
		stored.Version++
		return nil
	})
	if err != nil {
		return err
	}
	tour.Version++
	return nil
}

func (r *memoryTourRepo) List(ctx context.Context, filter models.TourFilter, activeOnly bool) ([]models.Tour, error) {
	return r.scan(ctx, func(t models.Tour) bool {
		if activeOnly && !t.Active {
			return false
		}
		if filter.City != "" && t.City != filter.City {
			return false
		}
		return filter.Category == "" || t.Category == filter.Category
	})
}

func (r *memoryTourRepo) ListByGuide(ctx context.Context, guideID string) ([]models.Tour, error) {
	return r.scan(ctx, func(t models.Tour) bool { return t.GuideID == guideID })
}

func (r *memoryTourRepo) scan(ctx context.Context, keep func(models.Tour) bool) ([]models.Tour, error) {
	raws, err := r.db.All(ctx, collectionName)
	if err != nil {
		return nil, err
	}
	tours := []models.Tour{}
	for _, raw := range raws {
		var t models.Tour
		if err := bson.Unmarshal(raw, &t); err != nil {
			return nil, err
		}
		if keep(t) {
			tours = append(tours, t)
		}
	}
	sort.SliceStable(tours, func(i, j int) bool { return tours[i].CreatedAt.After(tours[j].CreatedAt) })
	return tours, nil
}
