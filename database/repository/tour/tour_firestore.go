package tourRepo

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

type firestoreTourRepo struct {
	client *firestore.Client
}

// NewFirestoreTourRepo constructs a Cloud Firestore TourRepository.
func NewFirestoreTourRepo(client *firestore.Client) TourRepository {
	return &firestoreTourRepo{client: client}
}

func (r *firestoreTourRepo) Create(ctx context.Context, tour *models.Tour) error {
	if _, err := r.client.Collection(collectionName).Doc(tour.ID).Create(ctx, tour); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return database.ErrDuplicate
		}
		return fmt.Errorf("failed to create tour: %w", err)
	}
	return nil
}

func (r *firestoreTourRepo) GetByID(ctx context.Context, id string) (*models.Tour, error) {
	snap, err := r.client.Collection(collectionName).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch tour: %w", err)
	}
	var tour models.Tour
	if err := snap.DataTo(&tour); err != nil {
		return nil, fmt.Errorf("failed to decode tour: %w", err)
	}
	return &tour, nil
}

func (r *firestoreTourRepo) Update(ctx context.Context, tour *models.Tour) error {
	ref := r.client.Collection(collectionName).Doc(tour.ID)
	next := *tour
	next.Version++
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var stored models.Tour
		if err := snap.DataTo(&stored); err != nil {
			return fmt.Errorf("failed to decode tour: %w", err)
		}
		if stored.Version != tour.Version {
			return database.ErrTransactionConflict
		}
		return tx.Set(ref, &next)
	})
	switch {
	case err == nil:
		tour.Version = next.Version
		return nil
	case errors.Is(err, database.ErrTransactionConflict):
		return fmt.Errorf("tour %s changed concurrently: %w", tour.ID, err)
	case status.Code(err) == codes.NotFound:
		return database.ErrNotFound
	default:
		return fmt.Errorf("failed to update tour: %w", err)
	}
}

func (r *firestoreTourRepo) List(ctx context.Context, filter models.TourFilter, activeOnly bool) ([]models.Tour, error) {
	q := r.client.Collection(collectionName).Query
	if activeOnly {
		q = q.Where("active", "==", true)
	}
	if filter.City != "" {
		q = q.Where("city", "==", filter.City)
	}
	if filter.Category != "" {
		q = q.Where("category", "==", filter.Category)
	}
	return r.query(ctx, q)
}

func (r *firestoreTourRepo) ListByGuide(ctx context.Context, guideID string) ([]models.Tour, error) {
	return r.query(ctx, r.client.Collection(collectionName).Where("guideId", "==", guideID))
}

// query sorts client-side so equality filters never need a composite index.
func (r *firestoreTourRepo) query(ctx context.Context, q firestore.Query) ([]models.Tour, error) {
	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query tours: %w", err)
	}
	tours := make([]models.Tour, 0, len(snaps))
	for _, snap := range snaps {
		var tour models.Tour
		if err := snap.DataTo(&tour); err != nil {
			return nil, fmt.Errorf("failed to decode tour %s: %w", snap.Ref.ID, err)
		}
		tours = append(tours, tour)
	}
	sort.SliceStable(tours, func(i, j int) bool { return tours[i].CreatedAt.After(tours[j].CreatedAt) })
	return tours, nil
}
