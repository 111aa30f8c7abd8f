// File: database/repository/tour/interface.go
package tourRepo

import (
	"context"

	"tourly/models"
)

// TourRepository persists the tour catalog. Lookups of unknown ids return database.ErrNotFound.
type TourRepository interface {
	Create(ctx context.Context, tour *models.Tour) error
	GetByID(ctx context.Context, id string) (*models.Tour, error)
	// Update writes the tour only if the stored version still equals tour.Version, then bumps
	// it. A stale version yields database.ErrTransactionConflict.
	Update(ctx context.Context, tour *models.Tour) error
	// List returns tours matching the filter, newest first.
	List(ctx context.Context, filter models.TourFilter, activeOnly bool) ([]models.Tour, error)
	ListByGuide(ctx context.Context, guideID string) ([]models.Tour, error)
}

const collectionName = "tours"
