package tour

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	tourRepo "tourly/database/repository/tour"
	"tourly/models"
	"tourly/services/storage"
	"tourly/utils"
)

var (
	ErrTourNotFound       = errors.New("tour not found")
	ErrNotTourOwner       = errors.New("tour belongs to another guide")
	ErrNotGuide           = errors.New("guide role required")
	ErrImageStoreDisabled = errors.New("image storage is not configured")
)

// ValidationError reports an invalid tour payload.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// TourService manages the tour catalog.
type TourService interface {
	// Public catalog.
	ListTours(ctx context.Context, filter models.TourFilter) ([]models.Tour, error)
	GetTour(ctx context.Context, id string) (*models.Tour, error)

	// Guide management.
	CreateTour(ctx context.Context, guide *models.UserIdentity, input models.TourInput) (*models.Tour, error)
	UpdateTour(ctx context.Context, guide *models.UserIdentity, id string, input models.TourInput) (*models.Tour, error)
	SetTourActive(ctx context.Context, guide *models.UserIdentity, id string, active bool) (*models.Tour, error)
	ListGuideTours(ctx context.Context, guide *models.UserIdentity) ([]models.Tour, error)
	AddTourImage(ctx context.Context, guide *models.UserIdentity, id string, image io.Reader) (*models.Tour, error)
	RemoveTourImage(ctx context.Context, guide *models.UserIdentity, id, imageURL string) (*models.Tour, error)
}

// DefaultTourService is the production implementation.
type DefaultTourService struct {
	Repo     tourRepo.TourRepository
	Cache    utils.Cache
	Images   storage.ImageStore
	CacheTTL time.Duration
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewDefaultTourService(
	repo tourRepo.TourRepository,
	cache utils.Cache,
	images storage.ImageStore,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *DefaultTourService {
	if cache == nil {
		cache = utils.NewCache(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultTourService{
		Repo:     repo,
		Cache:    cache,
		Images:   images,
		CacheTTL: cacheTTL,
		Logger:   logger,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}
