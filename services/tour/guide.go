package tour

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tourly/database"
	"tourly/models"
)

const maxTourWriteAttempts = 5

func validateInput(input models.TourInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return ValidationError{Field: "title", Message: "is required"}
	}
	if strings.TrimSpace(input.City) == "" {
		return ValidationError{Field: "city", Message: "is required"}
	}
	if input.Price < 0 {
		return ValidationError{Field: "price", Message: "must not be negative"}
	}
	if input.DurationMinutes <= 0 {
		return ValidationError{Field: "durationMinutes", Message: "must be greater than zero"}
	}
	for i, step := range input.Itinerary {
		if strings.TrimSpace(step.Title) == "" {
			return ValidationError{Field: fmt.Sprintf("itinerary[%d].title", i), Message: "is required"}
		}
	}
	return nil
}

func applyInput(t *models.Tour, input models.TourInput) {
	t.Title = strings.TrimSpace(input.Title)
	t.Description = strings.TrimSpace(input.Description)
	t.Price = input.Price
	t.City = strings.TrimSpace(input.City)
	t.Category = strings.TrimSpace(input.Category)
	t.DurationMinutes = input.DurationMinutes
	t.Included = input.Included
	t.Excluded = input.Excluded
	t.Itinerary = input.Itinerary
}

// CreateTour adds an active tour owned by the guide.
func (s *DefaultTourService) CreateTour(ctx context.Context, guide *models.UserIdentity, input models.TourInput) (*models.Tour, error) {
	if !guide.IsGuide() {
		return nil, ErrNotGuide
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := s.Now()
	t := &models.Tour{
		ID:        uuid.New().String(),
		Active:    true,
		GuideID:   guide.UID,
		GuideName: guide.DisplayName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyInput(t, input)

	if err := s.Repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create tour: %w", err)
	}
	s.invalidate(ctx, t.ID)
	s.Logger.Info("Tour created", zap.String("tourId", t.ID), zap.String("guideId", guide.UID))
	return t, nil
}

// UpdateTour replaces the editable fields of a tour the guide owns.
func (s *DefaultTourService) UpdateTour(ctx context.Context, guide *models.UserIdentity, id string, input models.TourInput) (*models.Tour, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	return s.mutate(ctx, guide, id, func(t *models.Tour) error {
		applyInput(t, input)
		return nil
	})
}

// SetTourActive publishes or hides a tour.
func (s *DefaultTourService) SetTourActive(ctx context.Context, guide *models.UserIdentity, id string, active bool) (*models.Tour, error) {
	return s.mutate(ctx, guide, id, func(t *models.Tour) error {
		t.Active = active
		return nil
	})
}

// ListGuideTours returns every tour of the guide, including inactive ones.
func (s *DefaultTourService) ListGuideTours(ctx context.Context, guide *models.UserIdentity) ([]models.Tour, error) {
	if !guide.IsGuide() {
		return nil, ErrNotGuide
	}
	tours, err := s.Repo.ListByGuide(ctx, guide.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guide tours: %w", err)
	}
	return tours, nil
}

// AddTourImage uploads the image and appends its URL to the tour.
func (s *DefaultTourService) AddTourImage(ctx context.Context, guide *models.UserIdentity, id string, image io.Reader) (*models.Tour, error) {
	if s.Images == nil {
		return nil, ErrImageStoreDisabled
	}
	if _, err := s.ownedTour(ctx, guide, id); err != nil {
		return nil, err
	}

	imageURL, err := s.Images.UploadImage(ctx, image, "tours/"+id)
	if err != nil {
		return nil, fmt.Errorf("failed to upload tour image: %w", err)
	}
	return s.mutate(ctx, guide, id, func(t *models.Tour) error {
		t.Images = append(t.Images, imageURL)
		return nil
	})
}

// RemoveTourImage detaches an image from the tour and deletes it from the store. A failed
// blob delete is logged; the tour no longer references the image either way.
func (s *DefaultTourService) RemoveTourImage(ctx context.Context, guide *models.UserIdentity, id, imageURL string) (*models.Tour, error) {
	t, err := s.mutate(ctx, guide, id, func(t *models.Tour) error {
		kept := t.Images[:0]
		found := false
		for _, img := range t.Images {
			if img == imageURL {
				found = true
				continue
			}
			kept = append(kept, img)
		}
		if !found {
			return ValidationError{Field: "url", Message: "image is not attached to this tour"}
		}
		t.Images = kept
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Images != nil {
		if err := s.Images.DeleteImage(ctx, imageURL); err != nil {
			s.Logger.Warn("Tour image delete failed", zap.String("tourId", id), zap.Error(err))
		}
	}
	return t, nil
}

func (s *DefaultTourService) ownedTour(ctx context.Context, guide *models.UserIdentity, id string) (*models.Tour, error) {
	if !guide.IsGuide() {
		return nil, ErrNotGuide
	}
	t, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("failed to load tour: %w", err)
	}
	if t.GuideID != guide.UID {
		return nil, ErrNotTourOwner
	}
	return t, nil
}

// mutate re-reads the tour and reapplies change when a concurrent write bumped its version.
func (s *DefaultTourService) mutate(ctx context.Context, guide *models.UserIdentity, id string, change func(*models.Tour) error) (*models.Tour, error) {
	for attempt := 1; ; attempt++ {
		t, err := s.ownedTour(ctx, guide, id)
		if err != nil {
			return nil, err
		}
		if err := change(t); err != nil {
			return nil, err
		}
		t.UpdatedAt = s.Now()
		err = s.Repo.Update(ctx, t)
		if err == nil {
			s.invalidate(ctx, id)
			return t, nil
		}
		if !errors.Is(err, database.ErrTransactionConflict) || attempt >= maxTourWriteAttempts {
			return nil, fmt.Errorf("failed to update tour: %w", err)
		}
		s.Logger.Debug("Tour write conflict, retrying", zap.String("tourId", id), zap.Int("attempt", attempt))
	}
}
