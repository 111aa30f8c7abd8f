package tour

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"tourly/database"
	"tourly/models"
	"tourly/utils"
)

const (
	cacheListPrefix = "tours:list:"
	cacheItemPrefix = "tours:item:"
)

func listKey(filter models.TourFilter) string {
	return cacheListPrefix + url.QueryEscape(filter.City) + ":" + url.QueryEscape(filter.Category)
}

func itemKey(id string) string {
	return cacheItemPrefix + id
}

// ListTours returns active tours matching the filter, served from the cache when warm.
func (s *DefaultTourService) ListTours(ctx context.Context, filter models.TourFilter) ([]models.Tour, error) {
	filter.City = strings.TrimSpace(filter.City)
	filter.Category = strings.TrimSpace(filter.Category)
	key := listKey(filter)
	var cached []models.Tour
	err := s.Cache.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, utils.ErrCacheMiss) {
		s.Logger.Warn("Tour cache read failed", zap.String("key", key), zap.Error(err))
	}

	tours, err := s.Repo.List(ctx, filter, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list tours: %w", err)
	}
	if err := s.Cache.Set(ctx, key, tours, s.CacheTTL); err != nil {
		s.Logger.Warn("Tour cache write failed", zap.String("key", key), zap.Error(err))
	}
	return tours, nil
}

// GetTour returns a tour by id. Inactive tours stay readable so existing links keep working.
func (s *DefaultTourService) GetTour(ctx context.Context, id string) (*models.Tour, error) {
	key := itemKey(id)
	var cached models.Tour
	err := s.Cache.Get(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, utils.ErrCacheMiss) {
		s.Logger.Warn("Tour cache read failed", zap.String("key", key), zap.Error(err))
	}

	tour, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("failed to load tour: %w", err)
	}
	if err := s.Cache.Set(ctx, key, tour, s.CacheTTL); err != nil {
		s.Logger.Warn("Tour cache write failed", zap.String("key", key), zap.Error(err))
	}
	return tour, nil
}

// invalidate drops the cached copy of one tour and every cached listing.
func (s *DefaultTourService) invalidate(ctx context.Context, id string) {
	if err := s.Cache.Delete(ctx, itemKey(id)); err != nil {
		s.Logger.Warn("Tour cache invalidation failed", zap.String("tourId", id), zap.Error(err))
	}
	if err := s.Cache.DeletePrefix(ctx, cacheListPrefix); err != nil {
		s.Logger.Warn("Tour listing cache invalidation failed", zap.Error(err))
	}
}
