package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"tourly/database"
	reservationRepo "tourly/database/repository/reservation"
	"tourly/models"
)

// ListMyReservations returns the signed-in user's reservations, newest first, with
// finished ones reported as completed.
func (s *DefaultBookingService) ListMyReservations(ctx context.Context, user *models.UserIdentity) ([]models.Reservation, error) {
	if user == nil || user.UID == "" {
		return nil, withDetail(ErrForbidden, "sign in to see your reservations", nil)
	}
	list, err := s.Reservations.ListByUser(ctx, user.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return s.withDisplayStatus(list), nil
}

// CancelReservation cancels a pending or confirmed reservation owned by the user. When the
// policy releases seats on cancel, the party size goes back to the slot in the same
// transaction, never beyond the slot capacity.
func (s *DefaultBookingService) CancelReservation(ctx context.Context, user *models.UserIdentity, reservationID string) (*models.Reservation, error) {
	if user == nil || user.UID == "" {
		return nil, withDetail(ErrForbidden, "sign in to cancel a reservation", nil)
	}
	if strings.TrimSpace(reservationID) == "" {
		return nil, withDetail(ErrInvalidRequest, "reservation id is required", nil)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := s.now()
	var result models.Reservation
	err := s.Reservations.RunTransaction(ctx, func(ctx context.Context, tx reservationRepo.Tx) error {
		r, err := s.readReservation(ctx, tx, reservationID)
		if err != nil {
			return err
		}
		if r.UserID != user.UID {
			return withDetail(ErrForbidden, "this reservation belongs to someone else", nil)
		}
		if r.Status == models.StatusCancelled || displayStatus(*r, now) == models.StatusCompleted {
			return withDetail(ErrInvalidTransition,
				fmt.Sprintf("a %s reservation cannot be cancelled", displayStatus(*r, now)), nil)
		}

		var slot *models.Slot
		if s.Policy.ReleaseSeatsOnCancel {
			slot, err = tx.GetSlot(ctx, r.SlotID)
			if err != nil && !errors.Is(err, database.ErrNotFound) {
				return fmt.Errorf("read slot: %w", err)
			}
		}

		if err := tx.UpdateReservationStatus(ctx, r, models.StatusCancelled); err != nil {
			return fmt.Errorf("update reservation: %w", err)
		}
		if slot != nil {
			available := slot.Available + r.PartySize
			if available > slot.Capacity {
				available = slot.Capacity
			}
			if err := tx.UpdateSlotAvailable(ctx, slot, available); err != nil {
				return fmt.Errorf("release seats: %w", err)
			}
		}
		result = *r
		return nil
	})
	if err != nil {
		return nil, classifyTxError(ctx, err)
	}

	s.logger().Info("Reservation cancelled",
		zap.String("reservationId", result.ID),
		zap.String("slotId", result.SlotID),
		zap.Bool("seatsReleased", s.Policy.ReleaseSeatsOnCancel),
	)
	return &result, nil
}

// ConfirmReservation moves a pending reservation to confirmed. Only the guide who owns the
// tour may confirm.
func (s *DefaultBookingService) ConfirmReservation(ctx context.Context, guide *models.UserIdentity, reservationID string) (*models.Reservation, error) {
	if !guide.IsGuide() {
		return nil, withDetail(ErrForbidden, "only guides can confirm reservations", nil)
	}
	if strings.TrimSpace(reservationID) == "" {
		return nil, withDetail(ErrInvalidRequest, "reservation id is required", nil)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var result models.Reservation
	err := s.Reservations.RunTransaction(ctx, func(ctx context.Context, tx reservationRepo.Tx) error {
		r, err := s.readReservation(ctx, tx, reservationID)
		if err != nil {
			return err
		}
		tour, err := tx.GetTour(ctx, r.TourID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return withDetail(ErrForbidden, "the tour of this reservation no longer exists", nil)
			}
			return fmt.Errorf("read tour: %w", err)
		}
		if tour.GuideID != guide.UID {
			return withDetail(ErrForbidden, "this reservation is for another guide's tour", nil)
		}
		if r.Status != models.StatusPending {
			return withDetail(ErrInvalidTransition,
				fmt.Sprintf("a %s reservation cannot be confirmed", r.Status), nil)
		}
		if err := tx.UpdateReservationStatus(ctx, r, models.StatusConfirmed); err != nil {
			return fmt.Errorf("update reservation: %w", err)
		}
		result = *r
		return nil
	})
	if err != nil {
		return nil, classifyTxError(ctx, err)
	}

	s.logger().Info("Reservation confirmed",
		zap.String("reservationId", result.ID),
		zap.String("guideId", guide.UID),
	)
	return &result, nil
}

// ListTourReservations lists every reservation on one of the guide's tours.
func (s *DefaultBookingService) ListTourReservations(ctx context.Context, guide *models.UserIdentity, tourID string) ([]models.Reservation, error) {
	if !guide.IsGuide() {
		return nil, withDetail(ErrForbidden, "only guides can list tour reservations", nil)
	}
	tour, err := s.Tours.GetByID(ctx, tourID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, withDetail(ErrForbidden, "tour not found", err)
		}
		return nil, fmt.Errorf("failed to load tour: %w", err)
	}
	if tour.GuideID != guide.UID {
		return nil, withDetail(ErrForbidden, "this tour belongs to another guide", nil)
	}

	list, err := s.Reservations.ListByTour(ctx, tourID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return s.withDisplayStatus(list), nil
}

func (s *DefaultBookingService) readReservation(ctx context.Context, tx reservationRepo.Tx, id string) (*models.Reservation, error) {
	r, err := tx.GetReservation(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("read reservation: %w", err)
	}
	return r, nil
}

func (s *DefaultBookingService) withDisplayStatus(list []models.Reservation) []models.Reservation {
	now := s.now()
	for i := range list {
		list[i].Status = displayStatus(list[i], now)
	}
	return list
}
