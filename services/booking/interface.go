package booking

import (
	"context"
	"time"

	"go.uber.org/zap"

	reservationRepo "tourly/database/repository/reservation"
	tourRepo "tourly/database/repository/tour"
	"tourly/models"
)

// BookingService is the reservation surface consumed by the HTTP layer.
type BookingService interface {
	// AttemptBooking reserves seats on a slot and returns the new reservation id. user is
	// nil for anonymous bookings.
	AttemptBooking(ctx context.Context, slotID string, req models.BookingRequest, user *models.UserIdentity) (string, error)
	ListMyReservations(ctx context.Context, user *models.UserIdentity) ([]models.Reservation, error)
	CancelReservation(ctx context.Context, user *models.UserIdentity, reservationID string) (*models.Reservation, error)
	ConfirmReservation(ctx context.Context, guide *models.UserIdentity, reservationID string) (*models.Reservation, error)
	ListTourReservations(ctx context.Context, guide *models.UserIdentity, tourID string) ([]models.Reservation, error)
}

// Notifier is told about committed bookings. Implementations must not fail the booking.
type Notifier interface {
	ReservationCreated(ctx context.Context, r models.Reservation, slot models.Slot)
}

// Policy holds the configurable parts of the booking flow.
type Policy struct {
	// StrictPricing aborts the booking when the tour price cannot be read instead of
	// booking at a unit price of zero.
	StrictPricing bool
	// ReleaseSeatsOnCancel returns a cancelled party's seats to the slot.
	ReleaseSeatsOnCancel bool
	// TxTimeout bounds a single booking or cancellation, retries included.
	TxTimeout time.Duration
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Reservations reservationRepo.ReservationRepository
	Tours        tourRepo.TourRepository
	Notifier     Notifier
	Policy       Policy
	Logger       *zap.Logger
	Now          func() time.Time
}

func (s *DefaultBookingService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now()
}

func (s *DefaultBookingService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Policy.TxTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Policy.TxTimeout)
}
