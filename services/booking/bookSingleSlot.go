package booking

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tourly/database"
	reservationRepo "tourly/database/repository/reservation"
	"tourly/models"
)

// reservationNamespace seeds the name-based ids derived from idempotency keys.
var reservationNamespace = uuid.MustParse("6f1c3e0a-8d2b-4c57-9a3e-2b7f5d9e4c11")

// AttemptBooking reserves req.PartySize seats on the slot. The slot read, the capacity
// check, the reservation insert and the seat decrement all run in one store transaction,
// so concurrent attempts can never take the slot below zero available seats.
func (s *DefaultBookingService) AttemptBooking(
	ctx context.Context,
	slotID string,
	req models.BookingRequest,
	user *models.UserIdentity,
) (string, error) {
	logger := s.logger().With(zap.String("slotId", slotID))

	contact, err := resolveContact(slotID, req, user)
	if err != nil {
		return "", err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	// The id is fixed before the transaction so store retries can only ever commit one
	// document for this call.
	reservationID := newReservationID(req.IdempotencyKey, contact)

	var (
		created    models.Reservation
		bookedSlot models.Slot
		replayed   bool
	)

	txErr := s.Reservations.RunTransaction(ctx, func(ctx context.Context, tx reservationRepo.Tx) error {
		replayed = false

		if req.IdempotencyKey != "" {
			existing, err := tx.GetReservation(ctx, reservationID)
			switch {
			case err == nil:
				if err := checkReplay(existing, slotID, contact, req); err != nil {
					return err
				}
				created = *existing
				replayed = true
				return nil
			case !errors.Is(err, database.ErrNotFound):
				return fmt.Errorf("read reservation: %w", err)
			}
		}

		slot, err := tx.GetSlot(ctx, slotID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return ErrSlotNotFound
			}
			return fmt.Errorf("read slot: %w", err)
		}
		if !slot.Active {
			return ErrSlotInactive
		}
		if slot.Available < req.PartySize {
			return withDetail(ErrInsufficientSeats,
				fmt.Sprintf("only %d seats left, %d requested", slot.Available, req.PartySize), nil)
		}

		tour, err := s.lookupTour(ctx, tx, slot.TourID, logger)
		if err != nil {
			return err
		}

		r := models.Reservation{
			ID:             reservationID,
			SlotID:         slot.ID,
			TourID:         slot.TourID,
			TourTitle:      tour.Title,
			SlotStart:      slot.Start,
			SlotEnd:        slot.End,
			FullName:       contact.FullName,
			Email:          contact.Email,
			Phone:          strings.TrimSpace(req.Phone),
			PartySize:      req.PartySize,
			Notes:          strings.TrimSpace(req.Notes),
			Status:         models.StatusPending,
			UnitPrice:      tour.Price,
			TotalPrice:     tour.Price * float64(req.PartySize),
			UserID:         contact.UserID,
			IdempotencyKey: req.IdempotencyKey,
		}
		if err := tx.InsertReservation(ctx, &r); err != nil {
			return fmt.Errorf("write reservation: %w", err)
		}
		if err := tx.UpdateSlotAvailable(ctx, slot, slot.Available-req.PartySize); err != nil {
			return fmt.Errorf("decrement slot: %w", err)
		}

		created = r
		bookedSlot = *slot
		return nil
	})
	if txErr != nil {
		if req.IdempotencyKey != "" && errors.Is(txErr, database.ErrDuplicate) {
			// a concurrent call with the same key committed first
			existing, err := s.Reservations.GetByID(context.WithoutCancel(ctx), reservationID)
			if err != nil {
				return "", fmt.Errorf("failed to read replayed reservation: %w", err)
			}
			if err := checkReplay(existing, slotID, contact, req); err != nil {
				logger.Info("Booking rejected", zap.Int("partySize", req.PartySize), zap.Error(err))
				return "", err
			}
			logger.Info("Booking replayed by idempotency key", zap.String("reservationId", reservationID))
			return reservationID, nil
		}
		err := classifyTxError(ctx, txErr)
		logger.Info("Booking rejected", zap.Int("partySize", req.PartySize), zap.Error(err))
		return "", err
	}

	if replayed {
		logger.Info("Booking replayed by idempotency key", zap.String("reservationId", created.ID))
		return created.ID, nil
	}

	logger.Info("Booking committed",
		zap.String("reservationId", created.ID),
		zap.String("tourId", created.TourID),
		zap.Int("partySize", created.PartySize),
		zap.Int("availableAfter", bookedSlot.Available),
		zap.Float64("totalPrice", created.TotalPrice),
	)

	if s.Notifier != nil {
		s.Notifier.ReservationCreated(context.WithoutCancel(ctx), created, bookedSlot)
	}
	return created.ID, nil
}

type priceSource struct {
	Title string
	Price float64
}

// lookupTour reads the price inside the transaction. In lenient mode an unreadable tour
// books at a unit price of zero.
func (s *DefaultBookingService) lookupTour(ctx context.Context, tx reservationRepo.Tx, tourID string, logger *zap.Logger) (priceSource, error) {
	tour, err := tx.GetTour(ctx, tourID)
	if err == nil {
		return priceSource{Title: tour.Title, Price: tour.Price}, nil
	}
	if s.Policy.StrictPricing {
		return priceSource{}, withDetail(ErrPriceLookupFailed, "", err)
	}
	logger.Warn("PriceLookupDegraded: booking at zero unit price",
		zap.String("tourId", tourID),
		zap.Error(err),
	)
	return priceSource{}, nil
}

type contactInfo struct {
	FullName string
	Email    string
	UserID   string
}

// resolveContact validates the request and prefers the signed-in user's profile over the
// submitted form fields.
func resolveContact(slotID string, req models.BookingRequest, user *models.UserIdentity) (contactInfo, error) {
	if strings.TrimSpace(slotID) == "" {
		return contactInfo{}, withDetail(ErrInvalidRequest, "slot id is required", nil)
	}
	if req.PartySize <= 0 {
		return contactInfo{}, withDetail(ErrInvalidRequest, "party size must be a positive number", nil)
	}

	c := contactInfo{
		FullName: strings.TrimSpace(req.FullName),
		Email:    strings.TrimSpace(req.Email),
	}
	if user != nil {
		c.UserID = user.UID
		if name := strings.TrimSpace(user.DisplayName); name != "" {
			c.FullName = name
		}
		if email := strings.TrimSpace(user.Email); email != "" {
			c.Email = email
		}
	}

	if c.FullName == "" {
		return contactInfo{}, withDetail(ErrInvalidRequest, "full name is required", nil)
	}
	if c.Email == "" {
		return contactInfo{}, withDetail(ErrInvalidRequest, "email is required", nil)
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return contactInfo{}, withDetail(ErrInvalidRequest, "email is not valid", err)
	}
	return c, nil
}

// newReservationID derives the id from the idempotency key, scoped to the signed-in user or,
// for anonymous callers, to the contact email.
func newReservationID(idempotencyKey string, contact contactInfo) string {
	if idempotencyKey == "" {
		return uuid.New().String()
	}
	scope := "uid:" + contact.UserID
	if contact.UserID == "" {
		scope = "email:" + strings.ToLower(contact.Email)
	}
	return uuid.NewSHA1(reservationNamespace, []byte(scope+"\x00"+idempotencyKey)).String()
}

// checkReplay accepts a stored reservation as the result of a repeated call only when the
// call asks for the same booking.
func checkReplay(existing *models.Reservation, slotID string, contact contactInfo, req models.BookingRequest) error {
	if existing.SlotID != slotID {
		return withDetail(ErrInvalidRequest, "idempotency key already used for another slot", nil)
	}
	if existing.PartySize != req.PartySize ||
		existing.FullName != contact.FullName ||
		!strings.EqualFold(existing.Email, contact.Email) {
		return withDetail(ErrInvalidRequest, "idempotency key reused with a different request", nil)
	}
	return nil
}

// classifyTxError maps store failures onto the booking error kinds.
func classifyTxError(ctx context.Context, err error) error {
	var be *BookingError
	switch {
	case errors.As(err, &be):
		return err
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return withDetail(ErrTransactionTimeout, "", err)
	case errors.Is(err, database.ErrTransactionConflict):
		return withDetail(ErrTransactionConflict, "", err)
	default:
		return fmt.Errorf("booking transaction failed: %w", err)
	}
}

// displayStatus derives the user-facing status; past, non-cancelled reservations read as
// completed.
func displayStatus(r models.Reservation, now time.Time) models.ReservationStatus {
	if r.Status != models.StatusCancelled && !r.SlotEnd.IsZero() && r.SlotEnd.Before(now) {
		return models.StatusCompleted
	}
	return r.Status
}
