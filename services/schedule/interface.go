package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	timeslotRepo "tourly/database/repository/timeslot"
	tourRepo "tourly/database/repository/tour"
	"tourly/models"
)

var (
	ErrSlotNotFound = errors.New("slot not found")
	ErrTourNotFound = errors.New("tour not found")
	ErrNotOwner     = errors.New("slot or tour belongs to another guide")
	ErrNotGuide     = errors.New("guide role required")
)

// InvalidSlotError reports a rejected slot definition.
type InvalidSlotError struct {
	Index   int
	Message string
}

func (e InvalidSlotError) Error() string {
	if e.Index < 0 {
		return e.Message
	}
	return fmt.Sprintf("slot %d: %s", e.Index, e.Message)
}

// ScheduleService lets guides publish time slots and lets anyone browse them.
type ScheduleService interface {
	CreateSlots(ctx context.Context, guide *models.UserIdentity, tourID string, inputs []models.SlotInput) ([]models.Slot, error)
	UpdateSlot(ctx context.Context, guide *models.UserIdentity, slotID string, patch models.SlotPatch) (*models.Slot, error)
	// ListTourSlots lists the tour's slots starting in [from, to). With onlyBookable set,
	// closed, sold-out and already started slots are left out.
	ListTourSlots(ctx context.Context, tourID string, from, to time.Time, onlyBookable bool) ([]models.Slot, error)
}

// DefaultScheduleService is the production implementation.
type DefaultScheduleService struct {
	Slots  timeslotRepo.TimeSlotRepository
	Tours  tourRepo.TourRepository
	Logger *zap.Logger
	Now    func() time.Time
}

func NewDefaultScheduleService(slots timeslotRepo.TimeSlotRepository, tours tourRepo.TourRepository, logger *zap.Logger) *DefaultScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultScheduleService{
		Slots:  slots,
		Tours:  tours,
		Logger: logger,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}
