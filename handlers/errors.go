package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tourly/middleware"
	"tourly/services/booking"
	"tourly/services/schedule"
	"tourly/services/tour"
	"tourly/utils"
)

var bookingStatus = map[string]int{
	booking.ErrSlotNotFound.Code:        http.StatusNotFound,
	booking.ErrSlotInactive.Code:        http.StatusConflict,
	booking.ErrInsufficientSeats.Code:   http.StatusConflict,
	booking.ErrTransactionConflict.Code: http.StatusServiceUnavailable,
	booking.ErrTransactionTimeout.Code:  http.StatusGatewayTimeout,
	booking.ErrPriceLookupFailed.Code:   http.StatusBadGateway,
	booking.ErrInvalidRequest.Code:      http.StatusBadRequest,
	booking.ErrReservationNotFound.Code: http.StatusNotFound,
	booking.ErrInvalidTransition.Code:   http.StatusConflict,
	booking.ErrForbidden.Code:           http.StatusForbidden,
}

// respondError maps a service error onto the JSON error envelope. Unknown errors become a
// 500 without leaking their text.
func respondError(c *gin.Context, err error) {
	var be *booking.BookingError
	if errors.As(err, &be) {
		status, ok := bookingStatus[be.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		if be.Retryable {
			c.Header("Retry-After", "1")
		}
		utils.JSONErrorWithCode(c, status, be.Code, be.Message, "", be.Retryable)
		return
	}

	var tourInvalid tour.ValidationError
	var slotInvalid schedule.InvalidSlotError
	switch {
	case errors.As(err, &tourInvalid):
		utils.JSONErrorWithCode(c, http.StatusBadRequest, "invalid_request", "Invalid tour", tourInvalid.Error(), false)
	case errors.As(err, &slotInvalid):
		utils.JSONErrorWithCode(c, http.StatusBadRequest, "invalid_request", "Invalid slot", slotInvalid.Error(), false)
	case errors.Is(err, tour.ErrTourNotFound), errors.Is(err, schedule.ErrTourNotFound):
		utils.JSONErrorWithCode(c, http.StatusNotFound, "tour_not_found", "Tour not found", "", false)
	case errors.Is(err, schedule.ErrSlotNotFound):
		utils.JSONErrorWithCode(c, http.StatusNotFound, "slot_not_found", "Slot not found", "", false)
	case errors.Is(err, tour.ErrNotTourOwner), errors.Is(err, schedule.ErrNotOwner),
		errors.Is(err, tour.ErrNotGuide), errors.Is(err, schedule.ErrNotGuide):
		utils.JSONErrorWithCode(c, http.StatusForbidden, "forbidden", "Not allowed to act on this resource", "", false)
	case errors.Is(err, tour.ErrImageStoreDisabled):
		utils.JSONErrorWithCode(c, http.StatusServiceUnavailable, "storage_unavailable", "Image uploads are not available", "", false)
	default:
		middleware.RequestLogger(c).Error("Unhandled service error", zap.Error(err))
		utils.JSONErrorWithCode(c, http.StatusInternalServerError, "internal", "Internal Server Error", "", false)
	}
}

func badRequest(c *gin.Context, message string, err error) {
	details := ""
	if err != nil {
		details = err.Error()
	}
	utils.JSONErrorWithCode(c, http.StatusBadRequest, "invalid_request", message, details, false)
}
