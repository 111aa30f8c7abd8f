package handlers

import (
	"tourly/middleware"
	"tourly/services/booking"
	"tourly/services/schedule"
	"tourly/services/tour"
)

// HandlerBundle groups the endpoint handlers and what the routes need to guard them.
type HandlerBundle struct {
	Booking  *BookingHandler
	Tours    *TourHandler
	Schedule *ScheduleHandler
	Verifier middleware.TokenVerifier
}

func NewHandlerBundle(
	bookingSvc booking.BookingService,
	tourSvc tour.TourService,
	scheduleSvc schedule.ScheduleService,
	verifier middleware.TokenVerifier,
) *HandlerBundle {
	return &HandlerBundle{
		Booking:  &BookingHandler{Service: bookingSvc},
		Tours:    &TourHandler{Service: tourSvc},
		Schedule: &ScheduleHandler{Service: scheduleSvc},
		Verifier: verifier,
	}
}
