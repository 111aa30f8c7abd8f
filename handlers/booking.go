package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tourly/middleware"
	"tourly/models"
	"tourly/services/booking"
)

const idempotencyHeader = "Idempotency-Key"

type BookingHandler struct {
	Service booking.BookingService
}

// BookSlotHandler handles POST /api/slots/:slotId/bookings. Anonymous bookings are allowed;
// a signed-in user's profile takes precedence over the submitted contact fields.
func (h *BookingHandler) BookSlotHandler(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid booking payload", err)
		return
	}
	req.IdempotencyKey = strings.TrimSpace(c.GetHeader(idempotencyHeader))
	if len(req.IdempotencyKey) > 128 {
		badRequest(c, "Idempotency-Key is too long", nil)
		return
	}

	id, err := h.Service.AttemptBooking(c.Request.Context(), c.Param("slotId"), req, middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.BookingResponse{ReservationID: id})
}

func (h *BookingHandler) ListMyReservationsHandler(c *gin.Context) {
	list, err := h.Service.ListMyReservations(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": list})
}

func (h *BookingHandler) CancelReservationHandler(c *gin.Context) {
	r, err := h.Service.CancelReservation(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": r})
}

func (h *BookingHandler) ConfirmReservationHandler(c *gin.Context) {
	r, err := h.Service.ConfirmReservation(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": r})
}

func (h *BookingHandler) ListTourReservationsHandler(c *gin.Context) {
	list, err := h.Service.ListTourReservations(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": list})
}
