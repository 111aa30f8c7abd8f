package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tourly/middleware"
	"tourly/models"
	"tourly/services/schedule"
)

type ScheduleHandler struct {
	Service schedule.ScheduleService
}

// ListTourSlotsHandler handles GET /api/tours/:id/slots?from=&to=&bookable=. Bounds are
// RFC 3339; bookable defaults to true.
func (h *ScheduleHandler) ListTourSlotsHandler(c *gin.Context) {
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		badRequest(c, "Invalid 'from' time", err)
		return
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		badRequest(c, "Invalid 'to' time", err)
		return
	}
	onlyBookable := true
	if raw := c.Query("bookable"); raw != "" {
		if onlyBookable, err = strconv.ParseBool(raw); err != nil {
			badRequest(c, "Invalid 'bookable' flag", err)
			return
		}
	}

	slots, err := h.Service.ListTourSlots(c.Request.Context(), c.Param("id"), from, to, onlyBookable)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

func (h *ScheduleHandler) CreateSlotsHandler(c *gin.Context) {
	var req models.CreateSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid slots payload", err)
		return
	}
	slots, err := h.Service.CreateSlots(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), req.Slots)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"slots": slots})
}

func (h *ScheduleHandler) UpdateSlotHandler(c *gin.Context) {
	var patch models.SlotPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "Invalid slot payload", err)
		return
	}
	slot, err := h.Service.UpdateSlot(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slot": slot})
}

func parseTimeQuery(c *gin.Context, key string) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}
