package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tourly/middleware"
	"tourly/models"
	"tourly/services/tour"
)

const maxImageBytes = 10 << 20

type TourHandler struct {
	Service tour.TourService
}

func (h *TourHandler) ListToursHandler(c *gin.Context) {
	var filter models.TourFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		badRequest(c, "Invalid filter", err)
		return
	}
	tours, err := h.Service.ListTours(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tours": tours})
}

func (h *TourHandler) GetTourHandler(c *gin.Context) {
	t, err := h.Service.GetTour(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tour": t})
}

func (h *TourHandler) ListGuideToursHandler(c *gin.Context) {
	tours, err := h.Service.ListGuideTours(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tours": tours})
}

func (h *TourHandler) CreateTourHandler(c *gin.Context) {
	var input models.TourInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid tour payload", err)
		return
	}
	t, err := h.Service.CreateTour(c.Request.Context(), middleware.CurrentUser(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tour": t})
}

func (h *TourHandler) UpdateTourHandler(c *gin.Context) {
	var input models.TourInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid tour payload", err)
		return
	}
	t, err := h.Service.UpdateTour(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tour": t})
}

func (h *TourHandler) SetTourActiveHandler(c *gin.Context) {
	var body struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Field 'active' is required", err)
		return
	}
	t, err := h.Service.SetTourActive(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), *body.Active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tour": t})
}

// AddTourImageHandler accepts a multipart upload in the "image" field.
func (h *TourHandler) AddTourImageHandler(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "Missing image file", err)
		return
	}
	if header.Size > maxImageBytes {
		badRequest(c, "Image is larger than 10MB", nil)
		return
	}
	file, err := header.Open()
	if err != nil {
		badRequest(c, "Unreadable image file", err)
		return
	}
	defer file.Close()

	t, err := h.Service.AddTourImage(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tour": t})
}

func (h *TourHandler) RemoveTourImageHandler(c *gin.Context) {
	var body struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Field 'url' is required", err)
		return
	}
	t, err := h.Service.RemoveTourImage(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), body.URL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tour": t})
}
