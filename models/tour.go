package models

import "time"

// ItineraryStep is one stop of a tour.
type ItineraryStep struct {
	Title       string `bson:"title" json:"title" firestore:"title"`
	Description string `bson:"description,omitempty" json:"description,omitempty" firestore:"description,omitempty"`
}

// Tour is a catalog entry owned by a guide.
type Tour struct {
	ID              string          `bson:"id" json:"id" firestore:"id"`
	Title           string          `bson:"title" json:"title" firestore:"title"`
	Description     string          `bson:"description" json:"description" firestore:"description"`
	Price           float64         `bson:"price" json:"price" firestore:"price"` // per person
	City            string          `bson:"city" json:"city" firestore:"city"`
	Category        string          `bson:"category,omitempty" json:"category,omitempty" firestore:"category,omitempty"`
	DurationMinutes int             `bson:"durationMinutes" json:"durationMinutes" firestore:"durationMinutes"`
	Images          []string        `bson:"images,omitempty" json:"images,omitempty" firestore:"images,omitempty"`
	Included        []string        `bson:"included,omitempty" json:"included,omitempty" firestore:"included,omitempty"`
	Excluded        []string        `bson:"excluded,omitempty" json:"excluded,omitempty" firestore:"excluded,omitempty"`
	Itinerary       []ItineraryStep `bson:"itinerary,omitempty" json:"itinerary,omitempty" firestore:"itinerary,omitempty"`
	Active          bool            `bson:"active" json:"active" firestore:"active"`
	GuideID         string          `bson:"guideId" json:"guideId" firestore:"guideId"`
	GuideName       string          `bson:"guideName,omitempty" json:"guideName,omitempty" firestore:"guideName,omitempty"`
	Version         int             `bson:"version" json:"version" firestore:"version"`
	CreatedAt       time.Time       `bson:"createdAt" json:"createdAt" firestore:"createdAt"`
	UpdatedAt       time.Time       `bson:"updatedAt" json:"updatedAt" firestore:"updatedAt"`
}

// TourInput is the guide-editable part of a Tour.
type TourInput struct {
	Title           string          `json:"title" binding:"required"`
	Description     string          `json:"description"`
	Price           float64         `json:"price"`
	City            string          `json:"city" binding:"required"`
	Category        string          `json:"category"`
	DurationMinutes int             `json:"durationMinutes"`
	Included        []string        `json:"included"`
	Excluded        []string        `json:"excluded"`
	Itinerary       []ItineraryStep `json:"itinerary"`
}

// TourFilter narrows the public tour listing.
type TourFilter struct {
	City     string `form:"city"`
	Category string `form:"category"`
}
