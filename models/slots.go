package models

import "time"

// Slot is a bookable time window for a tour.
type Slot struct {
	ID        string    `bson:"id" json:"id" firestore:"id"`
	TourID    string    `bson:"tourId" json:"tourId" firestore:"tourId"`
	GuideID   string    `bson:"guideId,omitempty" json:"guideId,omitempty" firestore:"guideId,omitempty"`
	GuideName string    `bson:"guideName,omitempty" json:"guideName,omitempty" firestore:"guideName,omitempty"`
	Start     time.Time `bson:"start" json:"start" firestore:"start"`
	End       time.Time `bson:"end" json:"end" firestore:"end"`
	Capacity  int       `bson:"capacity" json:"capacity" firestore:"capacity"`   // total seats
	Available int       `bson:"available" json:"available" firestore:"available"` // seats left, 0 <= available <= capacity
	Active    bool      `bson:"active" json:"active" firestore:"active"`
	Version   int       `bson:"version" json:"version" firestore:"version"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt" firestore:"createdAt"`
}

// Bookable reports whether the slot currently accepts reservations of the given size.
func (s Slot) Bookable(partySize int) bool {
	return s.Active && partySize > 0 && s.Available >= partySize
}

// SlotInput is the guide-supplied payload for a new slot.
type SlotInput struct {
	Start    time.Time `json:"start" binding:"required"`
	End      time.Time `json:"end" binding:"required"`
	Capacity int       `json:"capacity" binding:"required"`
}

// CreateSlotsRequest defines the payload for scheduling slots on a tour.
type CreateSlotsRequest struct {
	Slots []SlotInput `json:"slots" binding:"required,min=1,dive"`
}

// SlotPatch carries the guide-editable slot fields. Capacity and availability are
// deliberately absent.
type SlotPatch struct {
	Start  *time.Time `json:"start,omitempty"`
	End    *time.Time `json:"end,omitempty"`
	Active *bool      `json:"active,omitempty"`
}
