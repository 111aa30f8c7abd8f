package models

import "time"

// ReservationStatus is the lifecycle state of a Reservation.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
	// StatusCompleted is never stored; it is derived for listings once the slot has ended.
	StatusCompleted ReservationStatus = "completed"
)

// Reservation is a customer's booking against a Slot.
type Reservation struct {
	ID             string            `bson:"id" json:"id" firestore:"id"`
	SlotID         string            `bson:"slotId" json:"slotId" firestore:"slotId"`
	TourID         string            `bson:"tourId" json:"tourId" firestore:"tourId"`
	TourTitle      string            `bson:"tourTitle,omitempty" json:"tourTitle,omitempty" firestore:"tourTitle,omitempty"`
	SlotStart      time.Time         `bson:"slotStart" json:"slotStart" firestore:"slotStart"`
	SlotEnd        time.Time         `bson:"slotEnd" json:"slotEnd" firestore:"slotEnd"`
	FullName       string            `bson:"fullName" json:"fullName" firestore:"fullName"`
	Email          string            `bson:"email" json:"email" firestore:"email"`
	Phone          string            `bson:"phone,omitempty" json:"phone,omitempty" firestore:"phone,omitempty"`
	PartySize      int               `bson:"partySize" json:"partySize" firestore:"partySize"`
	Notes          string            `bson:"notes,omitempty" json:"notes,omitempty" firestore:"notes,omitempty"`
	Status         ReservationStatus `bson:"status" json:"status" firestore:"status"`
	UnitPrice      float64           `bson:"unitPrice" json:"unitPrice" firestore:"unitPrice"`
	TotalPrice     float64           `bson:"totalPrice" json:"totalPrice" firestore:"totalPrice"`
	UserID         string            `bson:"userId,omitempty" json:"userId,omitempty" firestore:"userId,omitempty"`
	IdempotencyKey string            `bson:"idempotencyKey,omitempty" json:"-" firestore:"idempotencyKey,omitempty"`
	CreatedAt      time.Time         `bson:"createdAt" json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt      time.Time         `bson:"updatedAt,omitempty" json:"updatedAt,omitempty" firestore:"updatedAt,omitempty"`
}

// BookingRequest is the form a tourist submits to reserve seats on a slot.
type BookingRequest struct {
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	PartySize int    `json:"partySize"`
	Notes     string `json:"notes,omitempty"`
	// IdempotencyKey makes repeated submissions of the same booking resolve to one reservation.
	IdempotencyKey string `json:"-"`
}

// BookingResponse is returned to the caller after a committed booking.
type BookingResponse struct {
	ReservationID string `json:"reservationId"`
}
