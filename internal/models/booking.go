package models

import "time"

type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusCancelled BookingStatus = "CANCELLED"
)

// Booking is one user's claim on one slot. Rows are never deleted;
// cancellation is a status transition so the audit history survives.
type Booking struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	UserID    string        `gorm:"not null;index" json:"user_id"`
	SlotStart time.Time     `gorm:"not null;index" json:"slot_start"`
	SlotEnd   time.Time     `gorm:"not null" json:"slot_end"`
	Status    BookingStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
