package dto

import "time"

type CreateBookingRequest struct {
	UserID    string    `json:"user_id"`
	SlotStart time.Time `json:"slot_start"`
	SlotEnd   time.Time `json:"slot_end"`
}
