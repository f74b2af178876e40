package dto

import (
	"time"

	"appointment-scheduler/internal/models"
	"appointment-scheduler/internal/schedule"
)

type BookingResponse struct {
	ID        uint                 `json:"id"`
	UserID    string               `json:"user_id"`
	SlotStart time.Time            `json:"slot_start"`
	SlotEnd   time.Time            `json:"slot_end"`
	Status    models.BookingStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
}

type SlotResponse struct {
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Capacity    int       `json:"capacity"`
	BookedCount int       `json:"booked_count"`
	Available   bool      `json:"available"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:        b.ID,
		UserID:    b.UserID,
		SlotStart: b.SlotStart,
		SlotEnd:   b.SlotEnd,
		Status:    b.Status,
		CreatedAt: b.CreatedAt,
	}
}

func ToSlotResponse(s schedule.Slot) SlotResponse {
	return SlotResponse{
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		Capacity:    s.Capacity,
		BookedCount: s.BookedCount,
		Available:   s.Available,
	}
}
