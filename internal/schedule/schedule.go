package schedule

import (
	"fmt"
	"time"
)

// DailySchedule is the fixed daily operating window slots are generated from.
// It is passed explicitly wherever slots are computed; there is no package-level
// default, so tests and tenants can each carry their own.
type DailySchedule struct {
	StartHour       int
	EndHour         int
	SlotDuration    time.Duration
	DefaultCapacity int
}

// Validate checks the schedule invariants: a non-empty window, a positive
// whole-hour slot duration, and positive capacity.
func (s DailySchedule) Validate() error {
	if s.StartHour < 0 || s.EndHour > 24 {
		return fmt.Errorf("schedule hours must lie within 0..24, got %d..%d", s.StartHour, s.EndHour)
	}
	if s.EndHour <= s.StartHour {
		return fmt.Errorf("end hour %d must be after start hour %d", s.EndHour, s.StartHour)
	}
	if s.SlotDuration < time.Hour || s.SlotDuration%time.Hour != 0 {
		return fmt.Errorf("slot duration must be a positive whole number of hours, got %s", s.SlotDuration)
	}
	if s.DefaultCapacity <= 0 {
		return fmt.Errorf("default capacity must be positive, got %d", s.DefaultCapacity)
	}
	return nil
}

// Slot is a bookable time window. Slots are a projection of the schedule plus
// the booking table; they are computed on demand and never stored.
type Slot struct {
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Capacity    int       `json:"capacity"`
	BookedCount int       `json:"booked_count"`
	Available   bool      `json:"available"`
}

// GenerateDaySlots produces the canonical slots for the calendar day containing
// date, in UTC, ordered by start time. Slots step from StartHour by SlotDuration;
// a trailing window that would end past EndHour is dropped, not truncated.
// Counts are baseline values (zero booked, available) before any bookings are
// overlaid.
func (s DailySchedule) GenerateDaySlots(date time.Time) []Slot {
	day := date.UTC()
	windowEnd := time.Date(day.Year(), day.Month(), day.Day(), s.EndHour, 0, 0, 0, time.UTC)

	var slots []Slot
	start := time.Date(day.Year(), day.Month(), day.Day(), s.StartHour, 0, 0, 0, time.UTC)
	for {
		end := start.Add(s.SlotDuration)
		if end.After(windowEnd) {
			break
		}
		slots = append(slots, Slot{
			StartTime: start,
			EndTime:   end,
			Capacity:  s.DefaultCapacity,
			Available: true,
		})
		start = end
	}
	return slots
}

// IsValidSlotTime reports whether t is the start of a generated slot: on a
// whole-hour boundary, within [StartHour, EndHour), and aligned to the slot
// grid. Booking requests for any other instant are rejected.
func (s DailySchedule) IsValidSlotTime(t time.Time) bool {
	t = t.UTC()
	if t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
		return false
	}
	hour := t.Hour()
	if hour < s.StartHour || hour >= s.EndHour {
		return false
	}
	step := int(s.SlotDuration / time.Hour)
	if (hour-s.StartHour)%step != 0 {
		return false
	}
	// The slot must fit inside the window; the generator drops partials.
	return hour+step <= s.EndHour
}

// SlotEndFor returns the end instant of the slot beginning at start.
func (s DailySchedule) SlotEndFor(start time.Time) time.Time {
	return start.Add(s.SlotDuration)
}
