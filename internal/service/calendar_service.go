package service

import (
	"context"
	"errors"
	"time"

	"appointment-scheduler/internal/models"
	"appointment-scheduler/internal/repository"
	"appointment-scheduler/internal/schedule"
)

var ErrInvalidRange = errors.New("end of range must be after its start")

// DefaultCalendarWindow bounds calendar queries when the caller gives no
// range: today forward, one week. Queries are never unbounded.
const DefaultCalendarWindow = 7 * 24 * time.Hour

// CalendarService answers the read-only queries: per-slot availability and the
// shared calendar. Both are stateless projections recomputed from the booking
// table on every call, so they are safe under concurrent reads and writes.
type CalendarService interface {
	ResolveAvailability(ctx context.Context, date time.Time) ([]schedule.Slot, error)
	ResolveAvailabilityRange(ctx context.Context, from, to time.Time) ([]schedule.Slot, error)
	SharedCalendar(ctx context.Context, start, end *time.Time, includeCancelled bool) ([]models.Booking, error)
}

type calendarService struct {
	sched schedule.DailySchedule
	repo  repository.BookingRepository
}

func NewCalendarService(sched schedule.DailySchedule, repo repository.BookingRepository) CalendarService {
	return &calendarService{sched: sched, repo: repo}
}

// ResolveAvailability returns the generated slots for one calendar day with
// each slot's booked count and availability overlaid from the booking table.
func (s *calendarService) ResolveAvailability(ctx context.Context, date time.Time) ([]schedule.Slot, error) {
	day := startOfDay(date)
	return s.ResolveAvailabilityRange(ctx, day, day.Add(24*time.Hour))
}

// ResolveAvailabilityRange resolves availability for every day whose slots
// fall within [from, to). Booked counts for the whole range come from a single
// grouped query.
func (s *calendarService) ResolveAvailabilityRange(ctx context.Context, from, to time.Time) ([]schedule.Slot, error) {
	from = from.UTC()
	to = to.UTC()
	if !to.After(from) {
		return nil, ErrInvalidRange
	}

	counts, err := s.repo.CountActiveInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	var slots []schedule.Slot
	for day := startOfDay(from); day.Before(to); day = day.Add(24 * time.Hour) {
		for _, slot := range s.sched.GenerateDaySlots(day) {
			if slot.StartTime.Before(from) || !slot.StartTime.Before(to) {
				continue
			}
			booked := int(counts[slot.StartTime])
			slot.BookedCount = booked
			slot.Available = booked < slot.Capacity
			slots = append(slots, slot)
		}
	}
	return slots, nil
}

// SharedCalendar returns bookings across the requested window, ordered by
// slot start then creation time. Omitted bounds default to today forward one
// week. Cancelled bookings are excluded unless the caller asks for them
// (audit views).
func (s *calendarService) SharedCalendar(ctx context.Context, start, end *time.Time, includeCancelled bool) ([]models.Booking, error) {
	from := startOfDay(time.Now().UTC())
	if start != nil {
		from = start.UTC()
	}
	to := from.Add(DefaultCalendarWindow)
	if end != nil {
		to = end.UTC()
	}
	if !to.After(from) {
		return nil, ErrInvalidRange
	}
	return s.repo.FindInRange(ctx, from, to, includeCancelled)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
