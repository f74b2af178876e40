package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"appointment-scheduler/internal/dto"
	"appointment-scheduler/internal/models"
	"appointment-scheduler/internal/schedule"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock CalendarService ---

type mockCalendarService struct {
	resolveFn      func(ctx context.Context, date time.Time) ([]schedule.Slot, error)
	resolveRangeFn func(ctx context.Context, from, to time.Time) ([]schedule.Slot, error)
	calendarFn     func(ctx context.Context, start, end *time.Time, includeCancelled bool) ([]models.Booking, error)
}

func (m *mockCalendarService) ResolveAvailability(ctx context.Context, date time.Time) ([]schedule.Slot, error) {
	return m.resolveFn(ctx, date)
}
func (m *mockCalendarService) ResolveAvailabilityRange(ctx context.Context, from, to time.Time) ([]schedule.Slot, error) {
	return m.resolveRangeFn(ctx, from, to)
}
func (m *mockCalendarService) SharedCalendar(ctx context.Context, start, end *time.Time, includeCancelled bool) ([]models.Booking, error) {
	return m.calendarFn(ctx, start, end, includeCancelled)
}

// --- Tests ---

func availabilityContext(query string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/availability?"+query, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestGetAvailability_ByDate(t *testing.T) {
	start := time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)
	svc := &mockCalendarService{
		resolveFn: func(ctx context.Context, date time.Time) ([]schedule.Slot, error) {
			return []schedule.Slot{{
				StartTime:   start,
				EndTime:     start.Add(time.Hour),
				Capacity:    2,
				BookedCount: 1,
				Available:   true,
			}}, nil
		},
	}

	c, rec := availabilityContext("date=2026-02-02")
	h := NewCalendarHandler(svc)

	require.NoError(t, h.GetAvailability(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []dto.SlotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, 1, resp[0].BookedCount)
	assert.True(t, resp[0].Available)
}

func TestGetAvailability_ByRange(t *testing.T) {
	var gotFrom, gotTo time.Time
	svc := &mockCalendarService{
		resolveRangeFn: func(ctx context.Context, from, to time.Time) ([]schedule.Slot, error) {
			gotFrom, gotTo = from, to
			return nil, nil
		},
	}

	c, rec := availabilityContext("start=2026-02-02T00:00:00Z&end=2026-02-04T00:00:00Z")
	h := NewCalendarHandler(svc)

	require.NoError(t, h.GetAvailability(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), gotFrom)
	assert.Equal(t, time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC), gotTo)
}

func TestGetAvailability_MissingParams(t *testing.T) {
	c, _ := availabilityContext("")
	h := NewCalendarHandler(&mockCalendarService{})

	err := h.GetAvailability(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestGetAvailability_BadDate(t *testing.T) {
	c, _ := availabilityContext("date=02-02-2026")
	h := NewCalendarHandler(&mockCalendarService{})

	err := h.GetAvailability(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestGetSharedCalendar_ForwardsBoundsAndAuditFlag(t *testing.T) {
	var gotStart, gotEnd *time.Time
	var gotCancelled bool
	svc := &mockCalendarService{
		calendarFn: func(ctx context.Context, start, end *time.Time, includeCancelled bool) ([]models.Booking, error) {
			gotStart, gotEnd, gotCancelled = start, end, includeCancelled
			return []models.Booking{{ID: 1, Status: models.StatusCancelled}}, nil
		},
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/calendar?start_date=2026-02-02&end_date=2026-02-05&include_cancelled=true", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewCalendarHandler(svc)
	require.NoError(t, h.GetSharedCalendar(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotStart)
	require.NotNil(t, gotEnd)
	assert.Equal(t, time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), *gotStart)
	assert.Equal(t, time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC), *gotEnd)
	assert.True(t, gotCancelled)
}

func TestGetSharedCalendar_DefaultsToNilBounds(t *testing.T) {
	var gotStart, gotEnd *time.Time
	svc := &mockCalendarService{
		calendarFn: func(ctx context.Context, start, end *time.Time, includeCancelled bool) ([]models.Booking, error) {
			gotStart, gotEnd = start, end
			return nil, nil
		},
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/calendar", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewCalendarHandler(svc)
	require.NoError(t, h.GetSharedCalendar(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, gotStart)
	assert.Nil(t, gotEnd)
}

func TestGetSharedCalendar_BadIncludeCancelled(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/calendar?include_cancelled=maybe", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewCalendarHandler(&mockCalendarService{})
	err := h.GetSharedCalendar(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}
