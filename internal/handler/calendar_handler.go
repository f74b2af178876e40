package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"appointment-scheduler/internal/dto"
	"appointment-scheduler/internal/schedule"
	"appointment-scheduler/internal/service"
	"github.com/labstack/echo/v4"
)

type CalendarHandler struct {
	svc service.CalendarService
}

func NewCalendarHandler(svc service.CalendarService) *CalendarHandler {
	return &CalendarHandler{svc: svc}
}

func (h *CalendarHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/v1/availability", h.GetAvailability)
	e.GET("/api/v1/calendar", h.GetSharedCalendar)
}

// GetAvailability serves slots with live booked counts, either for a single
// day (?date=YYYY-MM-DD) or a half-open range (?start=...&end=..., RFC 3339).
func (h *CalendarHandler) GetAvailability(c echo.Context) error {
	var (
		slots []schedule.Slot
		err   error
	)

	switch {
	case c.QueryParam("date") != "":
		date, perr := time.Parse("2006-01-02", c.QueryParam("date"))
		if perr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date must be formatted YYYY-MM-DD")
		}
		slots, err = h.svc.ResolveAvailability(c.Request().Context(), date)

	case c.QueryParam("start") != "" && c.QueryParam("end") != "":
		from, perr := time.Parse(time.RFC3339, c.QueryParam("start"))
		if perr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "start must be RFC 3339")
		}
		to, perr := time.Parse(time.RFC3339, c.QueryParam("end"))
		if perr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "end must be RFC 3339")
		}
		slots, err = h.svc.ResolveAvailabilityRange(c.Request().Context(), from, to)

	default:
		return echo.NewHTTPError(http.StatusBadRequest, "provide either date or start and end")
	}

	if err != nil {
		if errors.Is(err, service.ErrInvalidRange) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.SlotResponse, len(slots))
	for i, s := range slots {
		resp[i] = dto.ToSlotResponse(s)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetSharedCalendar serves the merged booking view across a date window.
// Bounds are optional; the service applies its default window when omitted.
func (h *CalendarHandler) GetSharedCalendar(c echo.Context) error {
	var start, end *time.Time
	if v := c.QueryParam("start_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "start_date must be formatted YYYY-MM-DD")
		}
		start = &t
	}
	if v := c.QueryParam("end_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "end_date must be formatted YYYY-MM-DD")
		}
		end = &t
	}

	includeCancelled := false
	if v := c.QueryParam("include_cancelled"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "include_cancelled must be a boolean")
		}
		includeCancelled = b
	}

	bookings, err := h.svc.SharedCalendar(c.Request().Context(), start, end, includeCancelled)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRange) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = dto.ToBookingResponse(&b)
	}
	return c.JSON(http.StatusOK, resp)
}
