package middleware

import (
	"fmt"
	"net/http"

	"appointment-scheduler/internal/dto"
	"github.com/labstack/echo/v4"
)

// ErrorHandler renders every error escaping a handler as the scheduler's JSON
// error shape, so clients always branch on a {"message": ...} body regardless
// of which layer failed.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := err.Error()

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = fmt.Sprintf("%v", he.Message)
		}
	}

	_ = c.JSON(code, dto.ErrorResponse{Message: msg})
}
