package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/delivery_shop/internal/logging"
	"github.com/Skotchmaster/delivery_shop/internal/service"
)

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrUpstream):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// serviceError logs a failed service call under event and converts it into
// an *echo.HTTPError. Internal failures never leak their text to the client.
func serviceError(l *slog.Logger, event string, err error) error {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		l.Error(event, "status", code, "error", err)
		return echo.NewHTTPError(code, "internal server error").SetInternal(err)
	}
	l.Warn(event, "status", code, "reason", http.StatusText(code), "error", err)
	return echo.NewHTTPError(code, err.Error()).SetInternal(err)
}

// ErrorHandler renders every error as the failure envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	body := ErrorResponse{Message: "internal server error"}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		body.Message = fmt.Sprint(he.Message)
		if he.Internal != nil && code < http.StatusInternalServerError && he.Internal.Error() != body.Message {
			body.Error = he.Internal.Error()
		}
	} else if code = statusFor(err); code != http.StatusInternalServerError {
		body.Message = err.Error()
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, body)
	}
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("write_error_response", "error", err)
	}
}
