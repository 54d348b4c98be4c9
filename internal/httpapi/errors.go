package httpapi

import (
	"errors"
	"net/http"

	"github.com/Freeeeeet/tutor_reservations/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// statusFor сопоставляет доменную ошибку HTTP статусу
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrAlreadyApproved):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidState), errors.Is(err, service.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(err error) string {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return "not found"
	case errors.Is(err, service.ErrForbidden):
		return "forbidden"
	case errors.Is(err, service.ErrConflict):
		return "conflict"
	case errors.Is(err, service.ErrAlreadyApproved):
		return "reservation already approved"
	case errors.Is(err, service.ErrInvalidState):
		return "tutor is not available"
	case errors.Is(err, service.ErrInvalidInput):
		return "invalid input"
	default:
		return "internal error"
	}
}

func (h *Handler) fail(c echo.Context, err error) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("route", c.Path()),
			zap.Error(err))
	}
	return c.JSON(status, echo.Map{"error": messageFor(err)})
}
