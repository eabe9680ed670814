package presenter

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/totegamma/engaja/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

func Created(c echo.Context, payload any) error {
	return c.JSON(http.StatusCreated, payload)
}

func BadRequest(c echo.Context, err error) error {
	zap.S().Debugw("bad request", "path", c.Path(), "error", err)
	return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func BadRequestMessage(c echo.Context, msg string) error {
	zap.S().Debugw("bad request", "path", c.Path(), "error", msg)
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

func Unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{Error: msg})
}

func Forbidden(c echo.Context) error {
	zap.S().Infow("forbidden", "path", c.Path())
	return c.JSON(http.StatusForbidden, errorResponse{Error: domain.ErrPermissionDenied.Error()})
}

func NotFound(c echo.Context, msg string) error {
	zap.S().Debugw("not found", "path", c.Path(), "error", msg)
	return c.JSON(http.StatusNotFound, errorResponse{Error: msg})
}

func InternalError(c echo.Context, err error) error {
	span := trace.SpanFromContext(c.Request().Context())
	span.RecordError(err)
	zap.S().Errorw("internal error",
		"path", c.Path(),
		"traceId", span.SpanContext().TraceID().String(),
		"error", err,
	)
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

// Error maps usecase errors onto HTTP statuses.
func Error(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return BadRequest(c, err)
	case errors.Is(err, domain.ErrPermissionDenied):
		return Forbidden(c)
	case errors.Is(err, domain.ErrNotFound):
		return NotFound(c, err.Error())
	default:
		return InternalError(c, err)
	}
}
