// ABOUTME: Maps domain errors to HTTP status codes and {"error": ...} bodies.
// ABOUTME: Unknown errors become 500 and are logged.
package api

import (
	"errors"
	"net/http"

	"github.com/harperreed/coach/internal/coach"
	"github.com/harperreed/coach/internal/garmin"
	"github.com/harperreed/coach/internal/models"
	"github.com/harperreed/coach/internal/storage"
	"github.com/harperreed/coach/internal/training"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type errorBody struct {
	Error string `json:"error"`
}

// badRequest is a 400 with a fixed message.
func badRequest(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}

func statusFor(err error) int {
	var apiErr *garmin.APIError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrAmbiguousPrefix),
		errors.Is(err, coach.ErrNoToken):
		return http.StatusBadRequest
	case errors.Is(err, coach.ErrAlreadyUploaded),
		errors.Is(err, coach.ErrSyncInProgress):
		return http.StatusConflict
	case errors.Is(err, training.ErrInsufficientData),
		errors.Is(err, training.ErrInvalidDuration),
		errors.Is(err, training.ErrInvalidWeeks),
		errors.Is(err, training.ErrInvalidWindow),
		errors.Is(err, models.ErrInvalidSegment),
		errors.Is(err, models.ErrInvalidWorkout):
		return http.StatusUnprocessableEntity
	case errors.Is(err, garmin.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func errorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := statusFor(err)
		msg := coach.WithHint(err).Error()

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(he.Code)
			}
		}

		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		}
		if writeErr := c.JSON(status, errorBody{Error: msg}); writeErr != nil {
			logger.Warn().Err(writeErr).Msg("write error response")
		}
	}
}
