// ABOUTME: Maps known errors to actionable messages for CLI, MCP, and HTTP users.
// ABOUTME: Unknown errors produce no hint.
package coach

import (
	"errors"
	"fmt"

	"github.com/harperreed/coach/internal/garmin"
	"github.com/harperreed/coach/internal/training"
)

// Hint returns what the user can do about err, or "" when nothing specific applies.
func Hint(err error) string {
	switch {
	case errors.Is(err, training.ErrInsufficientData):
		return "sync activities first (coach sync) or seed sample rides (coach activities mock)"
	case errors.Is(err, training.ErrInvalidDuration):
		return fmt.Sprintf("choose a longer duration, at least %d minutes", training.MinWorkoutMinutes)
	case errors.Is(err, training.ErrInvalidWeeks):
		return "choose a plan of at least one week"
	case errors.Is(err, ErrNoToken):
		return "link a Garmin account first (coach auth login)"
	case errors.Is(err, ErrAlreadyUploaded):
		return "the workout is already on Garmin"
	case errors.Is(err, garmin.ErrNotConfigured):
		return "set GARMIN_CLIENT_ID, GARMIN_CLIENT_SECRET and the GARMIN_OAUTH_* URLs"
	}
	return ""
}

// WithHint appends the hint for err, if any.
func WithHint(err error) error {
	if err == nil {
		return nil
	}
	if h := Hint(err); h != "" {
		return fmt.Errorf("%w: %s", err, h)
	}
	return err
}
