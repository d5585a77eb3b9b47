// ABOUTME: Sentinel errors for the training engine.
// ABOUTME: Callers match them with errors.Is and surface actionable messages.
package training

import "errors"

var (
	// ErrInsufficientData means no usable cycling activities were supplied.
	ErrInsufficientData = errors.New("insufficient activity data")

	// ErrInvalidDuration means the requested workout cannot fit warmup and
	// cooldown, or exceeds MaxWorkoutMinutes.
	ErrInvalidDuration = errors.New("invalid workout duration")

	// ErrInvalidWeeks means a plan length outside 1..MaxPlanWeeks.
	ErrInvalidWeeks = errors.New("invalid plan length")

	// ErrInvalidWindow means a load window outside 1..MaxLoadWindowDays.
	ErrInvalidWindow = errors.New("invalid load window")

	// ErrMalformedActivity marks a raw record that needed defaults to normalize.
	// It is never returned by Normalize; see Normalized.Err.
	ErrMalformedActivity = errors.New("malformed activity")
)
