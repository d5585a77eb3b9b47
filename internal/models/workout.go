// ABOUTME: Workout and Segment models for structured rides.
// ABOUTME: Segments form the ordered ride script uploaded to Garmin.
package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DurationType classifies a segment within a workout.
type DurationType string

const (
	DurationWarmup   DurationType = "warmup"
	DurationInterval DurationType = "interval"
	DurationRecovery DurationType = "recovery"
	DurationCooldown DurationType = "cooldown"
	DurationRest     DurationType = "rest"
)

// TargetType selects what a segment's target value refers to.
type TargetType string

const (
	TargetPower     TargetType = "power"
	TargetHeartRate TargetType = "heartRate"
	TargetCadence   TargetType = "cadence"
	TargetSpeed     TargetType = "speed"
)

// ErrInvalidSegment is returned when a segment fails validation.
var ErrInvalidSegment = errors.New("invalid workout segment")

// ErrInvalidWorkout is returned when a workout fails structural validation.
var ErrInvalidWorkout = errors.New("invalid workout")

// IsValidDurationType checks if a string is a known segment duration type.
func IsValidDurationType(s string) bool {
	switch DurationType(s) {
	case DurationWarmup, DurationInterval, DurationRecovery, DurationCooldown, DurationRest:
		return true
	}
	return false
}

// IsValidTargetType checks if a string is a known target type.
func IsValidTargetType(s string) bool {
	switch TargetType(s) {
	case TargetPower, TargetHeartRate, TargetCadence, TargetSpeed:
		return true
	}
	return false
}

// Segment is one timed, targeted portion of a workout.
// TargetValue is a fraction of FTP for power targets.
type Segment struct {
	DurationType    DurationType `json:"duration_type" yaml:"duration_type"`
	DurationSeconds int          `json:"duration_seconds" yaml:"duration_seconds"`
	TargetType      TargetType   `json:"target_type" yaml:"target_type"`
	TargetValue     float64      `json:"target_value" yaml:"target_value"`
	TargetZone      *int         `json:"target_zone,omitempty" yaml:"target_zone,omitempty"`
}

// PowerSegment builds a power-targeted segment.
func PowerSegment(kind DurationType, seconds int, target float64) Segment {
	return Segment{
		DurationType:    kind,
		DurationSeconds: seconds,
		TargetType:      TargetPower,
		TargetValue:     target,
	}
}

// Validate checks that the segment has a known type, a positive duration,
// and a non-negative target.
func (s Segment) Validate() error {
	if !IsValidDurationType(string(s.DurationType)) {
		return fmt.Errorf("%w: unknown duration type %q", ErrInvalidSegment, s.DurationType)
	}
	if !IsValidTargetType(string(s.TargetType)) {
		return fmt.Errorf("%w: unknown target type %q", ErrInvalidSegment, s.TargetType)
	}
	if s.DurationSeconds <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %d", ErrInvalidSegment, s.DurationSeconds)
	}
	if s.TargetValue < 0 {
		return fmt.Errorf("%w: target value must not be negative", ErrInvalidSegment)
	}
	return nil
}

// Workout is a structured ride: an ordered list of segments.
type Workout struct {
	ID                       uuid.UUID  `json:"id"`
	UserID                   string     `json:"user_id,omitempty"`
	Name                     string     `json:"name"`
	SportType                string     `json:"sport_type"`
	Description              string     `json:"description,omitempty"`
	Segments                 []Segment  `json:"segments"`
	EstimatedDurationSeconds int        `json:"estimated_duration_seconds"`
	GarminWorkoutID          *string    `json:"garmin_workout_id,omitempty"`
	IsUploaded               bool       `json:"is_uploaded"`
	ScheduledDate            *time.Time `json:"scheduled_date,omitempty"`
	CreatedAt                time.Time  `json:"created_at"`
}

// NewWorkout creates a new Workout from segments, computing its duration.
func NewWorkout(name, sportType string, segments []Segment) *Workout {
	return &Workout{
		ID:                       uuid.New(),
		Name:                     name,
		SportType:                sportType,
		Segments:                 segments,
		EstimatedDurationSeconds: TotalDuration(segments),
		CreatedAt:                time.Now().UTC(),
	}
}

// WithDescription sets the workout description.
func (w *Workout) WithDescription(desc string) *Workout {
	w.Description = desc
	return w
}

// WithUser assigns the workout to a user.
func (w *Workout) WithUser(userID string) *Workout {
	w.UserID = userID
	return w
}

// MarkUploaded records the remote workout id.
func (w *Workout) MarkUploaded(garminWorkoutID string) {
	w.GarminWorkoutID = &garminWorkoutID
	w.IsUploaded = true
}

// TotalDuration sums segment durations.
func TotalDuration(segments []Segment) int {
	total := 0
	for _, s := range segments {
		total += s.DurationSeconds
	}
	return total
}

// Validate checks every segment and the workout-level ordering rules:
// warmup first, cooldown last, declared duration equal to the segment sum.
func (w *Workout) Validate() error {
	if w.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidWorkout)
	}
	if len(w.Segments) == 0 {
		return fmt.Errorf("%w: at least one segment is required", ErrInvalidWorkout)
	}
	for i, s := range w.Segments {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("segment %d: %w", i+1, err)
		}
		if s.DurationType == DurationWarmup && i != 0 {
			return fmt.Errorf("%w: warmup must be the first segment", ErrInvalidWorkout)
		}
		if s.DurationType == DurationCooldown && i != len(w.Segments)-1 {
			return fmt.Errorf("%w: cooldown must be the last segment", ErrInvalidWorkout)
		}
	}
	if total := TotalDuration(w.Segments); total != w.EstimatedDurationSeconds {
		return fmt.Errorf("%w: estimated duration %d does not match segments %d",
			ErrInvalidWorkout, w.EstimatedDurationSeconds, total)
	}
	return nil
}
