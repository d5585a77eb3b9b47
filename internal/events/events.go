// ABOUTME: Domain events emitted after syncs, uploads, and plan generation.
// ABOUTME: Defines the Publisher interface, payload types, and the no-op publisher.
package events

import (
	"context"
	"time"
)

// Event types. Each maps to its own topic under the configured prefix.
const (
	TypeActivitySynced  = "activity.synced"
	TypeWorkoutUploaded = "workout.uploaded"
	TypePlanGenerated   = "plan.generated"
)

// Event is one message on the bus. UserID is the partition key.
type Event struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// ActivitySynced is emitted after a user's activities were pulled and stored.
type ActivitySynced struct {
	SyncRunID string `json:"sync_run_id"`
	Fetched   int    `json:"fetched"`
	Saved     int    `json:"saved"`
	Warnings  int    `json:"warnings"`
}

// WorkoutUploaded is emitted once a workout exists on Garmin.
type WorkoutUploaded struct {
	WorkoutID       string     `json:"workout_id"`
	GarminWorkoutID string     `json:"garmin_workout_id"`
	ScheduledDate   *time.Time `json:"scheduled_date,omitempty"`
}

// PlanGenerated is emitted when a new plan becomes the user's active plan.
type PlanGenerated struct {
	PlanID        string `json:"plan_id"`
	Goal          string `json:"goal"`
	DurationWeeks int    `json:"duration_weeks"`
	EstimatedFTP  int    `json:"estimated_ftp"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }
