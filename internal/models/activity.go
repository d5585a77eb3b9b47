// ABOUTME: Activity model for completed rides and other sessions.
// ABOUTME: Canonical post-normalization record with optional power/HR metrics.
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SportCycling is the default sport for activities and generated workouts.
const SportCycling = "cycling"

// Activity is a completed session pulled from a remote platform or a FIT file.
// Optional metrics are nil when the source did not report them.
type Activity struct {
	ID               uuid.UUID       `json:"id"`
	UserID           string          `json:"user_id"`
	ExternalID       string          `json:"external_id"`
	Name             string          `json:"name"`
	SportType        string          `json:"sport_type"`
	StartTime        time.Time       `json:"start_time"`
	DurationSeconds  int             `json:"duration_seconds"`
	DistanceMeters   float64         `json:"distance_meters"`
	Calories         int             `json:"calories"`
	AveragePower     *float64        `json:"average_power,omitempty"`
	NormalizedPower  *float64        `json:"normalized_power,omitempty"`
	AverageHeartRate *float64        `json:"average_heart_rate,omitempty"`
	MaxHeartRate     *float64        `json:"max_heart_rate,omitempty"`
	AverageCadence   *float64        `json:"average_cadence,omitempty"`
	TSS              *float64        `json:"tss,omitempty"`
	IntensityFactor  *float64        `json:"intensity_factor,omitempty"`
	RawData          json.RawMessage `json:"raw_data,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// NewActivity creates a new Activity with generated UUID and current timestamps.
func NewActivity(userID, sportType string) *Activity {
	now := time.Now().UTC()
	return &Activity{
		ID:        uuid.New(),
		UserID:    userID,
		SportType: sportType,
		StartTime: now,
		CreatedAt: now,
	}
}

// WithDuration sets the duration in seconds.
func (a *Activity) WithDuration(seconds int) *Activity {
	a.DurationSeconds = seconds
	return a
}

// WithStartTime sets the start timestamp.
func (a *Activity) WithStartTime(t time.Time) *Activity {
	a.StartTime = t.UTC()
	return a
}

// WithPower sets the average power in watts.
func (a *Activity) WithPower(watts float64) *Activity {
	a.AveragePower = &watts
	return a
}

// WithTSS sets the training stress score.
func (a *Activity) WithTSS(tss float64) *Activity {
	a.TSS = &tss
	return a
}

// IsCycling reports whether the activity is a ride.
func (a *Activity) IsCycling() bool {
	return a.SportType == SportCycling
}

// DistanceKm returns the canonical distance in kilometers.
func (a *Activity) DistanceKm() float64 {
	return a.DistanceMeters / 1000
}

// Float returns the value of an optional metric, or 0 when absent.
func Float(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// User is a rider with linked Garmin credentials.
type User struct {
	ID             uuid.UUID  `json:"id"`
	GarminUserID   string     `json:"garmin_user_id"`
	AccessToken    string     `json:"access_token"`
	RefreshToken   string     `json:"refresh_token"`
	TokenExpiresAt time.Time  `json:"token_expires_at"`
	CreatedAt      time.Time  `json:"created_at"`
	LastSyncAt     *time.Time `json:"last_sync_at,omitempty"`
}

// NewUser creates a new User for the given Garmin account.
func NewUser(garminUserID string) *User {
	return &User{
		ID:           uuid.New(),
		GarminUserID: garminUserID,
		CreatedAt:    time.Now().UTC(),
	}
}

// WithTokens sets the OAuth credentials.
func (u *User) WithTokens(access, refresh string, expiresAt time.Time) *User {
	u.AccessToken = access
	u.RefreshToken = refresh
	u.TokenExpiresAt = expiresAt.UTC()
	return u
}

// TokenExpired reports whether the access token has expired at now.
func (u *User) TokenExpired(now time.Time) bool {
	return !u.TokenExpiresAt.After(now)
}

// SyncRun records one pull of activities for a user.
type SyncRun struct {
	ID         uuid.UUID `json:"id"`
	UserID     string    `json:"user_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Fetched    int       `json:"fetched"`
	Saved      int       `json:"saved"`
	Warnings   int       `json:"warnings"`
	Error      string    `json:"error,omitempty"`
}

// NewSyncRun starts a SyncRun for the given user.
func NewSyncRun(userID string, startedAt time.Time) *SyncRun {
	return &SyncRun{
		ID:        uuid.New(),
		UserID:    userID,
		StartedAt: startedAt.UTC(),
	}
}
