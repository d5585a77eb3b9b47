// ABOUTME: Repository interface for coach data storage.
// ABOUTME: Defines the contract for users, activities, workouts, plans, and sync runs.
package storage

import (
	"errors"
	"strings"
	"time"

	"github.com/harperreed/coach/internal/models"
)

var (
	// ErrNotFound is wrapped by every lookup that matched nothing.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguousPrefix is wrapped when an ID prefix matches several records.
	ErrAmbiguousPrefix = errors.New("ambiguous prefix")
)

// ActivityFilter narrows ListActivities. Zero values mean no filter.
type ActivityFilter struct {
	UserID    string
	SportType string
	Since     *time.Time
	Limit     int
}

// Repository defines the storage interface for coach data.
// Both the SQL database and the Charm KV store implement it.
type Repository interface {
	// User operations
	CreateUser(u *models.User) error
	GetUser(idOrPrefix string) (*models.User, error)
	GetUserByGarminID(garminUserID string) (*models.User, error)
	ListUsers() ([]*models.User, error)
	UpdateUserTokens(userID, accessToken, refreshToken string, expiresAt time.Time) error
	UpdateUserLastSync(userID string, at time.Time) error

	// Activity operations. SaveActivity upserts on (user, external id)
	// and leaves the stored ID in a.ID.
	SaveActivity(a *models.Activity) error
	GetActivity(idOrPrefix string) (*models.Activity, error)
	ListActivities(filter ActivityFilter) ([]*models.Activity, error)
	DeleteActivity(idOrPrefix string) error

	// Workout operations
	CreateWorkout(w *models.Workout) error
	GetWorkout(idOrPrefix string) (*models.Workout, error)
	ListWorkouts(userID string, limit int) ([]*models.Workout, error)
	MarkWorkoutUploaded(id, garminWorkoutID string, scheduledDate *time.Time) error
	DeleteWorkout(idOrPrefix string) error

	// Training plan operations
	CreatePlan(p *models.TrainingPlan) error
	GetPlan(idOrPrefix string) (*models.TrainingPlan, error)
	ListPlans(userID string, limit int) ([]*models.TrainingPlan, error)
	GetActivePlan(userID string) (*models.TrainingPlan, error)
	DeactivatePlans(userID string) error
	ReplaceActivePlan(p *models.TrainingPlan) error
	DeletePlan(idOrPrefix string) error

	// Sync history
	RecordSyncRun(r *models.SyncRun) error
	ListSyncRuns(userID string, limit int) ([]*models.SyncRun, error)

	// Export/Import
	GetAllData() (*ExportData, error)
	ImportData(data *ExportData) error

	// Lifecycle
	Close() error
}

// IsFullID reports whether s looks like a complete UUID rather than a prefix.
func IsFullID(s string) bool {
	return len(s) == 36 && strings.Count(s, "-") == 4
}
