// ABOUTME: Workout and training plan operations for Charm KV storage.
// ABOUTME: Plans are deactivated by rewriting each active plan record.
package charm

import (
	"fmt"
	"sort"
	"time"

	"github.com/harperreed/coach/internal/models"
	"github.com/harperreed/coach/internal/storage"
)

// CreateWorkout stores a new workout.
func (c *Client) CreateWorkout(w *models.Workout) error {
	if err := c.put(WorkoutPrefix+w.ID.String(), w); err != nil {
		return fmt.Errorf("create workout: %w", err)
	}
	return nil
}

// GetWorkout retrieves a workout by ID or ID prefix.
func (c *Client) GetWorkout(idOrPrefix string) (*models.Workout, error) {
	w, err := getOne[models.Workout](c, WorkoutPrefix, idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("get workout: %w", err)
	}
	return w, nil
}

// ListWorkouts returns a user's workouts, newest first. An empty userID lists all.
func (c *Client) ListWorkouts(userID string, limit int) ([]*models.Workout, error) {
	all, err := listAll[models.Workout](c, WorkoutPrefix)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	var out []*models.Workout
	for _, w := range all {
		if userID == "" || w.UserID == userID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return truncate(out, limit), nil
}

// MarkWorkoutUploaded records the remote id and optional schedule date.
func (c *Client) MarkWorkoutUploaded(id, garminWorkoutID string, scheduledDate *time.Time) error {
	w, err := c.GetWorkout(id)
	if err != nil {
		return fmt.Errorf("mark workout uploaded: %w", err)
	}
	w.MarkUploaded(garminWorkoutID)
	w.ScheduledDate = scheduledDate
	return c.put(WorkoutPrefix+w.ID.String(), w)
}

// DeleteWorkout removes a workout by ID or prefix.
func (c *Client) DeleteWorkout(idOrPrefix string) error {
	if err := c.deleteByIDPrefix(WorkoutPrefix, idOrPrefix); err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	return nil
}

// CreatePlan stores a training plan.
func (c *Client) CreatePlan(p *models.TrainingPlan) error {
	if err := c.put(PlanPrefix+p.ID.String(), p); err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	return nil
}

// GetPlan retrieves a plan by ID or ID prefix.
func (c *Client) GetPlan(idOrPrefix string) (*models.TrainingPlan, error) {
	p, err := getOne[models.TrainingPlan](c, PlanPrefix, idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return p, nil
}

// ListPlans returns a user's plans, newest first. An empty userID lists all.
func (c *Client) ListPlans(userID string, limit int) ([]*models.TrainingPlan, error) {
	all, err := listAll[models.TrainingPlan](c, PlanPrefix)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	var out []*models.TrainingPlan
	for _, p := range all {
		if userID == "" || p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return truncate(out, limit), nil
}

// GetActivePlan returns the user's newest active plan.
func (c *Client) GetActivePlan(userID string) (*models.TrainingPlan, error) {
	plans, err := c.ListPlans(userID, 0)
	if err != nil {
		return nil, err
	}
	for _, p := range plans {
		if p.IsActive {
			return p, nil
		}
	}
	return nil, fmt.Errorf("get active plan: %w", storage.ErrNotFound)
}

// DeactivatePlans marks every plan of the user inactive.
func (c *Client) DeactivatePlans(userID string) error {
	plans, err := c.ListPlans(userID, 0)
	if err != nil {
		return err
	}
	for _, p := range plans {
		if !p.IsActive {
			continue
		}
		p.IsActive = false
		if err := c.put(PlanPrefix+p.ID.String(), p); err != nil {
			return fmt.Errorf("deactivate plan %s: %w", p.ID, err)
		}
	}
	return nil
}

// ReplaceActivePlan stores p as the user's active plan, then deactivates the
// others. A failed write leaves the previous active plan in place; a failure
// while deactivating leaves p as the newest active plan.
func (c *Client) ReplaceActivePlan(p *models.TrainingPlan) error {
	p.IsActive = true
	if err := c.CreatePlan(p); err != nil {
		return fmt.Errorf("replace active plan: %w", err)
	}
	plans, err := c.ListPlans(p.UserID, 0)
	if err != nil {
		return fmt.Errorf("replace active plan: %w", err)
	}
	for _, other := range plans {
		if other.ID == p.ID || !other.IsActive {
			continue
		}
		other.IsActive = false
		if err := c.put(PlanPrefix+other.ID.String(), other); err != nil {
			return fmt.Errorf("replace active plan: deactivate %s: %w", other.ID, err)
		}
	}
	return nil
}

// DeletePlan removes a plan by ID or prefix.
func (c *Client) DeletePlan(idOrPrefix string) error {
	if err := c.deleteByIDPrefix(PlanPrefix, idOrPrefix); err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	return nil
}

// GetAllData retrieves all data for export.
func (c *Client) GetAllData() (*storage.ExportData, error) {
	return storage.CollectAllData(c)
}

// ImportData imports data from an export.
func (c *Client) ImportData(data *storage.ExportData) error {
	return storage.RestoreData(c, data)
}
