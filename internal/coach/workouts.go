// ABOUTME: Workout generation, creation, and upload to Garmin.
// ABOUTME: Uploads can schedule the workout and are published as events.
package coach

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/coach/internal/events"
	"github.com/harperreed/coach/internal/models"
	"github.com/harperreed/coach/internal/storage"
	"github.com/harperreed/coach/internal/training"
)

// GenerateWorkout synthesizes a workout for goal. When save is set the workout
// is stored for userID; otherwise userID may be empty.
func (s *Service) GenerateWorkout(ctx context.Context, userID, goal, focus string, minutes int, save bool) (*models.Workout, error) {
	class := training.ClassifyGoal(goal)
	w, err := training.SynthesizeWorkout(class, focus, minutes)
	if err != nil {
		return nil, fmt.Errorf("generate workout: %w", err)
	}
	workoutsGenerated.WithLabelValues(class.String()).Inc()

	if !save {
		return w, nil
	}
	u, err := s.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	w.WithUser(u.ID.String())
	if err := s.repo.CreateWorkout(w); err != nil {
		return nil, fmt.Errorf("generate workout: %w", err)
	}
	s.logger.Info().Str("user_id", w.UserID).Str("workout_id", w.ID.String()).Str("goal", class.String()).Msg("workout generated")
	return w, nil
}

// CreateWorkout validates and stores a hand-built workout. The estimated
// duration is recomputed from the segments and the sport defaults to cycling.
func (s *Service) CreateWorkout(ctx context.Context, userID string, w *models.Workout) (*models.Workout, error) {
	u, err := s.User(ctx, userID)
	if err != nil {
		return nil, err
	}

	if w.SportType == "" {
		w.SportType = models.SportCycling
	}
	w.EstimatedDurationSeconds = models.TotalDuration(w.Segments)
	if err := w.Validate(); err != nil {
		return nil, err
	}

	w.ID = uuid.New()
	w.CreatedAt = s.now().UTC()
	w.IsUploaded = false
	w.GarminWorkoutID = nil
	w.WithUser(u.ID.String())

	if err := s.repo.CreateWorkout(w); err != nil {
		return nil, fmt.Errorf("create workout: %w", err)
	}
	return w, nil
}

// UploadWorkout sends a stored workout to Garmin and optionally schedules it.
func (s *Service) UploadWorkout(ctx context.Context, userID, workoutID string, scheduleDate *time.Time) (*models.Workout, error) {
	if err := s.requireGarmin(); err != nil {
		return nil, err
	}
	u, err := s.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	uid := u.ID.String()

	w, err := s.repo.GetWorkout(workoutID)
	if err != nil {
		return nil, fmt.Errorf("upload workout: %w", err)
	}
	if w.UserID != uid {
		return nil, fmt.Errorf("upload workout: %w: %s", storage.ErrNotFound, workoutID)
	}
	if w.IsUploaded {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyUploaded, w.ID)
	}

	creds, err := s.credentials(u)
	if err != nil {
		return nil, err
	}
	garminID, err := s.garmin.CreateWorkout(ctx, creds, w)
	if err != nil {
		return nil, fmt.Errorf("upload workout: %w", err)
	}

	// The workout exists remotely from here on, so a failed schedule is logged, not returned.
	var scheduled *time.Time
	if scheduleDate != nil {
		if err := s.garmin.ScheduleWorkout(ctx, creds, garminID, *scheduleDate); err != nil {
			s.logger.Warn().Err(err).Str("workout_id", w.ID.String()).Msg("schedule workout")
		} else {
			d := scheduleDate.UTC()
			scheduled = &d
		}
	}

	if err := s.repo.MarkWorkoutUploaded(w.ID.String(), garminID, scheduled); err != nil {
		return nil, fmt.Errorf("upload workout: %w", err)
	}
	w.MarkUploaded(garminID)
	w.ScheduledDate = scheduled
	workoutsUploaded.Inc()

	s.logger.Info().Str("user_id", uid).Str("workout_id", w.ID.String()).Str("garmin_workout_id", garminID).Msg("workout uploaded")
	s.publish(ctx, events.TypeWorkoutUploaded, uid, events.WorkoutUploaded{
		WorkoutID:       w.ID.String(),
		GarminWorkoutID: garminID,
		ScheduledDate:   scheduled,
	})
	return w, nil
}

// UploadResult is one workout's outcome within BatchUpload.
type UploadResult struct {
	WorkoutID       string `json:"workout_id"`
	Success         bool   `json:"success"`
	GarminWorkoutID string `json:"garmin_workout_id,omitempty"`
	Error           string `json:"error,omitempty"`
}

// BatchResult summarizes a batch upload.
type BatchResult struct {
	Results    []UploadResult `json:"results"`
	Successful int            `json:"successful"`
	Total      int            `json:"total"`
}

// Message is the human summary, e.g. "Uploaded 2/3 workouts".
func (b BatchResult) Message() string {
	return fmt.Sprintf("Uploaded %d/%d workouts", b.Successful, b.Total)
}

// BatchUpload uploads workouts one by one. Per-workout failures land in the
// results; only a missing user or Garmin configuration fails the whole batch.
func (s *Service) BatchUpload(ctx context.Context, userID string, workoutIDs []string) (*BatchResult, error) {
	if err := s.requireGarmin(); err != nil {
		return nil, err
	}
	if _, err := s.User(ctx, userID); err != nil {
		return nil, err
	}

	res := &BatchResult{Results: make([]UploadResult, 0, len(workoutIDs)), Total: len(workoutIDs)}
	for _, id := range workoutIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w, err := s.UploadWorkout(ctx, userID, id, nil)
		if err != nil {
			res.Results = append(res.Results, UploadResult{WorkoutID: id, Error: uploadErrorText(err)})
			continue
		}
		res.Results = append(res.Results, UploadResult{WorkoutID: id, Success: true, GarminWorkoutID: *w.GarminWorkoutID})
		res.Successful++
	}
	return res, nil
}

func uploadErrorText(err error) string {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return "Workout not found"
	case errors.Is(err, ErrAlreadyUploaded):
		return "Already uploaded"
	default:
		return err.Error()
	}
}
