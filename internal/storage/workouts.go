// ABOUTME: Workout CRUD operations for SQL storage.
// ABOUTME: Segments are stored as a JSON column; uploads record the Garmin workout id.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/coach/internal/models"
)

const workoutColumns = `id, user_id, name, sport_type, description, segments, estimated_duration_seconds,
	garmin_workout_id, is_uploaded, scheduled_date, created_at`

// CreateWorkout stores a new workout in the database.
func (d *DB) CreateWorkout(w *models.Workout) error {
	segments, err := json.Marshal(w.Segments)
	if err != nil {
		return fmt.Errorf("marshal segments: %w", err)
	}

	var desc sql.NullString
	if w.Description != "" {
		desc = sql.NullString{String: w.Description, Valid: true}
	}
	var garminID sql.NullString
	if w.GarminWorkoutID != nil {
		garminID = sql.NullString{String: *w.GarminWorkoutID, Valid: true}
	}

	_, err = d.exec(`INSERT INTO workouts (`+workoutColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID.String(),
		w.UserID,
		w.Name,
		w.SportType,
		desc,
		string(segments),
		w.EstimatedDurationSeconds,
		garminID,
		w.IsUploaded,
		nullTime(w.ScheduledDate),
		formatTime(w.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create workout: %w", err)
	}
	return nil
}

// GetWorkout retrieves a workout by ID or ID prefix.
func (d *DB) GetWorkout(idOrPrefix string) (*models.Workout, error) {
	id, err := d.resolveID("workouts", idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("get workout: %w", err)
	}
	w, err := scanWorkout(d.queryRow(`SELECT `+workoutColumns+` FROM workouts WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get workout %s: %w", idOrPrefix, err)
	}
	return w, nil
}

// ListWorkouts returns a user's workouts, newest first. An empty userID lists all.
func (d *DB) ListWorkouts(userID string, limit int) ([]*models.Workout, error) {
	query := `SELECT ` + workoutColumns + ` FROM workouts`
	var args []any
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC` + limitClause(limit)

	rows, err := d.query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	defer rows.Close()

	var workouts []*models.Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}

// MarkWorkoutUploaded records the remote id and optional schedule date.
func (d *DB) MarkWorkoutUploaded(id, garminWorkoutID string, scheduledDate *time.Time) error {
	result, err := d.exec(`UPDATE workouts SET garmin_workout_id = ?, is_uploaded = ?, scheduled_date = ? WHERE id = ?`,
		garminWorkoutID, true, nullTime(scheduledDate), id)
	if err != nil {
		return fmt.Errorf("mark workout uploaded: %w", err)
	}
	return requireAffected(result, id)
}

// DeleteWorkout removes a workout by ID or prefix.
func (d *DB) DeleteWorkout(idOrPrefix string) error {
	if err := d.deleteByID("workouts", idOrPrefix); err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	return nil
}

func scanWorkout(row scanner) (*models.Workout, error) {
	var w models.Workout
	var idStr, segments, createdAt string
	var desc, garminID, scheduled sql.NullString

	err := row.Scan(&idStr, &w.UserID, &w.Name, &w.SportType, &desc, &segments,
		&w.EstimatedDurationSeconds, &garminID, &w.IsUploaded, &scheduled, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan workout: %w", err)
	}

	if err := json.Unmarshal([]byte(segments), &w.Segments); err != nil {
		return nil, fmt.Errorf("unmarshal segments: %w", err)
	}
	w.ID, _ = uuid.Parse(idStr)
	w.Description = desc.String
	w.GarminWorkoutID = stringPtr(garminID)
	w.ScheduledDate = timePtr(scheduled)
	w.CreatedAt = parseTime(createdAt)
	return &w, nil
}
