// ABOUTME: Activity persistence for SQL storage.
// ABOUTME: Sync upserts on (user_id, external_id) so re-syncing is idempotent.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/coach/internal/models"
)

const activityColumns = `id, user_id, external_id, name, sport_type, start_time, duration_seconds,
	distance_meters, calories, average_power, normalized_power, average_heart_rate,
	max_heart_rate, average_cadence, tss, intensity_factor, raw_data, created_at`

// SaveActivity inserts an activity or updates the existing row for the same
// user and external id. a.ID is set to the stored row's ID.
func (d *DB) SaveActivity(a *models.Activity) error {
	var raw sql.NullString
	if len(a.RawData) > 0 {
		raw = sql.NullString{String: string(a.RawData), Valid: true}
	}

	query := `INSERT INTO activities (` + activityColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, external_id) DO UPDATE SET
			name = excluded.name,
			sport_type = excluded.sport_type,
			start_time = excluded.start_time,
			duration_seconds = excluded.duration_seconds,
			distance_meters = excluded.distance_meters,
			calories = excluded.calories,
			average_power = excluded.average_power,
			normalized_power = excluded.normalized_power,
			average_heart_rate = excluded.average_heart_rate,
			max_heart_rate = excluded.max_heart_rate,
			average_cadence = excluded.average_cadence,
			tss = excluded.tss,
			intensity_factor = excluded.intensity_factor,
			raw_data = excluded.raw_data`

	_, err := d.exec(query,
		a.ID.String(),
		a.UserID,
		a.ExternalID,
		a.Name,
		a.SportType,
		formatTime(a.StartTime),
		a.DurationSeconds,
		a.DistanceMeters,
		a.Calories,
		a.AveragePower,
		a.NormalizedPower,
		a.AverageHeartRate,
		a.MaxHeartRate,
		a.AverageCadence,
		a.TSS,
		a.IntensityFactor,
		raw,
		formatTime(a.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save activity: %w", err)
	}

	var idStr string
	if err := d.queryRow(`SELECT id FROM activities WHERE user_id = ? AND external_id = ?`, a.UserID, a.ExternalID).Scan(&idStr); err != nil {
		return fmt.Errorf("save activity: read back id: %w", err)
	}
	a.ID, _ = uuid.Parse(idStr)
	return nil
}

// GetActivity retrieves an activity by ID or ID prefix.
func (d *DB) GetActivity(idOrPrefix string) (*models.Activity, error) {
	id, err := d.resolveID("activities", idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	a, err := scanActivity(d.queryRow(`SELECT `+activityColumns+` FROM activities WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get activity %s: %w", idOrPrefix, err)
	}
	return a, nil
}

// ListActivities returns activities matching the filter, newest first.
func (d *DB) ListActivities(filter ActivityFilter) ([]*models.Activity, error) {
	var where []string
	var args []any

	if filter.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.SportType != "" {
		where = append(where, "LOWER(sport_type) = LOWER(?)")
		args = append(args, filter.SportType)
	}
	if filter.Since != nil {
		where = append(where, "start_time >= ?")
		args = append(args, formatTime(*filter.Since))
	}

	query := `SELECT ` + activityColumns + ` FROM activities`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY start_time DESC" + limitClause(filter.Limit)

	rows, err := d.query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var activities []*models.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// DeleteActivity removes an activity by ID or prefix.
func (d *DB) DeleteActivity(idOrPrefix string) error {
	if err := d.deleteByID("activities", idOrPrefix); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	return nil
}

func scanActivity(row scanner) (*models.Activity, error) {
	var a models.Activity
	var idStr, startTime, createdAt string
	var avgPower, normPower, avgHR, maxHR, cadence, tss, intensity sql.NullFloat64
	var raw sql.NullString

	err := row.Scan(&idStr, &a.UserID, &a.ExternalID, &a.Name, &a.SportType, &startTime,
		&a.DurationSeconds, &a.DistanceMeters, &a.Calories,
		&avgPower, &normPower, &avgHR, &maxHR, &cadence, &tss, &intensity,
		&raw, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan activity: %w", err)
	}

	a.ID, _ = uuid.Parse(idStr)
	a.StartTime = parseTime(startTime)
	a.CreatedAt = parseTime(createdAt)
	a.AveragePower = floatPtr(avgPower)
	a.NormalizedPower = floatPtr(normPower)
	a.AverageHeartRate = floatPtr(avgHR)
	a.MaxHeartRate = floatPtr(maxHR)
	a.AverageCadence = floatPtr(cadence)
	a.TSS = floatPtr(tss)
	a.IntensityFactor = floatPtr(intensity)
	if raw.Valid && raw.String != "" {
		a.RawData = []byte(raw.String)
	}
	return &a, nil
}
