// ABOUTME: Sync run history for SQL storage.
// ABOUTME: One row per SyncUser call, successful or not.
package storage

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/coach/internal/models"
)

const syncRunColumns = `id, user_id, started_at, finished_at, fetched, saved, warnings, error`

// RecordSyncRun stores a finished sync run.
func (d *DB) RecordSyncRun(r *models.SyncRun) error {
	_, err := d.exec(`INSERT INTO sync_runs (`+syncRunColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.UserID, formatTime(r.StartedAt), formatTime(r.FinishedAt),
		r.Fetched, r.Saved, r.Warnings, r.Error)
	if err != nil {
		return fmt.Errorf("record sync run: %w", err)
	}
	return nil
}

// ListSyncRuns returns a user's sync runs, newest first. An empty userID lists all.
func (d *DB) ListSyncRuns(userID string, limit int) ([]*models.SyncRun, error) {
	query := `SELECT ` + syncRunColumns + ` FROM sync_runs`
	var args []any
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY started_at DESC` + limitClause(limit)

	rows, err := d.query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SyncRun
	for rows.Next() {
		var r models.SyncRun
		var idStr, started, finished string
		if err := rows.Scan(&idStr, &r.UserID, &started, &finished, &r.Fetched, &r.Saved, &r.Warnings, &r.Error); err != nil {
			return nil, fmt.Errorf("scan sync run: %w", err)
		}
		r.ID, _ = uuid.Parse(idStr)
		r.StartedAt = parseTime(started)
		r.FinishedAt = parseTime(finished)
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}
