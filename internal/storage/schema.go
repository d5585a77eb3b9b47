// ABOUTME: SQL schema definition and initialization.
// ABOUTME: Portable DDL for users, activities, workouts, training_plans, and sync_runs.
package storage

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		garmin_user_id TEXT NOT NULL UNIQUE,
		access_token TEXT NOT NULL DEFAULT '',
		refresh_token TEXT NOT NULL DEFAULT '',
		token_expires_at TEXT NOT NULL DEFAULT '',
		last_sync_at TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS activities (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		external_id TEXT NOT NULL,
		name TEXT NOT NULL,
		sport_type TEXT NOT NULL,
		start_time TEXT NOT NULL,
		duration_seconds INTEGER NOT NULL DEFAULT 0,
		distance_meters DOUBLE PRECISION NOT NULL DEFAULT 0,
		calories INTEGER NOT NULL DEFAULT 0,
		average_power DOUBLE PRECISION,
		normalized_power DOUBLE PRECISION,
		average_heart_rate DOUBLE PRECISION,
		max_heart_rate DOUBLE PRECISION,
		average_cadence DOUBLE PRECISION,
		tss DOUBLE PRECISION,
		intensity_factor DOUBLE PRECISION,
		raw_data TEXT,
		created_at TEXT NOT NULL,
		UNIQUE (user_id, external_id)
	)`,
	`CREATE TABLE IF NOT EXISTS workouts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		sport_type TEXT NOT NULL,
		description TEXT,
		segments TEXT NOT NULL,
		estimated_duration_seconds INTEGER NOT NULL,
		garmin_workout_id TEXT,
		is_uploaded BOOLEAN NOT NULL DEFAULT FALSE,
		scheduled_date TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS training_plans (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		goal TEXT NOT NULL,
		focus TEXT NOT NULL DEFAULT '',
		duration_weeks INTEGER NOT NULL,
		weeks TEXT NOT NULL,
		estimated_ftp INTEGER NOT NULL DEFAULT 0,
		target_zones TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sync_runs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		fetched INTEGER NOT NULL DEFAULT 0,
		saved INTEGER NOT NULL DEFAULT 0,
		warnings INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_user_start ON activities(user_id, start_time DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_workouts_user ON workouts(user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_plans_user_active ON training_plans(user_id, is_active)`,
	`CREATE INDEX IF NOT EXISTS idx_sync_runs_user ON sync_runs(user_id, started_at DESC)`,
}

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	for _, stmt := range schemaStatements {
		if _, err := d.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
