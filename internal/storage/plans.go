// ABOUTME: Training plan persistence for SQL storage.
// ABOUTME: ReplaceActivePlan swaps the active plan inside one transaction.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/coach/internal/models"
)

const planColumns = `id, user_id, name, goal, focus, duration_weeks, weeks, estimated_ftp,
	target_zones, is_active, created_at`

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// CreatePlan stores a training plan with its weeks as JSON.
func (d *DB) CreatePlan(p *models.TrainingPlan) error {
	if err := d.insertPlan(d.db, p); err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	return nil
}

// ReplaceActivePlan deactivates the user's plans and stores p as the active
// plan. Either both happen or neither does.
func (d *DB) ReplaceActivePlan(p *models.TrainingPlan) (err error) {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("replace active plan: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec(d.rebind(`UPDATE training_plans SET is_active = ? WHERE user_id = ?`), false, p.UserID); err != nil {
		return fmt.Errorf("replace active plan: deactivate: %w", err)
	}
	p.IsActive = true
	if err = d.insertPlan(tx, p); err != nil {
		return fmt.Errorf("replace active plan: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("replace active plan: commit: %w", err)
	}
	return nil
}

func (d *DB) insertPlan(ex execer, p *models.TrainingPlan) error {
	weeks, err := json.Marshal(p.Weeks)
	if err != nil {
		return fmt.Errorf("marshal weeks: %w", err)
	}
	zones, err := json.Marshal(p.TargetZones)
	if err != nil {
		return fmt.Errorf("marshal zones: %w", err)
	}

	_, err = ex.Exec(d.rebind(`INSERT INTO training_plans (`+planColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID.String(),
		p.UserID,
		p.Name,
		p.Goal,
		p.Focus,
		p.DurationWeeks,
		string(weeks),
		p.EstimatedFTP,
		string(zones),
		p.IsActive,
		formatTime(p.CreatedAt),
	)
	return err
}

// GetPlan retrieves a plan by ID or ID prefix.
func (d *DB) GetPlan(idOrPrefix string) (*models.TrainingPlan, error) {
	id, err := d.resolveID("training_plans", idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	p, err := scanPlan(d.queryRow(`SELECT `+planColumns+` FROM training_plans WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get plan %s: %w", idOrPrefix, err)
	}
	return p, nil
}

// ListPlans returns a user's plans, newest first. An empty userID lists all.
func (d *DB) ListPlans(userID string, limit int) ([]*models.TrainingPlan, error) {
	query := `SELECT ` + planColumns + ` FROM training_plans`
	var args []any
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC` + limitClause(limit)

	rows, err := d.query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []*models.TrainingPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// GetActivePlan returns the user's active plan.
func (d *DB) GetActivePlan(userID string) (*models.TrainingPlan, error) {
	p, err := scanPlan(d.queryRow(`SELECT `+planColumns+` FROM training_plans
		WHERE user_id = ? AND is_active = ? ORDER BY created_at DESC LIMIT 1`, userID, true))
	if err != nil {
		return nil, fmt.Errorf("get active plan: %w", err)
	}
	return p, nil
}

// DeactivatePlans marks every plan of the user inactive.
func (d *DB) DeactivatePlans(userID string) error {
	if _, err := d.exec(`UPDATE training_plans SET is_active = ? WHERE user_id = ?`, false, userID); err != nil {
		return fmt.Errorf("deactivate plans: %w", err)
	}
	return nil
}

// DeletePlan removes a plan by ID or prefix.
func (d *DB) DeletePlan(idOrPrefix string) error {
	if err := d.deleteByID("training_plans", idOrPrefix); err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	return nil
}

func scanPlan(row scanner) (*models.TrainingPlan, error) {
	var p models.TrainingPlan
	var idStr, weeks, zones, createdAt string

	err := row.Scan(&idStr, &p.UserID, &p.Name, &p.Goal, &p.Focus, &p.DurationWeeks,
		&weeks, &p.EstimatedFTP, &zones, &p.IsActive, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan plan: %w", err)
	}

	if err := json.Unmarshal([]byte(weeks), &p.Weeks); err != nil {
		return nil, fmt.Errorf("unmarshal weeks: %w", err)
	}
	if err := json.Unmarshal([]byte(zones), &p.TargetZones); err != nil {
		return nil, fmt.Errorf("unmarshal zones: %w", err)
	}
	p.ID, _ = uuid.Parse(idStr)
	p.CreatedAt = parseTime(createdAt)
	return &p, nil
}
