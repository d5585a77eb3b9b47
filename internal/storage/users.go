// ABOUTME: User CRUD operations for SQL storage.
// ABOUTME: Users hold Garmin OAuth tokens and the last sync timestamp.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/coach/internal/models"
)

const userColumns = `id, garmin_user_id, access_token, refresh_token, token_expires_at, last_sync_at, created_at`

// CreateUser stores a new user.
func (d *DB) CreateUser(u *models.User) error {
	_, err := d.exec(`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID.String(),
		u.GarminUserID,
		u.AccessToken,
		u.RefreshToken,
		formatTime(u.TokenExpiresAt),
		nullTime(u.LastSyncAt),
		formatTime(u.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID or ID prefix.
func (d *DB) GetUser(idOrPrefix string) (*models.User, error) {
	id, err := d.resolveID("users", idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u, err := scanUser(d.queryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", idOrPrefix, err)
	}
	return u, nil
}

// GetUserByGarminID retrieves the user linked to a Garmin account.
func (d *DB) GetUserByGarminID(garminUserID string) (*models.User, error) {
	u, err := scanUser(d.queryRow(`SELECT `+userColumns+` FROM users WHERE garmin_user_id = ?`, garminUserID))
	if err != nil {
		return nil, fmt.Errorf("get user by garmin id %s: %w", garminUserID, err)
	}
	return u, nil
}

// ListUsers returns every user, oldest first.
func (d *DB) ListUsers() ([]*models.User, error) {
	rows, err := d.query(`SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUserTokens replaces the stored OAuth credentials.
func (d *DB) UpdateUserTokens(userID, accessToken, refreshToken string, expiresAt time.Time) error {
	result, err := d.exec(`UPDATE users SET access_token = ?, refresh_token = ?, token_expires_at = ? WHERE id = ?`,
		accessToken, refreshToken, formatTime(expiresAt), userID)
	if err != nil {
		return fmt.Errorf("update user tokens: %w", err)
	}
	return requireAffected(result, userID)
}

// UpdateUserLastSync records when the user's activities were last pulled.
func (d *DB) UpdateUserLastSync(userID string, at time.Time) error {
	result, err := d.exec(`UPDATE users SET last_sync_at = ? WHERE id = ?`, formatTime(at), userID)
	if err != nil {
		return fmt.Errorf("update user last sync: %w", err)
	}
	return requireAffected(result, userID)
}

func requireAffected(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	var idStr, expiresAt, createdAt string
	var lastSync sql.NullString

	err := row.Scan(&idStr, &u.GarminUserID, &u.AccessToken, &u.RefreshToken, &expiresAt, &lastSync, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	u.ID, _ = uuid.Parse(idStr)
	u.TokenExpiresAt = parseTime(expiresAt)
	u.CreatedAt = parseTime(createdAt)
	u.LastSyncAt = timePtr(lastSync)
	return &u, nil
}
