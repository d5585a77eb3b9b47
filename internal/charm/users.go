// ABOUTME: User and sync run operations for Charm KV storage.
// ABOUTME: Lookups by Garmin id scan the user prefix client-side.
package charm

import (
	"fmt"
	"sort"
	"time"

	"github.com/harperreed/coach/internal/models"
	"github.com/harperreed/coach/internal/storage"
)

// CreateUser stores a new user.
func (c *Client) CreateUser(u *models.User) error {
	if existing, err := c.GetUserByGarminID(u.GarminUserID); err == nil && existing.ID != u.ID {
		return fmt.Errorf("create user: garmin user %s already linked to %s", u.GarminUserID, existing.ID)
	}
	if err := c.put(UserPrefix+u.ID.String(), u); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID or ID prefix.
func (c *Client) GetUser(idOrPrefix string) (*models.User, error) {
	u, err := getOne[models.User](c, UserPrefix, idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetUserByGarminID retrieves the user linked to a Garmin account.
func (c *Client) GetUserByGarminID(garminUserID string) (*models.User, error) {
	users, err := listAll[models.User](c, UserPrefix)
	if err != nil {
		return nil, fmt.Errorf("get user by garmin id: %w", err)
	}
	for _, u := range users {
		if u.GarminUserID == garminUserID {
			return u, nil
		}
	}
	return nil, fmt.Errorf("get user by garmin id: %w: %s", storage.ErrNotFound, garminUserID)
}

// ListUsers returns every user, oldest first.
func (c *Client) ListUsers() ([]*models.User, error) {
	users, err := listAll[models.User](c, UserPrefix)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

// UpdateUserTokens replaces the stored OAuth credentials.
func (c *Client) UpdateUserTokens(userID, accessToken, refreshToken string, expiresAt time.Time) error {
	u, err := c.GetUser(userID)
	if err != nil {
		return fmt.Errorf("update user tokens: %w", err)
	}
	u.WithTokens(accessToken, refreshToken, expiresAt)
	return c.put(UserPrefix+u.ID.String(), u)
}

// UpdateUserLastSync records when the user's activities were last pulled.
func (c *Client) UpdateUserLastSync(userID string, at time.Time) error {
	u, err := c.GetUser(userID)
	if err != nil {
		return fmt.Errorf("update user last sync: %w", err)
	}
	t := at.UTC()
	u.LastSyncAt = &t
	return c.put(UserPrefix+u.ID.String(), u)
}

// RecordSyncRun stores a finished sync run.
func (c *Client) RecordSyncRun(r *models.SyncRun) error {
	if err := c.put(SyncRunPrefix+r.ID.String(), r); err != nil {
		return fmt.Errorf("record sync run: %w", err)
	}
	return nil
}

// ListSyncRuns returns a user's sync runs, newest first. An empty userID lists all.
func (c *Client) ListSyncRuns(userID string, limit int) ([]*models.SyncRun, error) {
	all, err := listAll[models.SyncRun](c, SyncRunPrefix)
	if err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	var runs []*models.SyncRun
	for _, r := range all {
		if userID == "" || r.UserID == userID {
			runs = append(runs, r)
		}
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	return truncate(runs, limit), nil
}
