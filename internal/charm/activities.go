// ABOUTME: Activity operations for Charm KV storage.
// ABOUTME: Upserts match on user and external id; filtering and ordering are client-side.
package charm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/harperreed/coach/internal/models"
	"github.com/harperreed/coach/internal/storage"
)

// SaveActivity inserts an activity or replaces the one with the same user
// and external id, keeping the stored ID.
func (c *Client) SaveActivity(a *models.Activity) error {
	all, err := listAll[models.Activity](c, ActivityPrefix)
	if err != nil {
		return fmt.Errorf("save activity: %w", err)
	}
	for _, existing := range all {
		if existing.UserID == a.UserID && existing.ExternalID == a.ExternalID {
			a.ID = existing.ID
			a.CreatedAt = existing.CreatedAt
			break
		}
	}
	if err := c.put(ActivityPrefix+a.ID.String(), a); err != nil {
		return fmt.Errorf("save activity: %w", err)
	}
	return nil
}

// GetActivity retrieves an activity by ID or ID prefix.
func (c *Client) GetActivity(idOrPrefix string) (*models.Activity, error) {
	a, err := getOne[models.Activity](c, ActivityPrefix, idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return a, nil
}

// ListActivities returns activities matching the filter, newest first.
func (c *Client) ListActivities(filter storage.ActivityFilter) ([]*models.Activity, error) {
	all, err := listAll[models.Activity](c, ActivityPrefix)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	var out []*models.Activity
	for _, a := range all {
		if filter.UserID != "" && a.UserID != filter.UserID {
			continue
		}
		if filter.SportType != "" && !strings.EqualFold(a.SportType, filter.SportType) {
			continue
		}
		if filter.Since != nil && a.StartTime.Before(*filter.Since) {
			continue
		}
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	return truncate(out, filter.Limit), nil
}

// DeleteActivity removes an activity by ID or prefix.
func (c *Client) DeleteActivity(idOrPrefix string) error {
	if err := c.deleteByIDPrefix(ActivityPrefix, idOrPrefix); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	return nil
}
