// ABOUTME: Seeds deterministic sample activities for demos and offline use.
// ABOUTME: Mock records take the same normalize-and-upsert path as synced ones.
package coach

import (
	"context"
	"math/rand"

	"github.com/harperreed/coach/internal/training"
)

// ImportRaw normalizes raw records and upserts them for the user. It returns
// how many were saved and how many needed defaults.
func (s *Service) ImportRaw(ctx context.Context, userID string, raws []training.RawActivity) (saved, warnings int, err error) {
	u, err := s.User(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	uid := u.ID.String()
	now := s.now()

	for _, raw := range raws {
		warned, err := s.storeRaw(uid, raw, now)
		if warned {
			warnings++
		}
		if err != nil {
			return saved, warnings, err
		}
		saved++
	}
	return saved, warnings, nil
}

// SeedMockActivities stores count generated activities for the user. The same
// seed yields the same records.
func (s *Service) SeedMockActivities(ctx context.Context, userID string, seed int64, count int) (int, error) {
	u, err := s.User(ctx, userID)
	if err != nil {
		return 0, err
	}
	raws := training.MockActivities(rand.New(rand.NewSource(seed)), u.ID.String(), count, s.now())
	saved, _, err := s.ImportRaw(ctx, u.ID.String(), raws)
	return saved, err
}
