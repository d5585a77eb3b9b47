// ABOUTME: Read-side analytics over a user's stored activities.
// ABOUTME: Fitness analysis, daily load series, and activity summaries.
package coach

import (
	"context"
	"fmt"

	"github.com/harperreed/coach/internal/models"
	"github.com/harperreed/coach/internal/storage"
	"github.com/harperreed/coach/internal/training"
)

// Default load chart windows.
const (
	DefaultLoadWindowDays = 30
	DefaultRollingDays    = 7
)

// ListActivities returns a user's activities, newest first, with a summary of that set.
func (s *Service) ListActivities(ctx context.Context, userID, sportType string, limit int) ([]*models.Activity, training.ActivitySummary, error) {
	u, err := s.User(ctx, userID)
	if err != nil {
		return nil, training.ActivitySummary{}, err
	}
	list, err := s.repo.ListActivities(storage.ActivityFilter{
		UserID:    u.ID.String(),
		SportType: sportType,
		Limit:     limit,
	})
	if err != nil {
		return nil, training.ActivitySummary{}, fmt.Errorf("list activities: %w", err)
	}
	return list, training.Summarize(derefActivities(list), s.now()), nil
}

// Summary summarizes every stored activity of the user.
func (s *Service) Summary(ctx context.Context, userID string) (training.ActivitySummary, error) {
	_, summary, err := s.ListActivities(ctx, userID, "", 0)
	return summary, err
}

// Analyze estimates the user's FTP and zones from recent rides.
func (s *Service) Analyze(ctx context.Context, userID string) (*models.FitnessAnalysis, error) {
	u, err := s.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	rides, err := s.repo.ListActivities(storage.ActivityFilter{
		UserID:    u.ID.String(),
		SportType: models.SportCycling,
		Limit:     training.DefaultRecentWindow,
	})
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	analysis, err := training.AnalyzeFitness(derefActivities(rides), training.DefaultRecentWindow)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	return analysis, nil
}

// Load returns windowDays daily load buckets ending today, with a rollingDays trailing sum.
// Zero arguments fall back to the defaults.
func (s *Service) Load(ctx context.Context, userID string, windowDays, rollingDays int) ([]training.DailyLoad, error) {
	if windowDays <= 0 {
		windowDays = DefaultLoadWindowDays
	}
	if rollingDays <= 0 {
		rollingDays = DefaultRollingDays
	}
	if windowDays > training.MaxLoadWindowDays || rollingDays > training.MaxLoadWindowDays {
		return nil, fmt.Errorf("load: %w: window %d and rolling %d days, at most %d each",
			training.ErrInvalidWindow, windowDays, rollingDays, training.MaxLoadWindowDays)
	}
	u, err := s.User(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	since := now.AddDate(0, 0, -windowDays)
	list, err := s.repo.ListActivities(storage.ActivityFilter{UserID: u.ID.String(), Since: &since})
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return training.AggregateLoad(derefActivities(list), windowDays, rollingDays, now), nil
}
