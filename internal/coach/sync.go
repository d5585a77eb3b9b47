// ABOUTME: Activity sync from Garmin, per user and across all users.
// ABOUTME: Users sync in parallel; one user's sync never overlaps with itself.
package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/coach/internal/events"
	"github.com/harperreed/coach/internal/models"
	"github.com/harperreed/coach/internal/training"
	"golang.org/x/sync/errgroup"
)

// SyncWindowDays is how far back each sync pulls activities.
const SyncWindowDays = 14

// SyncUser pulls the last SyncWindowDays of activities for one user and upserts them.
// A SyncRun is recorded whether or not the pull succeeds.
func (s *Service) SyncUser(ctx context.Context, userID string) (*models.SyncRun, error) {
	if err := s.requireGarmin(); err != nil {
		return nil, err
	}
	u, err := s.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	uid := u.ID.String()

	mu, ok := s.lockUser(uid)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSyncInProgress, uid)
	}
	defer mu.Unlock()

	creds, err := s.credentials(u)
	if err != nil {
		return nil, err
	}

	now := s.now()
	run := models.NewSyncRun(uid, now)
	log := s.logger.With().Str("user_id", uid).Str("sync_run_id", run.ID.String()).Logger()

	raws, err := s.garmin.FetchActivities(ctx, creds, now.AddDate(0, 0, -SyncWindowDays), now)
	if err != nil {
		run.Error = err.Error()
		s.finishRun(run)
		syncFailures.Inc()
		log.Error().Err(err).Msg("sync failed")
		return run, fmt.Errorf("sync user %s: %w", uid, err)
	}
	run.Fetched = len(raws)

	for _, raw := range raws {
		warned, err := s.storeRaw(uid, raw, now)
		if warned {
			run.Warnings++
		}
		if err != nil {
			log.Error().Err(err).Msg("save activity")
			run.Error = err.Error()
			continue
		}
		run.Saved++
	}

	if err := s.repo.UpdateUserLastSync(uid, now); err != nil {
		log.Error().Err(err).Msg("update last sync")
	}
	s.finishRun(run)
	recordSync(run.Saved, now)

	log.Info().Int("fetched", run.Fetched).Int("saved", run.Saved).Int("warnings", run.Warnings).
		Dur("took", run.FinishedAt.Sub(run.StartedAt)).Msg("sync complete")

	s.publish(ctx, events.TypeActivitySynced, uid, events.ActivitySynced{
		SyncRunID: run.ID.String(),
		Fetched:   run.Fetched,
		Saved:     run.Saved,
		Warnings:  run.Warnings,
	})
	return run, nil
}

// storeRaw normalizes one record and upserts it for uid. warned reports
// whether the normalizer had to apply defaults.
func (s *Service) storeRaw(uid string, raw training.RawActivity, now time.Time) (warned bool, err error) {
	n := training.Normalize(raw, now)
	if nerr := n.Err(); nerr != nil {
		warned = true
		s.logger.Warn().Err(nerr).Str("user_id", uid).Str("external_id", n.Activity.ExternalID).Msg("activity normalized with defaults")
	}

	a := n.Activity
	a.UserID = uid
	if data, jerr := json.Marshal(raw); jerr == nil {
		a.RawData = data
	}
	if err := s.repo.SaveActivity(&a); err != nil {
		return warned, fmt.Errorf("save activity %s: %w", a.ExternalID, err)
	}
	return warned, nil
}

func (s *Service) finishRun(run *models.SyncRun) {
	run.FinishedAt = s.now().UTC()
	if err := s.repo.RecordSyncRun(run); err != nil {
		s.logger.Error().Err(err).Str("user_id", run.UserID).Msg("record sync run")
	}
}

// UserSyncResult is one user's outcome within SyncAll.
type UserSyncResult struct {
	UserID string          `json:"user_id"`
	Run    *models.SyncRun `json:"run,omitempty"`
	Err    error           `json:"-"`
	Error  string          `json:"error,omitempty"`
}

// SyncAll syncs every user holding Garmin tokens, at most concurrency at a time.
// One user's failure never stops the others; failures are reported per user.
func (s *Service) SyncAll(ctx context.Context, concurrency int) ([]UserSyncResult, error) {
	if err := s.requireGarmin(); err != nil {
		return nil, err
	}
	users, err := s.repo.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("sync all: %w", err)
	}

	var linked []*models.User
	for _, u := range users {
		if u.AccessToken == "" && u.RefreshToken == "" {
			s.logger.Debug().Str("user_id", u.ID.String()).Msg("skipping user without garmin token")
			continue
		}
		linked = append(linked, u)
	}

	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]UserSyncResult, len(linked))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, u := range linked {
		g.Go(func() error {
			uid := u.ID.String()
			run, err := s.SyncUser(gctx, uid)
			results[i] = UserSyncResult{UserID: uid, Run: run, Err: err}
			if err != nil {
				results[i].Error = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	s.logger.Info().Int("users", len(results)).Int("failed", failed).Msg("sync all complete")
	return results, ctx.Err()
}
