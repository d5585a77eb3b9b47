// ABOUTME: Coach service wiring storage, Garmin, events, and the training engine.
// ABOUTME: Every transport (CLI, MCP, HTTP, scheduler) goes through this layer.
package coach

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/harperreed/coach/internal/events"
	"github.com/harperreed/coach/internal/garmin"
	"github.com/harperreed/coach/internal/models"
	"github.com/harperreed/coach/internal/storage"
	"github.com/harperreed/coach/internal/training"
	"github.com/rs/zerolog"
)

var (
	// ErrAlreadyUploaded is returned when uploading a workout Garmin already has.
	ErrAlreadyUploaded = errors.New("workout already uploaded")

	// ErrNoToken is returned when a Garmin call is needed but the user never linked an account.
	ErrNoToken = errors.New("user has no garmin token")

	// ErrSyncInProgress is returned when a sync for the same user is already running.
	ErrSyncInProgress = errors.New("sync already in progress for user")
)

// Garmin is the remote platform the service pulls from and uploads to.
type Garmin interface {
	AuthorizeURL(state string) string
	Exchange(ctx context.Context, code string) (*garmin.Token, error)
	Refresh(ctx context.Context, refreshToken string) (*garmin.Token, error)
	UserID(ctx context.Context, accessToken string) (string, error)
	FetchActivities(ctx context.Context, creds garmin.Credentials, start, end time.Time) ([]training.RawActivity, error)
	CreateWorkout(ctx context.Context, creds garmin.Credentials, w *models.Workout) (string, error)
	ScheduleWorkout(ctx context.Context, creds garmin.Credentials, garminWorkoutID string, date time.Time) error
}

// Options configures a Service. Only Repo is required.
type Options struct {
	Repo      storage.Repository
	Garmin    Garmin
	Publisher events.Publisher
	Logger    zerolog.Logger
	Clock     func() time.Time
}

// Service is safe for concurrent use.
type Service struct {
	repo      storage.Repository
	garmin    Garmin
	publisher events.Publisher
	logger    zerolog.Logger
	now       func() time.Time

	// userLocks holds one *sync.Mutex per user id.
	userLocks sync.Map
}

// New builds a Service, filling in a no-op publisher and the wall clock when absent.
func New(opts Options) *Service {
	s := &Service{
		repo:      opts.Repo,
		garmin:    opts.Garmin,
		publisher: opts.Publisher,
		logger:    opts.Logger,
		now:       opts.Clock,
	}
	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Repo exposes the underlying repository for read-only listings.
func (s *Service) Repo() storage.Repository {
	return s.repo
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// User resolves a user by id or id prefix.
func (s *Service) User(ctx context.Context, userID string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, fmt.Errorf("user id required")
	}
	u, err := s.repo.GetUser(userID)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	return u, nil
}

// CreateLocalUser registers a user without Garmin tokens, for FIT imports and mock data.
func (s *Service) CreateLocalUser(ctx context.Context, garminUserID string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if garminUserID == "" {
		garminUserID = fmt.Sprintf("local_%d", s.now().UnixMilli())
	}
	u := models.NewUser(garminUserID)
	if err := s.repo.CreateUser(u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *Service) requireGarmin() error {
	if s.garmin == nil {
		return garmin.ErrNotConfigured
	}
	return nil
}

// credentials returns the user's tokens, persisting any refresh that happens mid-call.
func (s *Service) credentials(u *models.User) (garmin.Credentials, error) {
	if u.AccessToken == "" && u.RefreshToken == "" {
		return garmin.Credentials{}, ErrNoToken
	}
	userID := u.ID.String()
	return garmin.Credentials{
		AccessToken:  u.AccessToken,
		RefreshToken: u.RefreshToken,
		ExpiresAt:    u.TokenExpiresAt,
		OnTokenRefresh: func(access, refresh string, expiresAt time.Time) {
			if err := s.repo.UpdateUserTokens(userID, access, refresh, expiresAt); err != nil {
				s.logger.Error().Err(err).Str("user_id", userID).Msg("persist refreshed token")
				return
			}
			s.logger.Info().Str("user_id", userID).Time("expires_at", expiresAt).Msg("garmin token refreshed")
		},
	}, nil
}

func (s *Service) publish(ctx context.Context, eventType, userID string, payload any) {
	err := s.publisher.Publish(ctx, events.Event{
		Type:       eventType,
		UserID:     userID,
		OccurredAt: s.now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Str("user_id", userID).Msg("publish event")
	}
}

func (s *Service) lockUser(userID string) (*sync.Mutex, bool) {
	v, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	return mu, mu.TryLock()
}

func derefActivities(in []*models.Activity) []models.Activity {
	out := make([]models.Activity, 0, len(in))
	for _, a := range in {
		out = append(out, *a)
	}
	return out
}
