// ABOUTME: Garmin account linking and token refresh.
// ABOUTME: The OAuth callback creates a user on first login and refreshes tokens afterwards.
package coach

import (
	"context"
	"errors"
	"fmt"

	"github.com/harperreed/coach/internal/garmin"
	"github.com/harperreed/coach/internal/models"
	"github.com/harperreed/coach/internal/storage"
)

// AuthorizeURL returns the Garmin consent URL with a fresh state value.
func (s *Service) AuthorizeURL() (string, error) {
	if err := s.requireGarmin(); err != nil {
		return "", err
	}
	return s.garmin.AuthorizeURL(garmin.NewState(s.now())), nil
}

// CompleteLogin exchanges an authorization code and links the Garmin account.
func (s *Service) CompleteLogin(ctx context.Context, code string) (*models.User, error) {
	if err := s.requireGarmin(); err != nil {
		return nil, err
	}
	if code == "" {
		return nil, fmt.Errorf("authorization code required")
	}

	tok, err := s.garmin.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	garminID, err := s.garmin.UserID(ctx, tok.AccessToken)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetUserByGarminID(garminID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		u := models.NewUser(garminID).WithTokens(tok.AccessToken, tok.RefreshToken, tok.ExpiresAt)
		if err := s.repo.CreateUser(u); err != nil {
			return nil, fmt.Errorf("link garmin account: %w", err)
		}
		s.logger.Info().Str("user_id", u.ID.String()).Str("garmin_user_id", garminID).Msg("garmin account linked")
		return u, nil
	case err != nil:
		return nil, fmt.Errorf("link garmin account: %w", err)
	}

	uid := existing.ID.String()
	if err := s.repo.UpdateUserTokens(uid, tok.AccessToken, tok.RefreshToken, tok.ExpiresAt); err != nil {
		return nil, fmt.Errorf("link garmin account: %w", err)
	}
	s.logger.Info().Str("user_id", uid).Msg("garmin tokens updated")
	return s.repo.GetUser(uid)
}

// RefreshToken trades a refresh token for new tokens without touching storage.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*garmin.Token, error) {
	if err := s.requireGarmin(); err != nil {
		return nil, err
	}
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token required")
	}
	return s.garmin.Refresh(ctx, refreshToken)
}

// RefreshUser refreshes a stored user's tokens and persists them.
func (s *Service) RefreshUser(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.RefreshToken == "" {
		return nil, ErrNoToken
	}
	tok, err := s.RefreshToken(ctx, u.RefreshToken)
	if err != nil {
		return nil, err
	}
	refresh := tok.RefreshToken
	if refresh == "" {
		refresh = u.RefreshToken
	}
	uid := u.ID.String()
	if err := s.repo.UpdateUserTokens(uid, tok.AccessToken, refresh, tok.ExpiresAt); err != nil {
		return nil, fmt.Errorf("refresh user: %w", err)
	}
	return s.repo.GetUser(uid)
}
