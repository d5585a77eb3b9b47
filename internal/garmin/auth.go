// ABOUTME: OAuth2 authorization-code flow against Garmin.
// ABOUTME: Builds the consent URL, exchanges codes, refreshes tokens, and reads the account id.
package garmin

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

// Token is the result of a code exchange or refresh.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type,omitempty"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// NewState returns an opaque state value for the authorize redirect.
func NewState(now time.Time) string {
	return "state_" + strconv.FormatInt(now.UnixMilli(), 10)
}

// AuthorizeURL returns the Garmin consent page URL for the given state.
func (c *Client) AuthorizeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for tokens.
func (c *Client) Exchange(ctx context.Context, code string) (*Token, error) {
	if c.oauth.Endpoint.TokenURL == "" {
		return nil, fmt.Errorf("exchange code: %w: token url", ErrNotConfigured)
	}
	tok, err := c.oauth.Exchange(c.oauthContext(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return c.fromOAuth(tok), nil
}

// Refresh mints a new access token from a refresh token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	if c.oauth.Endpoint.TokenURL == "" {
		return nil, fmt.Errorf("refresh token: %w: token url", ErrNotConfigured)
	}
	src := c.oauth.TokenSource(c.oauthContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	return c.fromOAuth(tok), nil
}

func (c *Client) fromOAuth(tok *oauth2.Token) *Token {
	now := c.now()
	expiresAt := tok.Expiry
	if expiresAt.IsZero() {
		expiresAt = now.Add(DefaultTokenLifetime)
	}
	expiresIn := int(expiresAt.Sub(now).Round(time.Second).Seconds())
	if v, ok := tok.Extra("expires_in").(float64); ok && v > 0 {
		expiresIn = int(v)
	}
	return &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		ExpiresIn:    expiresIn,
		ExpiresAt:    expiresAt.UTC(),
	}
}

// UserID fetches the Garmin account id for an access token. When the
// userinfo response names no id a time-based placeholder is returned.
func (c *Client) UserID(ctx context.Context, accessToken string) (string, error) {
	if c.userInfoURL == "" {
		return "", fmt.Errorf("user info: %w: userinfo url", ErrNotConfigured)
	}
	creds := Credentials{AccessToken: accessToken, ExpiresAt: c.now().Add(DefaultTokenLifetime)}

	var info map[string]any
	if err := c.do(ctx, creds, http.MethodGet, c.userInfoURL, nil, &info); err != nil {
		return "", fmt.Errorf("user info: %w", err)
	}
	if id := firstID(info, "userId", "id"); id != "" {
		return id, nil
	}
	return "garmin_" + strconv.FormatInt(c.now().UnixMilli(), 10), nil
}
