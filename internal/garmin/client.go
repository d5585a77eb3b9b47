// ABOUTME: Garmin Connect API client for activity pulls and workout uploads.
// ABOUTME: Every call is authorized through an oauth2 token source that reports refreshed tokens.
package garmin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/harperreed/coach/internal/config"
	"github.com/harperreed/coach/internal/models"
	"github.com/harperreed/coach/internal/training"
	"golang.org/x/oauth2"
)

const (
	activitiesPath = "/wellness-api/rest/activities"
	workoutsPath   = "/wellness-api/rest/workouts"

	// DefaultTokenLifetime applies when the token endpoint omits expires_in.
	DefaultTokenLifetime = time.Hour
)

// ErrNotConfigured is returned when an OAuth endpoint needed for a call is unset.
var ErrNotConfigured = errors.New("garmin oauth is not configured")

// APIError is a non-2xx response from Garmin.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("garmin api: status %d: %s", e.StatusCode, e.Body)
}

// Credentials are a user's stored tokens. OnTokenRefresh, when set, is called
// with the new tokens whenever a call had to refresh them.
type Credentials struct {
	AccessToken    string
	RefreshToken   string
	ExpiresAt      time.Time
	OnTokenRefresh func(access, refresh string, expiresAt time.Time)
}

func (c Credentials) token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       c.ExpiresAt,
	}
}

// Client talks to the Garmin OAuth endpoints and the wellness REST API.
type Client struct {
	oauth       *oauth2.Config
	baseURL     string
	userInfoURL string
	httpClient  *http.Client
	now         func() time.Time
}

// New builds a Client from configuration. A nil httpClient uses a 30s-timeout default.
func New(cfg config.GarminConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       []string{cfg.GetScopes()},
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthorizeURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		baseURL:     strings.TrimRight(cfg.GetBaseURL(), "/"),
		userInfoURL: cfg.UserInfoURL,
		httpClient:  httpClient,
		now:         time.Now,
	}
}

// oauthContext makes the oauth2 package use our HTTP client for token calls.
func (c *Client) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// notifyingSource reports tokens that differ from the last one it saw.
type notifyingSource struct {
	src    oauth2.TokenSource
	last   string
	notify func(access, refresh string, expiresAt time.Time)
}

func (s *notifyingSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if s.notify != nil {
			s.notify(tok.AccessToken, tok.RefreshToken, tok.Expiry)
		}
	}
	return tok, nil
}

// authorized returns an HTTP client that attaches and refreshes the user's bearer token.
func (c *Client) authorized(ctx context.Context, creds Credentials) *http.Client {
	ctx = c.oauthContext(ctx)
	src := &notifyingSource{
		src:    c.oauth.TokenSource(ctx, creds.token()),
		last:   creds.AccessToken,
		notify: creds.OnTokenRefresh,
	}
	return oauth2.NewClient(ctx, src)
}

func (c *Client) do(ctx context.Context, creds Credentials, method, rawURL string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.authorized(ctx, creds).Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// FetchActivities pulls raw activity records started within [start, end].
// The endpoint may answer with a bare array or an object holding "activities".
func (c *Client) FetchActivities(ctx context.Context, creds Credentials, start, end time.Time) ([]training.RawActivity, error) {
	q := url.Values{}
	q.Set("startDate", start.UTC().Format(time.RFC3339))
	q.Set("endDate", end.UTC().Format(time.RFC3339))

	var raw json.RawMessage
	if err := c.do(ctx, creds, http.MethodGet, c.baseURL+activitiesPath+"?"+q.Encode(), nil, &raw); err != nil {
		return nil, fmt.Errorf("fetch activities: %w", err)
	}
	return decodeActivities(raw)
}

func decodeActivities(raw json.RawMessage) ([]training.RawActivity, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	dec := func(data []byte, v any) error {
		d := json.NewDecoder(bytes.NewReader(data))
		d.UseNumber()
		return d.Decode(v)
	}

	if raw[0] == '[' {
		var list []training.RawActivity
		if err := dec(raw, &list); err != nil {
			return nil, fmt.Errorf("decode activities: %w", err)
		}
		return list, nil
	}

	var wrapped struct {
		Activities []training.RawActivity `json:"activities"`
	}
	if err := dec(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode activities: %w", err)
	}
	return wrapped.Activities, nil
}

// WorkoutSegment is the wire form of one workout step.
type WorkoutSegment struct {
	DurationType string  `json:"durationType"`
	Duration     int     `json:"duration"`
	TargetType   string  `json:"targetType"`
	TargetValue  float64 `json:"targetValue"`
	TargetZone   *int    `json:"targetZone,omitempty"`
}

// WorkoutPayload is the body POSTed to create a workout.
type WorkoutPayload struct {
	WorkoutName     string           `json:"workoutName"`
	SportType       string           `json:"sportType"`
	WorkoutSegments []WorkoutSegment `json:"workoutSegments"`
	Description     string           `json:"description,omitempty"`
}

// PayloadFor converts a workout into Garmin's wire shape.
func PayloadFor(w *models.Workout) WorkoutPayload {
	p := WorkoutPayload{
		WorkoutName:     w.Name,
		SportType:       w.SportType,
		Description:     w.Description,
		WorkoutSegments: make([]WorkoutSegment, 0, len(w.Segments)),
	}
	for _, s := range w.Segments {
		p.WorkoutSegments = append(p.WorkoutSegments, WorkoutSegment{
			DurationType: string(s.DurationType),
			Duration:     s.DurationSeconds,
			TargetType:   string(s.TargetType),
			TargetValue:  s.TargetValue,
			TargetZone:   s.TargetZone,
		})
	}
	return p
}

// CreateWorkout uploads a workout and returns Garmin's workout id.
func (c *Client) CreateWorkout(ctx context.Context, creds Credentials, w *models.Workout) (string, error) {
	var resp map[string]any
	if err := c.do(ctx, creds, http.MethodPost, c.baseURL+workoutsPath, PayloadFor(w), &resp); err != nil {
		return "", fmt.Errorf("create workout: %w", err)
	}
	id := firstID(resp, "id", "workoutId")
	if id == "" {
		return "", fmt.Errorf("create workout: response has no workout id")
	}
	return id, nil
}

// ScheduleWorkout places an uploaded workout on the user's calendar.
func (c *Client) ScheduleWorkout(ctx context.Context, creds Credentials, garminWorkoutID string, date time.Time) error {
	endpoint := c.baseURL + workoutsPath + "/" + url.PathEscape(garminWorkoutID) + "/schedule"
	body := map[string]string{"date": date.Format(training.DateLayout)}
	if err := c.do(ctx, creds, http.MethodPost, endpoint, body, nil); err != nil {
		return fmt.Errorf("schedule workout: %w", err)
	}
	return nil
}

// firstID returns the first present key rendered as a string.
func firstID(m map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch id := v.(type) {
		case string:
			if id != "" {
				return id
			}
		case float64:
			return fmt.Sprintf("%.0f", id)
		default:
			return fmt.Sprint(id)
		}
	}
	return ""
}
