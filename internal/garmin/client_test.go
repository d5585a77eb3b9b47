// ABOUTME: Tests for the Garmin client against an httptest server.
// ABOUTME: Covers the OAuth flow, token refresh callbacks, activity pulls, and workout uploads.
package garmin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/harperreed/coach/internal/config"
	"github.com/harperreed/coach/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, mux *http.ServeMux) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := New(config.GarminConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		AuthorizeURL: srv.URL + "/oauth/authorize",
		TokenURL:     srv.URL + "/oauth/token",
		UserInfoURL:  srv.URL + "/userinfo",
		BaseURL:      srv.URL,
		RedirectURI:  "http://localhost:3001/auth/garmin/callback",
		Scopes:       "read, write",
	}, srv.Client())
	c.now = func() time.Time { return fixedNow }
	return c, srv
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestAuthorizeURL(t *testing.T) {
	c, srv := newTestClient(t, http.NewServeMux())

	u, err := url.Parse(c.AuthorizeURL("state_123"))
	require.NoError(t, err)

	assert.Equal(t, srv.URL+"/oauth/authorize", u.Scheme+"://"+u.Host+u.Path)
	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "http://localhost:3001/auth/garmin/callback", q.Get("redirect_uri"))
	assert.Equal(t, "read,write", q.Get("scope"))
	assert.Equal(t, "state_123", q.Get("state"))
}

func TestNewState(t *testing.T) {
	assert.Equal(t, "state_1773576000000", NewState(fixedNow))
}

func TestExchange(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "http://localhost:3001/auth/garmin/callback", r.PostForm.Get("redirect_uri"))
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "client-secret", r.PostForm.Get("client_secret"))
		writeJSON(w, map[string]any{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"token_type":    "Bearer",
			"expires_in":    7200,
		})
	})
	c, _ := newTestClient(t, mux)

	tok, err := c.Exchange(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "access-1", tok.AccessToken)
	assert.Equal(t, "refresh-1", tok.RefreshToken)
	assert.Equal(t, 7200, tok.ExpiresIn)
	assert.False(t, tok.ExpiresAt.IsZero())
}

func TestExchangeDefaultsLifetime(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"access_token": "access-1", "refresh_token": "refresh-1"})
	})
	c, _ := newTestClient(t, mux)

	tok, err := c.Exchange(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(time.Hour), tok.ExpiresAt)
	assert.Equal(t, 3600, tok.ExpiresIn)
}

func TestExchangeNotConfigured(t *testing.T) {
	c := New(config.GarminConfig{}, nil)
	_, err := c.Exchange(context.Background(), "code")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestRefresh(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "old-refresh", r.PostForm.Get("refresh_token"))
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "client-secret", r.PostForm.Get("client_secret"))
		writeJSON(w, map[string]any{"access_token": "new-access", "refresh_token": "new-refresh", "expires_in": 3600})
	})
	c, _ := newTestClient(t, mux)

	tok, err := c.Refresh(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "new-access", tok.AccessToken)
	assert.Equal(t, "new-refresh", tok.RefreshToken)
}

func TestUserID(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
		want string
	}{
		{"userId string", map[string]any{"userId": "garmin-42"}, "garmin-42"},
		{"numeric id", map[string]any{"id": 12345}, "12345"},
		{"userId wins", map[string]any{"userId": "u", "id": "i"}, "u"},
		{"fallback", map[string]any{}, "garmin_1773576000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
				writeJSON(w, tt.body)
			})
			c, _ := newTestClient(t, mux)

			got, err := c.UserID(context.Background(), "tok")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetchActivities(t *testing.T) {
	start := fixedNow.AddDate(0, 0, -14)

	tests := []struct {
		name string
		body string
	}{
		{"bare array", `[{"activityId": 1, "sportType": "CYCLING", "duration": 3600}, {"activityId": 2}]`},
		{"wrapped", `{"activities": [{"activityId": 1, "sportType": "CYCLING", "duration": 3600}, {"activityId": 2}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/wellness-api/rest/activities", func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
				assert.Equal(t, start.Format(time.RFC3339), r.URL.Query().Get("startDate"))
				assert.Equal(t, fixedNow.Format(time.RFC3339), r.URL.Query().Get("endDate"))
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			})
			c, _ := newTestClient(t, mux)

			raws, err := c.FetchActivities(context.Background(), Credentials{AccessToken: "tok"}, start, fixedNow)
			require.NoError(t, err)
			require.Len(t, raws, 2)
			assert.Equal(t, json.Number("1"), raws[0]["activityId"])
			assert.Equal(t, "CYCLING", raws[0]["sportType"])
		})
	}
}

func TestFetchActivitiesEmptyBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/wellness-api/rest/activities", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	c, _ := newTestClient(t, mux)

	raws, err := c.FetchActivities(context.Background(), Credentials{AccessToken: "tok"}, fixedNow, fixedNow)
	require.NoError(t, err)
	assert.Empty(t, raws)
}

func TestExpiredTokenRefreshesAndNotifies(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "stale-refresh", r.PostForm.Get("refresh_token"))
		writeJSON(w, map[string]any{"access_token": "fresh", "refresh_token": "fresh-refresh", "expires_in": 3600})
	})
	mux.HandleFunc("/wellness-api/rest/activities", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer fresh", r.Header.Get("Authorization"))
		writeJSON(w, []any{})
	})
	c, _ := newTestClient(t, mux)

	var gotAccess, gotRefresh string
	creds := Credentials{
		AccessToken:  "stale",
		RefreshToken: "stale-refresh",
		ExpiresAt:    time.Now().Add(-time.Hour),
		OnTokenRefresh: func(access, refresh string, _ time.Time) {
			gotAccess, gotRefresh = access, refresh
		},
	}

	_, err := c.FetchActivities(context.Background(), creds, fixedNow, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "fresh", gotAccess)
	assert.Equal(t, "fresh-refresh", gotRefresh)
}

func TestValidTokenDoesNotNotify(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/wellness-api/rest/activities", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []any{})
	})
	c, _ := newTestClient(t, mux)

	called := false
	creds := Credentials{
		AccessToken:    "tok",
		ExpiresAt:      time.Now().Add(time.Hour),
		OnTokenRefresh: func(string, string, time.Time) { called = true },
	}
	_, err := c.FetchActivities(context.Background(), creds, fixedNow, fixedNow)
	require.NoError(t, err)
	assert.False(t, called)
}

func TestCreateWorkout(t *testing.T) {
	w := models.NewWorkout("Threshold - 60min", models.SportCycling, []models.Segment{
		models.PowerSegment(models.DurationWarmup, 600, 0.5),
		models.PowerSegment(models.DurationInterval, 2400, 0.95),
		models.PowerSegment(models.DurationCooldown, 600, 0.4),
	}).WithDescription("Generated threshold workout")

	mux := http.NewServeMux()
	mux.HandleFunc("/wellness-api/rest/workouts", func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var p WorkoutPayload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Equal(t, "Threshold - 60min", p.WorkoutName)
		assert.Equal(t, "cycling", p.SportType)
		assert.Equal(t, "Generated threshold workout", p.Description)
		if assert.Len(t, p.WorkoutSegments, 3) {
			assert.Equal(t, "interval", p.WorkoutSegments[1].DurationType)
			assert.Equal(t, 2400, p.WorkoutSegments[1].Duration)
			assert.Equal(t, "power", p.WorkoutSegments[1].TargetType)
			assert.InDelta(t, 0.95, p.WorkoutSegments[1].TargetValue, 1e-9)
		}

		writeJSON(rw, map[string]any{"workoutId": 987654})
	})
	c, _ := newTestClient(t, mux)

	id, err := c.CreateWorkout(context.Background(), Credentials{AccessToken: "tok"}, w)
	require.NoError(t, err)
	assert.Equal(t, "987654", id)
}

func TestCreateWorkoutWithoutID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/wellness-api/rest/workouts", func(rw http.ResponseWriter, r *http.Request) {
		writeJSON(rw, map[string]any{"status": "ok"})
	})
	c, _ := newTestClient(t, mux)

	w := models.NewWorkout("x", models.SportCycling, []models.Segment{models.PowerSegment(models.DurationWarmup, 60, 0.5)})
	_, err := c.CreateWorkout(context.Background(), Credentials{AccessToken: "tok"}, w)
	assert.Error(t, err)
}

func TestScheduleWorkout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/wellness-api/rest/workouts/w-1/schedule", func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2026-03-20", body["date"])
		rw.WriteHeader(http.StatusNoContent)
	})
	c, _ := newTestClient(t, mux)

	date := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	require.NoError(t, c.ScheduleWorkout(context.Background(), Credentials{AccessToken: "tok"}, "w-1", date))
}

func TestAPIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/wellness-api/rest/activities", func(rw http.ResponseWriter, r *http.Request) {
		http.Error(rw, "boom", http.StatusBadGateway)
	})
	c, _ := newTestClient(t, mux)

	_, err := c.FetchActivities(context.Background(), Credentials{AccessToken: "tok"}, fixedNow, fixedNow)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "boom", apiErr.Body)
}
