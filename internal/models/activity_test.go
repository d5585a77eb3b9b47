// ABOUTME: Tests for Activity and User models.
// ABOUTME: Validates constructors, builders, and optional metric helpers.
package models

import (
	"testing"
	"time"
)

func TestNewActivity(t *testing.T) {
	a := NewActivity("user-1", SportCycling)

	if a.ID.String() == "" {
		t.Error("expected UUID to be set")
	}
	if a.UserID != "user-1" {
		t.Errorf("UserID = %s, want user-1", a.UserID)
	}
	if !a.IsCycling() {
		t.Error("expected cycling activity")
	}
	if a.StartTime.IsZero() {
		t.Error("expected StartTime to be set")
	}
}

func TestActivityBuilders(t *testing.T) {
	start := time.Date(2025, 3, 1, 8, 0, 0, 0, time.FixedZone("EST", -5*3600))
	a := NewActivity("u", SportCycling).
		WithDuration(3600).
		WithStartTime(start).
		WithPower(210).
		WithTSS(75)

	if a.DurationSeconds != 3600 {
		t.Errorf("DurationSeconds = %d, want 3600", a.DurationSeconds)
	}
	if a.StartTime.Location() != time.UTC {
		t.Errorf("StartTime location = %v, want UTC", a.StartTime.Location())
	}
	if !a.StartTime.Equal(start) {
		t.Errorf("StartTime = %v, want %v", a.StartTime, start)
	}
	if a.AveragePower == nil || *a.AveragePower != 210 {
		t.Error("expected AveragePower to be 210")
	}
	if a.TSS == nil || *a.TSS != 75 {
		t.Error("expected TSS to be 75")
	}
}

func TestActivityDistanceKm(t *testing.T) {
	a := NewActivity("u", SportCycling)
	a.DistanceMeters = 42500

	if got := a.DistanceKm(); got != 42.5 {
		t.Errorf("DistanceKm() = %v, want 42.5", got)
	}
}

func TestFloat(t *testing.T) {
	v := 12.5
	if got := Float(&v); got != 12.5 {
		t.Errorf("Float(&12.5) = %v", got)
	}
	if got := Float(nil); got != 0 {
		t.Errorf("Float(nil) = %v, want 0", got)
	}
}

func TestNewUserWithTokens(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	u := NewUser("garmin-42").WithTokens("access", "refresh", exp)

	if u.GarminUserID != "garmin-42" {
		t.Errorf("GarminUserID = %s", u.GarminUserID)
	}
	if u.AccessToken != "access" || u.RefreshToken != "refresh" {
		t.Error("expected tokens to be set")
	}
	if u.LastSyncAt != nil {
		t.Error("expected LastSyncAt to be nil for a new user")
	}
}

func TestNewSyncRun(t *testing.T) {
	r := NewSyncRun("u", time.Now())
	if r.ID.String() == "" || r.UserID != "u" {
		t.Errorf("unexpected sync run: %+v", r)
	}
}

func TestUserTokenExpired(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	u := NewUser("g-1").WithTokens("a", "r", now.Add(time.Minute))
	if u.TokenExpired(now) {
		t.Error("token expiring in a minute reported expired")
	}
	if !u.TokenExpired(now.Add(time.Minute)) {
		t.Error("token at its expiry instant should be expired")
	}
}
