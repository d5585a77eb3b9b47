// ABOUTME: Shared CLI helpers: user resolution, time parsing, and table formatting.
// ABOUTME: Output uses fatih/color with faint 8-character ID prefixes.
package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/coach/internal/coach"
	"github.com/harperreed/coach/internal/models"
)

var faint = color.New(color.Faint)

// currentUser resolves --user, then COACH_USER / config, then the only stored user.
func currentUser(ctx context.Context) (*models.User, error) {
	if cfg != nil && cfg.DefaultUser != "" {
		return svc.User(ctx, cfg.DefaultUser)
	}
	users, err := repo.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	switch len(users) {
	case 0:
		return nil, fmt.Errorf("no users yet: run 'coach user add' or 'coach auth login'")
	case 1:
		return users[0], nil
	}
	return nil, fmt.Errorf("%d users found: pass --user or set COACH_USER", len(users))
}

// hinted wraps err with the coach hint, for RunE returns.
func hinted(err error) error {
	return coach.WithHint(err)
}

func shortID(id fmt.Stringer) string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
	}
	return &t, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

// formatDuration renders seconds as 1h05m or 45m.
func formatDuration(seconds int) string {
	d := time.Duration(seconds) * time.Second
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func optionalWatts(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.0fW", *v)
}

func printWorkout(w *models.Workout) {
	status := ""
	if w.IsUploaded {
		status = color.GreenString(" [uploaded]")
	}
	fmt.Printf("%s %s (%s)%s\n", faint.Sprint(shortID(w.ID)), w.Name, formatDuration(w.EstimatedDurationSeconds), status)
	if w.Description != "" {
		fmt.Printf("  %s\n", w.Description)
	}
	for i, s := range w.Segments {
		fmt.Printf("  %2d. %s %s @ %s\n",
			i+1,
			padRight(string(s.DurationType), 9),
			padRight(formatDuration(s.DurationSeconds), 6),
			target(s))
	}
}

func target(s models.Segment) string {
	if s.TargetType == models.TargetPower {
		return fmt.Sprintf("%.0f%% FTP", s.TargetValue*100)
	}
	return fmt.Sprintf("%g %s", s.TargetValue, s.TargetType)
}
