// ABOUTME: Tests for MCP server, tools, and resources.
// ABOUTME: Handlers are called directly against a SQLite-backed coach service.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/coach/internal/coach"
	"github.com/harperreed/coach/internal/garmin"
	"github.com/harperreed/coach/internal/models"
	"github.com/harperreed/coach/internal/storage"
	"github.com/harperreed/coach/internal/training"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

// stubGarmin accepts every upload.
type stubGarmin struct {
	scheduled []time.Time
}

func (g *stubGarmin) AuthorizeURL(state string) string { return "https://example.test/auth?state=" + state }
func (g *stubGarmin) Exchange(context.Context, string) (*garmin.Token, error) {
	return nil, errors.New("not used")
}
func (g *stubGarmin) Refresh(context.Context, string) (*garmin.Token, error) {
	return nil, errors.New("not used")
}
func (g *stubGarmin) UserID(context.Context, string) (string, error) { return "garmin-1", nil }
func (g *stubGarmin) FetchActivities(context.Context, garmin.Credentials, time.Time, time.Time) ([]training.RawActivity, error) {
	return []training.RawActivity{ride("synced", 1, 250)}, nil
}
func (g *stubGarmin) CreateWorkout(context.Context, garmin.Credentials, *models.Workout) (string, error) {
	return "gw-1", nil
}
func (g *stubGarmin) ScheduleWorkout(_ context.Context, _ garmin.Credentials, _ string, date time.Time) error {
	g.scheduled = append(g.scheduled, date)
	return nil
}

func ride(id string, daysAgo int, power float64) training.RawActivity {
	return training.RawActivity{
		"activityId":   id,
		"activityName": "Ride " + id,
		"sportType":    "cycling",
		"startTime":    testNow.AddDate(0, 0, -daysAgo).Format(time.RFC3339),
		"duration":     3600.0,
		"distance":     30000.0,
		"averagePower": power,
	}
}

type testEnv struct {
	server *Server
	svc    *coach.Service
	repo   *storage.DB
	user   *models.User
	garmin *stubGarmin
}

// setupTestServer opens a fresh database, creates one linked user, and makes it the default.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	repo, err := storage.Open(filepath.Join(t.TempDir(), "coach.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	g := &stubGarmin{}
	svc := coach.New(coach.Options{
		Repo:   repo,
		Garmin: g,
		Logger: zerolog.Nop(),
		Clock:  func() time.Time { return testNow },
	})

	u := models.NewUser("garmin-1").WithTokens("access", "refresh", testNow.Add(time.Hour))
	if err := repo.CreateUser(u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	server, err := NewServer(svc, u.ID.String())
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return &testEnv{server: server, svc: svc, repo: repo, user: u, garmin: g}
}

func (e *testEnv) seedRides(t *testing.T) {
	t.Helper()
	raws := []training.RawActivity{ride("a", 1, 200), ride("b", 2, 220), ride("c", 3, 240)}
	if _, _, err := e.svc.ImportRaw(context.Background(), e.user.ID.String(), raws); err != nil {
		t.Fatalf("ImportRaw failed: %v", err)
	}
}

func TestNewServer(t *testing.T) {
	env := setupTestServer(t)
	if env.server.mcpServer == nil {
		t.Error("Expected non-nil mcpServer")
	}
	if env.server.svc == nil {
		t.Error("Expected non-nil service")
	}

	if _, err := NewServer(nil, ""); err == nil {
		t.Error("Expected error for nil service")
	}
}

func TestUserOrDefault(t *testing.T) {
	s := &Server{defaultUser: "default"}
	if got, _ := s.userOrDefault(""); got != "default" {
		t.Errorf("userOrDefault(\"\") = %q", got)
	}
	if got, _ := s.userOrDefault("explicit"); got != "explicit" {
		t.Errorf("userOrDefault(explicit) = %q", got)
	}

	s.defaultUser = ""
	if _, err := s.userOrDefault(""); err == nil {
		t.Error("Expected error without a default user")
	}
}

func TestHandleListActivities(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	_, out, err := env.server.handleListActivities(ctx, nil, listActivitiesInput{})
	if err != nil {
		t.Fatalf("handleListActivities failed: %v", err)
	}
	msg, ok := out.(map[string]any)["message"].(string)
	if !ok || !strings.Contains(msg, "No activities found") {
		t.Errorf("expected empty message, got %v", out)
	}

	env.seedRides(t)
	_, out, err = env.server.handleListActivities(ctx, nil, listActivitiesInput{SportType: "cycling", Limit: 2})
	if err != nil {
		t.Fatalf("handleListActivities failed: %v", err)
	}
	result := out.(map[string]any)
	if got := len(result["activities"].([]*models.Activity)); got != 2 {
		t.Errorf("expected 2 activities, got %d", got)
	}
	if summary := result["summary"].(training.ActivitySummary); summary.TotalActivities != 2 {
		t.Errorf("summary covers %d activities, want 2", summary.TotalActivities)
	}
}

func TestHandleActivitySummary(t *testing.T) {
	env := setupTestServer(t)
	env.seedRides(t)

	_, out, err := env.server.handleActivitySummary(context.Background(), nil, userInput{})
	if err != nil {
		t.Fatalf("handleActivitySummary failed: %v", err)
	}
	summary := out.(training.ActivitySummary)
	if summary.TotalActivities != 3 {
		t.Errorf("TotalActivities = %d, want 3", summary.TotalActivities)
	}
	if summary.AveragePower == nil || *summary.AveragePower != 220 {
		t.Errorf("AveragePower = %v, want 220", summary.AveragePower)
	}
}

func TestHandleTrainingLoad(t *testing.T) {
	env := setupTestServer(t)
	env.seedRides(t)

	_, out, err := env.server.handleTrainingLoad(context.Background(), nil, trainingLoadInput{Days: 5, RollingDays: 3})
	if err != nil {
		t.Fatalf("handleTrainingLoad failed: %v", err)
	}
	days := out.(map[string]any)["days"].([]training.DailyLoad)
	if len(days) != 5 {
		t.Fatalf("expected 5 days, got %d", len(days))
	}
	if days[len(days)-1].Date != "2026-03-15" {
		t.Errorf("last day = %s", days[len(days)-1].Date)
	}
}

func TestHandleAnalyze(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	_, _, err := env.server.handleAnalyze(ctx, nil, userInput{})
	if !errors.Is(err, training.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if !strings.Contains(err.Error(), "coach sync") {
		t.Errorf("expected hint in error, got %q", err.Error())
	}

	env.seedRides(t)
	_, out, err := env.server.handleAnalyze(ctx, nil, userInput{})
	if err != nil {
		t.Fatalf("handleAnalyze failed: %v", err)
	}
	analysis := out.(*models.FitnessAnalysis)
	if analysis.EstimatedFTP != 209 {
		t.Errorf("EstimatedFTP = %d, want 209", analysis.EstimatedFTP)
	}
}

func TestHandleGenerateWorkout(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   generateWorkoutInput
		wantErr error
		wantSec int
	}{
		{
			name:    "ftp preview",
			input:   generateWorkoutInput{Goal: "ftp", DurationMinutes: 60},
			wantSec: 3600,
		},
		{
			name:    "vo2max saved",
			input:   generateWorkoutInput{Goal: "vo2max", DurationMinutes: 45, Save: true},
			wantSec: 2700,
		},
		{
			name:    "too short",
			input:   generateWorkoutInput{Goal: "ftp", DurationMinutes: 20},
			wantErr: training.ErrInvalidDuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := env.server.handleGenerateWorkout(ctx, nil, tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			w := out.(*models.Workout)
			if w.EstimatedDurationSeconds != tt.wantSec {
				t.Errorf("duration = %d, want %d", w.EstimatedDurationSeconds, tt.wantSec)
			}
		})
	}

	workouts, err := env.repo.ListWorkouts(env.user.ID.String(), 0)
	if err != nil {
		t.Fatalf("ListWorkouts failed: %v", err)
	}
	if len(workouts) != 1 {
		t.Errorf("expected only the saved workout to be stored, got %d", len(workouts))
	}
}

func TestHandleGeneratePlan(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	env.seedRides(t)

	_, out, err := env.server.handleGeneratePlan(ctx, nil, generatePlanInput{Goal: "ftp", DurationWeeks: 4, Save: true})
	if err != nil {
		t.Fatalf("handleGeneratePlan failed: %v", err)
	}
	plan := out.(*models.TrainingPlan)
	if len(plan.Weeks) != 4 {
		t.Errorf("expected 4 weeks, got %d", len(plan.Weeks))
	}

	if _, _, err := env.server.handleGeneratePlan(ctx, nil, generatePlanInput{Goal: "ftp", DurationWeeks: 0}); !errors.Is(err, training.ErrInvalidWeeks) {
		t.Errorf("expected ErrInvalidWeeks, got %v", err)
	}

	_, out, err = env.server.handleListPlans(ctx, nil, listInput{})
	if err != nil {
		t.Fatalf("handleListPlans failed: %v", err)
	}
	if plans := out.([]*models.TrainingPlan); len(plans) != 1 {
		t.Errorf("expected 1 plan, got %d", len(plans))
	}
}

func TestHandleListWorkoutsEmpty(t *testing.T) {
	env := setupTestServer(t)

	_, out, err := env.server.handleListWorkouts(context.Background(), nil, listInput{})
	if err != nil {
		t.Fatalf("handleListWorkouts failed: %v", err)
	}
	if _, ok := out.(map[string]any)["message"]; !ok {
		t.Errorf("expected message for empty list, got %v", out)
	}
}

func TestHandleUploadWorkout(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	w, err := env.svc.GenerateWorkout(ctx, env.user.ID.String(), "endurance", "", 90, true)
	if err != nil {
		t.Fatalf("GenerateWorkout failed: %v", err)
	}

	if _, _, err := env.server.handleUploadWorkout(ctx, nil, uploadWorkoutInput{WorkoutID: w.ID.String(), ScheduleDate: "03/20/2026"}); err == nil {
		t.Error("Expected error for malformed schedule_date")
	}

	_, out, err := env.server.handleUploadWorkout(ctx, nil, uploadWorkoutInput{WorkoutID: w.ID.String()[:8], ScheduleDate: "2026-03-20"})
	if err != nil {
		t.Fatalf("handleUploadWorkout failed: %v", err)
	}
	result := out.(map[string]any)
	if id := result["garmin_workout_id"].(*string); id == nil || *id != "gw-1" {
		t.Errorf("garmin_workout_id = %v", result["garmin_workout_id"])
	}
	if len(env.garmin.scheduled) != 1 {
		t.Errorf("expected one scheduled workout, got %d", len(env.garmin.scheduled))
	}

	_, _, err = env.server.handleUploadWorkout(ctx, nil, uploadWorkoutInput{WorkoutID: w.ID.String()})
	if !errors.Is(err, coach.ErrAlreadyUploaded) {
		t.Errorf("expected ErrAlreadyUploaded, got %v", err)
	}

	_, out, err = env.server.handleListWorkouts(ctx, nil, listInput{})
	if err != nil {
		t.Fatalf("handleListWorkouts failed: %v", err)
	}
	if workouts := out.([]*models.Workout); len(workouts) != 1 || !workouts[0].IsUploaded {
		t.Errorf("expected one uploaded workout, got %+v", workouts)
	}
}

func TestHandleTemplates(t *testing.T) {
	env := setupTestServer(t)

	_, out, err := env.server.handleTemplates(context.Background(), nil, emptyInput{})
	if err != nil {
		t.Fatalf("handleTemplates failed: %v", err)
	}
	templates := out.(map[string][]models.Workout)["templates"]
	if len(templates) != 3 {
		t.Errorf("expected 3 templates, got %d", len(templates))
	}
}

func TestHandleSync(t *testing.T) {
	env := setupTestServer(t)

	_, out, err := env.server.handleSync(context.Background(), nil, userInput{})
	if err != nil {
		t.Fatalf("handleSync failed: %v", err)
	}
	run := out.(*models.SyncRun)
	if run.Saved != 1 {
		t.Errorf("Saved = %d, want 1", run.Saved)
	}
}

func readJSON(t *testing.T, res *mcp.ReadResourceResult) map[string]any {
	t.Helper()
	if len(res.Contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(res.Contents))
	}
	if res.Contents[0].MIMEType != "application/json" {
		t.Errorf("MIMEType = %q", res.Contents[0].MIMEType)
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(res.Contents[0].Text), &out); err != nil {
		t.Fatalf("resource is not JSON: %v", err)
	}
	return out
}

func TestResources(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	res, err := env.server.handleFitnessResource(ctx, nil)
	if err != nil {
		t.Fatalf("handleFitnessResource failed: %v", err)
	}
	if out := readJSON(t, res); out["analysis"] != nil {
		t.Errorf("expected nil analysis without rides, got %v", out["analysis"])
	}

	res, err = env.server.handleActivePlanResource(ctx, nil)
	if err != nil {
		t.Fatalf("handleActivePlanResource failed: %v", err)
	}
	if out := readJSON(t, res); out["plan"] != nil {
		t.Errorf("expected nil plan, got %v", out["plan"])
	}

	env.seedRides(t)
	if _, err := env.svc.GeneratePlan(ctx, env.user.ID.String(), "endurance", "", 2, true); err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}

	res, err = env.server.handleActivitiesResource(ctx, nil)
	if err != nil {
		t.Fatalf("handleActivitiesResource failed: %v", err)
	}
	if out := readJSON(t, res); len(out["activities"].([]any)) != 3 {
		t.Errorf("expected 3 activities, got %v", out["activities"])
	}

	res, err = env.server.handleWorkoutsResource(ctx, nil)
	if err != nil {
		t.Fatalf("handleWorkoutsResource failed: %v", err)
	}
	counts := readJSON(t, res)["counts"].(map[string]any)
	if counts["total"].(float64) != 0 {
		t.Errorf("expected no workouts, got %v", counts)
	}

	res, err = env.server.handleActivePlanResource(ctx, nil)
	if err != nil {
		t.Fatalf("handleActivePlanResource failed: %v", err)
	}
	if out := readJSON(t, res); out["plan"] == nil {
		t.Error("expected active plan")
	}

	res, err = env.server.handleFitnessResource(ctx, nil)
	if err != nil {
		t.Fatalf("handleFitnessResource failed: %v", err)
	}
	analysis := readJSON(t, res)["analysis"].(map[string]any)
	if analysis["estimated_ftp"].(float64) != 209 {
		t.Errorf("estimated_ftp = %v", analysis["estimated_ftp"])
	}
}
