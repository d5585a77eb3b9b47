// ABOUTME: MCP tool implementations for coach.
// ABOUTME: Activity analytics, workout and plan generation, and Garmin uploads.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/coach/internal/coach"
	"github.com/harperreed/coach/internal/models"
	"github.com/harperreed/coach/internal/training"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultListLimit = 20

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_activities",
		Description: "List recent activities with a summary, optionally filtered by sport",
	}, s.handleListActivities)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "activity_summary",
		Description: "Totals and averages across all stored activities",
	}, s.handleActivitySummary)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "training_load",
		Description: "Daily training load with a rolling sum, plus distance and hours per day",
	}, s.handleTrainingLoad)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "analyze_activities",
		Description: "Estimate FTP, power zones, and fitness level from recent rides",
	}, s.handleAnalyze)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "generate_workout",
		Description: "Generate a structured cycling workout for a goal (ftp, vo2max, endurance)",
	}, s.handleGenerateWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "generate_plan",
		Description: "Generate a multi-week training plan from current fitness",
	}, s.handleGeneratePlan)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_workouts",
		Description: "List saved workouts, newest first",
	}, s.handleListWorkouts)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "upload_workout",
		Description: "Upload a saved workout to Garmin Connect, optionally scheduling it",
	}, s.handleUploadWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_plans",
		Description: "List training plans, newest first",
	}, s.handleListPlans)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "workout_templates",
		Description: "Library of ready-made workouts (FTP build, VO2max, endurance)",
	}, s.handleTemplates)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "sync_activities",
		Description: "Pull the last 14 days of activities from Garmin",
	}, s.handleSync)
}

// Tool input types

type userInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"User ID or prefix; defaults to the configured user"`
}

type listActivitiesInput struct {
	UserID    string `json:"user_id,omitempty" jsonschema:"User ID or prefix; defaults to the configured user"`
	SportType string `json:"sport_type,omitempty" jsonschema:"Filter by sport (cycling, running, swimming)"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type trainingLoadInput struct {
	UserID      string `json:"user_id,omitempty" jsonschema:"User ID or prefix; defaults to the configured user"`
	Days        int    `json:"days,omitempty" jsonschema:"Number of days to chart (default 30, at most 366)"`
	RollingDays int    `json:"rolling_days,omitempty" jsonschema:"Rolling window in days (default 7)"`
}

type generateWorkoutInput struct {
	UserID          string `json:"user_id,omitempty" jsonschema:"User ID or prefix; required when save is true"`
	Goal            string `json:"goal" jsonschema:"Training goal, e.g. ftp, threshold, vo2max, endurance"`
	Focus           string `json:"focus,omitempty" jsonschema:"Short label used in the workout name"`
	DurationMinutes int    `json:"duration_minutes" jsonschema:"Total workout length in minutes (21 to 600)"`
	Save            bool   `json:"save,omitempty" jsonschema:"Store the workout for later upload"`
}

type generatePlanInput struct {
	UserID        string `json:"user_id,omitempty" jsonschema:"User ID or prefix; defaults to the configured user"`
	Goal          string `json:"goal" jsonschema:"Training goal, e.g. ftp, vo2max, endurance"`
	Focus         string `json:"focus,omitempty" jsonschema:"Plan focus such as ftp, vo2max, or base; selects the weekly sessions and names the plan (defaults to goal)"`
	DurationWeeks int    `json:"duration_weeks" jsonschema:"Plan length in weeks (1 to 52)"`
	Save          bool   `json:"save,omitempty" jsonschema:"Store the plan as the active plan"`
}

type listInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"User ID or prefix; defaults to the configured user"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type uploadWorkoutInput struct {
	UserID       string `json:"user_id,omitempty" jsonschema:"User ID or prefix; defaults to the configured user"`
	WorkoutID    string `json:"workout_id" jsonschema:"Workout ID or prefix"`
	ScheduleDate string `json:"schedule_date,omitempty" jsonschema:"Calendar date (YYYY-MM-DD) to schedule the workout on"`
}

type emptyInput struct{}

// Tool handlers

func (s *Server) handleListActivities(ctx context.Context, req *mcp.CallToolRequest, input listActivitiesInput) (*mcp.CallToolResult, any, error) {
	userID, err := s.userOrDefault(input.UserID)
	if err != nil {
		return nil, nil, err
	}
	if input.Limit <= 0 {
		input.Limit = defaultListLimit
	}

	activities, summary, err := s.svc.ListActivities(ctx, userID, input.SportType, input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list activities: %w", err)
	}
	if len(activities) == 0 {
		return nil, map[string]any{"message": "No activities found. " + coach.Hint(training.ErrInsufficientData)}, nil
	}
	return nil, map[string]any{"activities": activities, "summary": summary}, nil
}

func (s *Server) handleActivitySummary(ctx context.Context, req *mcp.CallToolRequest, input userInput) (*mcp.CallToolResult, any, error) {
	userID, err := s.userOrDefault(input.UserID)
	if err != nil {
		return nil, nil, err
	}
	summary, err := s.svc.Summary(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to summarize activities: %w", err)
	}
	return nil, summary, nil
}

func (s *Server) handleTrainingLoad(ctx context.Context, req *mcp.CallToolRequest, input trainingLoadInput) (*mcp.CallToolResult, any, error) {
	userID, err := s.userOrDefault(input.UserID)
	if err != nil {
		return nil, nil, err
	}
	days, err := s.svc.Load(ctx, userID, input.Days, input.RollingDays)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute training load: %w", err)
	}
	return nil, map[string]any{"days": days}, nil
}

func (s *Server) handleAnalyze(ctx context.Context, req *mcp.CallToolRequest, input userInput) (*mcp.CallToolResult, any, error) {
	userID, err := s.userOrDefault(input.UserID)
	if err != nil {
		return nil, nil, err
	}
	analysis, err := s.svc.Analyze(ctx, userID)
	if err != nil {
		return nil, nil, coach.WithHint(err)
	}
	return nil, analysis, nil
}

func (s *Server) handleGenerateWorkout(ctx context.Context, req *mcp.CallToolRequest, input generateWorkoutInput) (*mcp.CallToolResult, any, error) {
	userID := input.UserID
	if input.Save {
		var err error
		if userID, err = s.userOrDefault(userID); err != nil {
			return nil, nil, err
		}
	}

	w, err := s.svc.GenerateWorkout(ctx, userID, input.Goal, input.Focus, input.DurationMinutes, input.Save)
	if err != nil {
		return nil, nil, coach.WithHint(err)
	}
	return nil, w, nil
}

func (s *Server) handleGeneratePlan(ctx context.Context, req *mcp.CallToolRequest, input generatePlanInput) (*mcp.CallToolResult, any, error) {
	userID, err := s.userOrDefault(input.UserID)
	if err != nil {
		return nil, nil, err
	}
	plan, err := s.svc.GeneratePlan(ctx, userID, input.Goal, input.Focus, input.DurationWeeks, input.Save)
	if err != nil {
		return nil, nil, coach.WithHint(err)
	}
	return nil, plan, nil
}

func (s *Server) handleListWorkouts(ctx context.Context, req *mcp.CallToolRequest, input listInput) (*mcp.CallToolResult, any, error) {
	userID, err := s.userOrDefault(input.UserID)
	if err != nil {
		return nil, nil, err
	}
	u, err := s.svc.User(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if input.Limit <= 0 {
		input.Limit = defaultListLimit
	}

	workouts, err := s.svc.Repo().ListWorkouts(u.ID.String(), input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list workouts: %w", err)
	}
	if len(workouts) == 0 {
		return nil, map[string]any{"message": "No workouts found."}, nil
	}
	return nil, workouts, nil
}

func (s *Server) handleUploadWorkout(ctx context.Context, req *mcp.CallToolRequest, input uploadWorkoutInput) (*mcp.CallToolResult, any, error) {
	userID, err := s.userOrDefault(input.UserID)
	if err != nil {
		return nil, nil, err
	}

	var schedule *time.Time
	if input.ScheduleDate != "" {
		d, err := time.Parse(training.DateLayout, input.ScheduleDate)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid schedule_date %q: use YYYY-MM-DD", input.ScheduleDate)
		}
		schedule = &d
	}

	w, err := s.svc.UploadWorkout(ctx, userID, input.WorkoutID, schedule)
	if err != nil {
		return nil, nil, coach.WithHint(err)
	}
	return nil, map[string]any{
		"message":           fmt.Sprintf("Uploaded %s to Garmin", w.Name),
		"workout_id":        w.ID.String(),
		"garmin_workout_id": w.GarminWorkoutID,
		"scheduled_date":    w.ScheduledDate,
	}, nil
}

func (s *Server) handleListPlans(ctx context.Context, req *mcp.CallToolRequest, input listInput) (*mcp.CallToolResult, any, error) {
	userID, err := s.userOrDefault(input.UserID)
	if err != nil {
		return nil, nil, err
	}
	u, err := s.svc.User(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if input.Limit <= 0 {
		input.Limit = defaultListLimit
	}

	plans, err := s.svc.Repo().ListPlans(u.ID.String(), input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list plans: %w", err)
	}
	if len(plans) == 0 {
		return nil, map[string]any{"message": "No plans found."}, nil
	}
	return nil, plans, nil
}

func (s *Server) handleTemplates(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	return nil, map[string][]models.Workout{"templates": training.Templates()}, nil
}

func (s *Server) handleSync(ctx context.Context, req *mcp.CallToolRequest, input userInput) (*mcp.CallToolResult, any, error) {
	userID, err := s.userOrDefault(input.UserID)
	if err != nil {
		return nil, nil, err
	}
	run, err := s.svc.SyncUser(ctx, userID)
	if err != nil {
		return nil, nil, coach.WithHint(err)
	}
	return nil, run, nil
}
