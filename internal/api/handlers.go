// ABOUTME: Echo handlers for activities, workouts, plans, fitness, and Garmin auth.
// ABOUTME: Request users come from userId (query or body) or the server default.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/harperreed/coach/internal/coach"
	"github.com/harperreed/coach/internal/garmin"
	"github.com/harperreed/coach/internal/models"
	"github.com/harperreed/coach/internal/storage"
	"github.com/harperreed/coach/internal/training"
	"github.com/labstack/echo/v4"
)

const (
	defaultActivityLimit = 50
	defaultPlanWeeks     = 4
	version              = "1.0.0"
)

func (s *Server) user(id string) (string, error) {
	if id != "" {
		return id, nil
	}
	if s.defaultUser != "" {
		return s.defaultUser, nil
	}
	return "", badRequest("User ID required")
}

func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, badRequest(name + " must be a non-negative integer")
	}
	return n, nil
}

func (s *Server) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": s.svc.Now().UTC().Format(time.RFC3339),
		"version":   version,
	})
}

// Activities

func (s *Server) listActivities(c echo.Context) error {
	userID, err := s.user(c.QueryParam("userId"))
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit", defaultActivityLimit)
	if err != nil {
		return err
	}

	activities, summary, err := s.svc.ListActivities(c.Request().Context(), userID, c.QueryParam("sportType"), limit)
	if err != nil {
		return err
	}
	if activities == nil {
		activities = []*models.Activity{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"activities": activities,
		"summary":    summary,
		"pagination": map[string]int{"limit": limit, "total": len(activities)},
	})
}

func (s *Server) getActivity(c echo.Context) error {
	a, err := s.svc.Repo().GetActivity(c.Param("id"))
	if err != nil {
		return err
	}
	if uid := c.QueryParam("userId"); uid != "" {
		u, err := s.svc.User(c.Request().Context(), uid)
		if err != nil {
			return err
		}
		if a.UserID != u.ID.String() {
			return echo.NewHTTPError(http.StatusNotFound, "Activity not found")
		}
	}
	return c.JSON(http.StatusOK, a)
}

type syncRequest struct {
	UserID string `json:"userId"`
	All    bool   `json:"all"`
}

func (s *Server) syncActivities(c echo.Context) error {
	var req syncRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	ctx := c.Request().Context()

	if req.All {
		results, err := s.svc.SyncAll(ctx, s.syncConcurrency)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]any{"success": true, "results": results})
	}

	userID, err := s.user(req.UserID)
	if err != nil {
		return err
	}
	run, err := s.svc.SyncUser(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "count": run.Saved, "run": run})
}

func (s *Server) trainingLoad(c echo.Context) error {
	userID, err := s.user(c.QueryParam("userId"))
	if err != nil {
		return err
	}
	days, err := queryInt(c, "days", 0)
	if err != nil {
		return err
	}
	rolling, err := queryInt(c, "rollingDays", 0)
	if err != nil {
		return err
	}

	load, err := s.svc.Load(c.Request().Context(), userID, days, rolling)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"days": load})
}

func (s *Server) fitness(c echo.Context) error {
	userID, err := s.user(c.QueryParam("userId"))
	if err != nil {
		return err
	}
	analysis, err := s.svc.Analyze(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"analysis": analysis})
}

// Workouts

func (s *Server) listWorkouts(c echo.Context) error {
	userID, err := s.user(c.QueryParam("userId"))
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return err
	}
	u, err := s.svc.User(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	workouts, err := s.svc.Repo().ListWorkouts(u.ID.String(), limit)
	if err != nil {
		return err
	}
	if workouts == nil {
		workouts = []*models.Workout{}
	}
	return c.JSON(http.StatusOK, map[string]any{"workouts": workouts})
}

type createWorkoutRequest struct {
	UserID  string          `json:"userId"`
	Workout *models.Workout `json:"workout"`
}

func (s *Server) createWorkout(c echo.Context) error {
	var req createWorkoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if req.Workout == nil {
		return badRequest("User ID and workout data required")
	}
	userID, err := s.user(req.UserID)
	if err != nil {
		return badRequest("User ID and workout data required")
	}

	w, err := s.svc.CreateWorkout(c.Request().Context(), userID, req.Workout)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"success":   true,
		"workoutId": w.ID.String(),
		"workout":   w,
		"message":   "Workout created successfully",
	})
}

type generateWorkoutRequest struct {
	UserID          string `json:"userId"`
	Goal            string `json:"goal"`
	Focus           string `json:"focus"`
	DurationMinutes int    `json:"durationMinutes"`
	Save            bool   `json:"save"`
}

func (s *Server) generateWorkout(c echo.Context) error {
	var req generateWorkoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if req.Goal == "" || req.DurationMinutes == 0 {
		return badRequest("goal and durationMinutes are required")
	}

	userID := req.UserID
	if req.Save {
		var err error
		if userID, err = s.user(userID); err != nil {
			return err
		}
	}

	w, err := s.svc.GenerateWorkout(c.Request().Context(), userID, req.Goal, req.Focus, req.DurationMinutes, req.Save)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "workout": w})
}

func (s *Server) templates(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"templates": training.Templates()})
}

type uploadRequest struct {
	UserID       string `json:"userId"`
	ScheduleDate string `json:"scheduleDate"`
}

func (s *Server) uploadWorkout(c echo.Context) error {
	var req uploadRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	userID, err := s.user(req.UserID)
	if err != nil {
		return err
	}

	var schedule *time.Time
	if req.ScheduleDate != "" {
		d, err := time.Parse(training.DateLayout, req.ScheduleDate)
		if err != nil {
			return badRequest("scheduleDate must be YYYY-MM-DD")
		}
		schedule = &d
	}

	w, err := s.svc.UploadWorkout(c.Request().Context(), userID, c.Param("id"), schedule)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Workout not found")
		case errors.Is(err, coach.ErrAlreadyUploaded):
			return echo.NewHTTPError(http.StatusConflict, "Workout already uploaded to Garmin Connect")
		}
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":         true,
		"garminWorkoutId": w.GarminWorkoutID,
		"workout":         w,
	})
}

type batchUploadRequest struct {
	UserID     string   `json:"userId"`
	WorkoutIDs []string `json:"workoutIds"`
}

func (s *Server) batchUpload(c echo.Context) error {
	var req batchUploadRequest
	if err := c.Bind(&req); err != nil || req.WorkoutIDs == nil {
		return badRequest("User ID and workout IDs array required")
	}
	userID, err := s.user(req.UserID)
	if err != nil {
		return badRequest("User ID and workout IDs array required")
	}

	res, err := s.svc.BatchUpload(c.Request().Context(), userID, req.WorkoutIDs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"message":    res.Message(),
		"results":    res.Results,
		"successful": res.Successful,
		"total":      res.Total,
	})
}

// Plans

func (s *Server) listPlans(c echo.Context) error {
	userID, err := s.user(c.QueryParam("userId"))
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return err
	}
	u, err := s.svc.User(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	plans, err := s.svc.Repo().ListPlans(u.ID.String(), limit)
	if err != nil {
		return err
	}
	if plans == nil {
		plans = []*models.TrainingPlan{}
	}
	return c.JSON(http.StatusOK, map[string]any{"plans": plans})
}

func (s *Server) activePlan(c echo.Context) error {
	userID, err := s.user(c.QueryParam("userId"))
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := s.svc.User(ctx, userID); err != nil {
		return err
	}

	plan, err := s.svc.ActivePlan(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return c.JSON(http.StatusOK, map[string]any{"plan": nil, "message": "No active training plan found"})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"plan": plan})
}

type generatePlanRequest struct {
	UserID        string `json:"userId"`
	Goal          string `json:"goal"`
	Focus         string `json:"focus"`
	DurationWeeks *int   `json:"durationWeeks"`
	Save          *bool  `json:"save"`
}

func (s *Server) generatePlan(c echo.Context) error {
	var req generatePlanRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if req.Goal == "" {
		return badRequest("User ID and goal are required")
	}
	userID, err := s.user(req.UserID)
	if err != nil {
		return badRequest("User ID and goal are required")
	}

	weeks := defaultPlanWeeks
	if req.DurationWeeks != nil {
		weeks = *req.DurationWeeks
	}
	save := req.Save == nil || *req.Save

	plan, err := s.svc.GeneratePlan(c.Request().Context(), userID, req.Goal, req.Focus, weeks, save)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"planId":  plan.ID.String(),
		"plan":    plan,
		"message": "Training plan generated successfully",
	})
}

// Auth

func (s *Server) garminLogin(c echo.Context) error {
	url, err := s.svc.AuthorizeURL()
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, url)
}

func (s *Server) garminCallback(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return badRequest("Authorization code required")
	}

	u, err := s.svc.CompleteLogin(c.Request().Context(), code)
	if err != nil {
		if errors.Is(err, garmin.ErrNotConfigured) {
			return err
		}
		s.logger.Error().Err(err).Msg("garmin auth callback")
		return echo.NewHTTPError(http.StatusInternalServerError, "Authentication failed")
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "user": u})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	Success bool `json:"success"`
	*garmin.Token
}

func (s *Server) refreshToken(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if req.RefreshToken == "" {
		return badRequest("Refresh token required")
	}

	tok, err := s.svc.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, garmin.ErrNotConfigured) {
			return err
		}
		s.logger.Error().Err(err).Msg("garmin token refresh")
		return echo.NewHTTPError(http.StatusInternalServerError, "Token refresh failed")
	}
	return c.JSON(http.StatusOK, refreshResponse{Success: true, Token: tok})
}
