// ABOUTME: MCP resource implementations for coach.
// ABOUTME: Provides coach://activities, coach://workouts, coach://plans/active, and coach://fitness.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harperreed/coach/internal/coach"
	"github.com/harperreed/coach/internal/storage"
	"github.com/harperreed/coach/internal/training"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	activitiesURI = "coach://activities"
	workoutsURI   = "coach://workouts"
	activePlanURI = "coach://plans/active"
	fitnessURI    = "coach://fitness"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         activitiesURI,
		Name:        "Recent Activities",
		Description: "Last 20 activities with summary totals",
		MIMEType:    "application/json",
	}, s.handleActivitiesResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         workoutsURI,
		Name:        "Saved Workouts",
		Description: "Last 20 saved workouts and their upload status",
		MIMEType:    "application/json",
	}, s.handleWorkoutsResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         activePlanURI,
		Name:        "Active Training Plan",
		Description: "The current training plan with every week's sessions",
		MIMEType:    "application/json",
	}, s.handleActivePlanResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         fitnessURI,
		Name:        "Fitness Analysis",
		Description: "Estimated FTP, power zones, and recommendations",
		MIMEType:    "application/json",
	}, s.handleFitnessResource)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleActivitiesResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	userID, err := s.userOrDefault("")
	if err != nil {
		return nil, err
	}
	activities, summary, err := s.svc.ListActivities(ctx, userID, "", defaultListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return jsonResource(activitiesURI, map[string]any{
		"activities": activities,
		"summary":    summary,
	})
}

func (s *Server) handleWorkoutsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	userID, err := s.userOrDefault("")
	if err != nil {
		return nil, err
	}
	u, err := s.svc.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	workouts, err := s.svc.Repo().ListWorkouts(u.ID.String(), defaultListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}

	uploaded := 0
	for _, w := range workouts {
		if w.IsUploaded {
			uploaded++
		}
	}
	return jsonResource(workoutsURI, map[string]any{
		"workouts": workouts,
		"counts": map[string]int{
			"total":    len(workouts),
			"uploaded": uploaded,
		},
	})
}

func (s *Server) handleActivePlanResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	userID, err := s.userOrDefault("")
	if err != nil {
		return nil, err
	}
	plan, err := s.svc.ActivePlan(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return jsonResource(activePlanURI, map[string]any{"plan": nil, "message": "No active plan. Use generate_plan with save=true."})
	}
	if err != nil {
		return nil, err
	}
	return jsonResource(activePlanURI, map[string]any{"plan": plan})
}

func (s *Server) handleFitnessResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	userID, err := s.userOrDefault("")
	if err != nil {
		return nil, err
	}
	analysis, err := s.svc.Analyze(ctx, userID)
	if errors.Is(err, training.ErrInsufficientData) {
		return jsonResource(fitnessURI, map[string]any{"analysis": nil, "message": coach.WithHint(err).Error()})
	}
	if err != nil {
		return nil, err
	}
	return jsonResource(fitnessURI, map[string]any{"analysis": analysis})
}
