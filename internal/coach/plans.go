// ABOUTME: Training plan generation from the user's current fitness.
// ABOUTME: A saved plan becomes the only active plan for its user.
package coach

import (
	"context"
	"fmt"

	"github.com/harperreed/coach/internal/events"
	"github.com/harperreed/coach/internal/models"
	"github.com/harperreed/coach/internal/training"
)

// GeneratePlan analyzes the user's rides and builds a weeks-long plan for goal.
// When save is set, earlier plans are deactivated and the new plan is stored active.
func (s *Service) GeneratePlan(ctx context.Context, userID, goal, focus string, weeks int, save bool) (*models.TrainingPlan, error) {
	analysis, err := s.Analyze(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("generate plan: %w", err)
	}
	plan, err := training.GeneratePlan(goal, focus, weeks, analysis)
	if err != nil {
		return nil, fmt.Errorf("generate plan: %w", err)
	}
	class := training.PlanClass(goal, focus)
	plansGenerated.WithLabelValues(class.String()).Inc()

	if !save {
		return plan, nil
	}

	u, err := s.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	uid := u.ID.String()
	plan.UserID = uid
	plan.CreatedAt = s.now().UTC()

	if err := s.repo.ReplaceActivePlan(plan); err != nil {
		return nil, fmt.Errorf("generate plan: %w", err)
	}

	s.logger.Info().Str("user_id", uid).Str("plan_id", plan.ID.String()).Int("weeks", weeks).Int("ftp", plan.EstimatedFTP).Msg("plan generated")
	s.publish(ctx, events.TypePlanGenerated, uid, events.PlanGenerated{
		PlanID:        plan.ID.String(),
		Goal:          goal,
		DurationWeeks: plan.DurationWeeks,
		EstimatedFTP:  plan.EstimatedFTP,
	})
	return plan, nil
}

// ActivePlan returns the user's current plan.
func (s *Service) ActivePlan(ctx context.Context, userID string) (*models.TrainingPlan, error) {
	u, err := s.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	plan, err := s.repo.GetActivePlan(u.ID.String())
	if err != nil {
		return nil, fmt.Errorf("active plan: %w", err)
	}
	return plan, nil
}
