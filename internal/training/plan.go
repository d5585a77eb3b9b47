// ABOUTME: Multi-week training plan generation from a goal and fitness analysis.
// ABOUTME: Each goal class maps to a fixed weekly triad of sessions.
package training

import (
	"fmt"

	"github.com/harperreed/coach/internal/models"
)

// MaxPlanWeeks caps a plan at one year.
const MaxPlanWeeks = 52

// sessionTemplate is a named segment list used to stamp out plan sessions.
type sessionTemplate struct {
	name     string
	segments []models.Segment
}

func seg(kind models.DurationType, seconds int, target float64) models.Segment {
	return models.PowerSegment(kind, seconds, target)
}

// repeats emits count work segments with rest segments between them.
func repeats(count, workSecs int, workTarget float64, restKind models.DurationType, restSecs int, restTarget float64) []models.Segment {
	var out []models.Segment
	for i := 0; i < count; i++ {
		if i > 0 {
			out = append(out, seg(restKind, restSecs, restTarget))
		}
		out = append(out, seg(models.DurationInterval, workSecs, workTarget))
	}
	return out
}

func build(parts ...[]models.Segment) []models.Segment {
	var out []models.Segment
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// weeklySessions returns the session triad for a goal class.
func weeklySessions(class GoalClass) []sessionTemplate {
	switch class {
	case GoalThreshold:
		return []sessionTemplate{
			{"Endurance Ride", []models.Segment{
				seg(models.DurationWarmup, 900, 0.5),
				seg(models.DurationInterval, 3600, 0.75),
				seg(models.DurationCooldown, 900, 0.4),
			}},
			{"FTP Intervals", build(
				[]models.Segment{seg(models.DurationWarmup, 600, 0.55)},
				repeats(3, 480, 0.95, models.DurationRecovery, 240, 0.5),
				[]models.Segment{seg(models.DurationCooldown, 600, 0.4)},
			)},
			{"Recovery Ride", []models.Segment{
				seg(models.DurationWarmup, 300, 0.4),
				seg(models.DurationInterval, 1800, 0.55),
				seg(models.DurationCooldown, 300, 0.4),
			}},
		}
	case GoalVO2Max:
		return []sessionTemplate{
			{"Endurance Base", []models.Segment{
				seg(models.DurationWarmup, 900, 0.5),
				seg(models.DurationInterval, 3600, 0.7),
				seg(models.DurationCooldown, 900, 0.4),
			}},
			{"VO2max Intervals", build(
				[]models.Segment{seg(models.DurationWarmup, 900, 0.5)},
				repeats(4, 180, 1.2, models.DurationRecovery, 180, 0.4),
				[]models.Segment{seg(models.DurationCooldown, 900, 0.4)},
			)},
			{"Recovery Spin", []models.Segment{
				seg(models.DurationWarmup, 300, 0.4),
				seg(models.DurationInterval, 1200, 0.5),
				seg(models.DurationCooldown, 300, 0.4),
			}},
		}
	default:
		return []sessionTemplate{
			{"Long Endurance", []models.Segment{
				seg(models.DurationWarmup, 900, 0.5),
				seg(models.DurationInterval, 5400, 0.65),
				seg(models.DurationCooldown, 900, 0.4),
			}},
			{"Tempo Ride", []models.Segment{
				seg(models.DurationWarmup, 600, 0.5),
				seg(models.DurationInterval, 1800, 0.85),
				seg(models.DurationRecovery, 300, 0.5),
				seg(models.DurationInterval, 1800, 0.85),
				seg(models.DurationCooldown, 600, 0.4),
			}},
			{"Easy Recovery", []models.Segment{
				seg(models.DurationWarmup, 300, 0.4),
				seg(models.DurationInterval, 1800, 0.55),
				seg(models.DurationCooldown, 300, 0.4),
			}},
		}
	}
}

func (t sessionTemplate) workout() models.Workout {
	segs := make([]models.Segment, len(t.segments))
	copy(segs, t.segments)
	w := models.NewWorkout(t.name, models.SportCycling, segs)
	w.WithDescription(fmt.Sprintf("Generated %s workout", t.name))
	return *w
}

// GeneratePlan builds a durationWeeks plan. The focus selects the weekly
// sessions, falling back to the goal when empty; see PlanClass. Every week
// carries the same three sessions; there is no periodization. Targets stay relative to
// FTP, and the analysis supplies the FTP and zones recorded on the plan.
func GeneratePlan(goal, focus string, durationWeeks int, analysis *models.FitnessAnalysis) (*models.TrainingPlan, error) {
	if durationWeeks < 1 || durationWeeks > MaxPlanWeeks {
		return nil, fmt.Errorf("%w: got %d weeks, want 1 to %d", ErrInvalidWeeks, durationWeeks, MaxPlanWeeks)
	}
	if analysis == nil {
		return nil, fmt.Errorf("%w: a fitness analysis is required", ErrInsufficientData)
	}

	templates := weeklySessions(PlanClass(goal, focus))
	name := focus
	if name == "" {
		name = goal
	}

	plan := models.NewTrainingPlan(fmt.Sprintf("%s Training Plan - %d weeks", name, durationWeeks), goal, focus, durationWeeks)
	plan.EstimatedFTP = analysis.EstimatedFTP
	plan.TargetZones = analysis.Zones
	plan.Weeks = make([]models.WeekPlan, durationWeeks)
	for i := range plan.Weeks {
		sessions := make([]models.Workout, len(templates))
		for j, t := range templates {
			sessions[j] = t.workout()
		}
		plan.Weeks[i] = models.WeekPlan{Week: i + 1, Sessions: sessions}
	}
	return plan, nil
}
