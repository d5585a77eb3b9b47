// ABOUTME: Goal classification into threshold, VO2max, or endurance work.
// ABOUTME: Free-text goals are classified once and passed around as GoalClass.
package training

import "strings"

// GoalClass selects the segment templates used for workouts and plans.
type GoalClass int

const (
	GoalEndurance GoalClass = iota
	GoalThreshold
	GoalVO2Max
)

// ClassifyGoal maps free text to a GoalClass. Matching is case-insensitive:
// "ftp" or "threshold" selects Threshold, then "vo2" or "max" selects VO2Max,
// and anything else is Endurance.
func ClassifyGoal(goal string) GoalClass {
	g := strings.ToLower(goal)
	switch {
	case strings.Contains(g, "ftp"), strings.Contains(g, "threshold"):
		return GoalThreshold
	case strings.Contains(g, "vo2"), strings.Contains(g, "max"):
		return GoalVO2Max
	default:
		return GoalEndurance
	}
}

// PlanClass picks the class that drives a plan's weekly sessions: the focus
// when one is given, otherwise the goal.
func PlanClass(goal, focus string) GoalClass {
	if strings.TrimSpace(focus) != "" {
		return ClassifyGoal(focus)
	}
	return ClassifyGoal(goal)
}

// String returns the lowercase class name used in logs and metrics labels.
func (c GoalClass) String() string {
	switch c {
	case GoalThreshold:
		return "threshold"
	case GoalVO2Max:
		return "vo2max"
	default:
		return "endurance"
	}
}
