// ABOUTME: Structured workout synthesis from a goal class and a duration.
// ABOUTME: Every workout is warmup, goal-specific work, then cooldown.
package training

import (
	"fmt"

	"github.com/harperreed/coach/internal/models"
)

const (
	warmupSeconds   = 600
	cooldownSeconds = 600
	warmupTarget    = 0.5
	cooldownTarget  = 0.4

	thresholdTarget = 0.95
	enduranceTarget = 0.65

	vo2IntervalSeconds = 180
	vo2RecoverySeconds = 180
	vo2IntervalTarget  = 1.20
	vo2RecoveryTarget  = 0.40

	// MinWorkoutMinutes is the shortest duration that leaves room for work.
	MinWorkoutMinutes = (warmupSeconds+cooldownSeconds)/60 + 1

	// MaxWorkoutMinutes caps a single generated workout at ten hours.
	MaxWorkoutMinutes = 600

	// MinVO2Minutes is the shortest VO2max workout holding one interval.
	MinVO2Minutes = (warmupSeconds+cooldownSeconds+vo2IntervalSeconds+vo2RecoverySeconds)/60
)

// SynthesizeWorkout builds a workout of exactly durationMinutes for the goal
// class. Durations that cannot fit warmup plus cooldown, or that exceed
// MaxWorkoutMinutes, return ErrInvalidDuration.
func SynthesizeWorkout(class GoalClass, focus string, durationMinutes int) (*models.Workout, error) {
	if durationMinutes < MinWorkoutMinutes {
		return nil, fmt.Errorf("%w: %d minutes, need at least %d", ErrInvalidDuration, durationMinutes, MinWorkoutMinutes)
	}
	if durationMinutes > MaxWorkoutMinutes {
		return nil, fmt.Errorf("%w: %d minutes, at most %d allowed", ErrInvalidDuration, durationMinutes, MaxWorkoutMinutes)
	}

	work := durationMinutes*60 - warmupSeconds - cooldownSeconds
	segments := []models.Segment{models.PowerSegment(models.DurationWarmup, warmupSeconds, warmupTarget)}

	cooldown := cooldownSeconds
	description := fmt.Sprintf("Generated %s workout", class)
	switch class {
	case GoalThreshold:
		segments = append(segments, models.PowerSegment(models.DurationInterval, work, thresholdTarget))
	case GoalVO2Max:
		intervals, used := vo2Block(work)
		segments = append(segments, intervals...)
		cooldown += work - used
		if len(intervals) == 0 {
			description += fmt.Sprintf(" (too short for intervals; %d minutes or more adds VO2max efforts)", MinVO2Minutes)
		}
	default:
		segments = append(segments, models.PowerSegment(models.DurationInterval, work, enduranceTarget))
	}
	segments = append(segments, models.PowerSegment(models.DurationCooldown, cooldown, cooldownTarget))

	name := focus
	if name == "" {
		name = "Workout"
	}
	w := models.NewWorkout(fmt.Sprintf("%s - %dmin", name, durationMinutes), models.SportCycling, segments)
	w.WithDescription(description)
	return w, nil
}

// vo2Block fills work seconds with 3-minute efforts separated by equal
// recoveries, and reports how many seconds it used.
func vo2Block(work int) ([]models.Segment, int) {
	n := work / (vo2IntervalSeconds + vo2RecoverySeconds)
	var segs []models.Segment
	used := 0
	for i := 0; i < n; i++ {
		if i > 0 {
			segs = append(segs, models.PowerSegment(models.DurationRecovery, vo2RecoverySeconds, vo2RecoveryTarget))
			used += vo2RecoverySeconds
		}
		segs = append(segs, models.PowerSegment(models.DurationInterval, vo2IntervalSeconds, vo2IntervalTarget))
		used += vo2IntervalSeconds
	}
	return segs, used
}
