// ABOUTME: Canned workout templates offered alongside generated workouts.
// ABOUTME: Returned fresh on each call so callers may modify them.
package training

import "github.com/harperreed/coach/internal/models"

// Templates returns the built-in workout library.
func Templates() []models.Workout {
	library := []sessionTemplate{
		{"FTP Build - 5x8min @ 95%", build(
			[]models.Segment{seg(models.DurationWarmup, 600, 0.55)},
			repeats(5, 480, 0.95, models.DurationRecovery, 240, 0.5),
			[]models.Segment{seg(models.DurationCooldown, 600, 0.4)},
		)},
		{"VO2max Intervals - 6x3min @ 120%", build(
			[]models.Segment{seg(models.DurationWarmup, 900, 0.5)},
			repeats(6, 180, 1.2, models.DurationRecovery, 180, 0.4),
			[]models.Segment{seg(models.DurationCooldown, 900, 0.4)},
		)},
		{"Endurance Ride - 3h @ 65%", []models.Segment{
			seg(models.DurationWarmup, 900, 0.5),
			seg(models.DurationInterval, 9900, 0.65),
			seg(models.DurationCooldown, 900, 0.4),
		}},
	}

	out := make([]models.Workout, len(library))
	for i, t := range library {
		out[i] = t.workout()
	}
	return out
}
