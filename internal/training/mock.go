// ABOUTME: Seeded mock activity generator for demos and tests.
// ABOUTME: Output is raw payloads that go through Normalize like real data.
package training

import (
	"fmt"
	"math/rand"
	"time"
)

var mockSports = []string{"cycling", "running", "swimming"}

// MockActivities returns count raw activities, one per day going back from
// now, rotating sports. The same rng seed yields the same output.
func MockActivities(rng *rand.Rand, userID string, count int, now time.Time) []RawActivity {
	out := make([]RawActivity, 0, count)
	for i := 0; i < count; i++ {
		sport := mockSports[i%len(mockSports)]
		duration := 1800 + rng.Float64()*7200
		start := now.Add(-time.Duration(i) * 24 * time.Hour).UTC()

		speed := 0.15
		if sport == "cycling" {
			speed = 0.4
		}

		raw := RawActivity{
			"activityId":       fmt.Sprintf("mock-%s-%d", userID, start.Unix()),
			"activityName":     fmt.Sprintf("Mock %s %d", sport, i+1),
			"sportType":        sport,
			"startTime":        start.Format(time.RFC3339),
			"duration":         duration,
			"distance":         duration * speed,
			"calories":         200 + rng.Float64()*800,
			"averageHeartRate": 120 + rng.Float64()*60,
		}
		raw["maxHeartRate"] = raw["averageHeartRate"].(float64) + 20 + rng.Float64()*30

		if sport == "cycling" {
			power := 150 + rng.Float64()*100
			hours := duration / 3600
			tss := hours * (power / 200) * 100
			raw["averagePower"] = power
			raw["normalizedPower"] = power * (0.95 + rng.Float64()*0.1)
			raw["averageCadence"] = 80 + rng.Float64()*20
			raw["tss"] = tss
			raw["intensityFactor"] = tss / hours / 100
		}
		out = append(out, raw)
	}
	return out
}
