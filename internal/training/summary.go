// ABOUTME: Aggregate activity summary used by list views and the API.
// ABOUTME: Power and TSS cover cycling only; missing TSS uses the duration proxy.
package training

import (
	"math"
	"time"

	"github.com/harperreed/coach/internal/models"
)

// ActivitySummary totals a set of activities.
type ActivitySummary struct {
	TotalActivities      int     `json:"total_activities"`
	CyclingActivities    int     `json:"cycling_activities"`
	TotalDurationSeconds int     `json:"total_duration_seconds"`
	TotalDistanceKm      float64 `json:"total_distance_km"`
	TotalCalories        int     `json:"total_calories"`
	AveragePower         *int    `json:"average_power"`
	AverageHeartRate     *int    `json:"average_heart_rate"`
	TotalTSS             float64 `json:"total_tss"`
	WeeklyLoad           float64 `json:"weekly_load"`
}

// Summarize computes totals and averages. WeeklyLoad is the trailing 7-day
// load ending on now's date.
func Summarize(activities []models.Activity, now time.Time) ActivitySummary {
	var s ActivitySummary
	var powerSum, hrSum float64
	var powerN, hrN int

	for _, a := range activities {
		s.TotalActivities++
		s.TotalDurationSeconds += a.DurationSeconds
		s.TotalDistanceKm += a.DistanceKm()
		s.TotalCalories += a.Calories
		if a.AverageHeartRate != nil {
			hrSum += *a.AverageHeartRate
			hrN++
		}
		if !a.IsCycling() {
			continue
		}
		s.CyclingActivities++
		s.TotalTSS += ActivityLoad(a)
		if a.AveragePower != nil {
			powerSum += *a.AveragePower
			powerN++
		}
	}

	if powerN > 0 {
		p := int(math.Round(powerSum / float64(powerN)))
		s.AveragePower = &p
	}
	if hrN > 0 {
		hr := int(math.Round(hrSum / float64(hrN)))
		s.AverageHeartRate = &hr
	}
	s.WeeklyLoad = TrailingLoad(activities, 7, now)
	return s
}
