// ABOUTME: Day-bucketed and rolling training load aggregation.
// ABOUTME: Feeds fitness trend charts, volume charts, and trailing load summaries.
package training

import (
	"math"
	"time"

	"github.com/harperreed/coach/internal/models"
)

// DateLayout keys day buckets.
const DateLayout = "2006-01-02"

// MaxLoadWindowDays bounds the number of day buckets a caller may request.
const MaxLoadWindowDays = 366

// secondsPerLoadPoint approximates one TSS point per 36 seconds of moderate riding.
const secondsPerLoadPoint = 36.0

// DailyLoad is one calendar day of training load and volume.
type DailyLoad struct {
	Date        string  `json:"date"`
	Load        float64 `json:"load"`
	RollingLoad float64 `json:"rolling_load"`
	DistanceKm  float64 `json:"distance_km"`
	Hours       float64 `json:"hours"`
	Activities  int     `json:"activities"`
}

// ActivityLoad returns the activity's TSS, or the duration-based proxy when
// TSS was not reported.
func ActivityLoad(a models.Activity) float64 {
	if a.TSS != nil && !math.IsNaN(*a.TSS) && !math.IsInf(*a.TSS, 0) {
		return *a.TSS
	}
	return float64(a.DurationSeconds) / secondsPerLoadPoint
}

// AggregateLoad buckets activities into windowDays calendar days ending on
// now's date, in now's location, and fills RollingLoad with the trailing
// rollingWindow-day sum for each day. Activities without a start time or
// outside the window are skipped.
func AggregateLoad(activities []models.Activity, windowDays, rollingWindow int, now time.Time) []DailyLoad {
	if windowDays <= 0 {
		return nil
	}
	if rollingWindow < 1 {
		rollingWindow = 1
	}

	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	series := make([]DailyLoad, windowDays)
	index := make(map[string]int, windowDays)
	for i := range series {
		key := today.AddDate(0, 0, i-windowDays+1).Format(DateLayout)
		series[i].Date = key
		index[key] = i
	}

	for _, a := range activities {
		if a.StartTime.IsZero() {
			continue
		}
		i, ok := index[a.StartTime.In(loc).Format(DateLayout)]
		if !ok {
			continue
		}
		series[i].Load += ActivityLoad(a)
		series[i].DistanceKm += a.DistanceKm()
		series[i].Hours += float64(a.DurationSeconds) / 3600
		series[i].Activities++
	}

	var sum float64
	for i := range series {
		sum += series[i].Load
		if i >= rollingWindow {
			sum -= series[i-rollingWindow].Load
		}
		series[i].RollingLoad = sum
	}

	return series
}

// TrailingLoad is the total load of the last days days ending on now's date.
func TrailingLoad(activities []models.Activity, days int, now time.Time) float64 {
	series := AggregateLoad(activities, days, days, now)
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1].RollingLoad
}
