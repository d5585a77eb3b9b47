// ABOUTME: Tests for day-bucketed and rolling training load.
// ABOUTME: Checks TSS fallback, window edges, rolling sums, and idempotence.
package training

import (
	"testing"
	"time"

	"github.com/harperreed/coach/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ride(start time.Time, seconds int, tss *float64) models.Activity {
	a := models.NewActivity("u1", models.SportCycling).WithDuration(seconds).WithStartTime(start)
	a.TSS = tss
	return *a
}

func ptr(f float64) *float64 { return &f }

func TestActivityLoad(t *testing.T) {
	assert.InDelta(t, 80, ActivityLoad(ride(fixedNow, 3600, ptr(80))), 1e-9)
	assert.InDelta(t, 100, ActivityLoad(ride(fixedNow, 3600, nil)), 1e-9)
	assert.InDelta(t, 0, ActivityLoad(ride(fixedNow, 0, nil)), 1e-9)
}

func TestAggregateLoadBuckets(t *testing.T) {
	activities := []models.Activity{
		ride(fixedNow.Add(-time.Hour), 3600, ptr(50)),
		ride(fixedNow.Add(-2*time.Hour), 1800, ptr(25)),
		ride(fixedNow.AddDate(0, 0, -2), 3600, nil),
		ride(fixedNow.AddDate(0, 0, -30), 3600, ptr(999)),
		{SportType: models.SportCycling, DurationSeconds: 3600},
	}

	series := AggregateLoad(activities, 7, 3, fixedNow)
	require.Len(t, series, 7)
	assert.Equal(t, "2026-03-09", series[0].Date)
	assert.Equal(t, "2026-03-15", series[6].Date)

	assert.InDelta(t, 75, series[6].Load, 1e-9)
	assert.Equal(t, 2, series[6].Activities)
	assert.InDelta(t, 1.5, series[6].Hours, 1e-9)
	assert.InDelta(t, 100, series[4].Load, 1e-9)

	assert.InDelta(t, 175, series[6].RollingLoad, 1e-9)
	assert.InDelta(t, 100, series[4].RollingLoad, 1e-9)
	assert.InDelta(t, 0, series[0].RollingLoad, 1e-9)
}

func TestAggregateLoadIdempotent(t *testing.T) {
	activities := []models.Activity{
		ride(fixedNow, 3600, ptr(60)),
		ride(fixedNow.AddDate(0, 0, -1), 5400, nil),
	}
	first := AggregateLoad(activities, 14, 7, fixedNow)
	second := AggregateLoad(activities, 14, 7, fixedNow)
	assert.Equal(t, first, second)
}

func TestAggregateLoadUsesNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*3600)
	now := time.Date(2026, 3, 15, 20, 0, 0, 0, loc)
	// 2026-03-16 02:00 UTC is still the 15th in UTC-8.
	a := ride(time.Date(2026, 3, 16, 2, 0, 0, 0, time.UTC), 3600, ptr(40))

	series := AggregateLoad([]models.Activity{a}, 1, 1, now)
	require.Len(t, series, 1)
	assert.Equal(t, "2026-03-15", series[0].Date)
	assert.InDelta(t, 40, series[0].Load, 1e-9)
}

func TestAggregateLoadEmptyWindow(t *testing.T) {
	assert.Nil(t, AggregateLoad(nil, 0, 7, fixedNow))
}

func TestTrailingLoad(t *testing.T) {
	activities := []models.Activity{
		ride(fixedNow, 3600, ptr(60)),
		ride(fixedNow.AddDate(0, 0, -6), 3600, ptr(40)),
		ride(fixedNow.AddDate(0, 0, -7), 3600, ptr(1000)),
	}
	assert.InDelta(t, 100, TrailingLoad(activities, 7, fixedNow), 1e-9)
	assert.InDelta(t, 0, TrailingLoad(nil, 7, fixedNow), 1e-9)
}
