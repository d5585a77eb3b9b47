// ABOUTME: Tests for raw activity normalization and the distance heuristic.
// ABOUTME: Covers alias precedence, numeric coercion, and soft warnings.
package training

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestDistanceKm(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{42.2, 42.2},
		{999, 999},
		{1000, 1.0},
		{1001, 1.001},
		{40000, 40},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, DistanceKm(tt.in), 1e-9, "DistanceKm(%v)", tt.in)
	}
}

func TestNormalizeFullRecord(t *testing.T) {
	raw := RawActivity{
		"activityId":       float64(123456789),
		"activityName":     "Morning Ride",
		"sportType":        "CYCLING",
		"startTime":        "2026-03-14T07:30:00Z",
		"duration":         3600.4,
		"distance":         40000.0,
		"calories":         "850",
		"avgPower":         json.Number("210.5"),
		"normalizedPower":  225,
		"averageHeartRate": 142.0,
		"maxHr":            "178",
		"avgCadence":       88,
		"tss":              72.5,
		"intensityFactor":  0.82,
	}

	n := Normalize(raw, fixedNow)
	require.Empty(t, n.Warnings)
	require.NoError(t, n.Err())

	a := n.Activity
	assert.Equal(t, "123456789", a.ExternalID)
	assert.Equal(t, "Morning Ride", a.Name)
	assert.Equal(t, "cycling", a.SportType)
	assert.Equal(t, time.Date(2026, 3, 14, 7, 30, 0, 0, time.UTC), a.StartTime)
	assert.Equal(t, 3600, a.DurationSeconds)
	assert.InDelta(t, 40000, a.DistanceMeters, 1e-9)
	assert.Equal(t, 850, a.Calories)
	require.NotNil(t, a.AveragePower)
	assert.InDelta(t, 210.5, *a.AveragePower, 1e-9)
	require.NotNil(t, a.NormalizedPower)
	assert.InDelta(t, 225, *a.NormalizedPower, 1e-9)
	require.NotNil(t, a.MaxHeartRate)
	assert.InDelta(t, 178, *a.MaxHeartRate, 1e-9)
	require.NotNil(t, a.AverageCadence)
	require.NotNil(t, a.TSS)
	assert.InDelta(t, 72.5, *a.TSS, 1e-9)
	assert.NotEmpty(t, a.RawData)
}

func TestNormalizeAliasPrecedence(t *testing.T) {
	raw := RawActivity{
		"activityId":   "primary",
		"id":           "secondary",
		"name":         "Fallback Name",
		"sport":        "Running",
		"elapsedTime":  1200,
		"averagePower": 200.0,
		"avgPower":     100.0,
	}
	n := Normalize(raw, fixedNow)
	assert.Equal(t, "primary", n.Activity.ExternalID)
	assert.Equal(t, "Fallback Name", n.Activity.Name)
	assert.Equal(t, "running", n.Activity.SportType)
	assert.Equal(t, 1200, n.Activity.DurationSeconds)
	assert.InDelta(t, 200, *n.Activity.AveragePower, 1e-9)
}

func TestNormalizeDefaultsAndWarnings(t *testing.T) {
	n := Normalize(RawActivity{"startTime": "not a date", "duration": -50}, fixedNow)

	assert.Equal(t, "Activity", n.Activity.Name)
	assert.Equal(t, "cycling", n.Activity.SportType)
	assert.Equal(t, fixedNow, n.Activity.StartTime)
	assert.Equal(t, 0, n.Activity.DurationSeconds)
	assert.NotEmpty(t, n.Activity.ExternalID)
	assert.Nil(t, n.Activity.AveragePower)
	assert.ElementsMatch(t, []Warning{WarnMissingID, WarnDefaultSport, WarnMissingStartTime}, n.Warnings)

	err := n.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedActivity))
}

func TestNormalizeUnparseableNumbersAreAbsent(t *testing.T) {
	n := Normalize(RawActivity{
		"activityId":   "x",
		"sportType":    "cycling",
		"startTime":    "2026-03-14",
		"averagePower": "lots",
		"tss":          map[string]any{"value": 1},
	}, fixedNow)
	assert.Nil(t, n.Activity.AveragePower)
	assert.Nil(t, n.Activity.TSS)
	assert.Empty(t, n.Warnings)
}

func TestNormalizeEpochStartTimes(t *testing.T) {
	secs := float64(fixedNow.Add(-time.Hour).Unix())
	n := Normalize(RawActivity{"activityId": "a", "sportType": "cycling", "startTime": secs}, fixedNow)
	assert.Equal(t, fixedNow.Add(-time.Hour), n.Activity.StartTime)

	millis := float64(fixedNow.Add(-2 * time.Hour).UnixMilli())
	n = Normalize(RawActivity{"activityId": "b", "sportType": "cycling", "startTimeLocal": millis}, fixedNow)
	assert.Equal(t, fixedNow.Add(-2*time.Hour), n.Activity.StartTime)
}

func TestNormalizeSmallDistanceIsKilometers(t *testing.T) {
	n := Normalize(RawActivity{"activityId": "a", "sportType": "cycling", "startTime": "2026-03-14", "distance": 999}, fixedNow)
	assert.InDelta(t, 999000, n.Activity.DistanceMeters, 1e-6)
}
