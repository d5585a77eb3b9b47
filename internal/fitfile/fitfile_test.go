// ABOUTME: Tests for FIT session conversion.
// ABOUTME: Builds session messages in memory and runs them through the normalizer.
package fitfile

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/coach/internal/models"
	"github.com/harperreed/coach/internal/training"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tormoder/fit"
)

var rideStart = time.Date(2026, 3, 14, 7, 30, 0, 0, time.UTC)

func sampleSession() *fit.SessionMsg {
	s := fit.NewSessionMsg()
	s.Sport = fit.SportCycling
	s.StartTime = rideStart
	s.TotalTimerTime = 5400 * 1000
	s.TotalDistance = 45000 * 100
	s.TotalCalories = 1100
	s.AvgPower = 210
	s.NormalizedPower = 228
	s.AvgHeartRate = 142
	s.MaxHeartRate = 171
	return s
}

func TestFromSession(t *testing.T) {
	raw := FromSession(sampleSession())

	assert.Equal(t, "cycling", raw["sportType"])
	assert.Equal(t, rideStart.Format(time.RFC3339), raw["startTime"])
	assert.Equal(t, "fit-1773473400", raw["activityId"])
	assert.InDelta(t, 5400, raw["duration"], 1e-6)
	assert.InDelta(t, 45000, raw["distance"], 1e-6)
	assert.Equal(t, 1100.0, raw["calories"])
	assert.Equal(t, 210.0, raw["averagePower"])
	assert.Equal(t, 228.0, raw["normalizedPower"])
	assert.Equal(t, 142.0, raw["averageHeartRate"])
	assert.Equal(t, 171.0, raw["maxHeartRate"])
}

func TestFromSessionDropsInvalidValues(t *testing.T) {
	s := fit.NewSessionMsg()
	s.Sport = fit.SportRunning
	s.StartTime = rideStart
	s.TotalTimerTime = 1800 * 1000
	s.AvgPower = math.MaxUint16
	s.AvgHeartRate = math.MaxUint8

	raw := FromSession(s)

	assert.Equal(t, "running", raw["sportType"])
	for _, key := range []string{"averagePower", "normalizedPower", "averageHeartRate", "maxHeartRate", "distance", "calories", "tss"} {
		_, ok := raw[key]
		assert.False(t, ok, "expected %s to be dropped", key)
	}
}

func TestFromSessionNormalizes(t *testing.T) {
	now := rideStart.Add(24 * time.Hour)
	n := training.Normalize(FromSession(sampleSession()), now)

	require.NoError(t, n.Err())
	a := n.Activity
	assert.Equal(t, models.SportCycling, a.SportType)
	assert.Equal(t, "fit-1773473400", a.ExternalID)
	assert.Equal(t, 5400, a.DurationSeconds)
	assert.InDelta(t, 45000, a.DistanceMeters, 1e-6)
	require.NotNil(t, a.AveragePower)
	assert.Equal(t, 210.0, *a.AveragePower)
	assert.True(t, a.StartTime.Equal(rideStart))
}

func TestFromSessionWithoutStartTime(t *testing.T) {
	s := sampleSession()
	s.StartTime = time.Time{}

	raw := FromSession(s)
	_, hasStart := raw["startTime"]
	_, hasID := raw["activityId"]
	assert.False(t, hasStart)
	assert.False(t, hasID)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not a fit file")))
	assert.Error(t, err)
}

func TestDecodeFileMissing(t *testing.T) {
	_, err := DecodeFile(filepath.Join(t.TempDir(), "missing.fit"))
	assert.Error(t, err)
}

func TestDecodeFileGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "morning-ride.fit")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0600))

	_, err := DecodeFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "morning-ride.fit")
}
