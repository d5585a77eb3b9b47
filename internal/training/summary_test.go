// ABOUTME: Tests for the activity summary and the seeded mock generator.
// ABOUTME: Mock output must be deterministic and normalize without warnings.
package training

import (
	"math/rand"
	"testing"

	"github.com/harperreed/coach/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	r1 := poweredRide(200, 60)
	r1.StartTime = fixedNow
	r1.DistanceMeters = 30000
	r1.Calories = 500
	hr := 140.0
	r1.AverageHeartRate = &hr

	r2 := poweredRide(251, 40)
	r2.StartTime = fixedNow.AddDate(0, 0, -10)

	run := *models.NewActivity("u1", "running").WithDuration(1800).WithStartTime(fixedNow)
	runHR := 151.0
	run.AverageHeartRate = &runHR
	run.DistanceMeters = 5000

	s := Summarize([]models.Activity{r1, r2, run}, fixedNow)
	assert.Equal(t, 3, s.TotalActivities)
	assert.Equal(t, 2, s.CyclingActivities)
	assert.Equal(t, 9000, s.TotalDurationSeconds)
	assert.InDelta(t, 35, s.TotalDistanceKm, 1e-9)
	assert.Equal(t, 500, s.TotalCalories)
	require.NotNil(t, s.AveragePower)
	assert.Equal(t, 226, *s.AveragePower)
	require.NotNil(t, s.AverageHeartRate)
	assert.Equal(t, 146, *s.AverageHeartRate)
	assert.InDelta(t, 100, s.TotalTSS, 1e-9)
	// r1 (60) plus the run's duration proxy (50).
	assert.InDelta(t, 110, s.WeeklyLoad, 1e-9)
}

func TestSummarizeMissingTSSUsesDurationProxy(t *testing.T) {
	ride := *models.NewActivity("u1", models.SportCycling).WithDuration(3600).WithStartTime(fixedNow)

	s := Summarize([]models.Activity{ride}, fixedNow)
	assert.InDelta(t, 100, s.TotalTSS, 1e-9)
	assert.InDelta(t, s.WeeklyLoad, s.TotalTSS, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, fixedNow)
	assert.Equal(t, 0, s.TotalActivities)
	assert.Nil(t, s.AveragePower)
	assert.Nil(t, s.AverageHeartRate)
}

func TestMockActivitiesDeterministic(t *testing.T) {
	a := MockActivities(rand.New(rand.NewSource(7)), "u1", 9, fixedNow)
	b := MockActivities(rand.New(rand.NewSource(7)), "u1", 9, fixedNow)
	require.Len(t, a, 9)
	assert.Equal(t, a, b)
}

func TestMockActivitiesNormalize(t *testing.T) {
	raws := MockActivities(rand.New(rand.NewSource(42)), "u1", 6, fixedNow)

	var activities []models.Activity
	for i, raw := range raws {
		n := Normalize(raw, fixedNow)
		require.Empty(t, n.Warnings, "record %d", i)
		assert.Equal(t, mockSports[i%3], n.Activity.SportType)
		assert.GreaterOrEqual(t, n.Activity.DurationSeconds, 1800)
		assert.LessOrEqual(t, n.Activity.DurationSeconds, 9000)
		if n.Activity.IsCycling() {
			require.NotNil(t, n.Activity.AveragePower)
			assert.GreaterOrEqual(t, *n.Activity.AveragePower, 150.0)
			assert.Less(t, *n.Activity.AveragePower, 250.0)
			require.NotNil(t, n.Activity.TSS)
		} else {
			assert.Nil(t, n.Activity.AveragePower)
		}
		activities = append(activities, n.Activity)
	}

	analysis, err := AnalyzeFitness(activities, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, analysis.ActivityCount)
}
