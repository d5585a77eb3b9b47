// ABOUTME: Tests for the fitness analyzer, zones, levels, and recommendations.
// ABOUTME: Empty and non-cycling inputs must fail rather than report zero FTP.
package training

import (
	"errors"
	"testing"

	"github.com/harperreed/coach/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func poweredRide(watts, tss float64) models.Activity {
	return *models.NewActivity("u1", models.SportCycling).WithDuration(3600).WithPower(watts).WithTSS(tss)
}

func TestAnalyzeFitnessEstimatesFTP(t *testing.T) {
	activities := []models.Activity{poweredRide(200, 60), poweredRide(200, 80)}

	analysis, err := AnalyzeFitness(activities, 0)
	require.NoError(t, err)
	assert.Equal(t, 190, analysis.EstimatedFTP)
	assert.InDelta(t, 200, analysis.AveragePower, 1e-9)
	assert.InDelta(t, 70, analysis.AverageTSS, 1e-9)
	assert.InDelta(t, 3600, analysis.AverageDurationSeconds, 1e-9)
	assert.Equal(t, 7200, analysis.TotalDurationSeconds)
	assert.Equal(t, 2, analysis.ActivityCount)
	assert.Equal(t, models.TrainingZones{Recovery: 105, Endurance: 143, Tempo: 171, Threshold: 200, VO2Max: 228}, analysis.Zones)
	assert.Equal(t, "Beginner", analysis.FitnessLevel)
}

func TestAnalyzeFitnessWindowAndSportFilter(t *testing.T) {
	run := *models.NewActivity("u1", "running").WithDuration(3600).WithPower(999)
	activities := []models.Activity{run, poweredRide(300, 90), poweredRide(100, 90), poweredRide(100, 90)}

	analysis, err := AnalyzeFitness(activities, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, analysis.ActivityCount)
	assert.InDelta(t, 200, analysis.AveragePower, 1e-9)
}

func TestAnalyzeFitnessMissingPowerCountsAsZero(t *testing.T) {
	noPower := *models.NewActivity("u1", models.SportCycling).WithDuration(3600)
	analysis, err := AnalyzeFitness([]models.Activity{poweredRide(200, 50), noPower}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 100, analysis.AveragePower, 1e-9)
	assert.Equal(t, 95, analysis.EstimatedFTP)
	// TSS falls back to duration/36 for the ride without it.
	assert.InDelta(t, 75, analysis.AverageTSS, 1e-9)
}

func TestAnalyzeFitnessInsufficientData(t *testing.T) {
	tests := []struct {
		name       string
		activities []models.Activity
	}{
		{"empty", nil},
		{"no cycling", []models.Activity{*models.NewActivity("u1", "running").WithDuration(1800)}},
		{"no power", []models.Activity{*models.NewActivity("u1", models.SportCycling).WithDuration(1800)}},
		{"zero power", []models.Activity{poweredRide(0, 50), poweredRide(0, 60)}},
		{"power too low for zones", []models.Activity{poweredRide(6, 10)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis, err := AnalyzeFitness(tt.activities, 0)
			assert.Nil(t, analysis)
			assert.True(t, errors.Is(err, ErrInsufficientData))
		})
	}
}

func TestZonesMonotonic(t *testing.T) {
	for ftp := 1; ftp < MinZoneFTP; ftp++ {
		assert.False(t, ZonesFor(ftp).Monotonic(), "zones for FTP %d", ftp)
	}
	for ftp := MinZoneFTP; ftp <= 400; ftp++ {
		assert.True(t, ZonesFor(ftp).Monotonic(), "zones for FTP %d", ftp)
	}
}

func TestAnalyzeFitnessLowestUsableFTP(t *testing.T) {
	// 7.4 W average rounds to a 7 W FTP.
	analysis, err := AnalyzeFitness([]models.Activity{poweredRide(7.4, 10)}, 0)
	require.NoError(t, err)
	assert.Equal(t, MinZoneFTP, analysis.EstimatedFTP)
	assert.True(t, analysis.Zones.Monotonic())
}

func TestFitnessLevel(t *testing.T) {
	assert.Equal(t, "Beginner", FitnessLevel(200))
	assert.Equal(t, "Intermediate", FitnessLevel(201))
	assert.Equal(t, "Intermediate", FitnessLevel(250))
	assert.Equal(t, "Advanced", FitnessLevel(251))
}

func TestRecommendations(t *testing.T) {
	tests := []struct {
		name string
		ftp  int
		tss  float64
		want []string
	}{
		{"low ftp low volume", 150, 30, []string{
			"Focus on building aerobic base with longer endurance rides",
			"Increase training volume gradually",
		}},
		{"high ftp high volume", 320, 120, []string{
			"Consider high-intensity intervals for further gains",
			"Ensure adequate recovery between sessions",
		}},
		{"balanced", 250, 75, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recommendations(&models.FitnessAnalysis{EstimatedFTP: tt.ftp, AverageTSS: tt.tss})
			assert.Equal(t, tt.want, got)
		})
	}
}
