// ABOUTME: Fitness analysis: FTP proxy, power zones, and coaching hints.
// ABOUTME: Uses the most recent cycling activities; empty input is an error.
package training

import (
	"fmt"
	"math"

	"github.com/harperreed/coach/internal/models"
)

// DefaultRecentWindow is the number of recent activities analyzed.
const DefaultRecentWindow = 14

// MinZoneFTP is the smallest FTP whose rounded zones strictly increase.
const MinZoneFTP = 7

// ftpFactor converts rolling average power into an FTP estimate. It is a
// linear proxy, not a physiological model.
const ftpFactor = 0.95

// Zone multipliers of FTP.
const (
	recoveryFactor  = 0.55
	enduranceFactor = 0.75
	tempoFactor     = 0.90
	thresholdFactor = 1.05
	vo2maxFactor    = 1.20
)

// ZonesFor derives the five power zones from an FTP, rounded to the watt.
func ZonesFor(ftp int) models.TrainingZones {
	f := float64(ftp)
	return models.TrainingZones{
		Recovery:  int(math.Round(f * recoveryFactor)),
		Endurance: int(math.Round(f * enduranceFactor)),
		Tempo:     int(math.Round(f * tempoFactor)),
		Threshold: int(math.Round(f * thresholdFactor)),
		VO2Max:    int(math.Round(f * vo2maxFactor)),
	}
}

// AnalyzeFitness estimates FTP and zones from the most recent recentWindow
// cycling activities (newest first). A window of 0 or less uses
// DefaultRecentWindow. It returns ErrInsufficientData when there are no
// cycling activities, none of them reports positive power, or the estimate
// is too low to yield distinct zones.
func AnalyzeFitness(activities []models.Activity, recentWindow int) (*models.FitnessAnalysis, error) {
	if recentWindow <= 0 {
		recentWindow = DefaultRecentWindow
	}

	recent := make([]models.Activity, 0, recentWindow)
	for _, a := range activities {
		if !a.IsCycling() {
			continue
		}
		recent = append(recent, a)
		if len(recent) == recentWindow {
			break
		}
	}
	if len(recent) == 0 {
		return nil, fmt.Errorf("%w: no cycling activities", ErrInsufficientData)
	}

	var powerSum, tssSum float64
	var totalDuration int
	withPower := 0
	for _, a := range recent {
		if models.Float(a.AveragePower) > 0 {
			withPower++
		}
		powerSum += models.Float(a.AveragePower)
		tssSum += ActivityLoad(a)
		totalDuration += a.DurationSeconds
	}
	if withPower == 0 {
		return nil, fmt.Errorf("%w: no power data in the last %d rides", ErrInsufficientData, len(recent))
	}

	n := float64(len(recent))
	avgPower := powerSum / n
	ftp := int(math.Round(avgPower * ftpFactor))
	zones := ZonesFor(ftp)
	if ftp < MinZoneFTP || !zones.Monotonic() {
		return nil, fmt.Errorf("%w: estimated FTP %d W is too low to derive zones", ErrInsufficientData, ftp)
	}

	analysis := &models.FitnessAnalysis{
		EstimatedFTP:           ftp,
		AveragePower:           avgPower,
		AverageTSS:             tssSum / n,
		AverageDurationSeconds: float64(totalDuration) / n,
		TotalDurationSeconds:   totalDuration,
		ActivityCount:          len(recent),
		Zones:                  zones,
		FitnessLevel:           FitnessLevel(ftp),
	}
	analysis.Recommendations = Recommendations(analysis)
	return analysis, nil
}

// FitnessLevel buckets an FTP into a coarse label.
func FitnessLevel(ftp int) string {
	switch {
	case ftp > 250:
		return "Advanced"
	case ftp > 200:
		return "Intermediate"
	default:
		return "Beginner"
	}
}

// Recommendations returns coaching hints for an analysis. The list may be empty.
func Recommendations(a *models.FitnessAnalysis) []string {
	recs := []string{}
	switch {
	case a.EstimatedFTP < 200:
		recs = append(recs, "Focus on building aerobic base with longer endurance rides")
	case a.EstimatedFTP > 300:
		recs = append(recs, "Consider high-intensity intervals for further gains")
	}
	switch {
	case a.AverageTSS < 50:
		recs = append(recs, "Increase training volume gradually")
	case a.AverageTSS > 100:
		recs = append(recs, "Ensure adequate recovery between sessions")
	}
	return recs
}
