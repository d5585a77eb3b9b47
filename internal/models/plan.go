// ABOUTME: Training plan, zones, and fitness analysis models.
// ABOUTME: Plans repeat weekly session sets; zones are absolute watts.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TrainingZones holds wattage thresholds for the five power zones.
type TrainingZones struct {
	Recovery  int `json:"recovery" yaml:"recovery"`
	Endurance int `json:"endurance" yaml:"endurance"`
	Tempo     int `json:"tempo" yaml:"tempo"`
	Threshold int `json:"threshold" yaml:"threshold"`
	VO2Max    int `json:"vo2max" yaml:"vo2max"`
}

// Monotonic reports whether the zones strictly increase.
func (z TrainingZones) Monotonic() bool {
	return z.Recovery < z.Endurance &&
		z.Endurance < z.Tempo &&
		z.Tempo < z.Threshold &&
		z.Threshold < z.VO2Max
}

// FitnessAnalysis is derived from a rider's recent activities.
// It is recomputed on demand and never stored.
type FitnessAnalysis struct {
	EstimatedFTP           int           `json:"estimated_ftp"`
	AveragePower           float64       `json:"average_power"`
	AverageTSS             float64       `json:"average_tss"`
	AverageDurationSeconds float64       `json:"average_duration_seconds"`
	TotalDurationSeconds   int           `json:"total_duration_seconds"`
	ActivityCount          int           `json:"activity_count"`
	Zones                  TrainingZones `json:"zones"`
	FitnessLevel           string        `json:"fitness_level"`
	Recommendations        []string      `json:"recommendations"`
}

// WeekPlan is one week of sessions.
type WeekPlan struct {
	Week     int       `json:"week"`
	Sessions []Workout `json:"sessions"`
}

// TrainingPlan sequences workouts over several weeks.
type TrainingPlan struct {
	ID            uuid.UUID     `json:"id"`
	UserID        string        `json:"user_id,omitempty"`
	Name          string        `json:"name"`
	Goal          string        `json:"goal"`
	Focus         string        `json:"focus"`
	DurationWeeks int           `json:"duration_weeks"`
	Weeks         []WeekPlan    `json:"weeks"`
	EstimatedFTP  int           `json:"estimated_ftp"`
	TargetZones   TrainingZones `json:"target_zones"`
	IsActive      bool          `json:"is_active"`
	CreatedAt     time.Time     `json:"created_at"`
}

// NewTrainingPlan creates an empty active plan.
func NewTrainingPlan(name, goal, focus string, weeks int) *TrainingPlan {
	return &TrainingPlan{
		ID:            uuid.New(),
		Name:          name,
		Goal:          goal,
		Focus:         focus,
		DurationWeeks: weeks,
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
	}
}

// SessionCount returns the number of sessions across all weeks.
func (p *TrainingPlan) SessionCount() int {
	n := 0
	for _, w := range p.Weeks {
		n += len(w.Sessions)
	}
	return n
}

// Validate checks the week count and numbering.
func (p *TrainingPlan) Validate() error {
	if p.DurationWeeks < 1 {
		return fmt.Errorf("plan must span at least one week, got %d", p.DurationWeeks)
	}
	if len(p.Weeks) != p.DurationWeeks {
		return fmt.Errorf("plan has %d weeks, want %d", len(p.Weeks), p.DurationWeeks)
	}
	for i, w := range p.Weeks {
		if w.Week != i+1 {
			return fmt.Errorf("week %d is numbered %d", i+1, w.Week)
		}
	}
	return nil
}
