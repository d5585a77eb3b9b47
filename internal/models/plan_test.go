// ABOUTME: Tests for TrainingPlan and TrainingZones models.
// ABOUTME: Covers zone monotonicity and week numbering validation.
package models

import "testing"

func TestTrainingZonesMonotonic(t *testing.T) {
	tests := []struct {
		name  string
		zones TrainingZones
		want  bool
	}{
		{"increasing", TrainingZones{110, 150, 180, 210, 240}, true},
		{"equal neighbours", TrainingZones{110, 110, 180, 210, 240}, false},
		{"all zero", TrainingZones{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.zones.Monotonic(); got != tt.want {
				t.Errorf("Monotonic() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrainingPlanValidate(t *testing.T) {
	p := NewTrainingPlan("Base Training Plan - 2 weeks", "endurance", "Base", 2)
	if !p.IsActive {
		t.Error("new plan should be active")
	}

	if err := p.Validate(); err == nil {
		t.Error("expected error for plan without weeks")
	}

	p.Weeks = []WeekPlan{{Week: 1}, {Week: 2}}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	p.Weeks[1].Week = 3
	if err := p.Validate(); err == nil {
		t.Error("expected error for non-contiguous week numbers")
	}
}

func TestTrainingPlanSessionCount(t *testing.T) {
	w := Workout{Name: "x"}
	p := NewTrainingPlan("p", "g", "f", 2)
	p.Weeks = []WeekPlan{
		{Week: 1, Sessions: []Workout{w, w, w}},
		{Week: 2, Sessions: []Workout{w, w, w}},
	}
	if got := p.SessionCount(); got != 6 {
		t.Errorf("SessionCount() = %d, want 6", got)
	}
}

func TestTrainingPlanValidateZeroWeeks(t *testing.T) {
	p := NewTrainingPlan("p", "g", "f", 0)
	if err := p.Validate(); err == nil {
		t.Error("expected error for zero-week plan")
	}
}
