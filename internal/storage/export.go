// ABOUTME: Export and import functionality for coach data.
// ABOUTME: Supports JSON, YAML, and Markdown exports over any Repository.
package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/coach/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData represents the full export format for coach data.
type ExportData struct {
	Version    string                 `json:"version" yaml:"version"`
	ExportedAt time.Time              `json:"exported_at" yaml:"exported_at"`
	Tool       string                 `json:"tool" yaml:"tool"`
	Users      []*models.User         `json:"users" yaml:"users"`
	Activities []*models.Activity     `json:"activities" yaml:"activities"`
	Workouts   []*models.Workout      `json:"workouts" yaml:"workouts"`
	Plans      []*models.TrainingPlan `json:"plans" yaml:"plans"`
	SyncRuns   []*models.SyncRun      `json:"sync_runs" yaml:"sync_runs"`
}

// CollectAllData reads every entity from repo into an ExportData.
func CollectAllData(repo Repository) (*ExportData, error) {
	users, err := repo.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	activities, err := repo.ListActivities(ActivityFilter{})
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	workouts, err := repo.ListWorkouts("", 0)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	plans, err := repo.ListPlans("", 0)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	runs, err := repo.ListSyncRuns("", 0)
	if err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}

	return &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().UTC(),
		Tool:       "coach",
		Users:      users,
		Activities: activities,
		Workouts:   workouts,
		Plans:      plans,
		SyncRuns:   runs,
	}, nil
}

// RestoreData writes every entity of data into repo.
func RestoreData(repo Repository, data *ExportData) error {
	for _, u := range data.Users {
		if err := repo.CreateUser(u); err != nil {
			return fmt.Errorf("import user: %w", err)
		}
	}
	for _, a := range data.Activities {
		if err := repo.SaveActivity(a); err != nil {
			return fmt.Errorf("import activity: %w", err)
		}
	}
	for _, w := range data.Workouts {
		if err := repo.CreateWorkout(w); err != nil {
			return fmt.Errorf("import workout: %w", err)
		}
	}
	for _, p := range data.Plans {
		if err := repo.CreatePlan(p); err != nil {
			return fmt.Errorf("import plan: %w", err)
		}
	}
	for _, r := range data.SyncRuns {
		if err := repo.RecordSyncRun(r); err != nil {
			return fmt.Errorf("import sync run: %w", err)
		}
	}
	return nil
}

// GetAllData retrieves all data for export.
func (d *DB) GetAllData() (*ExportData, error) {
	return CollectAllData(d)
}

// ImportData imports data from an export.
func (d *DB) ImportData(data *ExportData) error {
	return RestoreData(d, data)
}

// ExportJSON exports all data as indented JSON.
func ExportJSON(repo Repository) ([]byte, error) {
	data, err := repo.GetAllData()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ImportJSON imports data from JSON bytes.
func ImportJSON(repo Repository, raw []byte) error {
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("unmarshal JSON: %w", err)
	}
	return repo.ImportData(&data)
}

type yamlActivity struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	Sport      string   `yaml:"sport"`
	StartTime  string   `yaml:"start_time"`
	Minutes    int      `yaml:"minutes"`
	DistanceKm float64  `yaml:"distance_km"`
	Power      *float64 `yaml:"avg_power,omitempty"`
	TSS        *float64 `yaml:"tss,omitempty"`
}

type yamlWorkout struct {
	ID       string           `yaml:"id"`
	Name     string           `yaml:"name"`
	Minutes  int              `yaml:"minutes"`
	Uploaded bool             `yaml:"uploaded"`
	Segments []models.Segment `yaml:"segments"`
}

type yamlPlan struct {
	ID     string               `yaml:"id"`
	Name   string               `yaml:"name"`
	Goal   string               `yaml:"goal"`
	Weeks  int                  `yaml:"weeks"`
	FTP    int                  `yaml:"ftp"`
	Zones  models.TrainingZones `yaml:"zones"`
	Active bool                 `yaml:"active"`
}

// ExportYAML exports a compact, human-readable YAML view. Tokens are omitted.
func ExportYAML(repo Repository) ([]byte, error) {
	data, err := repo.GetAllData()
	if err != nil {
		return nil, err
	}

	out := struct {
		Version    string                    `yaml:"version"`
		ExportedAt string                    `yaml:"exported_at"`
		Tool       string                    `yaml:"tool"`
		Activities map[string][]yamlActivity `yaml:"activities"`
		Workouts   []yamlWorkout             `yaml:"workouts"`
		Plans      []yamlPlan                `yaml:"plans"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Activities: make(map[string][]yamlActivity),
		Workouts:   make([]yamlWorkout, 0, len(data.Workouts)),
		Plans:      make([]yamlPlan, 0, len(data.Plans)),
	}

	for _, a := range data.Activities {
		out.Activities[a.SportType] = append(out.Activities[a.SportType], yamlActivity{
			ID:         a.ID.String()[:8],
			Name:       a.Name,
			Sport:      a.SportType,
			StartTime:  a.StartTime.Format(time.RFC3339),
			Minutes:    a.DurationSeconds / 60,
			DistanceKm: a.DistanceKm(),
			Power:      a.AveragePower,
			TSS:        a.TSS,
		})
	}
	for _, w := range data.Workouts {
		out.Workouts = append(out.Workouts, yamlWorkout{
			ID:       w.ID.String()[:8],
			Name:     w.Name,
			Minutes:  w.EstimatedDurationSeconds / 60,
			Uploaded: w.IsUploaded,
			Segments: w.Segments,
		})
	}
	for _, p := range data.Plans {
		out.Plans = append(out.Plans, yamlPlan{
			ID:     p.ID.String()[:8],
			Name:   p.Name,
			Goal:   p.Goal,
			Weeks:  p.DurationWeeks,
			FTP:    p.EstimatedFTP,
			Zones:  p.TargetZones,
			Active: p.IsActive,
		})
	}

	return yaml.Marshal(out)
}

// ExportMarkdown renders a training report. since limits the activity table.
func ExportMarkdown(repo Repository, userID string, since *time.Time) (string, error) {
	activities, err := repo.ListActivities(ActivityFilter{UserID: userID, Since: since})
	if err != nil {
		return "", err
	}
	workouts, err := repo.ListWorkouts(userID, 0)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	now := time.Now()

	sb.WriteString(fmt.Sprintf("# Training Report - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	if len(activities) > 0 {
		sb.WriteString("## Activities\n\n")
		sb.WriteString("| Date | Name | Sport | Duration | Distance | Power | TSS |\n")
		sb.WriteString("|------|------|-------|----------|----------|-------|-----|\n")
		for _, a := range activities {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d min | %.1f km | %s | %s |\n",
				a.StartTime.Format("2006-01-02 15:04"),
				a.Name, a.SportType, a.DurationSeconds/60, a.DistanceKm(),
				optional(a.AveragePower, "%.0f W"), optional(a.TSS, "%.0f")))
		}
		sb.WriteString("\n")
	}

	if len(workouts) > 0 {
		sb.WriteString("## Workouts\n\n")
		sb.WriteString("| Created | Name | Duration | Uploaded |\n")
		sb.WriteString("|---------|------|----------|----------|\n")
		for _, w := range workouts {
			uploaded := "no"
			if w.IsUploaded {
				uploaded = "yes"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %d min | %s |\n",
				w.CreatedAt.Format("2006-01-02"), w.Name, w.EstimatedDurationSeconds/60, uploaded))
		}
		sb.WriteString("\n")
	}

	if userID != "" {
		if plan, err := repo.GetActivePlan(userID); err == nil {
			sb.WriteString(fmt.Sprintf("## Active Plan: %s\n\n", plan.Name))
			sb.WriteString(fmt.Sprintf("Goal: %s, FTP %d W\n\n", plan.Goal, plan.EstimatedFTP))
			for _, week := range plan.Weeks {
				names := make([]string, len(week.Sessions))
				for i, s := range week.Sessions {
					names[i] = s.Name
				}
				sb.WriteString(fmt.Sprintf("- Week %d: %s\n", week.Week, strings.Join(names, ", ")))
			}
		}
	}

	return sb.String(), nil
}

func optional(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}
