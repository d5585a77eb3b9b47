// ABOUTME: Data migration between coach storage backends.
// ABOUTME: Copies users, activities, workouts, plans, and sync runs from source to destination.

package storage

import (
	"fmt"
	"os"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Users      int
	Activities int
	Workouts   int
	Plans      int
	SyncRuns   int
}

// MigrateData copies all data from src to dst storage. The destination
// should be empty; users and workouts are created, not upserted.
func MigrateData(src, dst Repository) (*MigrateSummary, error) {
	data, err := src.GetAllData()
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}

	summary := &MigrateSummary{}
	for _, u := range data.Users {
		if err := dst.CreateUser(u); err != nil {
			return nil, fmt.Errorf("create user %s: %w", u.ID, err)
		}
		summary.Users++
	}
	for _, a := range data.Activities {
		if err := dst.SaveActivity(a); err != nil {
			return nil, fmt.Errorf("save activity %s: %w", a.ID, err)
		}
		summary.Activities++
	}
	for _, w := range data.Workouts {
		if err := dst.CreateWorkout(w); err != nil {
			return nil, fmt.Errorf("create workout %s: %w", w.ID, err)
		}
		summary.Workouts++
	}
	for _, p := range data.Plans {
		if err := dst.CreatePlan(p); err != nil {
			return nil, fmt.Errorf("create plan %s: %w", p.ID, err)
		}
		summary.Plans++
	}
	for _, r := range data.SyncRuns {
		if err := dst.RecordSyncRun(r); err != nil {
			return nil, fmt.Errorf("record sync run %s: %w", r.ID, err)
		}
		summary.SyncRuns++
	}

	return summary, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
