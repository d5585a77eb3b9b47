// ABOUTME: Tests for the Charm KV repository using an in-memory badger store.
// ABOUTME: Covers prefix resolution, upserts, plan activation, and read-only guards.
package charm

import (
	"errors"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/coach/internal/models"
	"github.com/harperreed/coach/internal/storage"
)

// memStore satisfies Store with an in-memory badger database.
type memStore struct {
	db       *badger.DB
	readOnly bool
	syncs    int
}

func (m *memStore) Set(key, value []byte) error {
	return m.db.Update(func(txn *badger.Txn) error { return txn.Set(key, value) })
}

func (m *memStore) Get(key []byte) ([]byte, error) {
	var out []byte
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	return out, err
}

func (m *memStore) Delete(key []byte) error {
	return m.db.Update(func(txn *badger.Txn) error { return txn.Delete(key) })
}

func (m *memStore) Keys() ([][]byte, error) {
	var keys [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	return keys, err
}

func (m *memStore) Sync() error      { m.syncs++; return nil }
func (m *memStore) Reset() error     { return m.db.DropAll() }
func (m *memStore) IsReadOnly() bool { return m.readOnly }
func (m *memStore) Close() error     { return m.db.Close() }

func setupTestClient(t *testing.T) (*Client, *memStore) {
	t.Helper()

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	store := &memStore{db: db}
	c := NewClient(store, true)
	t.Cleanup(func() { _ = c.Close() })
	return c, store
}

func TestPrefixes(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		expected string
	}{
		{"User", UserPrefix, "user:"},
		{"Activity", ActivityPrefix, "activity:"},
		{"Workout", WorkoutPrefix, "workout:"},
		{"Plan", PlanPrefix, "plan:"},
		{"SyncRun", SyncRunPrefix, "sync_run:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.prefix != tt.expected {
				t.Errorf("Expected %s = %q, got %q", tt.name, tt.expected, tt.prefix)
			}
		})
	}
}

func TestUserRoundTrip(t *testing.T) {
	c, store := setupTestClient(t)

	u := models.NewUser("garmin-7").WithTokens("a", "r", time.Now().Add(time.Hour))
	if err := c.CreateUser(u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if store.syncs == 0 {
		t.Error("expected auto-sync after write")
	}

	got, err := c.GetUser(u.ID.String()[:8])
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.GarminUserID != "garmin-7" {
		t.Errorf("GarminUserID = %q", got.GarminUserID)
	}

	if err := c.UpdateUserLastSync(u.ID.String(), time.Now()); err != nil {
		t.Fatalf("UpdateUserLastSync failed: %v", err)
	}
	byGarmin, err := c.GetUserByGarminID("garmin-7")
	if err != nil || byGarmin.LastSyncAt == nil {
		t.Errorf("GetUserByGarminID = %+v, %v", byGarmin, err)
	}

	dup := models.NewUser("garmin-7")
	if err := c.CreateUser(dup); err == nil {
		t.Error("expected error linking the same garmin account twice")
	}
}

func TestActivityUpsertAndFilter(t *testing.T) {
	c, _ := setupTestClient(t)

	base := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	for i, ext := range []string{"a", "b", "c"} {
		a := models.NewActivity("u1", models.SportCycling).WithStartTime(base.AddDate(0, 0, -i)).WithDuration(3600)
		a.ExternalID = ext
		if ext == "b" {
			a.SportType = "running"
		}
		if err := c.SaveActivity(a); err != nil {
			t.Fatalf("SaveActivity failed: %v", err)
		}
	}

	dup := models.NewActivity("u1", models.SportCycling).WithStartTime(base).WithDuration(5400)
	dup.ExternalID = "a"
	if err := c.SaveActivity(dup); err != nil {
		t.Fatalf("SaveActivity upsert failed: %v", err)
	}

	all, err := c.ListActivities(storage.ActivityFilter{UserID: "u1"})
	if err != nil {
		t.Fatalf("ListActivities failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 activities after upsert, got %d", len(all))
	}
	if all[0].ExternalID != "a" || all[0].DurationSeconds != 5400 || all[0].ID != dup.ID {
		t.Errorf("upsert not applied: %+v", all[0])
	}

	cycling, _ := c.ListActivities(storage.ActivityFilter{SportType: "CYCLING", Limit: 1})
	if len(cycling) != 1 || cycling[0].SportType != models.SportCycling {
		t.Errorf("sport filter with limit failed: %+v", cycling)
	}

	since := base.AddDate(0, 0, -1)
	recent, _ := c.ListActivities(storage.ActivityFilter{Since: &since})
	if len(recent) != 2 {
		t.Errorf("expected 2 recent activities, got %d", len(recent))
	}

	if err := c.DeleteActivity(all[2].ID.String()); err != nil {
		t.Fatalf("DeleteActivity failed: %v", err)
	}
	if _, err := c.GetActivity(all[2].ID.String()); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPlansAndWorkouts(t *testing.T) {
	c, _ := setupTestClient(t)

	w := models.NewWorkout("Tempo - 60min", models.SportCycling, []models.Segment{
		models.PowerSegment(models.DurationWarmup, 600, 0.5),
		models.PowerSegment(models.DurationInterval, 2400, 0.85),
		models.PowerSegment(models.DurationCooldown, 600, 0.4),
	}).WithUser("u1")
	if err := c.CreateWorkout(w); err != nil {
		t.Fatalf("CreateWorkout failed: %v", err)
	}
	if err := c.MarkWorkoutUploaded(w.ID.String(), "gw-1", nil); err != nil {
		t.Fatalf("MarkWorkoutUploaded failed: %v", err)
	}
	got, _ := c.GetWorkout(w.ID.String())
	if !got.IsUploaded || *got.GarminWorkoutID != "gw-1" {
		t.Errorf("upload not stored: %+v", got)
	}

	first := models.NewTrainingPlan("Old", "ftp", "Old", 1)
	first.UserID = "u1"
	first.CreatedAt = time.Now().Add(-time.Hour)
	if err := c.CreatePlan(first); err != nil {
		t.Fatalf("CreatePlan failed: %v", err)
	}
	if err := c.DeactivatePlans("u1"); err != nil {
		t.Fatalf("DeactivatePlans failed: %v", err)
	}
	second := models.NewTrainingPlan("New", "ftp", "New", 1)
	second.UserID = "u1"
	if err := c.CreatePlan(second); err != nil {
		t.Fatalf("CreatePlan failed: %v", err)
	}

	active, err := c.GetActivePlan("u1")
	if err != nil || active.ID != second.ID {
		t.Errorf("GetActivePlan = %+v, %v", active, err)
	}
	if _, err := c.GetActivePlan("u2"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	data, err := c.GetAllData()
	if err != nil {
		t.Fatalf("GetAllData failed: %v", err)
	}
	if len(data.Workouts) != 1 || len(data.Plans) != 2 {
		t.Errorf("export counts: %d workouts, %d plans", len(data.Workouts), len(data.Plans))
	}
}

func TestAmbiguousPrefix(t *testing.T) {
	c, _ := setupTestClient(t)

	for i := 0; i < 3; i++ {
		r := models.NewSyncRun("u1", time.Now())
		if err := c.RecordSyncRun(r); err != nil {
			t.Fatalf("RecordSyncRun failed: %v", err)
		}
	}
	plan := models.NewTrainingPlan("x", "y", "z", 1)
	if err := c.CreatePlan(plan); err != nil {
		t.Fatal(err)
	}
	if err := c.CreatePlan(models.NewTrainingPlan("x2", "y", "z", 1)); err != nil {
		t.Fatal(err)
	}

	if _, err := c.GetPlan(""); !errors.Is(err, storage.ErrAmbiguousPrefix) {
		t.Errorf("expected ErrAmbiguousPrefix, got %v", err)
	}

	runs, _ := c.ListSyncRuns("u1", 2)
	if len(runs) != 2 {
		t.Errorf("expected 2 runs with limit, got %d", len(runs))
	}
}

func TestReadOnlyRejectsWrites(t *testing.T) {
	c, store := setupTestClient(t)
	store.readOnly = true

	err := c.CreateWorkout(models.NewWorkout("x", models.SportCycling, nil))
	if !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
	if err := c.Sync(); err != nil {
		t.Errorf("Sync in read-only mode should be a no-op, got %v", err)
	}
}

func TestReplaceActivePlan(t *testing.T) {
	c, store := setupTestClient(t)

	first := models.NewTrainingPlan("Old", "ftp", "Old", 1)
	first.UserID = "u1"
	first.CreatedAt = time.Now().Add(-time.Hour)
	if err := c.ReplaceActivePlan(first); err != nil {
		t.Fatalf("ReplaceActivePlan failed: %v", err)
	}
	second := models.NewTrainingPlan("New", "vo2max", "New", 1)
	second.UserID = "u1"
	if err := c.ReplaceActivePlan(second); err != nil {
		t.Fatalf("ReplaceActivePlan failed: %v", err)
	}

	old, _ := c.GetPlan(first.ID.String())
	if old.IsActive {
		t.Error("first plan should be inactive")
	}

	store.readOnly = true
	third := models.NewTrainingPlan("Blocked", "ftp", "Blocked", 1)
	third.UserID = "u1"
	if err := c.ReplaceActivePlan(third); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
	active, err := c.GetActivePlan("u1")
	if err != nil || active.ID != second.ID {
		t.Errorf("active plan after failed replace = %+v, %v", active, err)
	}
}
