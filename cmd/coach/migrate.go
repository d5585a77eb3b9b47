// ABOUTME: CLI command for copying data between storage backends.
// ABOUTME: Moves everything from the configured backend into an empty destination.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/harperreed/coach/internal/config"
	"github.com/harperreed/coach/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateTo      string
	migrateDSN     string
	migrateDestDir string
	migrateDryRun  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy all data to another storage backend",
	Long: `Copy users, activities, workouts, plans, and sync runs from the current
backend to another one.

The destination must be empty. Records are created, not merged.

EXAMPLES:

  coach migrate --to postgres --dsn postgres://localhost/coach
  coach --backend charm migrate --to sqlite --dest-dir ~/coach-backup
  coach migrate --to charm --dry-run

AFTER MIGRATION:

  Point coach at the new backend with --backend or "backend" in
  ~/.config/coach/config.json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateTo == "" {
			return fmt.Errorf("--to is required (sqlite, postgres, or charm)")
		}
		dest := &config.Config{
			Backend:     migrateTo,
			DataDir:     migrateDestDir,
			PostgresDSN: migrateDSN,
		}
		if dest.DataDir == "" {
			dest.DataDir = cfg.GetDataDir()
		}
		if dest.PostgresDSN == "" {
			dest.PostgresDSN = cfg.PostgresDSN
		}
		if sameStorage(cfg, dest) {
			return fmt.Errorf("source and destination are the same %s store", dest.GetBackend())
		}

		if dest.GetBackend() == "sqlite" {
			dbPath := filepath.Join(dest.GetDataDir(), "coach.db")
			if _, err := os.Stat(dbPath); err == nil {
				return fmt.Errorf("destination %s already exists", dbPath)
			}
			if nonEmpty, err := storage.IsDirNonEmpty(dest.GetDataDir()); err == nil && nonEmpty {
				color.Yellow("⚠ %s is not empty; coach.db will be created alongside existing files", dest.GetDataDir())
			}
		}

		data, err := repo.GetAllData()
		if err != nil {
			return fmt.Errorf("read source: %w", err)
		}
		fmt.Printf("Source (%s): %d users, %d activities, %d workouts, %d plans, %d sync runs\n",
			cfg.GetBackend(), len(data.Users), len(data.Activities), len(data.Workouts), len(data.Plans), len(data.SyncRuns))

		if migrateDryRun {
			color.Yellow("Dry run: nothing written to %s", dest.GetBackend())
			return nil
		}

		dst, err := dest.OpenStorage()
		if err != nil {
			return fmt.Errorf("open destination: %w", err)
		}
		defer func() { _ = dst.Close() }()

		summary, err := storage.MigrateData(repo, dst)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		color.Green("✓ Migrated to %s", dest.GetBackend())
		fmt.Printf("  %d users, %d activities, %d workouts, %d plans, %d sync runs\n",
			summary.Users, summary.Activities, summary.Workouts, summary.Plans, summary.SyncRuns)
		return nil
	},
}

func sameStorage(a, b *config.Config) bool {
	if a.GetBackend() != b.GetBackend() {
		return false
	}
	switch a.GetBackend() {
	case "sqlite":
		return a.GetDataDir() == b.GetDataDir()
	case "postgres":
		return a.PostgresDSN == b.PostgresDSN
	}
	return true
}

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination backend: sqlite, postgres, or charm")
	migrateCmd.Flags().StringVar(&migrateDSN, "dsn", "", "destination postgres DSN")
	migrateCmd.Flags().StringVar(&migrateDestDir, "dest-dir", "", "destination directory for sqlite")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	rootCmd.AddCommand(migrateCmd)
}
