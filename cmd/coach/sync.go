// ABOUTME: CLI command that pulls recent activities from Garmin Connect.
// ABOUTME: Syncs the current user, or every linked user with --all.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/coach/internal/models"
	"github.com/spf13/cobra"
)

var syncAll bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull the last 14 days of activities from Garmin",
	Long: `Pull the last 14 days of activities from Garmin Connect.

Expired access tokens are refreshed first. Activities already stored are
updated in place. With --all, every user holding Garmin tokens is synced,
a few at a time (sync_concurrency in config).

Requires GARMIN_CLIENT_ID and GARMIN_CLIENT_SECRET.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if syncAll {
			results, err := svc.SyncAll(cmd.Context(), cfg.GetSyncConcurrency())
			if err != nil {
				return hinted(err)
			}
			if len(results) == 0 {
				fmt.Println("No linked users to sync.")
				return nil
			}
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					color.Red("✗ %s: %s", shortUserID(r.UserID), r.Error)
					continue
				}
				printSyncRun(r.Run)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d users failed to sync", failed, len(results))
			}
			return nil
		}

		u, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}
		run, err := svc.SyncUser(cmd.Context(), u.ID.String())
		if err != nil {
			return hinted(err)
		}
		printSyncRun(run)
		return nil
	},
}

func printSyncRun(run *models.SyncRun) {
	color.Green("✓ %s: fetched %d, saved %d", shortUserID(run.UserID), run.Fetched, run.Saved)
	if run.Warnings > 0 {
		color.Yellow("  ⚠ %d activities were missing fields and got defaults", run.Warnings)
	}
}

func shortUserID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	syncCmd.Flags().BoolVar(&syncAll, "all", false, "sync every linked user")
	rootCmd.AddCommand(syncCmd)
}
