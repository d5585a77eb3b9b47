// ABOUTME: CLI commands for the Charm Cloud storage backend.
// ABOUTME: Supports status, sync, reset, repair, and wipe of the encrypted KV store.
package main

import (
	"fmt"

	"github.com/charmbracelet/charm/kv"
	"github.com/fatih/color"
	"github.com/harperreed/coach/internal/charm"
	"github.com/spf13/cobra"
)

const charmDBName = "coach"

var cloudCmd = &cobra.Command{
	Use:   "cloud",
	Short: "Manage Charm Cloud sync (charm backend)",
	Long: `Manage the Charm Cloud backend.

With --backend charm (or "backend": "charm" in config) coach stores data in an
encrypted KV store synced through Charm Cloud. Data is encrypted with your SSH
key before upload.

COMMANDS:

  status   Show Charm account and local record counts
  sync     Push and pull changes now
  reset    Replace local data with the cloud copy (destructive)
  repair   Repair local database corruption
  wipe     Delete all cloud backups and local data (destructive)`,
}

func charmRepo() (*charm.Client, error) {
	c, ok := repo.(*charm.Client)
	if !ok {
		return nil, fmt.Errorf("cloud commands need the charm backend (use --backend charm)")
	}
	return c, nil
}

var cloudStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status and account info",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := charmRepo()
		if err != nil {
			return err
		}
		id, err := c.ID()
		if err != nil {
			color.Yellow("Not linked to Charm")
			return nil
		}
		fmt.Println("Charm ID:", id)
		fmt.Println("Server:", charm.DefaultHost)
		if c.IsReadOnly() {
			color.Yellow("⚠ Read-only: another coach process holds the database")
		}
		fmt.Println()

		data, err := c.GetAllData()
		if err != nil {
			return err
		}
		color.Green("✓ Connected to Charm")
		fmt.Printf("  Users: %d\n", len(data.Users))
		fmt.Printf("  Activities: %d\n", len(data.Activities))
		fmt.Printf("  Workouts: %d\n", len(data.Workouts))
		fmt.Printf("  Plans: %d\n", len(data.Plans))
		return nil
	},
}

var cloudSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync with Charm Cloud now",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := charmRepo()
		if err != nil {
			return err
		}
		if err := c.Sync(); err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		color.Green("✓ Synced with Charm Cloud")
		return nil
	},
}

var cloudResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset local data and restore from cloud",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := charmRepo()
		if err != nil {
			return err
		}
		fmt.Println("This will DELETE all local coach data and restore from cloud.")
		fmt.Print("Continue? [y/N]: ")
		var confirm string
		_, _ = fmt.Scanln(&confirm)
		if confirm != "y" && confirm != "Y" {
			fmt.Println("Canceled.")
			return nil
		}
		if err := c.Reset(); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		color.Green("✓ Local data reset and restored from cloud")
		return nil
	},
}

var cloudRepairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Repair database corruption",
	Long: `Repair the local Charm database: checkpoint the WAL, remove the SHM file,
check integrity, and vacuum. Run with --force to attempt recovery even if the
integrity check fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		fmt.Println("Repairing coach database...")
		result, err := kv.Repair(charmDBName, force)
		if result.WalCheckpointed {
			color.Green("  ✓ WAL checkpointed")
		}
		if result.ShmRemoved {
			color.Green("  ✓ SHM file removed")
		}
		if result.IntegrityOK {
			color.Green("  ✓ Integrity check passed")
		} else {
			color.Red("  ✗ Integrity check failed")
		}
		if result.Vacuumed {
			color.Green("  ✓ Database vacuumed")
		}
		if err != nil {
			if !force {
				color.Yellow("\nRun with --force to attempt recovery.")
			}
			return fmt.Errorf("repair failed: %w", err)
		}
		color.Green("\n✓ Repair complete")
		return nil
	},
}

var cloudWipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete all cloud and local data",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("This will PERMANENTLY DELETE all cloud backups and local coach data.")
		fmt.Print("Type 'wipe' to confirm: ")
		var confirm string
		_, _ = fmt.Scanln(&confirm)
		if confirm != "wipe" {
			fmt.Println("Canceled.")
			return nil
		}
		result, err := kv.Wipe(charmDBName)
		if err != nil {
			return fmt.Errorf("wipe failed: %w", err)
		}
		color.Green("✓ Data wiped successfully")
		fmt.Printf("  Cloud backups deleted: %d\n", result.CloudBackupsDeleted)
		fmt.Printf("  Local files deleted: %d\n", result.LocalFilesDeleted)
		return nil
	},
}

func init() {
	cloudRepairCmd.Flags().Bool("force", false, "attempt recovery even if integrity checks fail")

	cloudCmd.AddCommand(cloudStatusCmd)
	cloudCmd.AddCommand(cloudSyncCmd)
	cloudCmd.AddCommand(cloudResetCmd)
	cloudCmd.AddCommand(cloudRepairCmd)
	cloudCmd.AddCommand(cloudWipeCmd)
	rootCmd.AddCommand(cloudCmd)
}
