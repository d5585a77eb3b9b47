// ABOUTME: CLI commands for riders: add, list, and use.
// ABOUTME: Local users hold imported or sample rides without a Garmin link.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/coach/internal/config"
	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage riders",
	Long: `Manage riders.

Most commands act on one rider: --user, then COACH_USER or default_user in
config, then the only stored rider. "coach auth login --code" creates a linked
rider; "coach user add" creates a local one for FIT imports and sample data.`,
}

var userAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Create a local rider and make it the default",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		u, err := svc.CreateLocalUser(cmd.Context(), name)
		if err != nil {
			return err
		}
		if err := config.SaveDefaultUser(u.ID.String()); err != nil {
			color.Yellow("⚠ Could not save default user: %v", err)
		}
		color.Green("✓ Created rider %s", u.GarminUserID)
		fmt.Printf("  ID: %s\n", shortID(u.ID))
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List riders",
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := repo.ListUsers()
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		if len(users) == 0 {
			fmt.Println("No users yet. Run 'coach user add'.")
			return nil
		}
		for _, u := range users {
			linked := faint.Sprint("local")
			if u.AccessToken != "" || u.RefreshToken != "" {
				linked = color.GreenString("garmin")
			}
			lastSync := "-"
			if u.LastSyncAt != nil {
				lastSync = u.LastSyncAt.Local().Format("2006-01-02 15:04")
			}
			marker := " "
			if cfg.DefaultUser != "" && u.ID.String() == cfg.DefaultUser {
				marker = "*"
			}
			fmt.Printf("%s %s %s %s %s\n",
				marker,
				faint.Sprint(shortID(u.ID)),
				padRight(truncate(u.GarminUserID, 24), 24),
				padRight(linked, 6),
				faint.Sprint(lastSync))
		}
		return nil
	},
}

var userUseCmd = &cobra.Command{
	Use:   "use <id>",
	Short: "Set the default rider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := svc.User(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := config.SaveDefaultUser(u.ID.String()); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		color.Green("✓ Default rider is now %s", u.GarminUserID)
		return nil
	},
}

func init() {
	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userUseCmd)
	rootCmd.AddCommand(userCmd)
}
