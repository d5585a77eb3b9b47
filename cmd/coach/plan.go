// ABOUTME: CLI commands for multi-week training plans.
// ABOUTME: Supports generate, list, show, active, and delete.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/coach/internal/models"
	"github.com/harperreed/coach/internal/storage"
	"github.com/spf13/cobra"
)

var (
	planWeeks  int
	planFocus  string
	planDryRun bool
	planLimit  int
	planFull   bool
)

var planCmd = &cobra.Command{
	Use:     "plan",
	Aliases: []string{"p"},
	Short:   "Generate and review training plans",
	Long: `Training plans repeat the same three sessions each week, with zones
taken from your estimated FTP. The focus (or the goal when no focus is
given) picks the sessions: ftp/threshold, vo2/max, or endurance.

Saving a plan makes it the active plan; earlier plans are deactivated.

EXAMPLES:

  coach plan generate ftp --weeks 8
  coach plan generate "get faster" --focus vo2max
  coach plan active
  coach plan show abc123 --full`,
}

var planGenerateCmd = &cobra.Command{
	Use:   "generate <goal>",
	Short: "Generate a plan from your recent rides",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}
		plan, err := svc.GeneratePlan(cmd.Context(), u.ID.String(), args[0], planFocus, planWeeks, !planDryRun)
		if err != nil {
			return hinted(err)
		}
		if !planDryRun {
			color.Green("✓ Saved active plan")
		}
		printPlan(plan, false)
		return nil
	},
}

var planListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}
		plans, err := repo.ListPlans(u.ID.String(), planLimit)
		if err != nil {
			return fmt.Errorf("failed to list plans: %w", err)
		}
		if len(plans) == 0 {
			fmt.Println("No plans found.")
			return nil
		}
		for _, p := range plans {
			active := ""
			if p.IsActive {
				active = color.GreenString("active")
			}
			fmt.Printf("%s %s %s %2dw %4dW %s\n",
				faint.Sprint(shortID(p.ID)),
				faint.Sprint(p.CreatedAt.Format("2006-01-02")),
				padRight(truncate(p.Name, 32), 32),
				p.DurationWeeks,
				p.EstimatedFTP,
				active)
		}
		return nil
	},
}

var planShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a plan week by week",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := repo.GetPlan(args[0])
		if err != nil {
			return fmt.Errorf("failed to get plan: %w", err)
		}
		printPlan(p, planFull)
		return nil
	},
}

var planActiveCmd = &cobra.Command{
	Use:   "active",
	Short: "Show the active plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}
		p, err := svc.ActivePlan(cmd.Context(), u.ID.String())
		if errors.Is(err, storage.ErrNotFound) {
			fmt.Println("No active training plan found.")
			return nil
		}
		if err != nil {
			return hinted(err)
		}
		printPlan(p, planFull)
		return nil
	},
}

var planDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := repo.GetPlan(args[0])
		if err != nil {
			return fmt.Errorf("failed to get plan: %w", err)
		}
		if err := repo.DeletePlan(p.ID.String()); err != nil {
			return fmt.Errorf("failed to delete plan: %w", err)
		}
		color.Green("✓ Deleted %s", p.Name)
		return nil
	},
}

func printPlan(p *models.TrainingPlan, full bool) {
	fmt.Printf("%s %s\n", faint.Sprint(shortID(p.ID)), p.Name)
	fmt.Printf("  Goal: %s", p.Goal)
	if p.Focus != "" {
		fmt.Printf(" (focus: %s)", p.Focus)
	}
	fmt.Println()
	fmt.Printf("  FTP:  %dW, threshold zone to %dW\n", p.EstimatedFTP, p.TargetZones.Threshold)
	for _, wk := range p.Weeks {
		total := 0
		for _, s := range wk.Sessions {
			total += s.EstimatedDurationSeconds
		}
		fmt.Printf("\nWeek %d: %d sessions, %s\n", wk.Week, len(wk.Sessions), formatDuration(total))
		for i := range wk.Sessions {
			s := &wk.Sessions[i]
			if full {
				printWorkout(s)
				continue
			}
			fmt.Printf("  • %s (%s)\n", s.Name, formatDuration(s.EstimatedDurationSeconds))
		}
	}
}

func init() {
	planGenerateCmd.Flags().IntVarP(&planWeeks, "weeks", "w", 4, "plan length in weeks (1-52)")
	planGenerateCmd.Flags().StringVar(&planFocus, "focus", "", "focus that selects the weekly sessions, e.g. vo2max (defaults to the goal)")
	planGenerateCmd.Flags().BoolVar(&planDryRun, "dry-run", false, "print without saving")
	planListCmd.Flags().IntVarP(&planLimit, "limit", "n", 20, "max number of results")
	planShowCmd.Flags().BoolVar(&planFull, "full", false, "show every segment")
	planActiveCmd.Flags().BoolVar(&planFull, "full", false, "show every segment")

	planCmd.AddCommand(planGenerateCmd)
	planCmd.AddCommand(planListCmd)
	planCmd.AddCommand(planShowCmd)
	planCmd.AddCommand(planActiveCmd)
	planCmd.AddCommand(planDeleteCmd)
	rootCmd.AddCommand(planCmd)
}
