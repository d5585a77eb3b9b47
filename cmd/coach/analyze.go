// ABOUTME: CLI commands for fitness analysis and daily training load.
// ABOUTME: Prints estimated FTP, power zones, recommendations, and a load table.
package main

import (
	"fmt"
	"strings"

	"github.com/harperreed/coach/internal/models"
	"github.com/spf13/cobra"
)

var (
	loadDays    int
	loadRolling int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Estimate FTP, power zones, and fitness level",
	Long: `Analyze recent rides to estimate FTP and power zones.

Uses up to the 14 most recent cycling activities.
At least one ride with power is required.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}
		a, err := svc.Analyze(cmd.Context(), u.ID.String())
		if err != nil {
			return hinted(err)
		}
		printAnalysis(a)
		return nil
	},
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Daily training load with a rolling total",
	Long: `Show daily training load for the last --days days.

Load is TSS when the activity reports it, otherwise one point per minute
of duration. The rolling column sums the last --rolling days.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}
		days, err := svc.Load(cmd.Context(), u.ID.String(), loadDays, loadRolling)
		if err != nil {
			return hinted(err)
		}

		fmt.Printf("%-10s %6s %8s %8s %6s %s\n", "DATE", "LOAD", "ROLLING", "KM", "HOURS", "")
		for _, d := range days {
			bar := strings.Repeat("█", int(d.Load/10))
			fmt.Printf("%-10s %6.0f %8.1f %8.1f %6.1f %s\n", d.Date, d.Load, d.RollingLoad, d.DistanceKm, d.Hours, bar)
		}
		return nil
	},
}

func printAnalysis(a *models.FitnessAnalysis) {
	fmt.Printf("Estimated FTP:  %dW (%s)\n", a.EstimatedFTP, a.FitnessLevel)
	fmt.Printf("Rides analyzed: %d, %s total\n", a.ActivityCount, formatDuration(a.TotalDurationSeconds))
	fmt.Printf("Average power:  %.0fW\n", a.AveragePower)
	fmt.Printf("Average TSS:    %.0f\n", a.AverageTSS)
	fmt.Println()
	fmt.Println("Power zones (upper bounds):")
	fmt.Printf("  Recovery   %4dW\n", a.Zones.Recovery)
	fmt.Printf("  Endurance  %4dW\n", a.Zones.Endurance)
	fmt.Printf("  Tempo      %4dW\n", a.Zones.Tempo)
	fmt.Printf("  Threshold  %4dW\n", a.Zones.Threshold)
	fmt.Printf("  VO2max     %4dW\n", a.Zones.VO2Max)
	if len(a.Recommendations) > 0 {
		fmt.Println()
		fmt.Println("Recommendations:")
		for _, r := range a.Recommendations {
			fmt.Printf("  • %s\n", r)
		}
	}
}

func init() {
	loadCmd.Flags().IntVarP(&loadDays, "days", "d", 30, "number of days to show (at most 366)")
	loadCmd.Flags().IntVar(&loadRolling, "rolling", 7, "rolling window in days")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(loadCmd)
}
