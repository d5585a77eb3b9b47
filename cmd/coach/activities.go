// ABOUTME: CLI commands for activities: list, show, summary, import, and mock.
// ABOUTME: Imports accept Garmin FIT files or JSON activity records.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/coach/internal/fitfile"
	"github.com/harperreed/coach/internal/models"
	"github.com/harperreed/coach/internal/training"
	"github.com/spf13/cobra"
)

var (
	activitiesSport string
	activitiesLimit int
	mockCount       int
	mockSeed        int64
)

var activitiesCmd = &cobra.Command{
	Use:     "activities",
	Aliases: []string{"activity", "a"},
	Short:   "Browse and import activities",
	Long: `Browse and import completed activities.

Activities arrive from Garmin (coach sync), from FIT or JSON files
(coach activities import), or from the sample generator (coach activities mock).
Records with the same external ID are updated, never duplicated.

COMMANDS:

  list      Recent activities with a summary
  show      One activity in detail
  summary   Totals and averages across all activities
  import    Import .fit or .json files
  mock      Seed deterministic sample activities`,
}

var activitiesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recent activities",
	Long: `List recent activities, newest first.

Each line shows: ID  DATE  SPORT  NAME  DURATION  DISTANCE  POWER  TSS

EXAMPLES:

  coach activities list
  coach activities list --sport cycling -n 50`,
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}
		list, summary, err := svc.ListActivities(cmd.Context(), u.ID.String(), activitiesSport, activitiesLimit)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No activities found.")
			return nil
		}

		for _, a := range list {
			tss := "-"
			if a.TSS != nil {
				tss = fmt.Sprintf("%.0f TSS", *a.TSS)
			}
			fmt.Printf("%s %s %s %s %7s %8.1fkm %6s %s\n",
				faint.Sprint(shortID(a.ID)),
				faint.Sprint(a.StartTime.Format("2006-01-02")),
				padRight(a.SportType, 9),
				padRight(truncate(a.Name, 28), 28),
				formatDuration(a.DurationSeconds),
				a.DistanceKm(),
				optionalWatts(a.AveragePower),
				tss)
		}
		fmt.Println()
		printSummary(summary)
		return nil
	},
}

var activitiesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := repo.GetActivity(args[0])
		if err != nil {
			return fmt.Errorf("activity not found: %w", err)
		}
		printActivity(a)
		return nil
	},
}

var activitiesSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Totals and averages across all activities",
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}
		summary, err := svc.Summary(cmd.Context(), u.ID.String())
		if err != nil {
			return err
		}
		printSummary(summary)
		return nil
	},
}

var activitiesImportCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import activities from FIT or JSON files",
	Long: `Import activities from files.

FORMATS:

  .fit    Garmin FIT activity file (the session summary is imported)
  .json   One activity object or an array of them, using Garmin field names
          (activityId, activityName, sportType, startTime, duration, distance,
          averagePower, tss, ...)

EXAMPLES:

  coach activities import ~/Downloads/morning-ride.fit
  coach activities import export.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}

		var raws []training.RawActivity
		for _, path := range args {
			recs, err := readActivityFile(path)
			if err != nil {
				return err
			}
			raws = append(raws, recs...)
		}

		saved, warnings, err := svc.ImportRaw(cmd.Context(), u.ID.String(), raws)
		if err != nil {
			return fmt.Errorf("import failed after %d activities: %w", saved, err)
		}
		color.Green("✓ Imported %d activities", saved)
		if warnings > 0 {
			color.Yellow("⚠ %d records were missing fields and got defaults", warnings)
		}
		return nil
	},
}

var activitiesMockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Seed sample activities",
	Long: `Seed deterministic sample activities spread over the last month.

The same --seed always produces the same records, so running it twice updates
rather than duplicates.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}
		n, err := svc.SeedMockActivities(cmd.Context(), u.ID.String(), mockSeed, mockCount)
		if err != nil {
			return err
		}
		color.Green("✓ Seeded %d sample activities", n)
		return nil
	},
}

func readActivityFile(path string) ([]training.RawActivity, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".fit":
		raw, err := fitfile.DecodeFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return []training.RawActivity{raw}, nil
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		var many []training.RawActivity
		if err := json.Unmarshal(data, &many); err == nil {
			return many, nil
		}
		var one training.RawActivity
		if err := json.Unmarshal(data, &one); err != nil {
			return nil, fmt.Errorf("%s: not an activity or list of activities: %w", path, err)
		}
		return []training.RawActivity{one}, nil
	}
	return nil, fmt.Errorf("%s: unsupported file type (use .fit or .json)", path)
}

func printSummary(s training.ActivitySummary) {
	fmt.Printf("Activities: %d (%d cycling)\n", s.TotalActivities, s.CyclingActivities)
	fmt.Printf("Duration:   %s\n", formatDuration(s.TotalDurationSeconds))
	fmt.Printf("Distance:   %.1f km\n", s.TotalDistanceKm)
	fmt.Printf("Calories:   %d\n", s.TotalCalories)
	if s.AveragePower != nil {
		fmt.Printf("Avg power:  %dW (cycling)\n", *s.AveragePower)
	}
	if s.AverageHeartRate != nil {
		fmt.Printf("Avg HR:     %d bpm\n", *s.AverageHeartRate)
	}
	fmt.Printf("TSS:        %.0f total, %.0f last 7 days\n", s.TotalTSS, s.WeeklyLoad)
}

func printActivity(a *models.Activity) {
	fmt.Printf("%s %s\n", faint.Sprint(shortID(a.ID)), a.Name)
	fmt.Printf("  Sport:     %s\n", a.SportType)
	fmt.Printf("  Start:     %s\n", a.StartTime.Format("2006-01-02 15:04"))
	fmt.Printf("  Duration:  %s\n", formatDuration(a.DurationSeconds))
	fmt.Printf("  Distance:  %.2f km\n", a.DistanceKm())
	fmt.Printf("  Calories:  %d\n", a.Calories)
	fmt.Printf("  Power:     %s avg, %s normalized\n", optionalWatts(a.AveragePower), optionalWatts(a.NormalizedPower))
	if a.AverageHeartRate != nil {
		fmt.Printf("  HR:        %.0f avg", *a.AverageHeartRate)
		if a.MaxHeartRate != nil {
			fmt.Printf(", %.0f max", *a.MaxHeartRate)
		}
		fmt.Println()
	}
	if a.AverageCadence != nil {
		fmt.Printf("  Cadence:   %.0f rpm\n", *a.AverageCadence)
	}
	if a.TSS != nil {
		fmt.Printf("  TSS:       %.0f", *a.TSS)
		if a.IntensityFactor != nil {
			fmt.Printf(" (IF %.2f)", *a.IntensityFactor)
		}
		fmt.Println()
	}
	if a.ExternalID != "" {
		fmt.Printf("  Source ID: %s\n", faint.Sprint(a.ExternalID))
	}
}

func init() {
	activitiesListCmd.Flags().StringVarP(&activitiesSport, "sport", "s", "", "filter by sport (cycling, running, swimming)")
	activitiesListCmd.Flags().IntVarP(&activitiesLimit, "limit", "n", 20, "max number of results")
	activitiesMockCmd.Flags().IntVar(&mockCount, "count", 30, "number of activities to generate")
	activitiesMockCmd.Flags().Int64Var(&mockSeed, "seed", 1, "random seed")

	activitiesCmd.AddCommand(activitiesListCmd)
	activitiesCmd.AddCommand(activitiesShowCmd)
	activitiesCmd.AddCommand(activitiesSummaryCmd)
	activitiesCmd.AddCommand(activitiesImportCmd)
	activitiesCmd.AddCommand(activitiesMockCmd)
	rootCmd.AddCommand(activitiesCmd)
}
