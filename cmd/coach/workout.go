// ABOUTME: CLI commands for structured workouts.
// ABOUTME: Supports generate, create, list, show, upload, batch-upload, templates, and delete.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/coach/internal/models"
	"github.com/harperreed/coach/internal/training"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	workoutMinutes int
	workoutFocus   string
	workoutDryRun  bool
	workoutFile    string
	workoutDate    string
	workoutLimit   int
)

var workoutCmd = &cobra.Command{
	Use:     "workout",
	Aliases: []string{"w"},
	Short:   "Generate, store, and upload structured workouts",
	Long: `Structured workouts are ordered segments (warmup, intervals, recovery,
cooldown) with power targets as a fraction of FTP.

WORKFLOW:

  1. Generate one:      coach workout generate ftp -d 60
  2. Review it:         coach workout show abc123
  3. Send to Garmin:    coach workout upload abc123 --date 2026-03-20

GOALS:

  Goals are free text. Anything mentioning ftp or threshold gets sweet-spot
  and threshold intervals; vo2 or interval gets VO2max repeats; everything
  else gets a steady endurance ride.`,
}

var workoutGenerateCmd = &cobra.Command{
	Use:   "generate <goal>",
	Short: "Generate a workout for a goal",
	Long: `Generate a workout for a goal and save it.

EXAMPLES:

  coach workout generate ftp -d 60
  coach workout generate "vo2 max" -d 45 --focus climbing
  coach workout generate endurance -d 120 --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID := ""
		if !workoutDryRun {
			u, err := currentUser(cmd.Context())
			if err != nil {
				return err
			}
			userID = u.ID.String()
		}
		w, err := svc.GenerateWorkout(cmd.Context(), userID, args[0], workoutFocus, workoutMinutes, !workoutDryRun)
		if err != nil {
			return hinted(err)
		}
		if !workoutDryRun {
			color.Green("✓ Saved workout")
		}
		printWorkout(w)
		return nil
	},
}

// workoutDoc is the on-disk shape accepted by workout create. YAML parsing
// also accepts JSON documents.
type workoutDoc struct {
	Name        string           `yaml:"name"`
	SportType   string           `yaml:"sport_type"`
	Description string           `yaml:"description"`
	Segments    []models.Segment `yaml:"segments"`
}

var workoutCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a workout from a YAML or JSON file",
	Long: `Create a workout from a YAML or JSON file (use - for stdin).

EXAMPLE FILE:

  name: Over-unders
  segments:
    - {duration_type: warmup, duration_seconds: 600, target_type: power, target_value: 0.6}
    - {duration_type: interval, duration_seconds: 480, target_type: power, target_value: 1.0}
    - {duration_type: cooldown, duration_seconds: 300, target_type: power, target_value: 0.5}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if workoutFile == "" {
			return fmt.Errorf("--file is required")
		}
		u, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}

		doc, err := readWorkoutDoc(workoutFile)
		if err != nil {
			return err
		}
		w := &models.Workout{
			Name:        doc.Name,
			SportType:   doc.SportType,
			Description: doc.Description,
			Segments:    doc.Segments,
		}
		saved, err := svc.CreateWorkout(cmd.Context(), u.ID.String(), w)
		if err != nil {
			return hinted(err)
		}
		color.Green("✓ Created workout")
		printWorkout(saved)
		return nil
	},
}

func readWorkoutDoc(path string) (*workoutDoc, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read workout file: %w", err)
	}
	var doc workoutDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse workout file: %w", err)
	}
	return &doc, nil
}

var workoutListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved workouts",
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}
		workouts, err := repo.ListWorkouts(u.ID.String(), workoutLimit)
		if err != nil {
			return fmt.Errorf("failed to list workouts: %w", err)
		}
		if len(workouts) == 0 {
			fmt.Println("No workouts found.")
			return nil
		}

		for _, w := range workouts {
			status := ""
			if w.IsUploaded {
				status = color.GreenString("uploaded")
				if w.ScheduledDate != nil {
					status += faint.Sprintf(" for %s", w.ScheduledDate.Format(training.DateLayout))
				}
			}
			fmt.Printf("%s %s %s %6s %s\n",
				faint.Sprint(shortID(w.ID)),
				faint.Sprint(w.CreatedAt.Format("2006-01-02")),
				padRight(truncate(w.Name, 32), 32),
				formatDuration(w.EstimatedDurationSeconds),
				status)
		}
		return nil
	},
}

var workoutShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show workout segments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := repo.GetWorkout(args[0])
		if err != nil {
			return fmt.Errorf("failed to get workout: %w", err)
		}
		printWorkout(w)
		if w.GarminWorkoutID != nil {
			fmt.Printf("\nGarmin workout: %s\n", *w.GarminWorkoutID)
		}
		return nil
	},
}

var workoutUploadCmd = &cobra.Command{
	Use:   "upload <id>",
	Short: "Upload a workout to Garmin Connect",
	Long: `Upload a saved workout to Garmin Connect, optionally scheduling it.

EXAMPLES:

  coach workout upload abc123
  coach workout upload abc123 --date 2026-03-20`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDate(workoutDate)
		if err != nil {
			return err
		}
		u, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}
		w, err := svc.UploadWorkout(cmd.Context(), u.ID.String(), args[0], date)
		if err != nil {
			return hinted(err)
		}
		color.Green("✓ Uploaded %s", w.Name)
		if w.GarminWorkoutID != nil {
			fmt.Printf("  Garmin ID: %s\n", *w.GarminWorkoutID)
		}
		if w.ScheduledDate != nil {
			fmt.Printf("  Scheduled: %s\n", w.ScheduledDate.Format(training.DateLayout))
		}
		return nil
	},
}

var workoutBatchUploadCmd = &cobra.Command{
	Use:   "batch-upload <id>...",
	Short: "Upload several workouts, reporting each result",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}
		res, err := svc.BatchUpload(cmd.Context(), u.ID.String(), args)
		if err != nil {
			return hinted(err)
		}
		for _, r := range res.Results {
			if r.Success {
				color.Green("✓ %s → %s", r.WorkoutID, r.GarminWorkoutID)
			} else {
				color.Red("✗ %s: %s", r.WorkoutID, r.Error)
			}
		}
		fmt.Println(res.Message())
		return nil
	},
}

var workoutTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Show the built-in workout templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		for i, w := range training.Templates() {
			if i > 0 {
				fmt.Println()
			}
			printWorkout(&w)
		}
		return nil
	},
}

var workoutDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved workout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := repo.GetWorkout(args[0])
		if err != nil {
			return fmt.Errorf("failed to get workout: %w", err)
		}
		if err := repo.DeleteWorkout(w.ID.String()); err != nil {
			return fmt.Errorf("failed to delete workout: %w", err)
		}
		color.Green("✓ Deleted %s", w.Name)
		return nil
	},
}

func init() {
	workoutGenerateCmd.Flags().IntVarP(&workoutMinutes, "duration", "d", 60, "workout length in minutes (21-600)")
	workoutGenerateCmd.Flags().StringVar(&workoutFocus, "focus", "", "optional focus, e.g. climbing")
	workoutGenerateCmd.Flags().BoolVar(&workoutDryRun, "dry-run", false, "print without saving")
	workoutCreateCmd.Flags().StringVarP(&workoutFile, "file", "f", "", "YAML or JSON workout file (- for stdin)")
	workoutListCmd.Flags().IntVarP(&workoutLimit, "limit", "n", 20, "max number of results")
	workoutUploadCmd.Flags().StringVar(&workoutDate, "date", "", "schedule date (YYYY-MM-DD)")

	workoutCmd.AddCommand(workoutGenerateCmd)
	workoutCmd.AddCommand(workoutCreateCmd)
	workoutCmd.AddCommand(workoutListCmd)
	workoutCmd.AddCommand(workoutShowCmd)
	workoutCmd.AddCommand(workoutUploadCmd)
	workoutCmd.AddCommand(workoutBatchUploadCmd)
	workoutCmd.AddCommand(workoutTemplatesCmd)
	workoutCmd.AddCommand(workoutDeleteCmd)
	rootCmd.AddCommand(workoutCmd)
}
