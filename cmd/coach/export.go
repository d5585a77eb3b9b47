// ABOUTME: CLI commands for exporting and importing coach data.
// ABOUTME: Supports JSON, YAML, Markdown, and Parquet export formats.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/coach/internal/storage"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportSince  string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export coach data",
	Long: `Export coach data in various formats.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export (human-readable)
  markdown   Activity, workout, and plan tables for the current rider
  parquet    The current rider's activities as a Parquet file (needs -o)

OPTIONS:

  --output, -o   Write to file instead of stdout
  --since        Only include activities since this date (markdown, parquet)

EXAMPLES:

  coach export json -o backup.json
  coach export markdown --since 2026-01-01
  coach export parquet -o rides.parquet`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown", "parquet"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := args[0]
		var since *time.Time
		if exportSince != "" {
			t, err := parseTime(exportSince)
			if err != nil {
				return fmt.Errorf("invalid --since %q: %w", exportSince, err)
			}
			since = &t
		}

		var (
			data []byte
			err  error
		)
		switch format {
		case "json":
			data, err = storage.ExportJSON(repo)
		case "yaml":
			data, err = storage.ExportYAML(repo)
		case "markdown":
			u, uerr := currentUser(cmd.Context())
			if uerr != nil {
				return uerr
			}
			var md string
			md, err = storage.ExportMarkdown(repo, u.ID.String(), since)
			data = []byte(md)
		case "parquet":
			if exportOutput == "" {
				return fmt.Errorf("parquet export needs --output")
			}
			u, uerr := currentUser(cmd.Context())
			if uerr != nil {
				return uerr
			}
			list, lerr := repo.ListActivities(storage.ActivityFilter{UserID: u.ID.String(), Since: since})
			if lerr != nil {
				return fmt.Errorf("export failed: %w", lerr)
			}
			data, err = storage.ExportActivitiesParquet(list)
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, markdown, or parquet)", format)
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Println(string(data))
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import coach data from a JSON backup",
	Long: `Import users, activities, workouts, plans, and sync runs from a file
written by "coach export json".

EXAMPLES:

  coach import backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]
		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		if err := storage.ImportJSON(repo, data); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		color.Green("✓ Imported from %s", filename)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include activities since this time (YYYY-MM-DD or YYYY-MM-DD HH:MM)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
