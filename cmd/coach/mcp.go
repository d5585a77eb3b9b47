// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio-based MCP server for AI assistant integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/coach/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates over stdin/stdout. Tools act on --user (or the
configured default rider) when the caller omits user_id.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "coach": {
        "command": "coach",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  list_activities     Recent activities with a summary
  activity_summary    Totals and averages
  training_load       Daily load with a rolling total
  analyze_activities  Estimated FTP, zones, and recommendations
  generate_workout    Build (and optionally save) a workout for a goal
  generate_plan       Build a multi-week plan
  list_workouts       Saved workouts
  list_plans          Saved plans
  upload_workout      Send a workout to Garmin Connect
  workout_templates   Built-in workouts
  sync_activities     Pull recent activities from Garmin

AVAILABLE RESOURCES:

  coach://activities      Recent activities
  coach://workouts        Saved workouts with upload counts
  coach://plans/active    The active training plan
  coach://fitness         Current fitness analysis`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(svc, cfg.DefaultUser)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
