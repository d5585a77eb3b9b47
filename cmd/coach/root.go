// ABOUTME: Root Cobra command for the coach CLI.
// ABOUTME: Loads config, sets up logging, and manages the repository and service lifecycle.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/harperreed/coach/internal/coach"
	"github.com/harperreed/coach/internal/config"
	"github.com/harperreed/coach/internal/events"
	"github.com/harperreed/coach/internal/garmin"
	"github.com/harperreed/coach/internal/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	cfg       *config.Config
	repo      storage.Repository
	publisher events.Publisher
	svc       *coach.Service

	flagBackend string
	flagDataDir string
	flagUser    string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "coach",
	Short: "Cycling training analytics and workout planning",
	Long: `Coach pulls your rides from Garmin, estimates FTP and power zones, and
builds structured workouts and multi-week training plans.

QUICK START:

  $ coach user add                         # Create a local rider
  $ coach activities mock                  # Seed sample rides (or: coach sync)
  $ coach analyze                          # Estimated FTP, zones, recommendations
  $ coach workout generate ftp -d 60       # A 60 minute threshold session
  $ coach plan generate ftp --weeks 4      # A four week plan

GARMIN:

  $ coach auth login                       # Print the Garmin consent URL
  $ coach auth login --code <code>         # Link the account
  $ coach sync                             # Pull the last 14 days
  $ coach workout upload <id> --date 2026-03-20

SERVICES:

  coach serve    HTTP API, Prometheus metrics, and scheduled sync
  coach mcp      Model Context Protocol server for AI assistants

STORAGE:

  SQLite by default at ~/.local/share/coach/coach.db. Use --backend postgres
  with COACH_POSTGRES_DSN, or --backend charm for encrypted Charm Cloud sync.
  Settings live in ~/.config/coach/config.json.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if skipsStorage(cmd) {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if flagBackend != "" {
			cfg.Backend = flagBackend
		}
		if flagDataDir != "" {
			cfg.DataDir = flagDataDir
		}
		if flagUser != "" {
			cfg.DefaultUser = flagUser
		}
		setupLogging(cfg.LogLevel, flagVerbose)

		repo, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}

		publisher = events.New(cfg.Kafka.Brokers, cfg.Kafka.GetTopicPrefix(), log.Logger)
		opts := coach.Options{
			Repo:      repo,
			Publisher: publisher,
			Logger:    log.Logger,
		}
		if cfg.Garmin.ClientID != "" {
			opts.Garmin = garmin.New(cfg.Garmin, nil)
		}
		svc = coach.New(opts)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeResources()
	},
}

// closeResources releases the publisher and repository. Cobra skips
// PersistentPostRunE when RunE fails, so main calls it too.
func closeResources() error {
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("close event publisher")
		}
		publisher = nil
	}
	if repo != nil {
		err := repo.Close()
		repo = nil
		return err
	}
	return nil
}

// skipsStorage reports whether cmd runs without config or a database.
func skipsStorage(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "version", "install-skill", "templates", "completion", "repair", "wipe":
		return true
	}
	return false
}

func setupLogging(level string, verbose bool) {
	lvl := zerolog.WarnLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil && level != "" {
		lvl = parsed
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "storage backend: sqlite, postgres, or charm")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "directory for the SQLite database")
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "", "user ID or prefix (default: COACH_USER or the only user)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
}
