// ABOUTME: CLI command that runs the HTTP API with scheduled Garmin sync.
// ABOUTME: Shuts down gracefully on SIGINT or SIGTERM.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/harperreed/coach/internal/api"
	"github.com/robfig/cron"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 10 * time.Second
	syncJobTimeout  = 30 * time.Minute
)

var (
	serveAddr   string
	serveNoSync bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API with Prometheus metrics and scheduled Garmin sync.

ENDPOINTS:

  GET  /healthz                          Liveness
  GET  /metrics                          Prometheus metrics
  GET  /auth/garmin                      Redirect to Garmin consent
  GET  /auth/garmin/callback?code=...    Link the account
  POST /auth/refresh                     Trade a refresh token
  GET  /api/activities                   Activities with summary
  POST /api/activities/sync              Pull from Garmin
  GET  /api/activities/load              Daily load
  GET  /api/fitness                      FTP, zones, recommendations
  GET  /api/workouts                     Saved workouts
  POST /api/workouts/generate            Build a workout
  POST /api/workouts/:id/upload          Send to Garmin
  GET  /api/plans/active                 Active plan
  POST /api/plans/generate               Build a plan

Every linked rider is synced on sync_schedule (default "@every 6h") unless
--no-sync is set or Garmin is not configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if addr == "" {
			addr = cfg.GetHTTPAddr()
		}

		srv := api.New(api.Options{
			Service:         svc,
			DefaultUser:     cfg.DefaultUser,
			SyncConcurrency: cfg.GetSyncConcurrency(),
			Logger:          log.Logger,
		})

		var scheduler *cron.Cron
		var job *syncJob
		if !serveNoSync && cfg.Garmin.ClientID != "" {
			job = newSyncJob(context.Background(), scheduledSync)
			scheduler = cron.New()
			if err := scheduler.AddFunc(cfg.GetSyncSchedule(), job.Run); err != nil {
				return fmt.Errorf("invalid sync_schedule %q: %w", cfg.GetSyncSchedule(), err)
			}
			scheduler.Start()
			log.Info().Str("schedule", cfg.GetSyncSchedule()).Msg("scheduled sync enabled")
		}

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start(addr) }()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		var serveErr error
		select {
		case serveErr = <-errCh:
		case sig := <-sigChan:
			log.Info().Str("signal", sig.String()).Msg("shutting down")
		}

		if scheduler != nil {
			scheduler.Stop()
			if !job.Stop(shutdownTimeout) {
				log.Warn().Dur("timeout", shutdownTimeout).Msg("scheduled sync still running at shutdown")
			}
		}
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
		return serveErr
	},
}

// syncJob runs scheduled syncs and lets shutdown cancel and wait for the one
// in flight, since cron.Stop does not wait for running jobs.
type syncJob struct {
	ctx    context.Context
	cancel context.CancelFunc
	run    func(context.Context)

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

func newSyncJob(parent context.Context, run func(context.Context)) *syncJob {
	ctx, cancel := context.WithCancel(parent)
	return &syncJob{ctx: ctx, cancel: cancel, run: run}
}

// Run executes one sync unless the job has been stopped.
func (j *syncJob) Run() {
	j.mu.Lock()
	if j.stopped {
		j.mu.Unlock()
		return
	}
	j.wg.Add(1)
	j.mu.Unlock()
	defer j.wg.Done()

	ctx, cancel := context.WithTimeout(j.ctx, syncJobTimeout)
	defer cancel()
	j.run(ctx)
}

// Stop cancels a running sync and waits up to timeout for it to return.
// It reports whether the job finished in time.
func (j *syncJob) Stop(timeout time.Duration) bool {
	j.mu.Lock()
	j.stopped = true
	j.mu.Unlock()
	j.cancel()

	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func scheduledSync(ctx context.Context) {
	results, err := svc.SyncAll(ctx, cfg.GetSyncConcurrency())
	if err != nil {
		log.Error().Err(err).Msg("scheduled sync")
		return
	}
	for _, r := range results {
		if r.Err != nil {
			log.Warn().Err(r.Err).Str("user_id", r.UserID).Msg("scheduled sync failed for user")
		}
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: http_addr or :3001)")
	serveCmd.Flags().BoolVar(&serveNoSync, "no-sync", false, "disable scheduled Garmin sync")
	rootCmd.AddCommand(serveCmd)
}
