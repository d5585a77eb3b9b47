// ABOUTME: HTTP API for coach built on echo, with Prometheus request metrics.
// ABOUTME: Routes mirror the CLI and MCP surface: activities, workouts, plans, fitness, auth.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/harperreed/coach/internal/coach"
	echoprom "github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// Server serves the coach HTTP API.
type Server struct {
	svc             *coach.Service
	defaultUser     string
	syncConcurrency int
	logger          zerolog.Logger
	echo            *echo.Echo
}

// Options configures the API. Service is required.
type Options struct {
	Service *coach.Service
	// DefaultUser is used when a request names no user.
	DefaultUser     string
	SyncConcurrency int
	Logger          zerolog.Logger
}

var (
	promOnce sync.Once
	promMW   *echoprom.Prometheus
)

// requestMetrics returns the shared echo-contrib collector set. Its collectors
// live on the default registry, so it is created once per process.
func requestMetrics() *echoprom.Prometheus {
	promOnce.Do(func() {
		promMW = echoprom.NewPrometheus("coach", nil)
	})
	return promMW
}

// New builds the API and registers its routes.
func New(opts Options) *Server {
	logger := opts.Logger
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))
	requestMetrics().Use(e)

	s := &Server{
		svc:             opts.Service,
		defaultUser:     opts.DefaultUser,
		syncConcurrency: opts.SyncConcurrency,
		logger:          logger,
		echo:            e,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/healthz", s.healthz)

	auth := s.echo.Group("/auth")
	auth.GET("/garmin", s.garminLogin)
	auth.GET("/garmin/callback", s.garminCallback)
	auth.POST("/refresh", s.refreshToken)

	api := s.echo.Group("/api")
	api.GET("/activities", s.listActivities)
	api.POST("/activities/sync", s.syncActivities)
	api.GET("/activities/load", s.trainingLoad)
	api.GET("/activities/:id", s.getActivity)

	api.GET("/workouts", s.listWorkouts)
	api.POST("/workouts", s.createWorkout)
	api.POST("/workouts/generate", s.generateWorkout)
	api.GET("/workouts/templates", s.templates)
	api.POST("/workouts/batch-upload", s.batchUpload)
	api.POST("/workouts/:id/upload", s.uploadWorkout)

	api.GET("/plans", s.listPlans)
	api.POST("/plans/generate", s.generatePlan)
	api.GET("/plans/active", s.activePlan)

	api.GET("/fitness", s.fitness)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("http api listening")
	s.echo.Server.ReadTimeout = 10 * time.Second
	s.echo.Server.WriteTimeout = 30 * time.Second
	s.echo.Server.IdleTimeout = 60 * time.Second
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func requestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			logger.Debug().
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Int("status", c.Response().Status).
				Dur("elapsed", time.Since(start)).
				Msg("request")
			return nil
		}
	}
}
