package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cleancrew/crewboard/internal/config"
	"github.com/cleancrew/crewboard/internal/constants"
	"github.com/cleancrew/crewboard/internal/database"
	"github.com/cleancrew/crewboard/internal/handlers"
	"github.com/cleancrew/crewboard/internal/logging"
	"github.com/cleancrew/crewboard/internal/notify"
	"github.com/cleancrew/crewboard/internal/refresh"
	"github.com/cleancrew/crewboard/internal/scheduler"
	"github.com/cleancrew/crewboard/internal/signals"
	"github.com/cleancrew/crewboard/internal/viewhelpers"
)

// ServeCmd runs the HTTP API with live refresh
type ServeCmd struct{}

// Run starts the server and blocks until the context is cancelled
func (c *ServeCmd) Run(rc *runContext) error {
	logger := logging.GetLogger("serve")

	cfg, err := loadConfig(rc.configPath)
	if err != nil {
		return err
	}

	if cfg.Service.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Service.LogFile), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		logFile := logging.AttachFile(cfg.Service.LogFile, rc.isDev)
		defer logFile.Close()
		logger = logging.GetLogger("serve")
		logger.Info().Str("log_file", cfg.Service.LogFile).Msg("Logging to file")
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	feed := signals.NewChangeFeed()
	store := database.NewStore(db, feed)

	nav := viewhelpers.NewNavigator(cfg.Calendar.DefaultMode, time.Now())
	coordinator := refresh.New(store, feed, nav, refresh.Options{
		Debounce: cfg.Refresh.Debounce,
		Sink:     notify.NewLogSink(),
	})
	if err := coordinator.Start(rc.ctx); err != nil {
		return fmt.Errorf("failed to start live refresh: %w", err)
	}
	defer coordinator.Stop()

	if _, err := coordinator.Refresh(rc.ctx); err != nil {
		// the published snapshot carries the error state
		logger.Warn().Err(err).Msg("Initial calendar load failed")
	}

	periodic := scheduler.New(coordinator, cfg.Refresh.Schedule)
	if err := periodic.Start(rc.ctx); err != nil {
		return err
	}
	defer periodic.Stop()

	base := handlers.NewBaseHandler()
	mux := http.NewServeMux()
	handlers.NewCalendarHandler(base, coordinator).RegisterRoutes(mux)
	handlers.NewJobsHandler(base, store).RegisterRoutes(mux)
	handlers.NewStaffHandler(base, store).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Int("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-rc.ctx.Done():
		logger.Info().Msg("Context cancelled, initiating shutdown sequence")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		logger.Info().Msg("HTTP server shut down gracefully")
	}
	return nil
}

// MigrateCmd applies the schema migrations
type MigrateCmd struct{}

// Run opens the database, which migrates it, and exits
func (c *MigrateCmd) Run(rc *runContext) error {
	cfg, err := loadConfig(rc.configPath)
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	logger := logging.GetLogger("migrate")
	logger.Info().Str("db_path", cfg.Service.StateFile).Msg("Database is up to date")
	return db.Close()
}

// WindowCmd prints the visible window for a mode and reference date
type WindowCmd struct {
	Mode string `help:"View mode." enum:"day,week,month" default:"week"`
	Date string `help:"Reference date (yyyy-MM-dd). Defaults to today."`
}

// Run computes and prints the window
func (c *WindowCmd) Run(rc *runContext) error {
	return c.print(os.Stdout, time.Now())
}

func (c *WindowCmd) print(out io.Writer, now time.Time) error {
	mode, err := constants.ParseViewMode(c.Mode)
	if err != nil {
		return err
	}
	ref := now
	if c.Date != "" {
		ref, err = time.Parse(constants.DateLayout, c.Date)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", c.Date, err)
		}
	}

	w := viewhelpers.ComputeWindow(mode, ref)
	from, to := w.FetchRange()
	fmt.Fprintf(out, "%s\n", w.Title())
	fmt.Fprintf(out, "mode:   %s\n", w.Mode)
	fmt.Fprintf(out, "window: %s .. %s\n", w.Start.Format(constants.DateLayout), w.End.Format(constants.DateLayout))
	fmt.Fprintf(out, "grid:   %s .. %s\n", from, to)
	for _, week := range w.Weeks() {
		days := make([]string, 0, len(week))
		for _, d := range week {
			label := fmt.Sprintf("%2d", d.DayOfMonth)
			if !d.Day.InWindow {
				label = fmt.Sprintf("(%d)", d.DayOfMonth)
			}
			days = append(days, label)
		}
		fmt.Fprintln(out, strings.Join(days, " "))
	}
	if mode.HourSliced() {
		fmt.Fprintf(out, "slots:  %02d:00 .. %02d:00 (%d per day)\n", viewhelpers.FirstSlotHour, viewhelpers.LastSlotHour, viewhelpers.SlotsPerDay)
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	logger := logging.GetLogger("main")

	cfg, err := config.Load(path)
	if err != nil {
		logger.Error().Err(err).Str("config_path", path).Msg("Failed to load configuration")
		return nil, err
	}

	logging.SetLogLevel(cfg.Service.LogLevel)
	logger.Info().Str("log_level", cfg.Service.LogLevel).Msg("Log level set")
	return cfg, nil
}

func openDatabase(cfg *config.Config) (*database.DB, error) {
	logger := logging.GetLogger("main")

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(cfg.Service.StateFile), 0755); err != nil {
		logger.Error().Err(err).Str("path", filepath.Dir(cfg.Service.StateFile)).Msg("Failed to create data directory")
		return nil, err
	}

	db, err := database.New(database.NewDefaultOptions(cfg.Service.StateFile))
	if err != nil {
		wrappedErr := fmt.Errorf("failed to initialize database: %w", err)
		logger.Error().Err(wrappedErr).Str("db_path", cfg.Service.StateFile).Msg("Database initialization failed")
		return nil, wrappedErr
	}

	if err := db.MigrateDatabase(); err != nil {
		db.Close()
		wrappedErr := fmt.Errorf("failed to initialize database schema: %w", err)
		logger.Error().Err(wrappedErr).Msg("Database schema initialization failed")
		return nil, wrappedErr
	}
	return db, nil
}
