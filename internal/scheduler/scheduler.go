// Package scheduler runs the periodic reconcile refresh of the calendar snapshot
package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/cleancrew/crewboard/internal/logging"
	"github.com/cleancrew/crewboard/internal/refresh"
)

// DefaultSpec reconciles every five minutes
const DefaultSpec = "@every 5m"

// Refresher reloads the current calendar window
type Refresher interface {
	Refresh(ctx context.Context) (*refresh.Snapshot, error)
}

// Scheduler wraps robfig/cron and triggers reconcile refreshes
type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	spec      string
	logger    zerolog.Logger
}

// New creates a Scheduler firing on spec. Overlapping runs are skipped.
func New(refresher Refresher, spec string) *Scheduler {
	if spec == "" {
		spec = DefaultSpec
	}
	logger := logging.GetLogger("scheduler")
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron:      cron.New(cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl))),
		refresher: refresher,
		spec:      spec,
		logger:    logger,
	}
}

// Spec returns the cron spec the scheduler fires on
func (s *Scheduler) Spec() string {
	return s.spec
}

// Start registers the reconcile job and starts the cron loop
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.runRefresh(ctx) }); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.Info().Str("spec", s.spec).Msg("Periodic refresh started")
	return nil
}

// Stop halts the cron loop and waits for a running refresh to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Periodic refresh stopped")
}

func (s *Scheduler) runRefresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	snap, err := s.refresher.Refresh(ctx)
	switch {
	case errors.Is(err, refresh.ErrSuperseded):
		s.logger.Debug().Msg("Periodic refresh superseded by a newer load")
	case err != nil:
		s.logger.Warn().Err(err).Msg("Periodic refresh failed")
	default:
		s.logger.Debug().Uint64("seq", snap.Seq).Int("records", len(snap.Records)).Msg("Periodic refresh completed")
	}
}

// cronLogger adapts zerolog to cron.Logger
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
