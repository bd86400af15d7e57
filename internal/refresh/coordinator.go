// Package refresh keeps a published calendar snapshot in sync with navigation and store changes
package refresh

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/cleancrew/crewboard/internal/constants"
	"github.com/cleancrew/crewboard/internal/logging"
	"github.com/cleancrew/crewboard/internal/models"
	"github.com/cleancrew/crewboard/internal/notify"
	"github.com/cleancrew/crewboard/internal/signals"
	"github.com/cleancrew/crewboard/internal/viewhelpers"
)

// DefaultDebounce is the window in which change events coalesce into one refresh
const DefaultDebounce = 250 * time.Millisecond

// ErrAlreadyStarted is returned when Start is called twice
var ErrAlreadyStarted = errors.New("coordinator already started")

// WatchedTables are the tables whose changes invalidate the snapshot
var WatchedTables = []string{
	constants.TableJobs,
	constants.TableJobAssignments,
	constants.TableStaff,
	constants.TableStaffSchedules,
}

// Fetcher reads the rows a snapshot is built from
type Fetcher interface {
	FetchJobs(ctx context.Context, filter models.JobFilter) ([]models.Job, error)
	FetchStaff(ctx context.Context) ([]models.Staff, error)
	FetchStaffSchedules(ctx context.Context, filter models.ScheduleFilter) ([]models.StaffScheduleEntry, error)
}

// Options tune a Coordinator
type Options struct {
	Debounce time.Duration
	Now      func() time.Time
	Sink     notify.Sink
}

// Coordinator owns the navigator and the published snapshot
type Coordinator struct {
	fetcher  Fetcher
	feed     *signals.ChangeFeed
	sink     notify.Sink
	now      func() time.Time
	debounce time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	nav     viewhelpers.Navigator
	seq     uint64
	subs    []*signals.Subscription
	started bool
	cancel  context.CancelFunc
	done    chan struct{}

	current atomic.Pointer[Snapshot]
	trigger chan struct{}
}

// New creates a coordinator positioned on nav. A loading snapshot is published immediately.
func New(fetcher Fetcher, feed *signals.ChangeFeed, nav viewhelpers.Navigator, opts Options) *Coordinator {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sink == nil {
		opts.Sink = notify.NewLogSink()
	}

	c := &Coordinator{
		fetcher:  fetcher,
		feed:     feed,
		sink:     opts.Sink,
		now:      opts.Now,
		debounce: opts.Debounce,
		logger:   logging.GetLogger("refresh"),
		nav:      nav,
		trigger:  make(chan struct{}, 1),
	}
	c.current.Store(c.loadingSnapshot(0, nav))
	return c
}

// Snapshot returns the latest published snapshot
func (c *Coordinator) Snapshot() *Snapshot {
	return c.current.Load()
}

// Navigator returns the current navigation state
func (c *Coordinator) Navigator() viewhelpers.Navigator {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nav
}

// Start subscribes to store changes and runs the debounce loop until Stop or ctx is done
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return ErrAlreadyStarted
	}
	c.started = true

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})

	for _, table := range WatchedTables {
		c.subs = append(c.subs, c.feed.Subscribe(table, c.onChange))
	}
	c.logger.Info().Strs("tables", WatchedTables).Dur("debounce", c.debounce).Msg("Live refresh started")

	go c.loop(loopCtx, c.done)
	return nil
}

// Stop releases every subscription and waits for the loop to exit
func (c *Coordinator) Stop() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	cancel := c.cancel
	done := c.done
	c.cancel = nil
	c.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	if cancel != nil {
		cancel()
		<-done
		c.logger.Info().Msg("Live refresh stopped")
	}
}

func (c *Coordinator) onChange(_ context.Context, event signals.ChangeEvent) {
	c.logger.Debug().Str("table", event.Table).Str("op", string(event.Op)).Str("row_id", event.RowID).Msg("Change received")
	select {
	case c.trigger <- struct{}{}:
	default:
	}
}

func (c *Coordinator) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.trigger:
		}

		timer := time.NewTimer(c.debounce)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		// events that arrived while waiting are covered by this refresh
		select {
		case <-c.trigger:
		default:
		}

		if _, err := c.Refresh(ctx); err != nil && !errors.Is(err, ErrSuperseded) && ctx.Err() == nil {
			c.logger.Warn().Err(err).Msg("Live refresh failed")
		}
	}
}

// SetMode switches the view mode and reloads the window
func (c *Coordinator) SetMode(ctx context.Context, mode constants.ViewMode) (*Snapshot, error) {
	return c.move(ctx, func(n viewhelpers.Navigator) viewhelpers.Navigator { return n.SetMode(mode) })
}

// Navigate moves one period and reloads the window
func (c *Coordinator) Navigate(ctx context.Context, direction constants.Direction) (*Snapshot, error) {
	return c.move(ctx, func(n viewhelpers.Navigator) viewhelpers.Navigator { return n.Navigate(direction) })
}

// GoToToday jumps to the current date and reloads the window
func (c *Coordinator) GoToToday(ctx context.Context) (*Snapshot, error) {
	now := c.now()
	return c.move(ctx, func(n viewhelpers.Navigator) viewhelpers.Navigator { return n.GoToToday(now) })
}

// Refresh reloads the current window without touching navigation
func (c *Coordinator) Refresh(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	c.seq++
	seq, nav := c.seq, c.nav
	c.mu.Unlock()
	return c.load(ctx, seq, nav, nil)
}

func (c *Coordinator) move(ctx context.Context, step func(viewhelpers.Navigator) viewhelpers.Navigator) (*Snapshot, error) {
	c.mu.Lock()
	prev := c.current.Load()
	prevNav := c.nav
	c.nav = step(c.nav)
	c.seq++
	seq, nav := c.seq, c.nav
	c.mu.Unlock()

	c.publish(c.loadingSnapshot(seq, nav))
	return c.load(ctx, seq, nav, &restorePoint{snap: prev, nav: prevNav})
}

// restorePoint is what an abandoned navigation rolls back to
type restorePoint struct {
	snap *Snapshot
	nav  viewhelpers.Navigator
}

func (c *Coordinator) load(ctx context.Context, seq uint64, nav viewhelpers.Navigator, restore *restorePoint) (*Snapshot, error) {
	window := nav.Window()
	from, to := window.FetchRange()
	log := c.logger.With().Uint64("seq", seq).Str("mode", window.Mode.String()).Str("from", from).Str("to", to).Logger()
	log.Debug().Msg("Loading window")

	jobs, err := c.fetcher.FetchJobs(ctx, models.JobFilter{From: from, To: to, IncludeUnscheduled: true})
	if err != nil {
		return c.fail(ctx, seq, nav, restore, &FetchError{Stage: StageJobs, Err: err})
	}
	staff, err := c.fetcher.FetchStaff(ctx)
	if err != nil {
		return c.fail(ctx, seq, nav, restore, &FetchError{Stage: StageStaff, Err: err})
	}
	schedules, err := c.fetcher.FetchStaffSchedules(ctx, models.ScheduleFilter{From: from, To: to})
	if err != nil {
		return c.fail(ctx, seq, nav, restore, &FetchError{Stage: StageSchedules, Err: err})
	}

	records := viewhelpers.MergeAssignments(jobs, viewhelpers.CollectAssignments(jobs), viewhelpers.StaffDirectory(staff))
	cells := window.Cells()
	snap := &Snapshot{
		Seq:         seq,
		State:       StateReady,
		Navigator:   nav,
		Window:      window,
		Records:     records,
		Cells:       viewhelpers.Bucketize(records, cells),
		Unscheduled: viewhelpers.Unscheduled(records),
		Schedules:   viewhelpers.BucketSchedules(schedules, cells),
		Staff:       staff,
		UpdatedAt:   c.now(),
	}
	if !c.publish(snap) {
		log.Debug().Msg("Discarding superseded result")
		return nil, ErrSuperseded
	}
	log.Debug().Int("records", len(records)).Int("unscheduled", len(snap.Unscheduled)).Msg("Snapshot published")
	return snap, nil
}

func (c *Coordinator) fail(ctx context.Context, seq uint64, nav viewhelpers.Navigator, restore *restorePoint, ferr *FetchError) (*Snapshot, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return c.abandon(seq, restore, ctxErr)
	}
	snap := &Snapshot{
		Seq:       seq,
		State:     StateError,
		Navigator: nav,
		Window:    nav.Window(),
		Err:       ferr,
		UpdatedAt: c.now(),
	}
	if !c.publish(snap) {
		return nil, ErrSuperseded
	}
	c.logger.Error().Err(ferr.Err).Str("stage", ferr.Stage).Uint64("seq", seq).Msg("Failed to load calendar data")
	c.sink.Notify(ctx, notify.Notification{
		Severity: notify.SeverityError,
		Title:    "Calendar unavailable",
		Message:  ferr.Error(),
	})
	return snap, ferr
}

// abandon drops a load whose context ended. Nothing is published; when the load
// is still the latest, a navigation rolls back to the snapshot it replaced.
func (c *Coordinator) abandon(seq uint64, restore *restorePoint, cause error) (*Snapshot, error) {
	c.mu.Lock()
	latest := seq == c.seq
	if latest && restore != nil && restore.snap != nil {
		c.nav = restore.nav
		c.current.Store(restore.snap)
	}
	c.mu.Unlock()

	c.logger.Debug().Err(cause).Uint64("seq", seq).Bool("latest", latest).Msg("Load abandoned")
	return nil, cause
}

// publish stores snap if its sequence number is still the latest issued
func (c *Coordinator) publish(snap *Snapshot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if snap.Seq != c.seq {
		return false
	}
	c.current.Store(snap)
	return true
}

func (c *Coordinator) loadingSnapshot(seq uint64, nav viewhelpers.Navigator) *Snapshot {
	return &Snapshot{
		Seq:       seq,
		State:     StateLoading,
		Navigator: nav,
		Window:    nav.Window(),
		UpdatedAt: c.now(),
	}
}
