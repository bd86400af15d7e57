package refresh

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cleancrew/crewboard/internal/constants"
	"github.com/cleancrew/crewboard/internal/models"
	"github.com/cleancrew/crewboard/internal/notify"
	"github.com/cleancrew/crewboard/internal/signals"
	"github.com/cleancrew/crewboard/internal/viewhelpers"
)

// MockFetcher is a testify mock of the Fetcher interface
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) FetchJobs(ctx context.Context, filter models.JobFilter) ([]models.Job, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Job), args.Error(1)
}

func (m *MockFetcher) FetchStaff(ctx context.Context) ([]models.Staff, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Staff), args.Error(1)
}

func (m *MockFetcher) FetchStaffSchedules(ctx context.Context, filter models.ScheduleFilter) ([]models.StaffScheduleEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StaffScheduleEntry), args.Error(1)
}

// gatedFetcher serves fixed rows and can hold a job fetch until released
type gatedFetcher struct {
	mu       sync.Mutex
	jobs     []models.Job
	staff    []models.Staff
	gates    map[string]*gate
	jobCalls []models.JobFilter
}

type gate struct {
	entered chan struct{}
	release chan struct{}
}

func newGatedFetcher(jobs []models.Job, staff []models.Staff) *gatedFetcher {
	return &gatedFetcher{jobs: jobs, staff: staff, gates: make(map[string]*gate)}
}

// hold blocks job fetches whose range starts on from until the returned gate is released
func (f *gatedFetcher) hold(from string) *gate {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := &gate{entered: make(chan struct{}), release: make(chan struct{})}
	f.gates[from] = g
	return g
}

func (f *gatedFetcher) FetchJobs(ctx context.Context, filter models.JobFilter) ([]models.Job, error) {
	f.mu.Lock()
	f.jobCalls = append(f.jobCalls, filter)
	g := f.gates[filter.From]
	delete(f.gates, filter.From)
	jobs := f.jobs
	f.mu.Unlock()

	if g != nil {
		close(g.entered)
		select {
		case <-g.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return jobs, nil
}

func (f *gatedFetcher) FetchStaff(context.Context) ([]models.Staff, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.staff, nil
}

func (f *gatedFetcher) FetchStaffSchedules(context.Context, models.ScheduleFilter) ([]models.StaffScheduleEntry, error) {
	return []models.StaffScheduleEntry{}, nil
}

func (f *gatedFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.jobCalls)
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(constants.DateLayout, s)
	require.NoError(t, err)
	return d
}

func TestCoordinator_InitialSnapshotIsLoading(t *testing.T) {
	nav := viewhelpers.NewNavigator(constants.ViewModeWeek, date(t, "2024-06-05"))
	c := New(newGatedFetcher(nil, nil), signals.NewChangeFeed(), nav, Options{})

	snap := c.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, StateLoading, snap.State)
	assert.False(t, snap.Empty())
	assert.Equal(t, "2024-06-03", snap.Window.Start.Format(constants.DateLayout))
}

func TestCoordinator_RefreshBuildsSnapshot(t *testing.T) {
	jobs := []models.Job{
		{
			ID: "j1", Title: "Office", ScheduledDate: "2024-06-05", ScheduledTime: "14:30",
			Assignments: []models.StaffAssignment{{ID: "a1", JobID: "j1", StaffID: "s1"}, {ID: "a2", JobID: "j1", StaffID: "gone"}},
		},
		{ID: "j2", Title: "Backlog"},
	}
	staff := []models.Staff{{ID: "s1", Name: "Ana"}}
	nav := viewhelpers.NewNavigator(constants.ViewModeDay, date(t, "2024-06-05"))
	c := New(newGatedFetcher(jobs, staff), signals.NewChangeFeed(), nav, Options{})

	snap, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Same(t, snap, c.Snapshot())
	assert.Equal(t, StateReady, snap.State)
	assert.False(t, snap.Empty())

	slot := snap.RecordsIn(viewhelpers.SlotKey("2024-06-05", 14))
	require.Len(t, slot, 1)
	assert.Equal(t, "j1", slot[0].ID)
	assert.Equal(t, []string{"Ana"}, slot[0].Staff)
	assert.Equal(t, "2:30 PM", slot[0].TimeLabel)

	require.Len(t, snap.Unscheduled, 1)
	assert.Equal(t, "j2", snap.Unscheduled[0].ID)
}

func TestCoordinator_EmptyWindow(t *testing.T) {
	nav := viewhelpers.NewNavigator(constants.ViewModeMonth, date(t, "2024-06-05"))
	c := New(newGatedFetcher([]models.Job{{ID: "j1", Title: "Backlog"}}, nil), signals.NewChangeFeed(), nav, Options{})

	snap, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Empty())
	assert.Len(t, snap.Unscheduled, 1)
}

func TestCoordinator_FetchFailurePublishesErrorState(t *testing.T) {
	fetcher := &MockFetcher{}
	boom := errors.New("connection refused")
	fetcher.On("FetchJobs", mock.Anything, mock.Anything).Return([]models.Job{}, nil)
	fetcher.On("FetchStaff", mock.Anything).Return(nil, boom)

	sink := notify.NewRecorder(nil)
	nav := viewhelpers.NewNavigator(constants.ViewModeWeek, date(t, "2024-06-05"))
	c := New(fetcher, signals.NewChangeFeed(), nav, Options{Sink: sink})

	snap, err := c.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, StageStaff, ferr.Stage)

	require.NotNil(t, snap)
	assert.Equal(t, StateError, snap.State)
	assert.False(t, snap.Empty(), "an error snapshot is never reported as an empty grid")
	assert.Nil(t, snap.Cells)
	assert.Same(t, snap, c.Snapshot())

	notes := sink.Drain()
	require.Len(t, notes, 1)
	assert.Equal(t, notify.SeverityError, notes[0].Severity)
	fetcher.AssertNotCalled(t, "FetchStaffSchedules", mock.Anything, mock.Anything)
}

func TestCoordinator_FetchRangeFollowsWindow(t *testing.T) {
	fetcher := &MockFetcher{}
	fetcher.On("FetchJobs", mock.Anything, models.JobFilter{From: "2024-05-26", To: "2024-07-06", IncludeUnscheduled: true}).Return([]models.Job{}, nil).Once()
	fetcher.On("FetchStaff", mock.Anything).Return([]models.Staff{}, nil)
	fetcher.On("FetchStaffSchedules", mock.Anything, models.ScheduleFilter{From: "2024-05-26", To: "2024-07-06"}).Return([]models.StaffScheduleEntry{}, nil).Once()

	nav := viewhelpers.NewNavigator(constants.ViewModeWeek, date(t, "2024-06-05"))
	c := New(fetcher, signals.NewChangeFeed(), nav, Options{})

	snap, err := c.SetMode(context.Background(), constants.ViewModeMonth)
	require.NoError(t, err)
	assert.Equal(t, constants.ViewModeMonth, snap.Navigator.Mode())
	fetcher.AssertExpectations(t)
}

func TestCoordinator_LastNavigationWins(t *testing.T) {
	fetcher := newGatedFetcher([]models.Job{}, []models.Staff{})
	nav := viewhelpers.NewNavigator(constants.ViewModeDay, date(t, "2024-06-05"))
	c := New(fetcher, signals.NewChangeFeed(), nav, Options{})
	ctx := context.Background()

	slow := fetcher.hold("2024-06-06")

	type result struct {
		snap *Snapshot
		err  error
	}
	first := make(chan result, 1)
	go func() {
		snap, err := c.Navigate(ctx, constants.DirectionNext)
		first <- result{snap, err}
	}()
	<-slow.entered

	latest, err := c.Navigate(ctx, constants.DirectionNext)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-07", latest.Window.Start.Format(constants.DateLayout))

	close(slow.release)
	res := <-first
	assert.ErrorIs(t, res.err, ErrSuperseded)
	assert.Nil(t, res.snap)

	current := c.Snapshot()
	assert.Same(t, latest, current)
	assert.Equal(t, StateReady, current.State)
	assert.Equal(t, "2024-06-07", current.Navigator.ReferenceDate().Format(constants.DateLayout))
}

func TestCoordinator_CancelledNavigationRollsBack(t *testing.T) {
	fetcher := newGatedFetcher([]models.Job{}, []models.Staff{})
	sink := notify.NewRecorder(nil)
	nav := viewhelpers.NewNavigator(constants.ViewModeDay, date(t, "2024-06-05"))
	c := New(fetcher, signals.NewChangeFeed(), nav, Options{Sink: sink})

	ready, err := c.Refresh(context.Background())
	require.NoError(t, err)

	g := fetcher.hold("2024-06-06")
	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, err := c.Navigate(ctx, constants.DirectionNext)
		errs <- err
	}()
	<-g.entered
	assert.Equal(t, StateLoading, c.Snapshot().State)

	cancel()
	assert.ErrorIs(t, <-errs, context.Canceled)

	current := c.Snapshot()
	assert.Same(t, ready, current)
	assert.Equal(t, StateReady, current.State)
	assert.Equal(t, "2024-06-05", c.Navigator().ReferenceDate().Format(constants.DateLayout))
	assert.Empty(t, sink.Drain())

	next, err := c.Navigate(context.Background(), constants.DirectionNext)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-06", next.Window.Start.Format(constants.DateLayout))
}

func TestCoordinator_CancelledRefreshKeepsSnapshot(t *testing.T) {
	fetcher := newGatedFetcher([]models.Job{}, []models.Staff{})
	sink := notify.NewRecorder(nil)
	nav := viewhelpers.NewNavigator(constants.ViewModeDay, date(t, "2024-06-05"))
	c := New(fetcher, signals.NewChangeFeed(), nav, Options{Sink: sink})

	ready, err := c.Refresh(context.Background())
	require.NoError(t, err)

	g := fetcher.hold("2024-06-05")
	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, err := c.Refresh(ctx)
		errs <- err
	}()
	<-g.entered
	cancel()

	assert.ErrorIs(t, <-errs, context.Canceled)
	assert.Same(t, ready, c.Snapshot())
	assert.Empty(t, sink.Drain())
}

func TestCoordinator_StopDuringRefreshPublishesNothing(t *testing.T) {
	fetcher := newGatedFetcher([]models.Job{}, []models.Staff{})
	feed := signals.NewChangeFeed()
	sink := notify.NewRecorder(nil)
	nav := viewhelpers.NewNavigator(constants.ViewModeDay, date(t, "2024-06-05"))
	c := New(fetcher, feed, nav, Options{Sink: sink, Debounce: time.Millisecond})

	ready, err := c.Refresh(context.Background())
	require.NoError(t, err)

	g := fetcher.hold("2024-06-05")
	require.NoError(t, c.Start(context.Background()))
	feed.Emit(context.Background(), signals.ChangeEvent{Table: constants.TableJobs, Op: signals.OpUpdate, RowID: "j1"})
	<-g.entered

	c.Stop()
	assert.Same(t, ready, c.Snapshot())
	assert.Empty(t, sink.Drain())
}

func TestCoordinator_NavigationPublishesLoadingFirst(t *testing.T) {
	fetcher := newGatedFetcher([]models.Job{}, []models.Staff{})
	nav := viewhelpers.NewNavigator(constants.ViewModeWeek, date(t, "2024-06-05"))
	c := New(fetcher, signals.NewChangeFeed(), nav, Options{})

	g := fetcher.hold("2024-06-10")
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Navigate(context.Background(), constants.DirectionNext)
	}()
	<-g.entered

	loading := c.Snapshot()
	assert.Equal(t, StateLoading, loading.State)
	assert.Equal(t, "2024-06-10", loading.Window.Start.Format(constants.DateLayout))

	close(g.release)
	<-done
	assert.Equal(t, StateReady, c.Snapshot().State)
}

func TestCoordinator_GoToTodayUsesClock(t *testing.T) {
	now := date(t, "2025-01-15")
	nav := viewhelpers.NewNavigator(constants.ViewModeMonth, date(t, "2024-06-05"))
	c := New(newGatedFetcher(nil, nil), signals.NewChangeFeed(), nav, Options{Now: func() time.Time { return now }})

	snap, err := c.GoToToday(context.Background())
	require.NoError(t, err)
	assert.Equal(t, constants.ViewModeMonth, snap.Navigator.Mode())
	assert.Equal(t, "2025-01-01", snap.Window.Start.Format(constants.DateLayout))
	assert.Equal(t, now, snap.UpdatedAt)
}

func TestCoordinator_ChangeEventsCoalesce(t *testing.T) {
	fetcher := newGatedFetcher([]models.Job{}, []models.Staff{})
	feed := signals.NewChangeFeed()
	nav := viewhelpers.NewNavigator(constants.ViewModeWeek, date(t, "2024-06-05"))
	c := New(fetcher, feed, nav, Options{Debounce: 50 * time.Millisecond})

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	defer c.Stop()

	for i := 0; i < 5; i++ {
		feed.Emit(ctx, signals.ChangeEvent{Table: constants.TableJobs, Op: signals.OpUpdate, RowID: "j1"})
	}
	feed.Emit(ctx, signals.ChangeEvent{Table: constants.TableJobAssignments, Op: signals.OpInsert, RowID: "a1"})

	assert.Eventually(t, func() bool { return fetcher.calls() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 1, fetcher.calls())
	assert.Equal(t, StateReady, c.Snapshot().State)
}

func TestCoordinator_IgnoresUnwatchedTables(t *testing.T) {
	fetcher := newGatedFetcher([]models.Job{}, []models.Staff{})
	feed := signals.NewChangeFeed()
	nav := viewhelpers.NewNavigator(constants.ViewModeWeek, date(t, "2024-06-05"))
	c := New(fetcher, feed, nav, Options{Debounce: 10 * time.Millisecond})

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	defer c.Stop()

	feed.Emit(ctx, signals.ChangeEvent{Table: constants.TableClients, Op: signals.OpInsert, RowID: "c1"})
	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, fetcher.calls())
}

func TestCoordinator_StaffChangesRefresh(t *testing.T) {
	fetcher := newGatedFetcher([]models.Job{}, []models.Staff{})
	feed := signals.NewChangeFeed()
	nav := viewhelpers.NewNavigator(constants.ViewModeWeek, date(t, "2024-06-05"))
	c := New(fetcher, feed, nav, Options{Debounce: 10 * time.Millisecond})

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	defer c.Stop()

	feed.Emit(ctx, signals.ChangeEvent{Table: constants.TableStaff, Op: signals.OpDelete, RowID: "s1"})
	assert.Eventually(t, func() bool { return fetcher.calls() == 1 }, time.Second, 5*time.Millisecond)
}

func TestCoordinator_StopReleasesSubscriptions(t *testing.T) {
	feed := signals.NewChangeFeed()
	nav := viewhelpers.NewNavigator(constants.ViewModeWeek, date(t, "2024-06-05"))
	c := New(newGatedFetcher(nil, nil), feed, nav, Options{})

	require.NoError(t, c.Start(context.Background()))
	assert.ErrorIs(t, c.Start(context.Background()), ErrAlreadyStarted)
	for _, table := range WatchedTables {
		assert.Equal(t, 1, feed.Listeners(table), table)
	}

	c.Stop()
	for _, table := range WatchedTables {
		assert.Zero(t, feed.Listeners(table), table)
	}
	c.Stop()
}
