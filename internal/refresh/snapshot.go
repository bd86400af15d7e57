package refresh

import (
	"errors"
	"fmt"
	"time"

	"github.com/cleancrew/crewboard/internal/models"
	"github.com/cleancrew/crewboard/internal/viewhelpers"
)

// State of a published snapshot
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Fetch stages reported in a FetchError
const (
	StageJobs      = "jobs"
	StageStaff     = "staff"
	StageSchedules = "schedules"
)

// ErrSuperseded is returned by a load whose result was discarded because a newer one was issued
var ErrSuperseded = errors.New("refresh superseded by a newer request")

// FetchError reports a failed collaborator read
type FetchError struct {
	Stage string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Stage, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Snapshot is an immutable view of the calendar at one point in time.
// Consumers must not modify the slices or maps it holds.
type Snapshot struct {
	Seq         uint64
	State       State
	Navigator   viewhelpers.Navigator
	Window      viewhelpers.Window
	Records     []models.MergedJobRecord
	Cells       viewhelpers.Buckets
	Unscheduled []models.MergedJobRecord
	Schedules   map[viewhelpers.CellKey][]models.StaffScheduleEntry
	Staff       []models.Staff
	Err         error
	UpdatedAt   time.Time
}

// Empty reports a ready snapshot without any job placed in the window
func (s *Snapshot) Empty() bool {
	if s.State != StateReady {
		return false
	}
	for _, records := range s.Cells {
		if len(records) > 0 {
			return false
		}
	}
	return true
}

// RecordsIn returns the records bucketed into a cell
func (s *Snapshot) RecordsIn(key viewhelpers.CellKey) []models.MergedJobRecord {
	return s.Cells[key]
}
