package viewhelpers

import (
	"time"

	"github.com/cleancrew/crewboard/internal/constants"
)

// Navigator holds the calendar's view mode and reference date.
// It is a value: every transition returns a new Navigator and leaves the receiver untouched.
type Navigator struct {
	mode constants.ViewMode
	ref  time.Time
	// anchorDay is the day-of-month month moves aim for, so a clamp
	// (Jan 31 -> Feb 29) is undone by the opposite move.
	anchorDay int
}

// NewNavigator creates a navigator for the given mode and reference date
func NewNavigator(mode constants.ViewMode, refDate time.Time) Navigator {
	if !mode.IsValid() {
		mode = constants.ViewModeWeek
	}
	return Navigator{mode: mode, ref: dateOnly(refDate)}
}

// Mode returns the current view mode
func (n Navigator) Mode() constants.ViewMode {
	return n.mode
}

// ReferenceDate returns the current reference date at midnight UTC
func (n Navigator) ReferenceDate() time.Time {
	return n.ref
}

// Window computes the visible window for the navigator's state
func (n Navigator) Window() Window {
	return ComputeWindow(n.mode, n.ref)
}

// SetMode replaces the view mode and keeps the reference date
func (n Navigator) SetMode(mode constants.ViewMode) Navigator {
	if !mode.IsValid() {
		return n
	}
	return Navigator{mode: mode, ref: n.ref}
}

// Navigate moves the reference date by one unit of the current mode
func (n Navigator) Navigate(direction constants.Direction) Navigator {
	step := direction.Sign()

	switch n.mode {
	case constants.ViewModeDay:
		return Navigator{mode: n.mode, ref: n.ref.AddDate(0, 0, step)}
	case constants.ViewModeMonth:
		anchor := n.anchorDay
		if anchor == 0 {
			anchor = n.ref.Day()
		}
		return Navigator{mode: n.mode, ref: addMonthsClamped(n.ref, step, anchor), anchorDay: anchor}
	default:
		return Navigator{mode: n.mode, ref: n.ref.AddDate(0, 0, 7*step)}
	}
}

// GoToToday moves the reference date to now's calendar day and keeps the mode
func (n Navigator) GoToToday(now time.Time) Navigator {
	return Navigator{mode: n.mode, ref: dateOnly(now)}
}

// addMonthsClamped moves ref by the given number of months, landing on day
// or on the target month's last day when it is shorter.
func addMonthsClamped(ref time.Time, months, day int) time.Time {
	// time.Date normalises month overflow, which handles year rollover.
	first := time.Date(ref.Year(), ref.Month()+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	if last := daysInMonth(first); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
