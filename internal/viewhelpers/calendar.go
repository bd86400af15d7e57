package viewhelpers

import (
	"fmt"
	"time"

	"github.com/cleancrew/crewboard/internal/constants"
)

// Hourly slots cover 06:00 through 22:00 inclusive.
const (
	FirstSlotHour = 6
	LastSlotHour  = 22
	SlotsPerDay   = LastSlotHour - FirstSlotHour + 1

	// DayCellHour marks a cell that spans the whole day
	DayCellHour = -1
)

// CellKey addresses one cell of the calendar grid
type CellKey string

// DayKey returns the key of the whole-day cell for a yyyy-MM-dd date
func DayKey(date string) CellKey {
	return CellKey(date)
}

// SlotKey returns the key of an hourly cell
func SlotKey(date string, hour int) CellKey {
	return CellKey(fmt.Sprintf("%sT%02d", date, hour))
}

// Cell is one addressable unit of the calendar grid
type Cell struct {
	Date     string // yyyy-MM-dd
	Hour     int    // DayCellHour for whole-day cells
	InWindow bool   // false for month padding days
}

// IsDayCell reports whether the cell spans the whole day
func (c Cell) IsDayCell() bool {
	return c.Hour == DayCellHour
}

// Key returns the map key for the cell
func (c Cell) Key() CellKey {
	if c.IsDayCell() {
		return DayKey(c.Date)
	}
	return SlotKey(c.Date, c.Hour)
}

// CalendarDay represents a single day column (or month cell) in the calendar view.
type CalendarDay struct {
	Day        Cell
	DayOfMonth int
	Weekday    time.Weekday
	Slots      []Cell // hourly slots, empty in month mode
}

// Window is the contiguous date range currently visible
type Window struct {
	Mode      constants.ViewMode
	Start     time.Time
	End       time.Time
	GridStart time.Time // includes month padding
	GridEnd   time.Time
	Days      []CalendarDay
}

// Cells returns every cell of the window: each day cell followed by its hourly slots.
func (w Window) Cells() []Cell {
	cells := make([]Cell, 0, len(w.Days)*(1+SlotsPerDay))
	for _, d := range w.Days {
		cells = append(cells, d.Day)
		cells = append(cells, d.Slots...)
	}
	return cells
}

// Weeks groups the days of the window in rows of seven.
// A day window yields a single row with one day.
func (w Window) Weeks() [][]CalendarDay {
	var weeks [][]CalendarDay
	for i := 0; i < len(w.Days); i += 7 {
		end := i + 7
		if end > len(w.Days) {
			end = len(w.Days)
		}
		weeks = append(weeks, w.Days[i:end])
	}
	return weeks
}

// FetchRange returns the inclusive yyyy-MM-dd bounds of the rendered grid
func (w Window) FetchRange() (from, to string) {
	return w.GridStart.Format(constants.DateLayout), w.GridEnd.Format(constants.DateLayout)
}

// Title returns the heading shown above the grid
func (w Window) Title() string {
	switch w.Mode {
	case constants.ViewModeDay:
		return w.Start.Format("Monday, January 2, 2006")
	case constants.ViewModeMonth:
		return w.Start.Format("January 2006")
	default:
		if w.Start.Year() != w.End.Year() {
			return fmt.Sprintf("%s - %s", w.Start.Format("Jan 2, 2006"), w.End.Format("Jan 2, 2006"))
		}
		return fmt.Sprintf("%s - %s", w.Start.Format("Jan 2"), w.End.Format("Jan 2, 2006"))
	}
}

// ComputeWindow derives the visible window and its cells for a mode and reference date.
// Unknown modes are treated as week.
func ComputeWindow(mode constants.ViewMode, refDate time.Time) Window {
	ref := dateOnly(refDate)
	if !mode.IsValid() {
		mode = constants.ViewModeWeek
	}

	var start, end, gridStart, gridEnd time.Time
	switch mode {
	case constants.ViewModeDay:
		start, end = ref, ref
		gridStart, gridEnd = ref, ref
	case constants.ViewModeWeek:
		// Go's Weekday starts with Sunday = 0; shift so Monday = 0.
		offset := (int(ref.Weekday()) + 6) % 7
		start = ref.AddDate(0, 0, -offset)
		end = start.AddDate(0, 0, 6)
		gridStart, gridEnd = start, end
	case constants.ViewModeMonth:
		start = time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, -1)
		// Month grid runs Sunday to Saturday.
		gridStart = start.AddDate(0, 0, -int(start.Weekday()))
		gridEnd = end.AddDate(0, 0, 6-int(end.Weekday()))
	}

	w := Window{
		Mode:      mode,
		Start:     start,
		End:       end,
		GridStart: gridStart,
		GridEnd:   gridEnd,
	}

	for current := gridStart; !current.After(gridEnd); current = current.AddDate(0, 0, 1) {
		dateStr := current.Format(constants.DateLayout)
		inWindow := !current.Before(start) && !current.After(end)
		day := CalendarDay{
			Day:        Cell{Date: dateStr, Hour: DayCellHour, InWindow: inWindow},
			DayOfMonth: current.Day(),
			Weekday:    current.Weekday(),
		}
		if mode.HourSliced() {
			day.Slots = make([]Cell, 0, SlotsPerDay)
			for hour := FirstSlotHour; hour <= LastSlotHour; hour++ {
				day.Slots = append(day.Slots, Cell{Date: dateStr, Hour: hour, InWindow: inWindow})
			}
		}
		w.Days = append(w.Days, day)
	}

	return w
}

// dateOnly keeps the calendar day of t, expressed at midnight UTC
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
