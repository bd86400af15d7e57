package constants

import "fmt"

// ViewMode represents the calendar granularity
type ViewMode string

const (
	// ViewModeDay shows a single day sliced into hourly slots
	ViewModeDay ViewMode = "day"
	// ViewModeWeek shows an ISO week (Monday to Sunday) sliced into hourly slots
	ViewModeWeek ViewMode = "week"
	// ViewModeMonth shows a full month padded to whole weeks
	ViewModeMonth ViewMode = "month"
)

// IsValid checks if the view mode value is valid
func (m ViewMode) IsValid() bool {
	return m == ViewModeDay || m == ViewModeWeek || m == ViewModeMonth
}

// String returns the string representation of the view mode
func (m ViewMode) String() string {
	return string(m)
}

// HourSliced reports whether the mode subdivides days into hourly slots
func (m ViewMode) HourSliced() bool {
	return m == ViewModeDay || m == ViewModeWeek
}

// ParseViewMode parses a string into a ViewMode type
// Returns an error if the value is invalid
func ParseViewMode(s string) (ViewMode, error) {
	mode := ViewMode(s)
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid view mode: %s (must be 'day', 'week' or 'month')", s)
	}
	return mode, nil
}

// GetAllViewModes returns all valid view modes in display order
func GetAllViewModes() []ViewMode {
	return []ViewMode{ViewModeDay, ViewModeWeek, ViewModeMonth}
}

// Direction is a navigation step direction
type Direction string

const (
	DirectionPrev Direction = "prev"
	DirectionNext Direction = "next"
)

// ParseDirection parses a navigation direction
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case DirectionPrev, DirectionNext:
		return d, nil
	}
	return "", fmt.Errorf("invalid direction: %s (must be 'prev' or 'next')", s)
}

// Sign returns -1 for prev and +1 for next
func (d Direction) Sign() int {
	if d == DirectionPrev {
		return -1
	}
	return 1
}
