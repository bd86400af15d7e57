package viewhelpers

import (
	"testing"
	"time"

	"github.com/cleancrew/crewboard/internal/constants"
	"github.com/stretchr/testify/assert"
)

func TestNavigator_Navigate(t *testing.T) {
	testCases := []struct {
		name      string
		mode      constants.ViewMode
		ref       string
		direction constants.Direction
		expected  string
	}{
		{"day next", constants.ViewModeDay, "2024-06-05", constants.DirectionNext, "2024-06-06"},
		{"day prev across month", constants.ViewModeDay, "2024-06-01", constants.DirectionPrev, "2024-05-31"},
		{"week next", constants.ViewModeWeek, "2024-06-05", constants.DirectionNext, "2024-06-12"},
		{"week prev across year", constants.ViewModeWeek, "2025-01-03", constants.DirectionPrev, "2024-12-27"},
		{"month next", constants.ViewModeMonth, "2024-06-15", constants.DirectionNext, "2024-07-15"},
		{"month next across year", constants.ViewModeMonth, "2024-12-10", constants.DirectionNext, "2025-01-10"},
		{"month prev across year", constants.ViewModeMonth, "2025-01-10", constants.DirectionPrev, "2024-12-10"},
		{"month clamps to leap February", constants.ViewModeMonth, "2024-01-31", constants.DirectionNext, "2024-02-29"},
		{"month clamps to February", constants.ViewModeMonth, "2023-01-31", constants.DirectionNext, "2023-02-28"},
		{"month clamps to 30-day month", constants.ViewModeMonth, "2024-05-31", constants.DirectionPrev, "2024-04-30"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			nav := NewNavigator(tc.mode, date(t, tc.ref))
			moved := nav.Navigate(tc.direction)

			assert.Equal(t, tc.expected, moved.ReferenceDate().Format(constants.DateLayout))
			assert.Equal(t, tc.mode, moved.Mode())
			assert.Equal(t, tc.ref, nav.ReferenceDate().Format(constants.DateLayout), "receiver must not change")
		})
	}
}

func TestNavigator_RoundTrip(t *testing.T) {
	start := date(t, "2023-12-01")
	for _, mode := range constants.GetAllViewModes() {
		for i := 0; i < 120; i++ {
			ref := start.AddDate(0, 0, i)
			nav := NewNavigator(mode, ref)

			back := nav.Navigate(constants.DirectionNext).Navigate(constants.DirectionPrev)
			assert.Equal(t, ref, back.ReferenceDate(), "next/prev mode=%s ref=%s", mode, ref.Format(constants.DateLayout))

			back = nav.Navigate(constants.DirectionPrev).Navigate(constants.DirectionNext)
			assert.Equal(t, ref, back.ReferenceDate(), "prev/next mode=%s ref=%s", mode, ref.Format(constants.DateLayout))
		}
	}
}

func TestNavigator_MonthAnchorSurvivesSeveralClamps(t *testing.T) {
	nav := NewNavigator(constants.ViewModeMonth, date(t, "2024-01-31"))

	nav = nav.Navigate(constants.DirectionNext)
	assert.Equal(t, "2024-02-29", nav.ReferenceDate().Format(constants.DateLayout))
	nav = nav.Navigate(constants.DirectionNext)
	assert.Equal(t, "2024-03-31", nav.ReferenceDate().Format(constants.DateLayout))
	nav = nav.Navigate(constants.DirectionNext)
	assert.Equal(t, "2024-04-30", nav.ReferenceDate().Format(constants.DateLayout))
}

func TestNavigator_SetMode(t *testing.T) {
	nav := NewNavigator(constants.ViewModeWeek, date(t, "2024-06-05"))

	month := nav.SetMode(constants.ViewModeMonth)
	assert.Equal(t, constants.ViewModeMonth, month.Mode())
	assert.Equal(t, nav.ReferenceDate(), month.ReferenceDate())

	unchanged := nav.SetMode(constants.ViewMode("year"))
	assert.Equal(t, nav, unchanged)
}

func TestNavigator_GoToToday(t *testing.T) {
	nav := NewNavigator(constants.ViewModeMonth, date(t, "2020-03-15"))
	now := time.Date(2024, 6, 5, 17, 45, 0, 0, time.UTC)

	today := nav.GoToToday(now)
	assert.Equal(t, "2024-06-05", today.ReferenceDate().Format(constants.DateLayout))
	assert.Equal(t, constants.ViewModeMonth, today.Mode())
}

func TestNavigator_Window(t *testing.T) {
	nav := NewNavigator(constants.ViewModeWeek, date(t, "2024-06-05"))
	assert.Equal(t, ComputeWindow(constants.ViewModeWeek, date(t, "2024-06-05")), nav.Window())
}
