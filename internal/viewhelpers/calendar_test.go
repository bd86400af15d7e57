package viewhelpers

import (
	"testing"
	"time"

	"github.com/cleancrew/crewboard/internal/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to create time.Time from YYYY-MM-DD string
func date(t *testing.T, dateStr string) time.Time {
	t.Helper()
	tm, err := time.Parse(constants.DateLayout, dateStr)
	require.NoError(t, err, "Failed to parse date '%s'", dateStr)
	return tm
}

func TestComputeWindow_Week(t *testing.T) {
	testCases := []struct {
		name          string
		refDate       string
		expectedStart string
		expectedEnd   string
	}{
		{name: "Monday", refDate: "2024-06-03", expectedStart: "2024-06-03", expectedEnd: "2024-06-09"},
		{name: "Wednesday", refDate: "2024-06-05", expectedStart: "2024-06-03", expectedEnd: "2024-06-09"},
		{name: "Saturday", refDate: "2024-06-08", expectedStart: "2024-06-03", expectedEnd: "2024-06-09"},
		{name: "Sunday", refDate: "2024-06-09", expectedStart: "2024-06-03", expectedEnd: "2024-06-09"},
		{name: "Across year boundary", refDate: "2025-01-01", expectedStart: "2024-12-30", expectedEnd: "2025-01-05"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := ComputeWindow(constants.ViewModeWeek, date(t, tc.refDate))

			assert.Equal(t, tc.expectedStart, w.Start.Format(constants.DateLayout))
			assert.Equal(t, tc.expectedEnd, w.End.Format(constants.DateLayout))
			require.Len(t, w.Days, 7)

			seen := make(map[string]bool)
			for _, d := range w.Days {
				assert.True(t, d.Day.InWindow)
				assert.Len(t, d.Slots, SlotsPerDay)
				seen[d.Day.Date] = true
			}
			assert.Len(t, seen, 7, "week should contain 7 distinct dates")
		})
	}
}

func TestComputeWindow_WeekBoundsForEveryDay(t *testing.T) {
	ref := date(t, "2023-01-01")
	for i := 0; i < 800; i++ {
		d := ref.AddDate(0, 0, i)
		w := ComputeWindow(constants.ViewModeWeek, d)

		require.Equal(t, time.Monday, w.Start.Weekday(), "start for %s", d.Format(constants.DateLayout))
		require.Equal(t, time.Sunday, w.End.Weekday(), "end for %s", d.Format(constants.DateLayout))
		require.Equal(t, w.Start.AddDate(0, 0, 6), w.End)
		require.False(t, d.Before(w.Start))
		require.False(t, d.After(w.End))
	}
}

func TestComputeWindow_Day(t *testing.T) {
	w := ComputeWindow(constants.ViewModeDay, date(t, "2024-06-05"))

	assert.Equal(t, w.Start, w.End)
	require.Len(t, w.Days, 1)
	slots := w.Days[0].Slots
	require.Len(t, slots, 17)
	assert.Equal(t, 6, slots[0].Hour)
	assert.Equal(t, 22, slots[16].Hour)
	for i, s := range slots {
		assert.Equal(t, "2024-06-05", s.Date)
		assert.Equal(t, FirstSlotHour+i, s.Hour)
		assert.False(t, s.IsDayCell())
	}

	cells := w.Cells()
	require.Len(t, cells, 18)
	assert.True(t, cells[0].IsDayCell())
	assert.Equal(t, CellKey("2024-06-05"), cells[0].Key())
	assert.Equal(t, CellKey("2024-06-05T14"), SlotKey("2024-06-05", 14))
}

func TestComputeWindow_MonthStartingSaturday(t *testing.T) {
	// June 2024 has 30 days and starts on a Saturday
	w := ComputeWindow(constants.ViewModeMonth, date(t, "2024-06-18"))

	assert.Equal(t, "2024-06-01", w.Start.Format(constants.DateLayout))
	assert.Equal(t, "2024-06-30", w.End.Format(constants.DateLayout))
	assert.Equal(t, "2024-05-26", w.GridStart.Format(constants.DateLayout))
	assert.Equal(t, "2024-07-06", w.GridEnd.Format(constants.DateLayout))
	require.Len(t, w.Days, 42)

	firstRow := w.Weeks()[0]
	require.Len(t, firstRow, 7)
	for i := 0; i < 6; i++ {
		assert.False(t, firstRow[i].Day.InWindow, "padding day %s", firstRow[i].Day.Date)
		assert.Equal(t, time.May, date(t, firstRow[i].Day.Date).Month())
	}
	assert.Equal(t, "2024-06-01", firstRow[6].Day.Date)
	assert.True(t, firstRow[6].Day.InWindow)
	assert.Equal(t, time.Sunday, firstRow[0].Weekday)

	for _, d := range w.Days {
		assert.Empty(t, d.Slots, "month cells are not hour-sliced")
	}

	from, to := w.FetchRange()
	assert.Equal(t, "2024-05-26", from)
	assert.Equal(t, "2024-07-06", to)
	assert.Equal(t, "June 2024", w.Title())
}

func TestComputeWindow_MonthWithoutPadding(t *testing.T) {
	// February 2015 starts on Sunday and ends on Saturday
	w := ComputeWindow(constants.ViewModeMonth, date(t, "2015-02-10"))
	require.Len(t, w.Days, 28)
	for _, d := range w.Days {
		assert.True(t, d.Day.InWindow)
	}
}

func TestComputeWindow_MonthPaddingIsWholeWeeks(t *testing.T) {
	ref := date(t, "2020-01-15")
	for i := 0; i < 72; i++ {
		d := ref.AddDate(0, i, 0)
		w := ComputeWindow(constants.ViewModeMonth, d)

		require.Zero(t, len(w.Days)%7, "month %s", d.Format("2006-01"))
		require.Equal(t, time.Sunday, w.Days[0].Weekday)
		require.Equal(t, time.Saturday, w.Days[len(w.Days)-1].Weekday)
		require.Equal(t, 1, w.Start.Day())
		require.Equal(t, d.Month(), w.End.Month())
		require.NotEqual(t, d.Month(), w.End.AddDate(0, 0, 1).Month())
	}
}

func TestComputeWindow_Deterministic(t *testing.T) {
	ref := date(t, "2024-02-29")
	for _, mode := range constants.GetAllViewModes() {
		first := ComputeWindow(mode, ref)
		second := ComputeWindow(mode, ref)
		assert.Equal(t, first, second, "mode %s", mode)
	}
}

func TestComputeWindow_KeepsCalendarDayOfReference(t *testing.T) {
	pacific := time.FixedZone("PDT", -7*3600)
	ref := time.Date(2024, 6, 5, 23, 30, 0, 0, pacific)

	w := ComputeWindow(constants.ViewModeDay, ref)
	assert.Equal(t, "2024-06-05", w.Days[0].Day.Date)
}

func TestComputeWindow_UnknownModeFallsBackToWeek(t *testing.T) {
	w := ComputeWindow(constants.ViewMode("year"), date(t, "2024-06-05"))
	assert.Equal(t, constants.ViewModeWeek, w.Mode)
	assert.Len(t, w.Days, 7)
}

func TestWindow_Title(t *testing.T) {
	assert.Equal(t, "Wednesday, June 5, 2024", ComputeWindow(constants.ViewModeDay, date(t, "2024-06-05")).Title())
	assert.Equal(t, "Jun 3 - Jun 9, 2024", ComputeWindow(constants.ViewModeWeek, date(t, "2024-06-05")).Title())
	assert.Equal(t, "Dec 30, 2024 - Jan 5, 2025", ComputeWindow(constants.ViewModeWeek, date(t, "2025-01-01")).Title())
}
