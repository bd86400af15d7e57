package viewhelpers

import (
	"fmt"
	"sort"
	"time"

	"github.com/cleancrew/crewboard/internal/constants"
	"github.com/cleancrew/crewboard/internal/logging"
	"github.com/cleancrew/crewboard/internal/models"
)

// Buckets maps calendar cells to the records placed in them
type Buckets map[CellKey][]models.MergedJobRecord

// Bucketize places records into the given cells.
//
// A record lands in the day cell for its scheduled date and, when that date is
// hour-sliced, in the slot of its scheduled hour. Records without a time go to
// the first slot; this is a display fallback, not a scheduling decision. Hours
// outside the slot range clamp to the nearest slot. Unscheduled records and
// records with unparseable dates or times are left out.
//
// Within a cell records are ordered by time, untimed records last, input order on ties.
// The returned map is new on every call.
func Bucketize(records []models.MergedJobRecord, cells []Cell) Buckets {
	logger := logging.GetLogger("bucketizer")

	index := make(map[CellKey]struct{}, len(cells))
	sliced := make(map[string]bool)
	for _, c := range cells {
		index[c.Key()] = struct{}{}
		if !c.IsDayCell() {
			sliced[c.Date] = true
		}
	}

	buckets := make(Buckets)
	for _, rec := range records {
		if !rec.IsScheduled() {
			continue
		}

		date, err := NormalizeDate(rec.ScheduledDate)
		if err != nil {
			logger.Warn().Err(err).Str("job_id", rec.ID).Str("scheduled_date", rec.ScheduledDate).Msg("Skipping job with malformed date")
			continue
		}
		minutes, hasTime, err := ParseClock(rec.ScheduledTime)
		if err != nil {
			logger.Warn().Err(err).Str("job_id", rec.ID).Str("scheduled_time", rec.ScheduledTime).Msg("Skipping job with malformed time")
			continue
		}

		dayKey := DayKey(date)
		if _, ok := index[dayKey]; !ok {
			continue
		}
		buckets[dayKey] = append(buckets[dayKey], rec)

		if !sliced[date] {
			continue
		}
		hour := FirstSlotHour
		if hasTime {
			hour = clampHour(minutes / 60)
		}
		slotKey := SlotKey(date, hour)
		if _, ok := index[slotKey]; ok {
			buckets[slotKey] = append(buckets[slotKey], rec)
		}
	}

	for key := range buckets {
		sortByTime(buckets[key])
	}

	return buckets
}

// Unscheduled returns the records without a scheduled date, in input order
func Unscheduled(records []models.MergedJobRecord) []models.MergedJobRecord {
	result := make([]models.MergedJobRecord, 0)
	for _, rec := range records {
		if !rec.IsScheduled() {
			result = append(result, rec)
		}
	}
	return result
}

// BucketSchedules places staff schedule entries into the day cells of their date,
// ordered by start time.
func BucketSchedules(entries []models.StaffScheduleEntry, cells []Cell) map[CellKey][]models.StaffScheduleEntry {
	logger := logging.GetLogger("bucketizer")

	days := make(map[CellKey]struct{})
	for _, c := range cells {
		if c.IsDayCell() {
			days[c.Key()] = struct{}{}
		}
	}

	result := make(map[CellKey][]models.StaffScheduleEntry)
	for _, e := range entries {
		date, err := NormalizeDate(e.Date)
		if err != nil {
			logger.Warn().Err(err).Str("schedule_id", e.ID).Str("date", e.Date).Msg("Skipping staff schedule with malformed date")
			continue
		}
		key := DayKey(date)
		if _, ok := days[key]; ok {
			result[key] = append(result[key], e)
		}
	}

	for key := range result {
		list := result[key]
		sort.SliceStable(list, func(i, j int) bool {
			return clockLess(list[i].StartTime, list[j].StartTime)
		})
	}

	return result
}

// NormalizeDate reduces a stored date to yyyy-MM-dd. Timestamps such as
// "2024-06-05T00:00:00Z" keep their calendar part; nothing is converted between zones.
func NormalizeDate(raw string) (string, error) {
	s := raw
	if len(s) > 10 && (s[10] == 'T' || s[10] == ' ') {
		s = s[:10]
	}
	if _, err := time.Parse(constants.DateLayout, s); err != nil {
		return "", fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return s, nil
}

// ParseClock parses HH:MM or HH:MM:SS into minutes since midnight.
// An empty string reports hasTime == false without error.
func ParseClock(raw string) (minutes int, hasTime bool, err error) {
	if raw == "" {
		return 0, false, nil
	}
	layout := "15:04"
	if len(raw) > 5 {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, raw)
	if err != nil {
		return 0, false, fmt.Errorf("invalid time %q: %w", raw, err)
	}
	return t.Hour()*60 + t.Minute(), true, nil
}

// FormatTimeLabel renders a scheduled time for display, e.g. "2:30 PM"
func FormatTimeLabel(raw string) string {
	minutes, hasTime, err := ParseClock(raw)
	if err != nil {
		return raw
	}
	if !hasTime {
		return "Time TBD"
	}
	return time.Date(2000, 1, 1, minutes/60, minutes%60, 0, 0, time.UTC).Format("3:04 PM")
}

func clampHour(hour int) int {
	if hour < FirstSlotHour {
		return FirstSlotHour
	}
	if hour > LastSlotHour {
		return LastSlotHour
	}
	return hour
}

func sortByTime(records []models.MergedJobRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return clockLess(records[i].ScheduledTime, records[j].ScheduledTime)
	})
}

// clockLess orders times ascending with missing or unparseable times last
func clockLess(a, b string) bool {
	am, aok, aerr := ParseClock(a)
	bm, bok, berr := ParseClock(b)
	aHas := aok && aerr == nil
	bHas := bok && berr == nil
	switch {
	case aHas && bHas:
		return am < bm
	case aHas:
		return true
	default:
		return false
	}
}
