package handlers

import (
	"fmt"
	"time"

	"github.com/cleancrew/crewboard/internal/constants"
	"github.com/cleancrew/crewboard/internal/models"
	"github.com/cleancrew/crewboard/internal/refresh"
	"github.com/cleancrew/crewboard/internal/viewhelpers"
)

// CalendarResponse is the JSON rendering of a calendar snapshot
type CalendarResponse struct {
	Seq         uint64          `json:"seq"`
	State       refresh.State   `json:"state"`
	Empty       bool            `json:"empty"`
	Mode        string          `json:"mode"`
	Title       string          `json:"title"`
	Reference   string          `json:"reference_date"`
	Start       string          `json:"start"`
	End         string          `json:"end"`
	GridStart   string          `json:"grid_start"`
	GridEnd     string          `json:"grid_end"`
	Weeks       [][]DayResponse `json:"weeks"`
	Unscheduled []JobResponse   `json:"unscheduled"`
	Error       *ErrorResponse  `json:"error,omitempty"`
	UpdatedAt   string          `json:"updated_at"`
}

// DayResponse is one day of the grid
type DayResponse struct {
	Date       string             `json:"date"`
	DayOfMonth int                `json:"day_of_month"`
	Weekday    string             `json:"weekday"`
	InWindow   bool               `json:"in_window"`
	Jobs       []JobResponse      `json:"jobs"`
	Slots      []SlotResponse     `json:"slots,omitempty"`
	Schedules  []ScheduleResponse `json:"schedules"`
}

// SlotResponse is one hourly slot of a day
type SlotResponse struct {
	Hour  int           `json:"hour"`
	Label string        `json:"label"`
	Jobs  []JobResponse `json:"jobs"`
}

// JobResponse is a merged job record
type JobResponse struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	ClientName     string   `json:"client_name"`
	ServiceType    string   `json:"service_type"`
	ServiceLabel   string   `json:"service_label"`
	Date           string   `json:"date,omitempty"`
	Time           string   `json:"time,omitempty"`
	TimeLabel      string   `json:"time_label"`
	Status         string   `json:"status"`
	StatusLabel    string   `json:"status_label"`
	Priority       string   `json:"priority"`
	Location       string   `json:"location"`
	EstimatedHours float64  `json:"estimated_hours"`
	Price          *float64 `json:"price,omitempty"`
	Staff          []string `json:"staff"`
}

// ScheduleResponse is a staff availability entry
type ScheduleResponse struct {
	StaffID   string `json:"staff_id"`
	StaffName string `json:"staff_name,omitempty"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Available bool   `json:"available"`
}

func newCalendarResponse(snap *refresh.Snapshot) CalendarResponse {
	w := snap.Window
	resp := CalendarResponse{
		Seq:         snap.Seq,
		State:       snap.State,
		Empty:       snap.Empty(),
		Mode:        w.Mode.String(),
		Title:       w.Title(),
		Reference:   snap.Navigator.ReferenceDate().Format(constants.DateLayout),
		Start:       w.Start.Format(constants.DateLayout),
		End:         w.End.Format(constants.DateLayout),
		GridStart:   w.GridStart.Format(constants.DateLayout),
		GridEnd:     w.GridEnd.Format(constants.DateLayout),
		Weeks:       make([][]DayResponse, 0),
		Unscheduled: jobResponses(snap.Unscheduled),
		UpdatedAt:   snap.UpdatedAt.Format(time.RFC3339),
	}
	if snap.State == refresh.StateError {
		resp.Error = &ErrorResponse{Code: ErrCodeCalendarLoadFailed, Message: GetErrorMessage(ErrCodeCalendarLoadFailed)}
	}

	names := viewhelpers.StaffDirectory(snap.Staff)
	for _, week := range w.Weeks() {
		row := make([]DayResponse, 0, len(week))
		for _, d := range week {
			day := DayResponse{
				Date:       d.Day.Date,
				DayOfMonth: d.DayOfMonth,
				Weekday:    d.Weekday.String(),
				InWindow:   d.Day.InWindow,
				Jobs:       jobResponses(snap.Cells[d.Day.Key()]),
				Schedules:  scheduleResponses(snap.Schedules[d.Day.Key()], names),
			}
			for _, slot := range d.Slots {
				day.Slots = append(day.Slots, SlotResponse{
					Hour:  slot.Hour,
					Label: hourLabel(slot.Hour),
					Jobs:  jobResponses(snap.Cells[slot.Key()]),
				})
			}
			row = append(row, day)
		}
		resp.Weeks = append(resp.Weeks, row)
	}
	return resp
}

func jobResponses(records []models.MergedJobRecord) []JobResponse {
	out := make([]JobResponse, 0, len(records))
	for _, r := range records {
		out = append(out, JobResponse{
			ID:             r.ID,
			Title:          r.Title,
			ClientName:     r.ClientName,
			ServiceType:    string(r.ServiceType),
			ServiceLabel:   r.ServiceType.Label(),
			Date:           r.ScheduledDate,
			Time:           r.ScheduledTime,
			TimeLabel:      r.TimeLabel,
			Status:         string(r.Status),
			StatusLabel:    r.Status.Label(),
			Priority:       string(r.Priority),
			Location:       r.Location,
			EstimatedHours: r.EstimatedHours,
			Price:          r.Price,
			Staff:          r.Staff,
		})
	}
	return out
}

func scheduleResponses(entries []models.StaffScheduleEntry, names map[string]models.Staff) []ScheduleResponse {
	out := make([]ScheduleResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ScheduleResponse{
			StaffID:   e.StaffID,
			StaffName: names[e.StaffID].Name,
			StartTime: e.StartTime,
			EndTime:   e.EndTime,
			Available: e.Available,
		})
	}
	return out
}

// hourLabel renders a slot hour as "6 AM", "12 PM", "10 PM"
func hourLabel(hour int) string {
	switch {
	case hour == 0:
		return "12 AM"
	case hour < 12:
		return fmt.Sprintf("%d AM", hour)
	case hour == 12:
		return "12 PM"
	default:
		return fmt.Sprintf("%d PM", hour-12)
	}
}
