// Package models holds the read-only records exchanged with the store
package models

// Job is a scheduled (or not yet scheduled) piece of cleaning work
type Job struct {
	ID             string
	ClientID       string
	ClientName     string
	Title          string
	ServiceType    ServiceType
	ScheduledDate  string // yyyy-MM-dd, empty when unscheduled
	ScheduledTime  string // HH:MM or HH:MM:SS, empty when not set
	EstimatedHours float64
	Status         JobStatus
	Priority       Priority
	Location       string
	Price          *float64
	Assignments    []StaffAssignment
}

// IsScheduled reports whether the job has a calendar date
func (j Job) IsScheduled() bool {
	return j.ScheduledDate != ""
}

// StaffAssignment links one job to one staff member
type StaffAssignment struct {
	ID      string
	JobID   string
	StaffID string
}

// MergedJobRecord is a job enriched with resolved staff names and a display time
type MergedJobRecord struct {
	Job
	Staff     []string
	TimeLabel string
}

// JobFilter narrows a job fetch. From and To are inclusive yyyy-MM-dd bounds.
type JobFilter struct {
	From               string
	To                 string
	IncludeUnscheduled bool
	Statuses           []JobStatus
}

// Client is a customer of the cleaning company
type Client struct {
	ID      string
	Name    string
	Email   string
	Phone   string
	Address string
}
