package models

import "strings"

// JobStatus is the lifecycle state of a cleaning job
type JobStatus string

const (
	JobStatusScheduled  JobStatus = "scheduled"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// IsValid checks if the status is one of the known values
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusScheduled, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled:
		return true
	}
	return false
}

// Label returns a human-readable status label
func (s JobStatus) Label() string {
	switch s {
	case JobStatusInProgress:
		return "In Progress"
	case JobStatusCompleted:
		return "Completed"
	case JobStatusCancelled:
		return "Cancelled"
	default:
		return "Scheduled"
	}
}

// ParseJobStatus returns the status for a raw value and whether it was recognised.
// Unknown values degrade to JobStatusScheduled.
func ParseJobStatus(raw string) (JobStatus, bool) {
	s := JobStatus(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_"))
	if s.IsValid() {
		return s, true
	}
	return JobStatusScheduled, false
}

// Priority is the urgency tag of a job
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid checks if the priority is one of the known values
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ParsePriority returns the priority for a raw value and whether it was recognised.
// Unknown values degrade to PriorityNormal.
func ParsePriority(raw string) (Priority, bool) {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	if p.IsValid() {
		return p, true
	}
	return PriorityNormal, false
}

// ServiceType tags the kind of cleaning work
type ServiceType string

const (
	ServiceRegular          ServiceType = "regular"
	ServiceDeep             ServiceType = "deep"
	ServiceMoveInOut        ServiceType = "move_in_out"
	ServicePostConstruction ServiceType = "post_construction"
	ServiceOffice           ServiceType = "office"
	ServiceCarpet           ServiceType = "carpet"
	ServiceWindow           ServiceType = "window"
	ServiceOther            ServiceType = "other"
)

var serviceTypes = map[ServiceType]string{
	ServiceRegular:          "Regular Cleaning",
	ServiceDeep:             "Deep Cleaning",
	ServiceMoveInOut:        "Move In/Out",
	ServicePostConstruction: "Post Construction",
	ServiceOffice:           "Office Cleaning",
	ServiceCarpet:           "Carpet Cleaning",
	ServiceWindow:           "Window Cleaning",
	ServiceOther:            "Other",
}

// IsValid checks if the service type is one of the known values
func (t ServiceType) IsValid() bool {
	_, ok := serviceTypes[t]
	return ok
}

// Label returns a human-readable service name
func (t ServiceType) Label() string {
	if label, ok := serviceTypes[t]; ok {
		return label
	}
	return serviceTypes[ServiceOther]
}

// ParseServiceType returns the service type for a raw value and whether it was recognised.
// Unknown values degrade to ServiceOther.
func ParseServiceType(raw string) (ServiceType, bool) {
	t := ServiceType(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_"))
	if t.IsValid() {
		return t, true
	}
	return ServiceOther, false
}
