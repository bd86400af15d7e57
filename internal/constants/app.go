// Package constants provides shared constants for the crewboard application
package constants

// AppName identifies the service in logs and the CLI
const AppName = "crewboard"

// Table names observed by the change feed
const (
	TableClients        = "clients"
	TableStaff          = "staff"
	TableJobs           = "jobs"
	TableJobAssignments = "job_staff_assignments"
	TableStaffSchedules = "staff_schedules"
)

// DateLayout is the canonical yyyy-MM-dd layout used for every date key
const DateLayout = "2006-01-02"
