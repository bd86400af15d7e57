package models

// Staff is a member of the cleaning crew
type Staff struct {
	ID        string
	Name      string
	Role      string
	Status    string
	Location  string
	Phone     string
	Rating    float64
	JobsToday int
}

// StaffScheduleEntry declares when a staff member is available on a date
type StaffScheduleEntry struct {
	ID        string
	StaffID   string
	Date      string // yyyy-MM-dd
	StartTime string // HH:MM
	EndTime   string // HH:MM
	Available bool
}

// ScheduleFilter narrows a staff schedule fetch. Bounds are inclusive; empty means unbounded.
type ScheduleFilter struct {
	From string
	To   string
}
