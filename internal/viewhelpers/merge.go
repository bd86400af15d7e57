package viewhelpers

import (
	"github.com/cleancrew/crewboard/internal/models"
)

// MergeAssignments joins jobs with their assigned staff names.
// Names keep the order of the assignment rows. Assignments whose staff id is
// missing from the directory are dropped. Every record gets a non-nil staff list.
func MergeAssignments(jobs []models.Job, assignments []models.StaffAssignment, directory map[string]models.Staff) []models.MergedJobRecord {
	namesByJob := make(map[string][]string, len(jobs))
	for _, a := range assignments {
		staff, ok := directory[a.StaffID]
		if !ok {
			continue
		}
		namesByJob[a.JobID] = append(namesByJob[a.JobID], staff.Name)
	}

	merged := make([]models.MergedJobRecord, 0, len(jobs))
	for _, job := range jobs {
		names := make([]string, 0, len(namesByJob[job.ID]))
		names = append(names, namesByJob[job.ID]...)
		merged = append(merged, models.MergedJobRecord{
			Job:       job,
			Staff:     names,
			TimeLabel: FormatTimeLabel(job.ScheduledTime),
		})
	}
	return merged
}

// CollectAssignments flattens the assignment rows nested in jobs
func CollectAssignments(jobs []models.Job) []models.StaffAssignment {
	var all []models.StaffAssignment
	for _, job := range jobs {
		all = append(all, job.Assignments...)
	}
	return all
}

// StaffDirectory indexes staff by id
func StaffDirectory(staff []models.Staff) map[string]models.Staff {
	directory := make(map[string]models.Staff, len(staff))
	for _, s := range staff {
		directory[s.ID] = s
	}
	return directory
}
