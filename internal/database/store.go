package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cleancrew/crewboard/internal/constants"
	"github.com/cleancrew/crewboard/internal/logging"
	"github.com/cleancrew/crewboard/internal/models"
	"github.com/cleancrew/crewboard/internal/signals"
)

var (
	// ErrNotFound is returned when the targeted row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrInvalidStatus is returned for a status outside the job status set
	ErrInvalidStatus = errors.New("invalid job status")
)

// Store reads and writes scheduling rows and reports every mutation on the change feed
type Store struct {
	db     *DB
	feed   *signals.ChangeFeed
	logger zerolog.Logger
}

// NewStore creates a store. feed may be nil when no one listens for changes.
func NewStore(db *DB, feed *signals.ChangeFeed) *Store {
	return &Store{
		db:     db,
		feed:   feed,
		logger: logging.GetLogger("store"),
	}
}

func (s *Store) emit(ctx context.Context, table string, op signals.ChangeOp, rowID string) {
	if s.feed == nil {
		return
	}
	s.logger.Debug().Str("table", table).Str("op", string(op)).Str("row_id", rowID).Msg("Emitting change event")
	s.feed.Emit(ctx, signals.ChangeEvent{Table: table, Op: op, RowID: rowID})
}

// FetchJobs returns jobs with their client name and assignment rows in one joined read.
// From/To bound scheduled_date inclusively; IncludeUnscheduled adds undated jobs to a bounded fetch.
func (s *Store) FetchJobs(ctx context.Context, filter models.JobFilter) ([]models.Job, error) {
	query := `
SELECT j.id, COALESCE(j.client_id, ''), COALESCE(c.name, ''), j.title, j.service_type,
       COALESCE(j.scheduled_date, ''), COALESCE(j.scheduled_time, ''), j.estimated_hours,
       j.status, j.priority, j.location, j.price,
       COALESCE(a.id, ''), COALESCE(a.staff_id, '')
FROM jobs j
LEFT JOIN clients c ON c.id = j.client_id
LEFT JOIN job_staff_assignments a ON a.job_id = j.id`

	var where []string
	var args []any

	var dateConds []string
	if filter.From != "" {
		dateConds = append(dateConds, "j.scheduled_date >= ?")
		args = append(args, filter.From)
	}
	if filter.To != "" {
		dateConds = append(dateConds, "j.scheduled_date <= ?")
		args = append(args, filter.To)
	}
	if len(dateConds) > 0 {
		cond := strings.Join(dateConds, " AND ")
		if filter.IncludeUnscheduled {
			cond = "(" + cond + ") OR j.scheduled_date IS NULL"
		}
		where = append(where, "("+cond+")")
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, string(st))
		}
		where = append(where, "j.status IN ("+strings.Join(placeholders, ", ")+")")
	}
	if len(where) > 0 {
		query += "\nWHERE " + strings.Join(where, " AND ")
	}
	query += "\nORDER BY j.scheduled_date IS NULL, j.scheduled_date, j.scheduled_time, j.rowid, a.rowid"

	rows, err := s.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]models.Job, 0)
	index := make(map[string]int)
	for rows.Next() {
		var (
			job                           models.Job
			serviceType, status, priority string
			price                         sql.NullFloat64
			assignmentID, staffID         string
		)
		if err := rows.Scan(&job.ID, &job.ClientID, &job.ClientName, &job.Title, &serviceType,
			&job.ScheduledDate, &job.ScheduledTime, &job.EstimatedHours,
			&status, &priority, &job.Location, &price,
			&assignmentID, &staffID); err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}

		i, seen := index[job.ID]
		if !seen {
			s.normalizeJob(&job, serviceType, status, priority)
			if price.Valid {
				p := price.Float64
				job.Price = &p
			}
			job.Assignments = []models.StaffAssignment{}
			jobs = append(jobs, job)
			i = len(jobs) - 1
			index[job.ID] = i
		}
		if assignmentID != "" {
			jobs[i].Assignments = append(jobs[i].Assignments, models.StaffAssignment{
				ID:      assignmentID,
				JobID:   job.ID,
				StaffID: staffID,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate job rows: %w", err)
	}

	s.logger.Debug().Int("count", len(jobs)).Str("from", filter.From).Str("to", filter.To).Msg("Fetched jobs")
	return jobs, nil
}

// normalizeJob maps raw enum columns onto the closed enumerations, logging every degraded value
func (s *Store) normalizeJob(job *models.Job, serviceType, status, priority string) {
	var ok bool
	if job.Status, ok = models.ParseJobStatus(status); !ok {
		s.logger.Warn().Str("job_id", job.ID).Str("status", status).Msg("Unknown job status, using default")
	}
	if job.Priority, ok = models.ParsePriority(priority); !ok {
		s.logger.Warn().Str("job_id", job.ID).Str("priority", priority).Msg("Unknown job priority, using default")
	}
	if job.ServiceType, ok = models.ParseServiceType(serviceType); !ok {
		s.logger.Warn().Str("job_id", job.ID).Str("service_type", serviceType).Msg("Unknown service type, using default")
	}
}

// FetchStaff returns the whole staff directory ordered by name
func (s *Store) FetchStaff(ctx context.Context) ([]models.Staff, error) {
	rows, err := s.db.conn.QueryContext(ctx, `
SELECT id, name, role, status, location, phone, rating, jobs_today
FROM staff
ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query staff: %w", err)
	}
	defer rows.Close()

	staff := make([]models.Staff, 0)
	for rows.Next() {
		var m models.Staff
		if err := rows.Scan(&m.ID, &m.Name, &m.Role, &m.Status, &m.Location, &m.Phone, &m.Rating, &m.JobsToday); err != nil {
			return nil, fmt.Errorf("failed to scan staff row: %w", err)
		}
		staff = append(staff, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate staff rows: %w", err)
	}
	return staff, nil
}

// FetchStaffSchedules returns staff availability entries within the filter's date range
func (s *Store) FetchStaffSchedules(ctx context.Context, filter models.ScheduleFilter) ([]models.StaffScheduleEntry, error) {
	query := `
SELECT id, staff_id, schedule_date, start_time, end_time, is_available
FROM staff_schedules`
	var where []string
	var args []any
	if filter.From != "" {
		where = append(where, "schedule_date >= ?")
		args = append(args, filter.From)
	}
	if filter.To != "" {
		where = append(where, "schedule_date <= ?")
		args = append(args, filter.To)
	}
	if len(where) > 0 {
		query += "\nWHERE " + strings.Join(where, " AND ")
	}
	query += "\nORDER BY schedule_date, start_time, rowid"

	rows, err := s.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query staff schedules: %w", err)
	}
	defer rows.Close()

	entries := make([]models.StaffScheduleEntry, 0)
	for rows.Next() {
		var e models.StaffScheduleEntry
		if err := rows.Scan(&e.ID, &e.StaffID, &e.Date, &e.StartTime, &e.EndTime, &e.Available); err != nil {
			return nil, fmt.Errorf("failed to scan staff schedule row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate staff schedule rows: %w", err)
	}
	return entries, nil
}

// UpdateJobStatus sets the status of a job
func (s *Store) UpdateJobStatus(ctx context.Context, jobID string, status models.JobStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	res, err := s.db.conn.ExecContext(ctx, `
UPDATE jobs SET status = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?`, string(status), jobID)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	} else if n == 0 {
		return fmt.Errorf("job %s: %w", jobID, ErrNotFound)
	}

	s.logger.Info().Str("job_id", jobID).Str("status", string(status)).Msg("Job status updated")
	s.emit(ctx, constants.TableJobs, signals.OpUpdate, jobID)
	return nil
}

// CreateClient inserts a client and returns its id
func (s *Store) CreateClient(ctx context.Context, client models.Client) (string, error) {
	id := uuid.NewString()
	_, err := s.db.conn.ExecContext(ctx, `
INSERT INTO clients (id, name, email, phone, address)
VALUES (?, ?, ?, ?, ?)`, id, client.Name, client.Email, client.Phone, client.Address)
	if err != nil {
		return "", fmt.Errorf("failed to create client: %w", err)
	}
	s.emit(ctx, constants.TableClients, signals.OpInsert, id)
	return id, nil
}

// CreateStaff inserts a staff member and returns its id
func (s *Store) CreateStaff(ctx context.Context, staff models.Staff) (string, error) {
	id := uuid.NewString()
	status := staff.Status
	if status == "" {
		status = "active"
	}
	_, err := s.db.conn.ExecContext(ctx, `
INSERT INTO staff (id, name, role, status, location, phone, rating, jobs_today)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, staff.Name, staff.Role, status, staff.Location, staff.Phone, staff.Rating, staff.JobsToday)
	if err != nil {
		return "", fmt.Errorf("failed to create staff: %w", err)
	}
	s.emit(ctx, constants.TableStaff, signals.OpInsert, id)
	return id, nil
}

// DeleteStaff removes a staff member. Assignment rows referencing it are kept.
func (s *Store) DeleteStaff(ctx context.Context, staffID string) error {
	res, err := s.db.conn.ExecContext(ctx, `DELETE FROM staff WHERE id = ?`, staffID)
	if err != nil {
		return fmt.Errorf("failed to delete staff: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	} else if n == 0 {
		return fmt.Errorf("staff %s: %w", staffID, ErrNotFound)
	}
	s.emit(ctx, constants.TableStaff, signals.OpDelete, staffID)
	return nil
}

// CreateJob inserts a job together with the staff listed in job.Assignments and returns the job id.
func (s *Store) CreateJob(ctx context.Context, job models.Job) (string, error) {
	if job.Status == "" {
		job.Status = models.JobStatusScheduled
	}
	if job.Priority == "" {
		job.Priority = models.PriorityNormal
	}
	if job.ServiceType == "" {
		job.ServiceType = models.ServiceRegular
	}
	if !job.Status.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, job.Status)
	}

	id := uuid.NewString()
	err := s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		var price any
		if job.Price != nil {
			price = *job.Price
		}
		_, err := tx.ExecContext(ctx, `
INSERT INTO jobs (id, client_id, title, service_type, scheduled_date, scheduled_time,
                  estimated_hours, status, priority, location, price)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, nullString(job.ClientID), job.Title, string(job.ServiceType),
			nullString(job.ScheduledDate), nullString(job.ScheduledTime),
			job.EstimatedHours, string(job.Status), string(job.Priority), job.Location, price)
		if err != nil {
			return fmt.Errorf("failed to insert job: %w", err)
		}

		for _, a := range job.Assignments {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO job_staff_assignments (id, job_id, staff_id) VALUES (?, ?, ?)`,
				uuid.NewString(), id, a.StaffID); err != nil {
				return fmt.Errorf("failed to assign staff %s: %w", a.StaffID, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.emit(ctx, constants.TableJobs, signals.OpInsert, id)
	return id, nil
}

// DeleteJob removes a job and its assignment rows
func (s *Store) DeleteJob(ctx context.Context, jobID string) error {
	res, err := s.db.conn.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, jobID)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	} else if n == 0 {
		return fmt.Errorf("job %s: %w", jobID, ErrNotFound)
	}
	s.emit(ctx, constants.TableJobs, signals.OpDelete, jobID)
	return nil
}

// AssignStaff links a staff member to a job and returns the assignment id
func (s *Store) AssignStaff(ctx context.Context, jobID, staffID string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.conn.ExecContext(ctx, `
INSERT INTO job_staff_assignments (id, job_id, staff_id) VALUES (?, ?, ?)`, id, jobID, staffID)
	if err != nil {
		return "", fmt.Errorf("failed to assign staff: %w", err)
	}
	s.emit(ctx, constants.TableJobAssignments, signals.OpInsert, id)
	return id, nil
}

// UnassignStaff removes the link between a staff member and a job
func (s *Store) UnassignStaff(ctx context.Context, jobID, staffID string) error {
	rows, err := s.db.conn.QueryContext(ctx, `
DELETE FROM job_staff_assignments WHERE job_id = ? AND staff_id = ?
RETURNING id`, jobID, staffID)
	if err != nil {
		return fmt.Errorf("failed to unassign staff: %w", err)
	}
	defer rows.Close()

	var removed []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan assignment id: %w", err)
		}
		removed = append(removed, id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to unassign staff: %w", err)
	}
	if len(removed) == 0 {
		return fmt.Errorf("assignment %s/%s: %w", jobID, staffID, ErrNotFound)
	}

	for _, id := range removed {
		s.emit(ctx, constants.TableJobAssignments, signals.OpDelete, id)
	}
	return nil
}

// CreateStaffSchedule inserts an availability entry and returns its id
func (s *Store) CreateStaffSchedule(ctx context.Context, entry models.StaffScheduleEntry) (string, error) {
	id := uuid.NewString()
	_, err := s.db.conn.ExecContext(ctx, `
INSERT INTO staff_schedules (id, staff_id, schedule_date, start_time, end_time, is_available)
VALUES (?, ?, ?, ?, ?, ?)`, id, entry.StaffID, entry.Date, entry.StartTime, entry.EndTime, entry.Available)
	if err != nil {
		return "", fmt.Errorf("failed to create staff schedule: %w", err)
	}
	s.emit(ctx, constants.TableStaffSchedules, signals.OpInsert, id)
	return id, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
