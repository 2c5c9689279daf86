package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"crewops_backend/internal/models"
)

// TimesheetRepository defines the interface for timesheet database operations.
type TimesheetRepository interface {
	// UpsertSubmission creates the shift's timesheet in pending_client_approval
	// or, when one already exists, refreshes the submission stamps without
	// touching its status. One statement, so a finalize retry can never
	// produce a second row.
	UpsertSubmission(executor SQLExecutor, shiftID, submittedBy int64, submittedAt time.Time) (*models.Timesheet, error)
	GetByID(id int64) (*models.Timesheet, error) // Joins shift details
	GetByIDForUpdate(executor SQLExecutor, id int64) (*models.Timesheet, error)
	GetByShiftID(executor SQLExecutor, shiftID int64) (*models.Timesheet, error)
	UpdateClientApproval(executor SQLExecutor, id int64, status string, approvedBy string, approvedAt time.Time, signature *string) error
	UpdateManagerApproval(executor SQLExecutor, id int64, status string, approvedBy int64, approvedAt time.Time, signature *string) error
	UpdateStatus(executor SQLExecutor, id int64, status string) error
	List(filters models.TimesheetFilters) ([]models.Timesheet, int, error)
}

type timesheetRepository struct {
	db *sql.DB
}

// NewTimesheetRepository creates a new instance of TimesheetRepository.
func NewTimesheetRepository(db *sql.DB) TimesheetRepository {
	return &timesheetRepository{db: db}
}

const selectTimesheetFields = `
	t.id, t.shift_id, t.status, t.submitted_by, t.submitted_at,
	t.client_approved_by, t.client_approved_at, t.client_signature,
	t.manager_approved_by, t.manager_approved_at, t.manager_signature,
	t.created_at, t.updated_at
`

func scanTimesheet(row scanner, extraDest ...interface{}) (*models.Timesheet, error) {
	var t models.Timesheet
	dest := []interface{}{
		&t.ID, &t.ShiftID, &t.Status, &t.SubmittedBy, &t.SubmittedAt,
		&t.ClientApprovedBy, &t.ClientApprovedAt, &t.ClientSignature,
		&t.ManagerApprovedBy, &t.ManagerApprovedAt, &t.ManagerSignature,
		&t.CreatedAt, &t.UpdatedAt,
	}
	dest = append(dest, extraDest...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning timesheet: %v", ErrDatabaseError, err)
	}
	return &t, nil
}

func (r *timesheetRepository) UpsertSubmission(executor SQLExecutor, shiftID, submittedBy int64, submittedAt time.Time) (*models.Timesheet, error) {
	query := `INSERT INTO timesheets (shift_id, status, submitted_by, submitted_at, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $5)
	          ON CONFLICT (shift_id) DO UPDATE
	            SET submitted_by = EXCLUDED.submitted_by,
	                submitted_at = EXCLUDED.submitted_at,
	                updated_at   = EXCLUDED.updated_at
	          RETURNING id, shift_id, status, submitted_by, submitted_at,
	                    client_approved_by, client_approved_at, client_signature,
	                    manager_approved_by, manager_approved_at, manager_signature,
	                    created_at, updated_at`

	return scanTimesheet(executor.QueryRow(query,
		shiftID, models.TimesheetStatusPendingClient, submittedBy, submittedAt, time.Now(),
	))
}

func (r *timesheetRepository) GetByID(id int64) (*models.Timesheet, error) {
	query := `SELECT ` + selectTimesheetFields + `,
	                 s.id, s.job_id, s.shift_date, s.start_time, s.end_time, s.status
	          FROM timesheets t
	          JOIN shifts s ON t.shift_id = s.id
	          WHERE t.id = $1`

	var shift models.Shift
	var shiftDate time.Time
	t, err := scanTimesheet(r.db.QueryRow(query, id),
		&shift.ID, &shift.JobID, &shiftDate, &shift.StartTime, &shift.EndTime, &shift.Status,
	)
	if err != nil {
		return nil, err
	}
	shift.ShiftDate = shiftDate.Format("2006-01-02")
	t.Shift = &shift
	return t, nil
}

func (r *timesheetRepository) GetByIDForUpdate(executor SQLExecutor, id int64) (*models.Timesheet, error) {
	query := "SELECT " + strings.ReplaceAll(selectTimesheetFields, "t.", "") + " FROM timesheets WHERE id = $1 FOR UPDATE"
	return scanTimesheet(executor.QueryRow(query, id))
}

func (r *timesheetRepository) GetByShiftID(executor SQLExecutor, shiftID int64) (*models.Timesheet, error) {
	query := "SELECT " + strings.ReplaceAll(selectTimesheetFields, "t.", "") + " FROM timesheets WHERE shift_id = $1"
	return scanTimesheet(executor.QueryRow(query, shiftID))
}

func (r *timesheetRepository) UpdateClientApproval(executor SQLExecutor, id int64, status string, approvedBy string, approvedAt time.Time, signature *string) error {
	result, err := executor.Exec(
		`UPDATE timesheets SET status = $1, client_approved_by = $2, client_approved_at = $3,
		        client_signature = $4, updated_at = $5
		 WHERE id = $6`,
		status, approvedBy, approvedAt, signature, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("%w: recording client approval on timesheet %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *timesheetRepository) UpdateManagerApproval(executor SQLExecutor, id int64, status string, approvedBy int64, approvedAt time.Time, signature *string) error {
	result, err := executor.Exec(
		`UPDATE timesheets SET status = $1, manager_approved_by = $2, manager_approved_at = $3,
		        manager_signature = $4, updated_at = $5
		 WHERE id = $6`,
		status, approvedBy, approvedAt, signature, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("%w: recording manager approval on timesheet %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *timesheetRepository) UpdateStatus(executor SQLExecutor, id int64, status string) error {
	result, err := executor.Exec(
		`UPDATE timesheets SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("%w: updating timesheet %d status: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *timesheetRepository) List(filters models.TimesheetFilters) ([]models.Timesheet, int, error) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.JobID != nil {
		conditions = append(conditions, fmt.Sprintf("s.job_id = $%d", argCount))
		args = append(args, *filters.JobID)
		argCount++
	}

	query := `SELECT ` + selectTimesheetFields + `,
	                 s.id, s.job_id, s.shift_date, s.start_time, s.end_time, s.status,
	                 COUNT(*) OVER() AS total_count
	          FROM timesheets t
	          JOIN shifts s ON t.shift_id = s.id`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY t.submitted_at DESC NULLS LAST"

	if filters.PageSize > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, filters.PageSize)
		argCount++
		if filters.Page > 0 {
			query += fmt.Sprintf(" OFFSET $%d", argCount)
			args = append(args, (filters.Page-1)*filters.PageSize)
		}
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying timesheets: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	timesheets := []models.Timesheet{}
	totalCount := 0
	for rows.Next() {
		var shift models.Shift
		var shiftDate time.Time
		t, scanErr := scanTimesheet(rows,
			&shift.ID, &shift.JobID, &shiftDate, &shift.StartTime, &shift.EndTime, &shift.Status,
			&totalCount,
		)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		shift.ShiftDate = shiftDate.Format("2006-01-02")
		t.Shift = &shift
		timesheets = append(timesheets, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating timesheet rows: %v", ErrDatabaseError, err)
	}
	return timesheets, totalCount, nil
}
