package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"crewops_backend/internal/models"
)

// ShiftRepository defines the interface for shift database operations.
type ShiftRepository interface {
	CreateShift(executor SQLExecutor, shift *models.Shift) (*models.Shift, error)
	GetShiftByID(id int64) (*models.Shift, error) // Joins job and crew chief details
	GetShiftForUpdate(executor SQLExecutor, id int64) (*models.Shift, error)
	GetShifts(filters models.ShiftFilters) ([]models.Shift, int, error)
	UpdateShift(executor SQLExecutor, shift *models.Shift) (*models.Shift, error)
	UpdateShiftStatus(executor SQLExecutor, id int64, status string) error
	DeleteShift(executor SQLExecutor, id int64) error
}

type shiftRepository struct {
	db *sql.DB
}

// NewShiftRepository creates a new instance of ShiftRepository.
func NewShiftRepository(db *sql.DB) ShiftRepository {
	return &shiftRepository{db: db}
}

const selectShiftFields = `
	s.id, s.job_id, s.shift_date, s.start_time, s.end_time, s.location, s.crew_chief_id,
	s.requested_workers, s.status, s.notes, s.created_at, s.updated_at,
	j.id, j.client_id, j.name, j.location, j.status,
	COALESCE(u.id, 0), COALESCE(u.username, ''), u.full_name
`
const getShiftJoins = `
	FROM shifts s
	JOIN jobs j ON s.job_id = j.id
	LEFT JOIN users u ON s.crew_chief_id = u.id
`

// scanShiftRow scans a shift with its joined job and crew chief. For list
// queries it also scans the windowed total count.
func scanShiftRow(row scanner, isList bool) (*models.Shift, int, error) {
	var shift models.Shift
	var job models.Job
	var shiftDate time.Time
	var chiefID int64
	var chiefUsername string
	var chiefFullName sql.NullString
	var totalCount int

	scanDest := []interface{}{
		&shift.ID, &shift.JobID, &shiftDate, &shift.StartTime, &shift.EndTime,
		&shift.Location, &shift.CrewChiefID, &shift.RequestedWorkers, &shift.Status,
		&shift.Notes, &shift.CreatedAt, &shift.UpdatedAt,
		&job.ID, &job.ClientID, &job.Name, &job.Location, &job.Status,
		&chiefID, &chiefUsername, &chiefFullName,
	}
	if isList {
		scanDest = append(scanDest, &totalCount)
	}

	if err := row.Scan(scanDest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("%w: scanning shift with details: %v", ErrDatabaseError, err)
	}

	shift.ShiftDate = shiftDate.Format("2006-01-02")
	shift.Job = &job
	if shift.CrewChiefID != nil {
		chief := models.User{ID: chiefID, Username: chiefUsername, Role: models.RoleCrewChief}
		if chiefFullName.Valid {
			chief.FullName = &chiefFullName.String
		}
		shift.CrewChief = &chief
	}
	return &shift, totalCount, nil
}

func (r *shiftRepository) CreateShift(executor SQLExecutor, shift *models.Shift) (*models.Shift, error) {
	query := `INSERT INTO shifts
	            (job_id, shift_date, start_time, end_time, location, crew_chief_id, requested_workers, status, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id, created_at, updated_at`

	currentTime := time.Now()
	err := executor.QueryRow(query,
		shift.JobID, shift.ShiftDate, shift.StartTime, shift.EndTime, shift.Location,
		shift.CrewChiefID, shift.RequestedWorkers, shift.Status, shift.Notes,
		currentTime, currentTime,
	).Scan(&shift.ID, &shift.CreatedAt, &shift.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: creating shift: %v", ErrDatabaseError, err)
	}
	return shift, nil
}

func (r *shiftRepository) GetShiftByID(id int64) (*models.Shift, error) {
	query := "SELECT " + selectShiftFields + getShiftJoins + " WHERE s.id = $1"
	shift, _, err := scanShiftRow(r.db.QueryRow(query, id), false)
	return shift, err
}

// GetShiftForUpdate reads a shift row with FOR UPDATE so lifecycle
// transactions (finalize, bulk end) serialize against each other on the
// shift they operate on.
func (r *shiftRepository) GetShiftForUpdate(executor SQLExecutor, id int64) (*models.Shift, error) {
	query := `SELECT id, job_id, shift_date, start_time, end_time, location, crew_chief_id,
	                 requested_workers, status, notes, created_at, updated_at
	          FROM shifts WHERE id = $1 FOR UPDATE`

	var shift models.Shift
	var shiftDate time.Time
	err := executor.QueryRow(query, id).Scan(
		&shift.ID, &shift.JobID, &shiftDate, &shift.StartTime, &shift.EndTime,
		&shift.Location, &shift.CrewChiefID, &shift.RequestedWorkers, &shift.Status,
		&shift.Notes, &shift.CreatedAt, &shift.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: locking shift ID %d: %v", ErrDatabaseError, id, err)
	}
	shift.ShiftDate = shiftDate.Format("2006-01-02")
	return &shift, nil
}

func (r *shiftRepository) GetShifts(filters models.ShiftFilters) ([]models.Shift, int, error) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.JobID != nil {
		conditions = append(conditions, fmt.Sprintf("s.job_id = $%d", argCount))
		args = append(args, *filters.JobID)
		argCount++
	}
	if filters.CrewChiefID != nil {
		conditions = append(conditions, fmt.Sprintf("s.crew_chief_id = $%d", argCount))
		args = append(args, *filters.CrewChiefID)
		argCount++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("s.shift_date >= $%d", argCount))
		args = append(args, *filters.DateFrom)
		argCount++
	}
	if filters.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("s.shift_date <= $%d", argCount))
		args = append(args, *filters.DateTo)
		argCount++
	}

	query := "SELECT " + selectShiftFields + ", COUNT(*) OVER() AS total_count " + getShiftJoins
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY s.shift_date DESC, s.start_time DESC"

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
		return nil, 0, fmt.Errorf("%w: querying shifts: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	shifts := []models.Shift{}
	totalCount := 0
	for rows.Next() {
		shift, scannedCount, scanErr := scanShiftRow(rows, true)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		shifts = append(shifts, *shift)
		totalCount = scannedCount
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating shift rows: %v", ErrDatabaseError, err)
	}
	return shifts, totalCount, nil
}

func (r *shiftRepository) UpdateShift(executor SQLExecutor, shift *models.Shift) (*models.Shift, error) {
	query := `UPDATE shifts SET
	            job_id = $1, shift_date = $2, start_time = $3, end_time = $4, location = $5,
	            crew_chief_id = $6, requested_workers = $7, status = $8, notes = $9, updated_at = $10
	          WHERE id = $11
	          RETURNING updated_at`

	shift.UpdatedAt = time.Now()
	err := executor.QueryRow(query,
		shift.JobID, shift.ShiftDate, shift.StartTime, shift.EndTime, shift.Location,
		shift.CrewChiefID, shift.RequestedWorkers, shift.Status, shift.Notes,
		shift.UpdatedAt, shift.ID,
	).Scan(&shift.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating shift ID %d: %v", ErrDatabaseError, shift.ID, err)
	}
	return shift, nil
}

func (r *shiftRepository) UpdateShiftStatus(executor SQLExecutor, id int64, status string) error {
	result, err := executor.Exec(
		`UPDATE shifts SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("%w: updating shift %d status: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteShift hard-deletes a shift. Assignments and their time entries go
// with it via ON DELETE CASCADE; callers gate this behind an explicit
// confirmation flag.
func (r *shiftRepository) DeleteShift(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM shifts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting shift ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
