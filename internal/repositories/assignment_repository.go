package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"crewops_backend/internal/models"
)

// AssignmentRepository defines the interface for assignment database operations.
type AssignmentRepository interface {
	CreateAssignment(executor SQLExecutor, assignment *models.Assignment) (*models.Assignment, error)
	GetAssignmentByID(executor SQLExecutor, id int64) (*models.Assignment, error)
	// GetAssignmentForUpdate locks the assignment row for the duration of the
	// surrounding transaction.
	GetAssignmentForUpdate(executor SQLExecutor, id int64) (*models.Assignment, error)
	GetAssignmentByWorker(executor SQLExecutor, shiftID, employeeID int64) (*models.Assignment, error)
	ListByShift(shiftID int64) ([]models.Assignment, error) // Joins employee details
	UpdateEmployee(executor SQLExecutor, id int64, employeeID int64, status string) error
	UpdateStatus(executor SQLExecutor, id int64, status string) error
	// UpdateStatusesByShift moves every assignment under the shift whose status
	// is in fromStatuses to toStatus and returns the affected assignment IDs
	// with their employee IDs.
	UpdateStatusesByShift(executor SQLExecutor, shiftID int64, fromStatuses []string, toStatus string) ([]models.Assignment, error)
	CountUnfinished(executor SQLExecutor, shiftID int64) (int, error)
	DeleteAssignment(executor SQLExecutor, id int64) error
}

type assignmentRepository struct {
	db *sql.DB
}

// NewAssignmentRepository creates a new instance of AssignmentRepository.
func NewAssignmentRepository(db *sql.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

const selectAssignmentFields = `id, shift_id, employee_id, role_code, role_label, status, created_at, updated_at`

func scanAssignment(row scanner) (*models.Assignment, error) {
	var a models.Assignment
	err := row.Scan(
		&a.ID, &a.ShiftID, &a.EmployeeID, &a.RoleCode, &a.RoleLabel,
		&a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning assignment: %v", ErrDatabaseError, err)
	}
	return &a, nil
}

// CreateAssignment inserts a new assignment slot. A duplicate
// (shift, employee) pair maps to ErrDuplicateKey via the partial unique
// index, including under concurrent inserts.
func (r *assignmentRepository) CreateAssignment(executor SQLExecutor, assignment *models.Assignment) (*models.Assignment, error) {
	query := `INSERT INTO assignments (shift_id, employee_id, role_code, role_label, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id, created_at, updated_at`

	currentTime := time.Now()
	err := executor.QueryRow(query,
		assignment.ShiftID, assignment.EmployeeID, assignment.RoleCode,
		assignment.RoleLabel, assignment.Status, currentTime, currentTime,
	).Scan(&assignment.ID, &assignment.CreatedAt, &assignment.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("%w: creating assignment: %v", ErrDatabaseError, err)
	}
	return assignment, nil
}

func (r *assignmentRepository) GetAssignmentByID(executor SQLExecutor, id int64) (*models.Assignment, error) {
	query := "SELECT " + selectAssignmentFields + " FROM assignments WHERE id = $1"
	return scanAssignment(executor.QueryRow(query, id))
}

func (r *assignmentRepository) GetAssignmentForUpdate(executor SQLExecutor, id int64) (*models.Assignment, error) {
	query := "SELECT " + selectAssignmentFields + " FROM assignments WHERE id = $1 FOR UPDATE"
	return scanAssignment(executor.QueryRow(query, id))
}

func (r *assignmentRepository) GetAssignmentByWorker(executor SQLExecutor, shiftID, employeeID int64) (*models.Assignment, error) {
	query := "SELECT " + selectAssignmentFields + " FROM assignments WHERE shift_id = $1 AND employee_id = $2"
	return scanAssignment(executor.QueryRow(query, shiftID, employeeID))
}

// ListByShift returns the shift's roster with employee details, ordered by
// role then name so crew chiefs come first.
func (r *assignmentRepository) ListByShift(shiftID int64) ([]models.Assignment, error) {
	query := `SELECT a.id, a.shift_id, a.employee_id, a.role_code, a.role_label, a.status,
	                 a.created_at, a.updated_at,
	                 COALESCE(u.id, 0), COALESCE(u.username, ''), u.full_name, COALESCE(u.role, '')
	          FROM assignments a
	          LEFT JOIN users u ON a.employee_id = u.id
	          WHERE a.shift_id = $1
	          ORDER BY a.role_code, u.full_name`

	rows, err := r.db.Query(query, shiftID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying shift roster: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	assignments := []models.Assignment{}
	for rows.Next() {
		var a models.Assignment
		var userID int64
		var username string
		var fullName sql.NullString
		var role string
		if err := rows.Scan(
			&a.ID, &a.ShiftID, &a.EmployeeID, &a.RoleCode, &a.RoleLabel, &a.Status,
			&a.CreatedAt, &a.UpdatedAt,
			&userID, &username, &fullName, &role,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning roster row: %v", ErrDatabaseError, err)
		}
		if a.EmployeeID != nil {
			employee := models.User{ID: userID, Username: username, Role: role}
			if fullName.Valid {
				employee.FullName = &fullName.String
			}
			a.Employee = &employee
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating roster rows: %v", ErrDatabaseError, err)
	}
	return assignments, nil
}

// UpdateEmployee swaps the worker on a slot and resets its status.
// A duplicate (shift, employee) pair maps to ErrDuplicateKey.
func (r *assignmentRepository) UpdateEmployee(executor SQLExecutor, id int64, employeeID int64, status string) error {
	result, err := executor.Exec(
		`UPDATE assignments SET employee_id = $1, status = $2, updated_at = $3 WHERE id = $4`,
		employeeID, status, time.Now(), id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("%w: reassigning assignment %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *assignmentRepository) UpdateStatus(executor SQLExecutor, id int64, status string) error {
	result, err := executor.Exec(
		`UPDATE assignments SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("%w: updating assignment %d status: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *assignmentRepository) UpdateStatusesByShift(executor SQLExecutor, shiftID int64, fromStatuses []string, toStatus string) ([]models.Assignment, error) {
	var placeholders string
	args := []interface{}{toStatus, time.Now(), shiftID}
	for i, status := range fromStatuses {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += fmt.Sprintf("$%d", len(args)+1)
		args = append(args, status)
	}

	query := fmt.Sprintf(
		`UPDATE assignments SET status = $1, updated_at = $2
		 WHERE shift_id = $3 AND status IN (%s)
		 RETURNING id, shift_id, employee_id, role_code, role_label, status, created_at, updated_at`,
		placeholders,
	)

	rows, err := executor.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: bulk updating assignment statuses: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	updated := []models.Assignment{}
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(
			&a.ID, &a.ShiftID, &a.EmployeeID, &a.RoleCode, &a.RoleLabel,
			&a.Status, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning bulk-updated assignment: %v", ErrDatabaseError, err)
		}
		updated = append(updated, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating bulk-updated assignments: %v", ErrDatabaseError, err)
	}
	return updated, nil
}

// CountUnfinished counts assignments that are neither shift_ended nor
// no_show. Run inside the finalize transaction so the precondition check
// and the timesheet write see the same snapshot.
func (r *assignmentRepository) CountUnfinished(executor SQLExecutor, shiftID int64) (int, error) {
	query := `SELECT COUNT(*) FROM assignments WHERE shift_id = $1 AND status NOT IN ($2, $3)`

	var count int
	err := executor.QueryRow(query, shiftID,
		models.AssignmentStatusShiftEnded, models.AssignmentStatusNoShow,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting unfinished assignments: %v", ErrDatabaseError, err)
	}
	return count, nil
}

func (r *assignmentRepository) DeleteAssignment(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting assignment ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
