package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"crewops_backend/internal/models"
)

// TimeEntryRepository defines the interface for time-entry database operations.
// Entries are append-then-close: created on clock-in, closed on clock-out,
// never deleted except by assignment cascade.
type TimeEntryRepository interface {
	CreateEntry(executor SQLExecutor, entry *models.TimeEntry) (*models.TimeEntry, error)
	GetActiveEntry(executor SQLExecutor, assignmentID int64) (*models.TimeEntry, error)
	UsedEntryNumbers(executor SQLExecutor, assignmentID int64) ([]int, error)
	CloseEntry(executor SQLExecutor, entryID int64, clockOut time.Time) error
	// CloseActiveByShift closes every open entry under the shift in one
	// statement and returns the affected assignment IDs.
	CloseActiveByShift(executor SQLExecutor, shiftID int64, clockOut time.Time) ([]int64, error)
	CountByAssignment(executor SQLExecutor, assignmentID int64) (int, error)
	ListByAssignment(assignmentID int64) ([]models.TimeEntry, error)
	ListByShift(shiftID int64) ([]models.TimeEntry, error)
}

type timeEntryRepository struct {
	db *sql.DB
}

// NewTimeEntryRepository creates a new instance of TimeEntryRepository.
func NewTimeEntryRepository(db *sql.DB) TimeEntryRepository {
	return &timeEntryRepository{db: db}
}

const selectTimeEntryFields = `id, assignment_id, entry_number, clock_in, clock_out, is_active, created_at, updated_at`

func scanTimeEntry(row scanner) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	err := row.Scan(
		&entry.ID, &entry.AssignmentID, &entry.EntryNumber, &entry.ClockIn,
		&entry.ClockOut, &entry.IsActive, &entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning time entry: %v", ErrDatabaseError, err)
	}
	return &entry, nil
}

// CreateEntry inserts an open entry. The partial unique index on active
// entries turns a concurrent double clock-in into ErrDuplicateKey rather
// than a second open entry.
func (r *timeEntryRepository) CreateEntry(executor SQLExecutor, entry *models.TimeEntry) (*models.TimeEntry, error) {
	query := `INSERT INTO time_entries (assignment_id, entry_number, clock_in, clock_out, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, NULL, TRUE, $4, $5)
	          RETURNING id, created_at, updated_at`

	currentTime := time.Now()
	entry.IsActive = true
	err := executor.QueryRow(query,
		entry.AssignmentID, entry.EntryNumber, entry.ClockIn, currentTime, currentTime,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("%w: creating time entry: %v", ErrDatabaseError, err)
	}
	return entry, nil
}

func (r *timeEntryRepository) GetActiveEntry(executor SQLExecutor, assignmentID int64) (*models.TimeEntry, error) {
	query := "SELECT " + selectTimeEntryFields + " FROM time_entries WHERE assignment_id = $1 AND is_active"
	return scanTimeEntry(executor.QueryRow(query, assignmentID))
}

func (r *timeEntryRepository) UsedEntryNumbers(executor SQLExecutor, assignmentID int64) ([]int, error) {
	rows, err := executor.Query(
		`SELECT entry_number FROM time_entries WHERE assignment_id = $1 ORDER BY entry_number`,
		assignmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: querying entry numbers: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	numbers := []int{}
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("%w: scanning entry number: %v", ErrDatabaseError, err)
		}
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating entry numbers: %v", ErrDatabaseError, err)
	}
	return numbers, nil
}

func (r *timeEntryRepository) CloseEntry(executor SQLExecutor, entryID int64, clockOut time.Time) error {
	result, err := executor.Exec(
		`UPDATE time_entries SET clock_out = $1, is_active = FALSE, updated_at = $2 WHERE id = $3 AND is_active`,
		clockOut, time.Now(), entryID,
	)
	if err != nil {
		return fmt.Errorf("%w: closing time entry %d: %v", ErrDatabaseError, entryID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *timeEntryRepository) CloseActiveByShift(executor SQLExecutor, shiftID int64, clockOut time.Time) ([]int64, error) {
	query := `UPDATE time_entries te SET clock_out = $1, is_active = FALSE, updated_at = $2
	          FROM assignments a
	          WHERE te.assignment_id = a.id AND a.shift_id = $3 AND te.is_active
	          RETURNING te.assignment_id`

	rows, err := executor.Query(query, clockOut, time.Now(), shiftID)
	if err != nil {
		return nil, fmt.Errorf("%w: closing active entries for shift %d: %v", ErrDatabaseError, shiftID, err)
	}
	defer rows.Close()

	assignmentIDs := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scanning closed entry: %v", ErrDatabaseError, err)
		}
		assignmentIDs = append(assignmentIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating closed entries: %v", ErrDatabaseError, err)
	}
	return assignmentIDs, nil
}

func (r *timeEntryRepository) CountByAssignment(executor SQLExecutor, assignmentID int64) (int, error) {
	var count int
	err := executor.QueryRow(
		`SELECT COUNT(*) FROM time_entries WHERE assignment_id = $1`, assignmentID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting time entries: %v", ErrDatabaseError, err)
	}
	return count, nil
}

func (r *timeEntryRepository) ListByAssignment(assignmentID int64) ([]models.TimeEntry, error) {
	query := "SELECT " + selectTimeEntryFields + " FROM time_entries WHERE assignment_id = $1 ORDER BY entry_number"
	return r.listEntries(query, assignmentID)
}

func (r *timeEntryRepository) ListByShift(shiftID int64) ([]models.TimeEntry, error) {
	query := `SELECT te.id, te.assignment_id, te.entry_number, te.clock_in, te.clock_out,
	                 te.is_active, te.created_at, te.updated_at
	          FROM time_entries te
	          JOIN assignments a ON te.assignment_id = a.id
	          WHERE a.shift_id = $1
	          ORDER BY te.assignment_id, te.entry_number`
	return r.listEntries(query, shiftID)
}

func (r *timeEntryRepository) listEntries(query string, arg interface{}) ([]models.TimeEntry, error) {
	rows, err := r.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("%w: querying time entries: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	entries := []models.TimeEntry{}
	for rows.Next() {
		entry, scanErr := scanTimeEntry(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating time entries: %v", ErrDatabaseError, err)
	}
	return entries, nil
}
