package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"crewops_backend/internal/models"
)

// JobRepository defines the interface for job database operations.
type JobRepository interface {
	CreateJob(executor SQLExecutor, job *models.Job) (*models.Job, error)
	GetJobByID(id int64) (*models.Job, error) // Joins client details
	GetJobs(filters models.JobFilters) ([]models.Job, int, error)
	UpdateJob(executor SQLExecutor, job *models.Job) (*models.Job, error)
	DeleteJob(executor SQLExecutor, id int64) error
}

type jobRepository struct {
	db *sql.DB
}

// NewJobRepository creates a new instance of JobRepository.
func NewJobRepository(db *sql.DB) JobRepository {
	return &jobRepository{db: db}
}

const selectJobFields = `
	j.id, j.client_id, j.name, j.location, j.start_date, j.end_date, j.status, j.notes,
	j.created_at, j.updated_at,
	c.id, c.company_name, c.contact_name, c.contact_email, c.phone_number, c.notes, c.created_at, c.updated_at
`
const getJobJoins = ` FROM jobs j JOIN clients c ON j.client_id = c.id `

// scanJobRow scans a job with its joined client. For list queries it also
// scans the windowed total count.
func scanJobRow(row scanner, isList bool) (*models.Job, int, error) {
	var job models.Job
	var client models.Client
	var startDate, endDate sql.NullTime
	var totalCount int

	scanDest := []interface{}{
		&job.ID, &job.ClientID, &job.Name, &job.Location, &startDate, &endDate,
		&job.Status, &job.Notes, &job.CreatedAt, &job.UpdatedAt,
		&client.ID, &client.CompanyName, &client.ContactName, &client.ContactEmail,
		&client.PhoneNumber, &client.Notes, &client.CreatedAt, &client.UpdatedAt,
	}
	if isList {
		scanDest = append(scanDest, &totalCount)
	}

	if err := row.Scan(scanDest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("%w: scanning job with details: %v", ErrDatabaseError, err)
	}

	if startDate.Valid {
		s := startDate.Time.Format("2006-01-02")
		job.StartDate = &s
	}
	if endDate.Valid {
		s := endDate.Time.Format("2006-01-02")
		job.EndDate = &s
	}
	job.Client = &client
	return &job, totalCount, nil
}

func (r *jobRepository) CreateJob(executor SQLExecutor, job *models.Job) (*models.Job, error) {
	query := `INSERT INTO jobs (client_id, name, location, start_date, end_date, status, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id, created_at, updated_at`

	currentTime := time.Now()
	err := executor.QueryRow(query,
		job.ClientID, job.Name, job.Location, job.StartDate, job.EndDate,
		job.Status, job.Notes, currentTime, currentTime,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: creating job: %v", ErrDatabaseError, err)
	}
	return job, nil
}

func (r *jobRepository) GetJobByID(id int64) (*models.Job, error) {
	query := "SELECT " + selectJobFields + getJobJoins + " WHERE j.id = $1"
	job, _, err := scanJobRow(r.db.QueryRow(query, id), false)
	return job, err
}

func (r *jobRepository) GetJobs(filters models.JobFilters) ([]models.Job, int, error) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("j.client_id = $%d", argCount))
		args = append(args, *filters.ClientID)
		argCount++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("j.status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}

	query := "SELECT " + selectJobFields + ", COUNT(*) OVER() AS total_count " + getJobJoins
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY j.created_at DESC"

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
		return nil, 0, fmt.Errorf("%w: querying jobs: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	jobs := []models.Job{}
	totalCount := 0
	for rows.Next() {
		job, scannedCount, scanErr := scanJobRow(rows, true)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		jobs = append(jobs, *job)
		totalCount = scannedCount
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating job rows: %v", ErrDatabaseError, err)
	}
	return jobs, totalCount, nil
}

func (r *jobRepository) UpdateJob(executor SQLExecutor, job *models.Job) (*models.Job, error) {
	query := `UPDATE jobs SET
	            client_id = $1, name = $2, location = $3, start_date = $4,
	            end_date = $5, status = $6, notes = $7, updated_at = $8
	          WHERE id = $9
	          RETURNING updated_at`

	job.UpdatedAt = time.Now()
	err := executor.QueryRow(query,
		job.ClientID, job.Name, job.Location, job.StartDate, job.EndDate,
		job.Status, job.Notes, job.UpdatedAt, job.ID,
	).Scan(&job.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating job ID %d: %v", ErrDatabaseError, job.ID, err)
	}
	return job, nil
}

func (r *jobRepository) DeleteJob(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting job ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
