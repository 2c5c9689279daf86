package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"crewops_backend/internal/models"
)

// GrantRepository defines the interface for crew-chief grant operations.
type GrantRepository interface {
	CreateGrant(executor SQLExecutor, grant *models.CrewChiefGrant) (*models.CrewChiefGrant, error)
	DeleteGrant(executor SQLExecutor, id int64) error
	// HasGrantForShift reports whether the user holds a grant scoped to the
	// shift itself or to its parent job.
	HasGrantForShift(userID, shiftID, jobID int64) (bool, error)
	ListByUser(userID int64) ([]models.CrewChiefGrant, error)
}

type grantRepository struct {
	db *sql.DB
}

// NewGrantRepository creates a new instance of GrantRepository.
func NewGrantRepository(db *sql.DB) GrantRepository {
	return &grantRepository{db: db}
}

func (r *grantRepository) CreateGrant(executor SQLExecutor, grant *models.CrewChiefGrant) (*models.CrewChiefGrant, error) {
	query := `INSERT INTO crew_chief_grants (user_id, shift_id, job_id, granted_by, created_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at`

	err := executor.QueryRow(query,
		grant.UserID, grant.ShiftID, grant.JobID, grant.GrantedBy, time.Now(),
	).Scan(&grant.ID, &grant.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: creating crew chief grant: %v", ErrDatabaseError, err)
	}
	return grant, nil
}

func (r *grantRepository) DeleteGrant(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM crew_chief_grants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting grant ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *grantRepository) HasGrantForShift(userID, shiftID, jobID int64) (bool, error) {
	query := `SELECT EXISTS (
	            SELECT 1 FROM crew_chief_grants
	            WHERE user_id = $1 AND (shift_id = $2 OR job_id = $3)
	          )`

	var exists bool
	if err := r.db.QueryRow(query, userID, shiftID, jobID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: checking crew chief grant: %v", ErrDatabaseError, err)
	}
	return exists, nil
}

func (r *grantRepository) ListByUser(userID int64) ([]models.CrewChiefGrant, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, shift_id, job_id, granted_by, created_at
		 FROM crew_chief_grants WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: querying grants: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	grants := []models.CrewChiefGrant{}
	for rows.Next() {
		var g models.CrewChiefGrant
		if err := rows.Scan(&g.ID, &g.UserID, &g.ShiftID, &g.JobID, &g.GrantedBy, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning grant: %v", ErrDatabaseError, err)
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating grants: %v", ErrDatabaseError, err)
	}
	return grants, nil
}
