package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"crewops_backend/internal/models"

	"github.com/google/uuid"
)

// AuditRepository appends lifecycle actions to the audit trail. Entries are
// written inside the same transaction as the action they record.
type AuditRepository interface {
	Append(executor SQLExecutor, entry *models.AuditEntry) error
	ListByShift(shiftID int64) ([]models.AuditEntry, error)
}

type auditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new instance of AuditRepository.
func NewAuditRepository(db *sql.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(executor SQLExecutor, entry *models.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.CreatedAt = time.Now()

	_, err := executor.Exec(
		`INSERT INTO audit_log (id, actor_id, action, entity_type, entity_id, shift_id, details, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.ActorID, entry.Action, entry.EntityType,
		entry.EntityID, entry.ShiftID, entry.Details, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: appending audit entry: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *auditRepository) ListByShift(shiftID int64) ([]models.AuditEntry, error) {
	rows, err := r.db.Query(
		`SELECT id, actor_id, action, entity_type, entity_id, shift_id, details, created_at
		 FROM audit_log WHERE shift_id = $1 ORDER BY created_at`,
		shiftID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: querying audit log: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.EntityType, &e.EntityID, &e.ShiftID, &e.Details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning audit entry: %v", ErrDatabaseError, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating audit entries: %v", ErrDatabaseError, err)
	}
	return entries, nil
}
