package models

import "time"

// Job statuses.
const (
	JobStatusActive    = "Active"
	JobStatusCompleted = "Completed"
	JobStatusCancelled = "Cancelled"
)

// IsValidJobStatus reports whether the given status is a known job status.
func IsValidJobStatus(status string) bool {
	switch status {
	case JobStatusActive, JobStatusCompleted, JobStatusCancelled:
		return true
	}
	return false
}

// Job is a client engagement that groups one or more shifts.
type Job struct {
	ID        int64     `json:"id"`
	ClientID  int64     `json:"client_id" db:"client_id"`
	Name      string    `json:"name" db:"name"`
	Location  *string   `json:"location,omitempty" db:"location"`
	StartDate *string   `json:"start_date,omitempty" db:"start_date"` // YYYY-MM-DD
	EndDate   *string   `json:"end_date,omitempty" db:"end_date"`
	Status    string    `json:"status" db:"status"`
	Notes     *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	Client    *Client   `json:"client,omitempty"` // For joining with Client details
}

// JobFilters narrows job listings.
type JobFilters struct {
	ClientID *int64
	Status   *string
	Page     int
	PageSize int
}
