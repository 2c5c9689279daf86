package models

import "time"

// Shift statuses.
const (
	ShiftStatusUpcoming        = "Upcoming"
	ShiftStatusInProgress      = "InProgress"
	ShiftStatusPendingApproval = "PendingApproval"
	ShiftStatusCompleted       = "Completed"
	ShiftStatusCancelled       = "Cancelled"
)

// IsValidShiftStatus reports whether the given status is a known shift status.
func IsValidShiftStatus(status string) bool {
	switch status {
	case ShiftStatusUpcoming, ShiftStatusInProgress, ShiftStatusPendingApproval,
		ShiftStatusCompleted, ShiftStatusCancelled:
		return true
	}
	return false
}

// Shift is a scheduled work period under a job.
type Shift struct {
	ID               int64     `json:"id"`
	JobID            int64     `json:"job_id" db:"job_id"`
	ShiftDate        string    `json:"shift_date" db:"shift_date"` // YYYY-MM-DD
	StartTime        time.Time `json:"start_time" db:"start_time"`
	EndTime          time.Time `json:"end_time" db:"end_time"`
	Location         *string   `json:"location,omitempty" db:"location"`
	CrewChiefID      *int64    `json:"crew_chief_id,omitempty" db:"crew_chief_id"`
	RequestedWorkers int       `json:"requested_workers" db:"requested_workers"`
	Status           string    `json:"status" db:"status"`
	Notes            *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
	Job              *Job      `json:"job,omitempty"`        // For joining with Job details
	CrewChief        *User     `json:"crew_chief,omitempty"` // For joining with the crew chief's user record
}

// ShiftFilters narrows shift listings.
type ShiftFilters struct {
	JobID       *int64
	CrewChiefID *int64
	Status      *string
	DateFrom    *time.Time
	DateTo      *time.Time
	Page        int
	PageSize    int
}
