package models

import "time"

// Timesheet statuses, in approval order. Transitions are strictly forward.
const (
	TimesheetStatusPendingClient  = "pending_client_approval"
	TimesheetStatusPendingManager = "pending_manager_approval"
	TimesheetStatusPendingFinal   = "pending_final_approval"
	TimesheetStatusCompleted      = "completed"
)

// timesheetStatusRank orders timesheet statuses for monotonicity checks.
var timesheetStatusRank = map[string]int{
	TimesheetStatusPendingClient:  0,
	TimesheetStatusPendingManager: 1,
	TimesheetStatusPendingFinal:   2,
	TimesheetStatusCompleted:      3,
}

// TimesheetStatusRank returns the position of status in the approval chain,
// or -1 for an unknown status.
func TimesheetStatusRank(status string) int {
	if rank, ok := timesheetStatusRank[status]; ok {
		return rank
	}
	return -1
}

// Timesheet is the approval envelope for a shift's worked time. Exactly one
// exists per shift once the shift has been finalized.
type Timesheet struct {
	ID                int64      `json:"id"`
	ShiftID           int64      `json:"shift_id" db:"shift_id"`
	Status            string     `json:"status" db:"status"`
	SubmittedBy       *int64     `json:"submitted_by,omitempty" db:"submitted_by"`
	SubmittedAt       *time.Time `json:"submitted_at,omitempty" db:"submitted_at"`
	ClientApprovedBy  *string    `json:"client_approved_by,omitempty" db:"client_approved_by"`
	ClientApprovedAt  *time.Time `json:"client_approved_at,omitempty" db:"client_approved_at"`
	ClientSignature   *string    `json:"client_signature,omitempty" db:"client_signature"`
	ManagerApprovedBy *int64     `json:"manager_approved_by,omitempty" db:"manager_approved_by"`
	ManagerApprovedAt *time.Time `json:"manager_approved_at,omitempty" db:"manager_approved_at"`
	ManagerSignature  *string    `json:"manager_signature,omitempty" db:"manager_signature"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
	Shift             *Shift     `json:"shift,omitempty"` // For joining with Shift details
}

// TimesheetFilters narrows timesheet listings.
type TimesheetFilters struct {
	Status   *string
	JobID    *int64
	Page     int
	PageSize int
}

// CrewChiefGrant delegates crew-chief authority over a single shift or over
// every shift of a job.
type CrewChiefGrant struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	ShiftID   *int64    `json:"shift_id,omitempty" db:"shift_id"`
	JobID     *int64    `json:"job_id,omitempty" db:"job_id"`
	GrantedBy *int64    `json:"granted_by,omitempty" db:"granted_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AuditEntry records a sensitive lifecycle action (no-show, bulk end,
// finalize, approvals) with its actor and timestamp.
type AuditEntry struct {
	ID         string    `json:"id"` // UUID
	ActorID    int64     `json:"actor_id" db:"actor_id"`
	Action     string    `json:"action" db:"action"`
	EntityType string    `json:"entity_type" db:"entity_type"`
	EntityID   *int64    `json:"entity_id,omitempty" db:"entity_id"`
	ShiftID    *int64    `json:"shift_id,omitempty" db:"shift_id"`
	Details    *string   `json:"details,omitempty" db:"details"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
