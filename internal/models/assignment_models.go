package models

import "time"

// Worker role codes on a shift.
const (
	RoleCodeCrewChief = "CC"
	RoleCodeStageHand = "SH"
	RoleCodeForkOp    = "FO"
	RoleCodeReachFork = "RFO"
	RoleCodeRigger    = "RG"
	RoleCodeGeneral   = "GL"
)

// IsValidRoleCode reports whether code is one of the known worker role codes.
func IsValidRoleCode(code string) bool {
	switch code {
	case RoleCodeCrewChief, RoleCodeStageHand, RoleCodeForkOp,
		RoleCodeReachFork, RoleCodeRigger, RoleCodeGeneral:
		return true
	}
	return false
}

// Assignment statuses. The status column on the assignment row is the single
// authoritative record of a worker's progress through a shift; it is mutated
// only by the timeclock service, never recomputed from time entries by callers.
const (
	AssignmentStatusNotStarted = "not_started"
	AssignmentStatusClockedIn  = "clocked_in"
	AssignmentStatusClockedOut = "clocked_out"
	AssignmentStatusShiftEnded = "shift_ended"
	AssignmentStatusNoShow     = "no_show"
)

// IsTerminalAssignmentStatus reports whether no further clock actions are
// accepted for an assignment in this status.
func IsTerminalAssignmentStatus(status string) bool {
	return status == AssignmentStatusShiftEnded || status == AssignmentStatusNoShow
}

// MaxTimeEntries is the maximum number of clock-in/clock-out cycles a worker
// may record on a single assignment.
const MaxTimeEntries = 3

// Assignment is one worker's placement on one shift. EmployeeID is nil for a
// placeholder slot that has been requested but not yet filled.
type Assignment struct {
	ID         int64     `json:"id"`
	ShiftID    int64     `json:"shift_id" db:"shift_id"`
	EmployeeID *int64    `json:"employee_id,omitempty" db:"employee_id"`
	RoleCode   string    `json:"role_code" db:"role_code"`
	RoleLabel  string    `json:"role_label" db:"role_label"`
	Status     string    `json:"status" db:"status"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`

	Employee    *User       `json:"employee,omitempty"`     // For joining with the worker's user record
	TimeEntries []TimeEntry `json:"time_entries,omitempty"` // Populated on roster reads
}

// TimeEntry is one clock-in/clock-out pair under an assignment. ClockOut is
// nil while the entry is open; IsActive mirrors that and is fenced by a
// partial unique index so at most one entry per assignment is ever open.
type TimeEntry struct {
	ID           int64      `json:"id"`
	AssignmentID int64      `json:"assignment_id" db:"assignment_id"`
	EntryNumber  int        `json:"entry_number" db:"entry_number"`
	ClockIn      time.Time  `json:"clock_in" db:"clock_in"`
	ClockOut     *time.Time `json:"clock_out,omitempty" db:"clock_out"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}
