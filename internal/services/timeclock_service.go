package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"crewops_backend/internal/models"
	"crewops_backend/internal/repositories"
)

// --- Custom Service Errors ---
var (
	ErrWorkerNotAssigned  = errors.New("worker is not assigned to this shift")
	ErrAlreadyClockedIn   = errors.New("worker already has an open time entry")
	ErrNoActiveEntry      = errors.New("worker has no open time entry")
	ErrEntryLimitReached  = errors.New("maximum clock-in/clock-out cycles reached for this shift")
	ErrAssignmentClosed   = errors.New("assignment is in a terminal state")
	ErrNoShowAfterClockIn = errors.New("worker with recorded time entries cannot be marked as a no-show")
)

// ClockOutAllResult reports the outcome of a bulk clock-out.
type ClockOutAllResult struct {
	ClockedOutCount   int                 `json:"clocked_out_count"`
	ClockedOutWorkers []models.Assignment `json:"clocked_out_workers"`
}

// EndAllResult reports the outcome of a bulk shift end.
type EndAllResult struct {
	EndedCount int `json:"ended_count"`
}

// --- TimeclockService Interface ---

// TimeclockService owns every mutation of assignment status and time entries.
// All multi-write operations run inside a single database transaction so a
// shift's roster can never be observed half-updated.
type TimeclockService interface {
	ClockIn(actor models.Actor, shiftID, workerID int64) (*models.TimeEntry, error)
	ClockOut(actor models.Actor, shiftID, workerID int64) (*models.TimeEntry, error)
	ClockOutAll(actor models.Actor, shiftID int64) (*ClockOutAllResult, error)
	EndShift(actor models.Actor, shiftID, workerID int64) (*models.Assignment, error)
	EndAllShifts(actor models.Actor, shiftID int64) (*EndAllResult, error)
	MarkNoShow(actor models.Actor, shiftID, workerID int64) (*models.Assignment, error)
}

type timeclockService struct {
	assignmentRepo repositories.AssignmentRepository
	entryRepo      repositories.TimeEntryRepository
	shiftRepo      repositories.ShiftRepository
	auditRepo      repositories.AuditRepository
	perm           PermissionService
	db             *sql.DB
}

// NewTimeclockService creates a new instance of TimeclockService.
func NewTimeclockService(
	ar repositories.AssignmentRepository,
	ter repositories.TimeEntryRepository,
	sr repositories.ShiftRepository,
	audit repositories.AuditRepository,
	perm PermissionService,
	db *sql.DB,
) TimeclockService {
	return &timeclockService{
		assignmentRepo: ar,
		entryRepo:      ter,
		shiftRepo:      sr,
		auditRepo:      audit,
		perm:           perm,
		db:             db,
	}
}

// lockShift loads the shift row FOR UPDATE, serializing lifecycle operations
// on the same shift against each other and against finalization.
func (s *timeclockService) lockShift(tx *sql.Tx, shiftID int64) (*models.Shift, error) {
	shift, err := s.shiftRepo.GetShiftForUpdate(tx, shiftID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to lock shift: %w", err)
	}
	return shift, nil
}

func (s *timeclockService) workerAssignment(tx *sql.Tx, shiftID, workerID int64) (*models.Assignment, error) {
	assignment, err := s.assignmentRepo.GetAssignmentByWorker(tx, shiftID, workerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrWorkerNotAssigned
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return assignment, nil
}

func (s *timeclockService) audit(tx *sql.Tx, actor models.Actor, action, entityType string, shiftID int64, entityID *int64, details string) error {
	entry := &models.AuditEntry{
		ActorID:    actor.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		ShiftID:    &shiftID,
	}
	if details != "" {
		entry.Details = &details
	}
	if err := s.auditRepo.Append(tx, entry); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// nextEntryNumber picks the lowest unused cycle number, or 0 when the cap of
// MaxTimeEntries cycles has been used up.
func nextEntryNumber(used []int) int {
	taken := make(map[int]bool, len(used))
	for _, n := range used {
		taken[n] = true
	}
	for n := 1; n <= models.MaxTimeEntries; n++ {
		if !taken[n] {
			return n
		}
	}
	return 0
}

func (s *timeclockService) ClockIn(actor models.Actor, shiftID, workerID int64) (*models.TimeEntry, error) {
	if err := s.perm.AuthorizeShiftAction(actor, shiftID); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	shift, err := s.lockShift(tx, shiftID)
	if err != nil {
		return nil, err
	}
	if shift.Status == models.ShiftStatusCancelled || shift.Status == models.ShiftStatusCompleted {
		return nil, fmt.Errorf("%w: shift is %s", ErrShiftStateChange, shift.Status)
	}

	assignment, err := s.workerAssignment(tx, shiftID, workerID)
	if err != nil {
		return nil, err
	}
	if models.IsTerminalAssignmentStatus(assignment.Status) {
		return nil, fmt.Errorf("%w: status is %s", ErrAssignmentClosed, assignment.Status)
	}

	if _, err := s.entryRepo.GetActiveEntry(tx, assignment.ID); err == nil {
		return nil, ErrAlreadyClockedIn
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check active entry: %w", err)
	}

	used, err := s.entryRepo.UsedEntryNumbers(tx, assignment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read used entry numbers: %w", err)
	}
	entryNumber := nextEntryNumber(used)
	if entryNumber == 0 {
		return nil, ErrEntryLimitReached
	}

	entry := &models.TimeEntry{
		AssignmentID: assignment.ID,
		EntryNumber:  entryNumber,
		ClockIn:      time.Now().UTC(),
		IsActive:     true,
	}
	created, err := s.entryRepo.CreateEntry(tx, entry)
	if err != nil {
		// The partial unique index fences a concurrent clock-in that slipped
		// past the active-entry check.
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrAlreadyClockedIn
		}
		return nil, fmt.Errorf("failed to create time entry: %w", err)
	}

	if err := s.assignmentRepo.UpdateStatus(tx, assignment.ID, models.AssignmentStatusClockedIn); err != nil {
		return nil, fmt.Errorf("failed to update assignment status: %w", err)
	}
	if shift.Status == models.ShiftStatusUpcoming {
		if err := s.shiftRepo.UpdateShiftStatus(tx, shiftID, models.ShiftStatusInProgress); err != nil {
			return nil, fmt.Errorf("failed to update shift status: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return created, nil
}

func (s *timeclockService) ClockOut(actor models.Actor, shiftID, workerID int64) (*models.TimeEntry, error) {
	if err := s.perm.AuthorizeShiftAction(actor, shiftID); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.lockShift(tx, shiftID); err != nil {
		return nil, err
	}
	assignment, err := s.workerAssignment(tx, shiftID, workerID)
	if err != nil {
		return nil, err
	}

	entry, err := s.entryRepo.GetActiveEntry(tx, assignment.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNoActiveEntry
		}
		return nil, fmt.Errorf("failed to get active entry: %w", err)
	}

	clockOut := time.Now().UTC()
	if err := s.entryRepo.CloseEntry(tx, entry.ID, clockOut); err != nil {
		return nil, fmt.Errorf("failed to close time entry: %w", err)
	}
	if err := s.assignmentRepo.UpdateStatus(tx, assignment.ID, models.AssignmentStatusClockedOut); err != nil {
		return nil, fmt.Errorf("failed to update assignment status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	entry.ClockOut = &clockOut
	entry.IsActive = false
	return entry, nil
}

// ClockOutAll closes every open time entry on the shift in one transaction.
// A shift with nothing to close succeeds with a zero count.
func (s *timeclockService) ClockOutAll(actor models.Actor, shiftID int64) (*ClockOutAllResult, error) {
	if err := s.perm.AuthorizeShiftAction(actor, shiftID); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.lockShift(tx, shiftID); err != nil {
		return nil, err
	}

	if _, err := s.entryRepo.CloseActiveByShift(tx, shiftID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to close open entries: %w", err)
	}
	updated, err := s.assignmentRepo.UpdateStatusesByShift(tx, shiftID,
		[]string{models.AssignmentStatusClockedIn}, models.AssignmentStatusClockedOut)
	if err != nil {
		return nil, fmt.Errorf("failed to update assignment statuses: %w", err)
	}

	if err := s.audit(tx, actor, "clock_out_all", "shift", shiftID, nil,
		fmt.Sprintf("clocked out %d workers", len(updated))); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &ClockOutAllResult{ClockedOutCount: len(updated), ClockedOutWorkers: updated}, nil
}

func (s *timeclockService) EndShift(actor models.Actor, shiftID, workerID int64) (*models.Assignment, error) {
	if err := s.perm.AuthorizeShiftAction(actor, shiftID); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.lockShift(tx, shiftID); err != nil {
		return nil, err
	}
	assignment, err := s.workerAssignment(tx, shiftID, workerID)
	if err != nil {
		return nil, err
	}
	if models.IsTerminalAssignmentStatus(assignment.Status) {
		return nil, fmt.Errorf("%w: status is %s", ErrAssignmentClosed, assignment.Status)
	}

	// An open entry is closed implicitly so ending a shift never strands an
	// active clock-in.
	if entry, err := s.entryRepo.GetActiveEntry(tx, assignment.ID); err == nil {
		if err := s.entryRepo.CloseEntry(tx, entry.ID, time.Now().UTC()); err != nil {
			return nil, fmt.Errorf("failed to close open entry: %w", err)
		}
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check active entry: %w", err)
	}

	if err := s.assignmentRepo.UpdateStatus(tx, assignment.ID, models.AssignmentStatusShiftEnded); err != nil {
		return nil, fmt.Errorf("failed to update assignment status: %w", err)
	}
	if err := s.audit(tx, actor, "end_shift", "assignment", shiftID, &assignment.ID, ""); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	assignment.Status = models.AssignmentStatusShiftEnded
	return assignment, nil
}

// EndAllShifts moves every non-terminal assignment on the shift to
// shift_ended, closing any open entries first. No-shows keep their status.
// The whole batch commits or rolls back as one unit.
func (s *timeclockService) EndAllShifts(actor models.Actor, shiftID int64) (*EndAllResult, error) {
	if err := s.perm.AuthorizeShiftAction(actor, shiftID); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.lockShift(tx, shiftID); err != nil {
		return nil, err
	}

	if _, err := s.entryRepo.CloseActiveByShift(tx, shiftID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to close open entries: %w", err)
	}
	updated, err := s.assignmentRepo.UpdateStatusesByShift(tx, shiftID,
		[]string{
			models.AssignmentStatusNotStarted,
			models.AssignmentStatusClockedIn,
			models.AssignmentStatusClockedOut,
		},
		models.AssignmentStatusShiftEnded)
	if err != nil {
		return nil, fmt.Errorf("failed to update assignment statuses: %w", err)
	}

	if err := s.audit(tx, actor, "end_all_shifts", "shift", shiftID, nil,
		fmt.Sprintf("ended %d assignments", len(updated))); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &EndAllResult{EndedCount: len(updated)}, nil
}

// MarkNoShow records that an assigned worker never arrived. It is only valid
// while the assignment has no time entries at all; a worker who clocked in
// even once is not a no-show.
func (s *timeclockService) MarkNoShow(actor models.Actor, shiftID, workerID int64) (*models.Assignment, error) {
	if err := s.perm.AuthorizeShiftAction(actor, shiftID); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.lockShift(tx, shiftID); err != nil {
		return nil, err
	}
	assignment, err := s.workerAssignment(tx, shiftID, workerID)
	if err != nil {
		return nil, err
	}
	if models.IsTerminalAssignmentStatus(assignment.Status) {
		return nil, fmt.Errorf("%w: status is %s", ErrAssignmentClosed, assignment.Status)
	}

	count, err := s.entryRepo.CountByAssignment(tx, assignment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count time entries: %w", err)
	}
	if count > 0 {
		return nil, ErrNoShowAfterClockIn
	}

	if err := s.assignmentRepo.UpdateStatus(tx, assignment.ID, models.AssignmentStatusNoShow); err != nil {
		return nil, fmt.Errorf("failed to update assignment status: %w", err)
	}
	if err := s.audit(tx, actor, "mark_no_show", "assignment", shiftID, &assignment.ID,
		fmt.Sprintf("worker %d marked as no-show", workerID)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	assignment.Status = models.AssignmentStatusNoShow
	return assignment, nil
}
