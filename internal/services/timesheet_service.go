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
	ErrTimesheetNotFound  = errors.New("timesheet not found")
	ErrUnfinishedWorkers  = errors.New("shift has workers who have not finished")
	ErrTimesheetState     = errors.New("timesheet is not in the required approval state")
	ErrApprovalValidation = errors.New("approval validation error")
)

// --- DTOs ---
type ClientApprovalRequest struct {
	ApprovedBy string  `json:"approved_by" binding:"required"` // Client-side signer name
	Signature  *string `json:"signature"`                      // Base64 signature image
}

type ManagerApprovalRequest struct {
	Signature *string `json:"signature"`
}

type FinalizeResult struct {
	TimesheetID int64 `json:"timesheet_id"`
	Success     bool  `json:"success"`
}

// --- TimesheetService Interface ---

// TimesheetService finalizes shifts into timesheets and walks them through the
// client -> manager -> final approval chain. Transitions are strictly forward;
// a finalize of an already-finalized shift returns the existing timesheet.
type TimesheetService interface {
	FinalizeShift(actor models.Actor, shiftID int64) (*FinalizeResult, error)
	GetTimesheetByID(id int64) (*models.Timesheet, error)
	GetTimesheetByShift(shiftID int64) (*models.Timesheet, error)
	ListTimesheets(filters models.TimesheetFilters) ([]models.Timesheet, int, error)
	ApproveByClient(actor models.Actor, timesheetID int64, req ClientApprovalRequest) (*models.Timesheet, error)
	ApproveByManager(actor models.Actor, timesheetID int64, req ManagerApprovalRequest) (*models.Timesheet, error)
	FinalApprove(actor models.Actor, timesheetID int64) (*models.Timesheet, error)
	GetShiftAudit(shiftID int64) ([]models.AuditEntry, error)
}

type timesheetService struct {
	timesheetRepo  repositories.TimesheetRepository
	assignmentRepo repositories.AssignmentRepository
	shiftRepo      repositories.ShiftRepository
	auditRepo      repositories.AuditRepository
	perm           PermissionService
	db             *sql.DB
}

// NewTimesheetService creates a new instance of TimesheetService.
func NewTimesheetService(
	tr repositories.TimesheetRepository,
	ar repositories.AssignmentRepository,
	sr repositories.ShiftRepository,
	audit repositories.AuditRepository,
	perm PermissionService,
	db *sql.DB,
) TimesheetService {
	return &timesheetService{
		timesheetRepo:  tr,
		assignmentRepo: ar,
		shiftRepo:      sr,
		auditRepo:      audit,
		perm:           perm,
		db:             db,
	}
}

// FinalizeShift submits the shift's worked time for approval. Every assignment
// must be in a terminal state first. The submission is an upsert keyed on the
// shift, so repeating the call refreshes the submission stamp instead of
// creating a second timesheet.
func (s *timesheetService) FinalizeShift(actor models.Actor, shiftID int64) (*FinalizeResult, error) {
	if err := s.perm.AuthorizeShiftAction(actor, shiftID); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	shift, err := s.shiftRepo.GetShiftForUpdate(tx, shiftID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to lock shift: %w", err)
	}
	if shift.Status == models.ShiftStatusCancelled {
		return nil, fmt.Errorf("%w: cancelled shifts cannot be finalized", ErrShiftStateChange)
	}

	unfinished, err := s.assignmentRepo.CountUnfinished(tx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unfinished assignments: %w", err)
	}
	if unfinished > 0 {
		return nil, fmt.Errorf("%w: %d workers are still unfinished", ErrUnfinishedWorkers, unfinished)
	}

	timesheet, err := s.timesheetRepo.UpsertSubmission(tx, shiftID, actor.UserID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to submit timesheet: %w", err)
	}
	if shift.Status != models.ShiftStatusCompleted {
		if err := s.shiftRepo.UpdateShiftStatus(tx, shiftID, models.ShiftStatusCompleted); err != nil {
			return nil, fmt.Errorf("failed to update shift status: %w", err)
		}
	}

	if err := s.audit(tx, actor, "finalize_timesheet", shiftID, timesheet.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &FinalizeResult{TimesheetID: timesheet.ID, Success: true}, nil
}

func (s *timesheetService) GetTimesheetByID(id int64) (*models.Timesheet, error) {
	timesheet, err := s.timesheetRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTimesheetNotFound
		}
		return nil, fmt.Errorf("failed to get timesheet: %w", err)
	}
	return timesheet, nil
}

func (s *timesheetService) GetTimesheetByShift(shiftID int64) (*models.Timesheet, error) {
	timesheet, err := s.timesheetRepo.GetByShiftID(s.db, shiftID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTimesheetNotFound
		}
		return nil, fmt.Errorf("failed to get timesheet: %w", err)
	}
	return timesheet, nil
}

func (s *timesheetService) ListTimesheets(filters models.TimesheetFilters) ([]models.Timesheet, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 100 {
		filters.PageSize = 20
	}
	if filters.Status != nil && models.TimesheetStatusRank(*filters.Status) < 0 {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrApprovalValidation, *filters.Status)
	}
	timesheets, total, err := s.timesheetRepo.List(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list timesheets: %w", err)
	}
	return timesheets, total, nil
}

// lockTimesheetInState loads the timesheet FOR UPDATE and verifies it sits in
// exactly the expected approval state.
func (s *timesheetService) lockTimesheetInState(tx *sql.Tx, id int64, expected string) (*models.Timesheet, error) {
	timesheet, err := s.timesheetRepo.GetByIDForUpdate(tx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTimesheetNotFound
		}
		return nil, fmt.Errorf("failed to lock timesheet: %w", err)
	}
	if timesheet.Status != expected {
		return nil, fmt.Errorf("%w: expected %s, found %s", ErrTimesheetState, expected, timesheet.Status)
	}
	return timesheet, nil
}

// ApproveByClient records the client's sign-off, advancing the timesheet from
// pending_client_approval to pending_manager_approval. The signer is the
// client contact; the actor is the staff member recording the approval.
func (s *timesheetService) ApproveByClient(actor models.Actor, timesheetID int64, req ClientApprovalRequest) (*models.Timesheet, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	timesheet, err := s.lockTimesheetInState(tx, timesheetID, models.TimesheetStatusPendingClient)
	if err != nil {
		return nil, err
	}
	if err := s.perm.AuthorizeShiftAction(actor, timesheet.ShiftID); err != nil {
		return nil, err
	}

	if err := s.timesheetRepo.UpdateClientApproval(tx, timesheetID,
		models.TimesheetStatusPendingManager, req.ApprovedBy, time.Now().UTC(), req.Signature); err != nil {
		return nil, fmt.Errorf("failed to record client approval: %w", err)
	}
	if err := s.audit(tx, actor, "approve_client", timesheet.ShiftID, timesheetID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return s.GetTimesheetByID(timesheetID)
}

// ApproveByManager advances pending_manager_approval to pending_final_approval.
func (s *timesheetService) ApproveByManager(actor models.Actor, timesheetID int64, req ManagerApprovalRequest) (*models.Timesheet, error) {
	if !actor.IsManagement() {
		return nil, ErrForbidden
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	timesheet, err := s.lockTimesheetInState(tx, timesheetID, models.TimesheetStatusPendingManager)
	if err != nil {
		return nil, err
	}

	if err := s.timesheetRepo.UpdateManagerApproval(tx, timesheetID,
		models.TimesheetStatusPendingFinal, actor.UserID, time.Now().UTC(), req.Signature); err != nil {
		return nil, fmt.Errorf("failed to record manager approval: %w", err)
	}
	if err := s.audit(tx, actor, "approve_manager", timesheet.ShiftID, timesheetID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return s.GetTimesheetByID(timesheetID)
}

// FinalApprove completes the chain: pending_final_approval -> completed.
func (s *timesheetService) FinalApprove(actor models.Actor, timesheetID int64) (*models.Timesheet, error) {
	if !actor.IsManagement() {
		return nil, ErrForbidden
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	timesheet, err := s.lockTimesheetInState(tx, timesheetID, models.TimesheetStatusPendingFinal)
	if err != nil {
		return nil, err
	}

	if err := s.timesheetRepo.UpdateStatus(tx, timesheetID, models.TimesheetStatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to complete timesheet: %w", err)
	}
	if err := s.audit(tx, actor, "approve_final", timesheet.ShiftID, timesheetID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return s.GetTimesheetByID(timesheetID)
}

func (s *timesheetService) audit(tx *sql.Tx, actor models.Actor, action string, shiftID, timesheetID int64) error {
	entry := &models.AuditEntry{
		ActorID:    actor.UserID,
		Action:     action,
		EntityType: "timesheet",
		EntityID:   &timesheetID,
		ShiftID:    &shiftID,
	}
	if err := s.auditRepo.Append(tx, entry); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// GetShiftAudit returns the audit trail for a shift, newest first.
func (s *timesheetService) GetShiftAudit(shiftID int64) ([]models.AuditEntry, error) {
	entries, err := s.auditRepo.ListByShift(shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}
