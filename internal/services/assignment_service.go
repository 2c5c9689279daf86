package services

import (
	"database/sql"
	"errors"
	"fmt"

	"crewops_backend/internal/models"
	"crewops_backend/internal/repositories"
)

// --- Custom Service Errors ---
var (
	ErrAssignmentNotFound   = errors.New("assignment not found")
	ErrAssignmentValidation = errors.New("assignment validation error")
	ErrDuplicateAssignment  = errors.New("worker is already assigned to this shift")
	ErrEmployeeNotFound     = errors.New("employee not found")
	ErrAssignmentHasEntries = errors.New("assignment has recorded time entries")
)

// --- DTOs ---
type AssignWorkerRequest struct {
	AssignmentID *int64 `json:"assignment_id"` // Set to fill an existing placeholder slot
	EmployeeID   *int64 `json:"employee_id"`   // Nil creates an unfilled placeholder slot
	RoleCode     string `json:"role_code"`
	RoleLabel    string `json:"role_label"`
}

type ReassignWorkerRequest struct {
	EmployeeID int64 `json:"employee_id" binding:"required"`
}

// --- AssignmentService Interface ---
type AssignmentService interface {
	AssignWorker(actor models.Actor, shiftID int64, req AssignWorkerRequest) (*models.Assignment, error)
	ReassignWorker(actor models.Actor, assignmentID int64, req ReassignWorkerRequest) (*models.Assignment, error)
	UnassignWorker(actor models.Actor, assignmentID int64) error
	GetShiftRoster(shiftID int64) ([]models.Assignment, error)
}

type assignmentService struct {
	assignmentRepo repositories.AssignmentRepository
	entryRepo      repositories.TimeEntryRepository
	shiftRepo      repositories.ShiftRepository
	authRepo       repositories.AuthRepository
	perm           PermissionService
	db             *sql.DB
}

// NewAssignmentService creates a new instance of AssignmentService.
func NewAssignmentService(
	ar repositories.AssignmentRepository,
	ter repositories.TimeEntryRepository,
	sr repositories.ShiftRepository,
	ur repositories.AuthRepository,
	perm PermissionService,
	db *sql.DB,
) AssignmentService {
	return &assignmentService{
		assignmentRepo: ar,
		entryRepo:      ter,
		shiftRepo:      sr,
		authRepo:       ur,
		perm:           perm,
		db:             db,
	}
}

func (s *assignmentService) checkEmployee(employeeID int64) error {
	if _, err := s.authRepo.FindUserByID(employeeID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to check employee: %w", err)
	}
	return nil
}

func (s *assignmentService) AssignWorker(actor models.Actor, shiftID int64, req AssignWorkerRequest) (*models.Assignment, error) {
	if err := s.perm.AuthorizeShiftAction(actor, shiftID); err != nil {
		return nil, err
	}
	if !models.IsValidRoleCode(req.RoleCode) {
		return nil, fmt.Errorf("%w: unknown role code %q", ErrAssignmentValidation, req.RoleCode)
	}

	shift, err := s.shiftRepo.GetShiftByID(shiftID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to check shift: %w", err)
	}
	if shift.Status == models.ShiftStatusCompleted || shift.Status == models.ShiftStatusCancelled {
		return nil, fmt.Errorf("%w: shift is %s", ErrShiftStateChange, shift.Status)
	}
	if req.EmployeeID != nil {
		if err := s.checkEmployee(*req.EmployeeID); err != nil {
			return nil, err
		}
	}

	assignment := &models.Assignment{
		ShiftID:    shiftID,
		EmployeeID: req.EmployeeID,
		RoleCode:   req.RoleCode,
		RoleLabel:  req.RoleLabel,
		Status:     models.AssignmentStatusNotStarted,
	}
	created, err := s.assignmentRepo.CreateAssignment(s.db, assignment)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrDuplicateAssignment
		}
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}
	return created, nil
}

// ReassignWorker swaps the worker on an assignment, or fills a placeholder
// slot. It is refused once the slot has time entries: worked time belongs to
// the worker who recorded it.
func (s *assignmentService) ReassignWorker(actor models.Actor, assignmentID int64, req ReassignWorkerRequest) (*models.Assignment, error) {
	assignment, err := s.assignmentRepo.GetAssignmentByID(s.db, assignmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	if err := s.perm.AuthorizeShiftAction(actor, assignment.ShiftID); err != nil {
		return nil, err
	}
	if err := s.checkEmployee(req.EmployeeID); err != nil {
		return nil, err
	}

	count, err := s.entryRepo.CountByAssignment(s.db, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count time entries: %w", err)
	}
	if count > 0 {
		return nil, ErrAssignmentHasEntries
	}

	if err := s.assignmentRepo.UpdateEmployee(s.db, assignmentID, req.EmployeeID, models.AssignmentStatusNotStarted); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrDuplicateAssignment
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to reassign worker: %w", err)
	}
	return s.assignmentRepo.GetAssignmentByID(s.db, assignmentID)
}

func (s *assignmentService) UnassignWorker(actor models.Actor, assignmentID int64) error {
	assignment, err := s.assignmentRepo.GetAssignmentByID(s.db, assignmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("failed to get assignment: %w", err)
	}
	if err := s.perm.AuthorizeShiftAction(actor, assignment.ShiftID); err != nil {
		return err
	}

	count, err := s.entryRepo.CountByAssignment(s.db, assignmentID)
	if err != nil {
		return fmt.Errorf("failed to count time entries: %w", err)
	}
	if count > 0 {
		return ErrAssignmentHasEntries
	}

	if err := s.assignmentRepo.DeleteAssignment(s.db, assignmentID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	return nil
}

// GetShiftRoster returns the shift's assignments with their workers and all
// recorded time entries attached.
func (s *assignmentService) GetShiftRoster(shiftID int64) ([]models.Assignment, error) {
	if _, err := s.shiftRepo.GetShiftByID(shiftID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to check shift: %w", err)
	}

	assignments, err := s.assignmentRepo.ListByShift(shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	entries, err := s.entryRepo.ListByShift(shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}

	byAssignment := make(map[int64][]models.TimeEntry, len(assignments))
	for _, e := range entries {
		byAssignment[e.AssignmentID] = append(byAssignment[e.AssignmentID], e)
	}
	for i := range assignments {
		assignments[i].TimeEntries = byAssignment[assignments[i].ID]
	}
	return assignments, nil
}
