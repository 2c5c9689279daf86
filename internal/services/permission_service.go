package services

import (
	"database/sql"
	"errors"
	"fmt"

	"crewops_backend/internal/models"
	"crewops_backend/internal/repositories"
)

// --- Custom Service Errors for Permissions ---
var (
	ErrForbidden       = errors.New("you are not authorized to perform this action on this shift")
	ErrGrantNotFound   = errors.New("crew chief grant not found")
	ErrGrantValidation = errors.New("grant validation error")
)

// --- Grant DTOs ---
type CreateGrantRequest struct {
	UserID  int64  `json:"user_id" binding:"required"`
	ShiftID *int64 `json:"shift_id"`
	JobID   *int64 `json:"job_id"`
}

// --- PermissionService Interface ---

// PermissionService is the single authorization gate for shift lifecycle
// mutations. Every mutating operation on assignments, time entries and
// timesheets passes through AuthorizeShiftAction before touching state.
type PermissionService interface {
	AuthorizeShiftAction(actor models.Actor, shiftID int64) error
	GrantCrewChief(actor models.Actor, req CreateGrantRequest) (*models.CrewChiefGrant, error)
	RevokeGrant(actor models.Actor, grantID int64) error
	ListGrantsForUser(userID int64) ([]models.CrewChiefGrant, error)
}

type permissionService struct {
	shiftRepo repositories.ShiftRepository
	grantRepo repositories.GrantRepository
	db        *sql.DB
}

// NewPermissionService creates a new instance of PermissionService.
func NewPermissionService(sr repositories.ShiftRepository, gr repositories.GrantRepository, db *sql.DB) PermissionService {
	return &permissionService{shiftRepo: sr, grantRepo: gr, db: db}
}

// AuthorizeShiftAction allows Managers/Admins unconditionally. Anyone else
// must be the crew chief assigned to the shift, or hold a delegated
// crew-chief grant scoped to the shift or its parent job.
func (s *permissionService) AuthorizeShiftAction(actor models.Actor, shiftID int64) error {
	if actor.IsManagement() {
		return nil
	}

	shift, err := s.shiftRepo.GetShiftByID(shiftID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrShiftNotFound
		}
		return fmt.Errorf("failed to load shift for authorization: %w", err)
	}

	if shift.CrewChiefID != nil && *shift.CrewChiefID == actor.UserID {
		return nil
	}

	hasGrant, err := s.grantRepo.HasGrantForShift(actor.UserID, shiftID, shift.JobID)
	if err != nil {
		return fmt.Errorf("failed to check crew chief grant: %w", err)
	}
	if !hasGrant {
		return ErrForbidden
	}
	return nil
}

func (s *permissionService) GrantCrewChief(actor models.Actor, req CreateGrantRequest) (*models.CrewChiefGrant, error) {
	if !actor.IsManagement() {
		return nil, ErrForbidden
	}
	if req.ShiftID == nil && req.JobID == nil {
		return nil, fmt.Errorf("%w: a grant must reference a shift or a job", ErrGrantValidation)
	}

	grant := &models.CrewChiefGrant{
		UserID:    req.UserID,
		ShiftID:   req.ShiftID,
		JobID:     req.JobID,
		GrantedBy: &actor.UserID,
	}
	created, err := s.grantRepo.CreateGrant(s.db, grant)
	if err != nil {
		return nil, fmt.Errorf("failed to create crew chief grant: %w", err)
	}
	return created, nil
}

func (s *permissionService) RevokeGrant(actor models.Actor, grantID int64) error {
	if !actor.IsManagement() {
		return ErrForbidden
	}
	if err := s.grantRepo.DeleteGrant(s.db, grantID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrGrantNotFound
		}
		return fmt.Errorf("failed to revoke grant: %w", err)
	}
	return nil
}

func (s *permissionService) ListGrantsForUser(userID int64) ([]models.CrewChiefGrant, error) {
	grants, err := s.grantRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list grants: %w", err)
	}
	return grants, nil
}
