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
	ErrShiftNotFound      = errors.New("shift not found")
	ErrShiftValidation    = errors.New("shift validation error")
	ErrJobForShiftMissing = errors.New("job for shift not found")
	ErrCrewChiefNotFound  = errors.New("crew chief user not found")
	ErrShiftStateChange   = errors.New("shift status does not allow this change")
)

// --- DTOs ---
type UpsertShiftRequest struct {
	JobID            int64   `json:"job_id" binding:"required"`
	ShiftDate        string  `json:"shift_date" binding:"required"` // YYYY-MM-DD
	StartTime        string  `json:"start_time" binding:"required"` // RFC3339
	EndTime          string  `json:"end_time" binding:"required"`
	Location         *string `json:"location"`
	CrewChiefID      *int64  `json:"crew_chief_id"`
	RequestedWorkers int     `json:"requested_workers"`
	Notes            *string `json:"notes"`
}

// --- ShiftService Interface ---
type ShiftService interface {
	CreateShift(req UpsertShiftRequest) (*models.Shift, error)
	GetShiftByID(id int64) (*models.Shift, error)
	GetShifts(filters models.ShiftFilters) ([]models.Shift, int, error)
	UpdateShift(id int64, req UpsertShiftRequest) (*models.Shift, error)
	CancelShift(id int64) (*models.Shift, error)
	DeleteShift(id int64) error
}

type shiftService struct {
	shiftRepo repositories.ShiftRepository
	jobRepo   repositories.JobRepository
	authRepo  repositories.AuthRepository
	db        *sql.DB
}

// NewShiftService creates a new instance of ShiftService.
func NewShiftService(sr repositories.ShiftRepository, jr repositories.JobRepository, ar repositories.AuthRepository, db *sql.DB) ShiftService {
	return &shiftService{shiftRepo: sr, jobRepo: jr, authRepo: ar, db: db}
}

func (s *shiftService) buildShift(req UpsertShiftRequest) (*models.Shift, error) {
	if _, err := time.Parse("2006-01-02", req.ShiftDate); err != nil {
		return nil, fmt.Errorf("%w: shift_date must be in YYYY-MM-DD format", ErrShiftValidation)
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: start_time must be in RFC3339 format", ErrShiftValidation)
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: end_time must be in RFC3339 format", ErrShiftValidation)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("%w: end_time must be after start_time", ErrShiftValidation)
	}
	if req.RequestedWorkers < 0 {
		return nil, fmt.Errorf("%w: requested_workers cannot be negative", ErrShiftValidation)
	}

	if _, err := s.jobRepo.GetJobByID(req.JobID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrJobForShiftMissing
		}
		return nil, fmt.Errorf("failed to check job: %w", err)
	}
	if req.CrewChiefID != nil {
		chief, err := s.authRepo.FindUserByID(*req.CrewChiefID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrCrewChiefNotFound
			}
			return nil, fmt.Errorf("failed to check crew chief: %w", err)
		}
		if chief.Role == models.RoleEmployee {
			return nil, fmt.Errorf("%w: user %d does not hold a crew chief capable role", ErrShiftValidation, chief.ID)
		}
	}

	return &models.Shift{
		JobID:            req.JobID,
		ShiftDate:        req.ShiftDate,
		StartTime:        start,
		EndTime:          end,
		Location:         req.Location,
		CrewChiefID:      req.CrewChiefID,
		RequestedWorkers: req.RequestedWorkers,
		Notes:            req.Notes,
	}, nil
}

func (s *shiftService) CreateShift(req UpsertShiftRequest) (*models.Shift, error) {
	shift, err := s.buildShift(req)
	if err != nil {
		return nil, err
	}
	shift.Status = models.ShiftStatusUpcoming
	created, err := s.shiftRepo.CreateShift(s.db, shift)
	if err != nil {
		return nil, fmt.Errorf("failed to create shift: %w", err)
	}
	return created, nil
}

func (s *shiftService) GetShiftByID(id int64) (*models.Shift, error) {
	shift, err := s.shiftRepo.GetShiftByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to get shift: %w", err)
	}
	return shift, nil
}

func (s *shiftService) GetShifts(filters models.ShiftFilters) ([]models.Shift, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 100 {
		filters.PageSize = 20
	}
	shifts, total, err := s.shiftRepo.GetShifts(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list shifts: %w", err)
	}
	return shifts, total, nil
}

func (s *shiftService) UpdateShift(id int64, req UpsertShiftRequest) (*models.Shift, error) {
	existing, err := s.GetShiftByID(id)
	if err != nil {
		return nil, err
	}
	if existing.Status == models.ShiftStatusCompleted {
		return nil, fmt.Errorf("%w: completed shifts cannot be edited", ErrShiftStateChange)
	}

	shift, err := s.buildShift(req)
	if err != nil {
		return nil, err
	}
	shift.ID = id
	shift.Status = existing.Status
	updated, err := s.shiftRepo.UpdateShift(s.db, shift)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to update shift: %w", err)
	}
	return updated, nil
}

func (s *shiftService) CancelShift(id int64) (*models.Shift, error) {
	shift, err := s.GetShiftByID(id)
	if err != nil {
		return nil, err
	}
	switch shift.Status {
	case models.ShiftStatusCompleted:
		return nil, fmt.Errorf("%w: completed shifts cannot be cancelled", ErrShiftStateChange)
	case models.ShiftStatusCancelled:
		return shift, nil // Already cancelled, idempotent
	}
	if err := s.shiftRepo.UpdateShiftStatus(s.db, id, models.ShiftStatusCancelled); err != nil {
		return nil, fmt.Errorf("failed to cancel shift: %w", err)
	}
	shift.Status = models.ShiftStatusCancelled
	return shift, nil
}

// DeleteShift removes the shift and, through the schema's cascades, all of its
// assignments and their time entries. Handlers require explicit confirmation
// before calling this.
func (s *shiftService) DeleteShift(id int64) error {
	if err := s.shiftRepo.DeleteShift(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrShiftNotFound
		}
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	return nil
}
