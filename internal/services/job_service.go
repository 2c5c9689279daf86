package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"crewops_backend/internal/models"
	"crewops_backend/internal/repositories"
)

// --- Custom Service Errors ---
var (
	ErrJobNotFound         = errors.New("job not found")
	ErrJobValidation       = errors.New("job validation error")
	ErrClientForJobMissing = errors.New("client for job not found")
)

// --- DTOs ---
type UpsertJobRequest struct {
	ClientID  int64   `json:"client_id" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Location  *string `json:"location"`
	StartDate *string `json:"start_date"` // YYYY-MM-DD
	EndDate   *string `json:"end_date"`
	Status    string  `json:"status"` // Defaults to Active when empty
	Notes     *string `json:"notes"`
}

// --- JobService Interface ---
type JobService interface {
	CreateJob(req UpsertJobRequest) (*models.Job, error)
	GetJobByID(id int64) (*models.Job, error)
	GetJobs(filters models.JobFilters) ([]models.Job, int, error)
	UpdateJob(id int64, req UpsertJobRequest) (*models.Job, error)
	DeleteJob(id int64) error
}

type jobService struct {
	jobRepo    repositories.JobRepository
	clientRepo repositories.ClientRepository
	db         *sql.DB
}

// NewJobService creates a new instance of JobService.
func NewJobService(jr repositories.JobRepository, cr repositories.ClientRepository, db *sql.DB) JobService {
	return &jobService{jobRepo: jr, clientRepo: cr, db: db}
}

func (s *jobService) validate(req *UpsertJobRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return fmt.Errorf("%w: job name is required", ErrJobValidation)
	}
	if req.Status == "" {
		req.Status = models.JobStatusActive
	}
	if !models.IsValidJobStatus(req.Status) {
		return fmt.Errorf("%w: unknown status %q", ErrJobValidation, req.Status)
	}
	for _, d := range []*string{req.StartDate, req.EndDate} {
		if d == nil {
			continue
		}
		if _, err := time.Parse("2006-01-02", *d); err != nil {
			return fmt.Errorf("%w: dates must be in YYYY-MM-DD format", ErrJobValidation)
		}
	}
	if _, err := s.clientRepo.GetClientByID(req.ClientID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrClientForJobMissing
		}
		return fmt.Errorf("failed to check client: %w", err)
	}
	return nil
}

func (s *jobService) CreateJob(req UpsertJobRequest) (*models.Job, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}
	job := &models.Job{
		ClientID:  req.ClientID,
		Name:      req.Name,
		Location:  req.Location,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    req.Status,
		Notes:     req.Notes,
	}
	created, err := s.jobRepo.CreateJob(s.db, job)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return created, nil
}

func (s *jobService) GetJobByID(id int64) (*models.Job, error) {
	job, err := s.jobRepo.GetJobByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

func (s *jobService) GetJobs(filters models.JobFilters) ([]models.Job, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 100 {
		filters.PageSize = 20
	}
	jobs, total, err := s.jobRepo.GetJobs(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, total, nil
}

func (s *jobService) UpdateJob(id int64, req UpsertJobRequest) (*models.Job, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}
	job := &models.Job{
		ID:        id,
		ClientID:  req.ClientID,
		Name:      req.Name,
		Location:  req.Location,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    req.Status,
		Notes:     req.Notes,
	}
	updated, err := s.jobRepo.UpdateJob(s.db, job)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	return updated, nil
}

func (s *jobService) DeleteJob(id int64) error {
	if err := s.jobRepo.DeleteJob(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrJobNotFound
		}
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}
