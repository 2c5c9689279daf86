package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"crewops_backend/internal/models"
	"crewops_backend/internal/repositories"
)

// --- Custom Service Errors ---
var (
	ErrClientNotFound   = errors.New("client not found")
	ErrClientValidation = errors.New("client validation error")
)

// --- DTOs ---
type UpsertClientRequest struct {
	CompanyName  string  `json:"company_name" binding:"required"`
	ContactName  *string `json:"contact_name"`
	ContactEmail *string `json:"contact_email" binding:"omitempty,email"`
	PhoneNumber  *string `json:"phone_number"`
	Notes        *string `json:"notes"`
}

// --- ClientService Interface ---
type ClientService interface {
	CreateClient(req UpsertClientRequest) (*models.Client, error)
	GetClientByID(id int64) (*models.Client, error)
	GetClients(searchTerm *string, page, pageSize int) ([]models.Client, int, error)
	UpdateClient(id int64, req UpsertClientRequest) (*models.Client, error)
	DeleteClient(id int64) error
}

type clientService struct {
	clientRepo repositories.ClientRepository
	db         *sql.DB
}

// NewClientService creates a new instance of ClientService.
func NewClientService(cr repositories.ClientRepository, db *sql.DB) ClientService {
	return &clientService{clientRepo: cr, db: db}
}

func (s *clientService) CreateClient(req UpsertClientRequest) (*models.Client, error) {
	if strings.TrimSpace(req.CompanyName) == "" {
		return nil, fmt.Errorf("%w: company name is required", ErrClientValidation)
	}
	client := &models.Client{
		CompanyName:  strings.TrimSpace(req.CompanyName),
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		PhoneNumber:  req.PhoneNumber,
		Notes:        req.Notes,
	}
	created, err := s.clientRepo.CreateClient(s.db, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return created, nil
}

func (s *clientService) GetClientByID(id int64) (*models.Client, error) {
	client, err := s.clientRepo.GetClientByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

func (s *clientService) GetClients(searchTerm *string, page, pageSize int) ([]models.Client, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	clients, total, err := s.clientRepo.GetClients(searchTerm, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, total, nil
}

func (s *clientService) UpdateClient(id int64, req UpsertClientRequest) (*models.Client, error) {
	if strings.TrimSpace(req.CompanyName) == "" {
		return nil, fmt.Errorf("%w: company name is required", ErrClientValidation)
	}
	client := &models.Client{
		ID:           id,
		CompanyName:  strings.TrimSpace(req.CompanyName),
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		PhoneNumber:  req.PhoneNumber,
		Notes:        req.Notes,
	}
	updated, err := s.clientRepo.UpdateClient(s.db, client)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return updated, nil
}

func (s *clientService) DeleteClient(id int64) error {
	if err := s.clientRepo.DeleteClient(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrClientNotFound
		}
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}
