package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"crewops_backend/internal/models"
)

// ClientRepository defines the interface for staffing-client database operations.
type ClientRepository interface {
	CreateClient(executor SQLExecutor, client *models.Client) (*models.Client, error)
	GetClientByID(id int64) (*models.Client, error)
	GetClients(searchTerm *string, page, pageSize int) ([]models.Client, int, error)
	UpdateClient(executor SQLExecutor, client *models.Client) (*models.Client, error)
	DeleteClient(executor SQLExecutor, id int64) error
}

type clientRepository struct {
	db *sql.DB
}

// NewClientRepository creates a new instance of ClientRepository.
func NewClientRepository(db *sql.DB) ClientRepository {
	return &clientRepository{db: db}
}

const selectClientFields = `id, company_name, contact_name, contact_email, phone_number, notes, created_at, updated_at`

func scanClient(row scanner) (*models.Client, error) {
	var client models.Client
	err := row.Scan(
		&client.ID, &client.CompanyName, &client.ContactName, &client.ContactEmail,
		&client.PhoneNumber, &client.Notes, &client.CreatedAt, &client.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning client: %v", ErrDatabaseError, err)
	}
	return &client, nil
}

func (r *clientRepository) CreateClient(executor SQLExecutor, client *models.Client) (*models.Client, error) {
	query := `INSERT INTO clients (company_name, contact_name, contact_email, phone_number, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id, created_at, updated_at`

	currentTime := time.Now()
	err := executor.QueryRow(query,
		client.CompanyName, client.ContactName, client.ContactEmail,
		client.PhoneNumber, client.Notes, currentTime, currentTime,
	).Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: creating client: %v", ErrDatabaseError, err)
	}
	return client, nil
}

func (r *clientRepository) GetClientByID(id int64) (*models.Client, error) {
	query := "SELECT " + selectClientFields + " FROM clients WHERE id = $1"
	return scanClient(r.db.QueryRow(query, id))
}

func (r *clientRepository) GetClients(searchTerm *string, page, pageSize int) ([]models.Client, int, error) {
	var args []interface{}
	argCount := 1

	query := "SELECT " + selectClientFields + ", COUNT(*) OVER() AS total_count FROM clients"
	if searchTerm != nil && strings.TrimSpace(*searchTerm) != "" {
		query += fmt.Sprintf(" WHERE company_name ILIKE $%d OR contact_name ILIKE $%d", argCount, argCount)
		args = append(args, "%"+strings.TrimSpace(*searchTerm)+"%")
		argCount++
	}
	query += " ORDER BY company_name"

	if pageSize > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, pageSize)
		argCount++
		if page > 0 {
			query += fmt.Sprintf(" OFFSET $%d", argCount)
			args = append(args, (page-1)*pageSize)
		}
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying clients: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	clients := []models.Client{}
	totalCount := 0
	for rows.Next() {
		var client models.Client
		if err := rows.Scan(
			&client.ID, &client.CompanyName, &client.ContactName, &client.ContactEmail,
			&client.PhoneNumber, &client.Notes, &client.CreatedAt, &client.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning client row: %v", ErrDatabaseError, err)
		}
		clients = append(clients, client)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating client rows: %v", ErrDatabaseError, err)
	}
	return clients, totalCount, nil
}

func (r *clientRepository) UpdateClient(executor SQLExecutor, client *models.Client) (*models.Client, error) {
	query := `UPDATE clients SET
	            company_name = $1, contact_name = $2, contact_email = $3,
	            phone_number = $4, notes = $5, updated_at = $6
	          WHERE id = $7
	          RETURNING updated_at`

	client.UpdatedAt = time.Now()
	err := executor.QueryRow(query,
		client.CompanyName, client.ContactName, client.ContactEmail,
		client.PhoneNumber, client.Notes, client.UpdatedAt, client.ID,
	).Scan(&client.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating client ID %d: %v", ErrDatabaseError, client.ID, err)
	}
	return client, nil
}

func (r *clientRepository) DeleteClient(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting client ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
