package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/staffhive/staffing-engine/pkg/apperrors"
	"github.com/staffhive/staffing-engine/pkg/database"
	"github.com/staffhive/staffing-engine/pkg/models"
)

// ClientRepository defines data access for client records.
type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	Get(ctx context.Context, id uuid.UUID) (*models.Client, error)
	List(ctx context.Context) ([]models.Client, error)
	// AppendPastProject appends a project id to the client's history. The
	// append is atomic and deduplicated: an id already in the history is
	// not appended twice.
	AppendPastProject(ctx context.Context, clientID, projectID uuid.UUID) error
}

type clientRepository struct {
	db *database.DB
}

// NewClientRepository creates a new client repository.
func NewClientRepository(db *database.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *models.Client) error {
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}

	query := `
		INSERT INTO clients (id, name, contact_name, contact_email, contact_phone, past_projects)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		client.ID,
		client.Name,
		client.ContactName,
		client.ContactEmail,
		client.ContactPhone,
		client.PastProjects,
	)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

func (r *clientRepository) Get(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	query := `
		SELECT id, name, contact_name, contact_email, contact_phone, past_projects
		FROM clients WHERE id = $1`

	var client models.Client
	err := r.db.QueryRow(ctx, query, id).Scan(
		&client.ID,
		&client.Name,
		&client.ContactName,
		&client.ContactEmail,
		&client.ContactPhone,
		&client.PastProjects,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(apperrors.KindClient)
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	return &client, nil
}

func (r *clientRepository) List(ctx context.Context) ([]models.Client, error) {
	query := `
		SELECT id, name, contact_name, contact_email, contact_phone, past_projects
		FROM clients ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		var client models.Client
		err := rows.Scan(
			&client.ID,
			&client.Name,
			&client.ContactName,
			&client.ContactEmail,
			&client.ContactPhone,
			&client.PastProjects,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

func (r *clientRepository) AppendPastProject(ctx context.Context, clientID, projectID uuid.UUID) error {
	query := `
		UPDATE clients
		SET past_projects = array_append(past_projects, $2)
		WHERE id = $1 AND NOT (past_projects @> ARRAY[$2]::uuid[])`

	// Zero rows affected means the id is already recorded; that is not an
	// error, the history is append-only and deduplicated.
	_, err := r.db.Exec(ctx, query, clientID, projectID)
	if err != nil {
		return fmt.Errorf("failed to append client past project: %w", err)
	}
	return nil
}

// Ensure clientRepository implements ClientRepository at compile time.
var _ ClientRepository = (*clientRepository)(nil)
