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

// DeveloperRepository defines data access for onboarded developer role
// records. Reads always resolve the wrapped employee.
type DeveloperRepository interface {
	Upsert(ctx context.Context, dev *models.Developer) error
	Get(ctx context.Context, id uuid.UUID) (*models.Developer, error)
	// GetByIDs resolves a set of developer ids. Callers compare the result
	// length against the requested length; missing ids are not an error at
	// this layer.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Developer, error)
	List(ctx context.Context) ([]models.Developer, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Developer, error)
	CountByProject(ctx context.Context, projectID uuid.UUID) (int, error)
	SetProject(ctx context.Context, id uuid.UUID, projectID *uuid.UUID) error
}

type developerRepository struct {
	db *database.DB
}

// NewDeveloperRepository creates a new developer repository.
func NewDeveloperRepository(db *database.DB) DeveloperRepository {
	return &developerRepository{db: db}
}

const developerSelect = `
	SELECT d.id, d.employee_id, d.skills, d.certificates, d.project_id,
	       e.id, e.name, e.salary, e.available_date
	FROM developers d
	JOIN employees e ON e.id = d.employee_id`

func scanDeveloper(row pgx.Row) (*models.Developer, error) {
	var dev models.Developer
	var employee models.Employee
	err := row.Scan(
		&dev.ID, &dev.EmployeeID, &dev.Skills, &dev.Certificates, &dev.ProjectID,
		&employee.ID, &employee.Name, &employee.Salary, &employee.AvailableDate,
	)
	if err != nil {
		return nil, err
	}
	dev.Employee = &employee
	return &dev, nil
}

func (r *developerRepository) collect(rows pgx.Rows) ([]models.Developer, error) {
	defer rows.Close()

	var devs []models.Developer
	for rows.Next() {
		dev, err := scanDeveloper(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan developer: %w", err)
		}
		devs = append(devs, *dev)
	}
	return devs, rows.Err()
}

func (r *developerRepository) Upsert(ctx context.Context, dev *models.Developer) error {
	query := `
		INSERT INTO developers (id, employee_id, skills, certificates, project_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET skills = EXCLUDED.skills,
		    certificates = EXCLUDED.certificates`

	_, err := r.db.Exec(ctx, query, dev.ID, dev.EmployeeID, dev.Skills, dev.Certificates, dev.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to upsert developer: %w", err)
	}
	return nil
}

func (r *developerRepository) Get(ctx context.Context, id uuid.UUID) (*models.Developer, error) {
	dev, err := scanDeveloper(r.db.QueryRow(ctx, developerSelect+` WHERE d.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(apperrors.KindDeveloper)
		}
		return nil, fmt.Errorf("failed to get developer: %w", err)
	}
	return dev, nil
}

func (r *developerRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Developer, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx, developerSelect+` WHERE d.id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get developers by ids: %w", err)
	}
	return r.collect(rows)
}

func (r *developerRepository) List(ctx context.Context) ([]models.Developer, error) {
	rows, err := r.db.Query(ctx, developerSelect+` ORDER BY e.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list developers: %w", err)
	}
	return r.collect(rows)
}

func (r *developerRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Developer, error) {
	rows, err := r.db.Query(ctx, developerSelect+` WHERE d.project_id = $1`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list developers by project: %w", err)
	}
	return r.collect(rows)
}

func (r *developerRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM developers WHERE project_id = $1`, projectID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count developers by project: %w", err)
	}
	return count, nil
}

func (r *developerRepository) SetProject(ctx context.Context, id uuid.UUID, projectID *uuid.UUID) error {
	result, err := r.db.Exec(ctx, `UPDATE developers SET project_id = $2 WHERE id = $1`, id, projectID)
	if err != nil {
		return fmt.Errorf("failed to set developer project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound(apperrors.KindDeveloper)
	}
	return nil
}

// Ensure developerRepository implements DeveloperRepository at compile time.
var _ DeveloperRepository = (*developerRepository)(nil)
