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

// PMRepository defines data access for project manager role records.
// Reads always resolve the wrapped employee.
type PMRepository interface {
	Upsert(ctx context.Context, pm *models.PM) error
	Get(ctx context.Context, id uuid.UUID) (*models.PM, error)
	List(ctx context.Context) ([]models.PM, error)
	// SetProject attaches the PM to a project, or detaches when projectID
	// is nil.
	SetProject(ctx context.Context, id uuid.UUID, projectID *uuid.UUID) error
}

type pmRepository struct {
	db *database.DB
}

// NewPMRepository creates a new PM repository.
func NewPMRepository(db *database.DB) PMRepository {
	return &pmRepository{db: db}
}

const pmSelect = `
	SELECT p.id, p.employee_id, p.skills, p.certificates, p.project_id,
	       e.id, e.name, e.salary, e.available_date
	FROM pms p
	JOIN employees e ON e.id = p.employee_id`

func scanPM(row pgx.Row) (*models.PM, error) {
	var pm models.PM
	var employee models.Employee
	err := row.Scan(
		&pm.ID, &pm.EmployeeID, &pm.Skills, &pm.Certificates, &pm.ProjectID,
		&employee.ID, &employee.Name, &employee.Salary, &employee.AvailableDate,
	)
	if err != nil {
		return nil, err
	}
	pm.Employee = &employee
	return &pm, nil
}

func (r *pmRepository) Upsert(ctx context.Context, pm *models.PM) error {
	query := `
		INSERT INTO pms (id, employee_id, skills, certificates, project_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET skills = EXCLUDED.skills,
		    certificates = EXCLUDED.certificates`

	_, err := r.db.Exec(ctx, query, pm.ID, pm.EmployeeID, pm.Skills, pm.Certificates, pm.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to upsert pm: %w", err)
	}
	return nil
}

func (r *pmRepository) Get(ctx context.Context, id uuid.UUID) (*models.PM, error) {
	pm, err := scanPM(r.db.QueryRow(ctx, pmSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(apperrors.KindPM)
		}
		return nil, fmt.Errorf("failed to get pm: %w", err)
	}
	return pm, nil
}

func (r *pmRepository) List(ctx context.Context) ([]models.PM, error) {
	rows, err := r.db.Query(ctx, pmSelect+` ORDER BY e.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pms: %w", err)
	}
	defer rows.Close()

	var pms []models.PM
	for rows.Next() {
		pm, err := scanPM(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pm: %w", err)
		}
		pms = append(pms, *pm)
	}
	return pms, rows.Err()
}

func (r *pmRepository) SetProject(ctx context.Context, id uuid.UUID, projectID *uuid.UUID) error {
	result, err := r.db.Exec(ctx, `UPDATE pms SET project_id = $2 WHERE id = $1`, id, projectID)
	if err != nil {
		return fmt.Errorf("failed to set pm project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound(apperrors.KindPM)
	}
	return nil
}

// Ensure pmRepository implements PMRepository at compile time.
var _ PMRepository = (*pmRepository)(nil)
