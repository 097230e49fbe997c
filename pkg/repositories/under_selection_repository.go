package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/staffhive/staffing-engine/pkg/apperrors"
	"github.com/staffhive/staffing-engine/pkg/database"
	"github.com/staffhive/staffing-engine/pkg/models"
)

// UnderSelectionRepository defines data access for hired-but-not-onboarded
// developer records. Reads always resolve the wrapped employee.
type UnderSelectionRepository interface {
	Upsert(ctx context.Context, dev *models.UnderSelectionDeveloper) error
	Get(ctx context.Context, id uuid.UUID) (*models.UnderSelectionDeveloper, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.UnderSelectionDeveloper, error)
	List(ctx context.Context) ([]models.UnderSelectionDeveloper, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.UnderSelectionDeveloper, error)
	CountByProject(ctx context.Context, projectID uuid.UUID) (int, error)
	// ListSelectionOverlapping returns records whose selection window
	// intersects [from, to). Used by the IDNE indicator.
	ListSelectionOverlapping(ctx context.Context, from, to time.Time) ([]models.UnderSelectionDeveloper, error)
	SetProject(ctx context.Context, id uuid.UUID, projectID *uuid.UUID) error
}

type underSelectionRepository struct {
	db *database.DB
}

// NewUnderSelectionRepository creates a new under-selection repository.
func NewUnderSelectionRepository(db *database.DB) UnderSelectionRepository {
	return &underSelectionRepository{db: db}
}

const underSelectionSelect = `
	SELECT u.id, u.employee_id, u.selection_start, u.selection_end, u.project_id,
	       e.id, e.name, e.salary, e.available_date
	FROM under_selection_developers u
	JOIN employees e ON e.id = u.employee_id`

func scanUnderSelection(row pgx.Row) (*models.UnderSelectionDeveloper, error) {
	var dev models.UnderSelectionDeveloper
	var employee models.Employee
	err := row.Scan(
		&dev.ID, &dev.EmployeeID, &dev.SelectionStart, &dev.SelectionEnd, &dev.ProjectID,
		&employee.ID, &employee.Name, &employee.Salary, &employee.AvailableDate,
	)
	if err != nil {
		return nil, err
	}
	dev.Employee = &employee
	return &dev, nil
}

func (r *underSelectionRepository) collect(rows pgx.Rows) ([]models.UnderSelectionDeveloper, error) {
	defer rows.Close()

	var devs []models.UnderSelectionDeveloper
	for rows.Next() {
		dev, err := scanUnderSelection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan under-selection developer: %w", err)
		}
		devs = append(devs, *dev)
	}
	return devs, rows.Err()
}

func (r *underSelectionRepository) Upsert(ctx context.Context, dev *models.UnderSelectionDeveloper) error {
	query := `
		INSERT INTO under_selection_developers (id, employee_id, selection_start, selection_end, project_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET selection_start = EXCLUDED.selection_start,
		    selection_end = EXCLUDED.selection_end`

	_, err := r.db.Exec(ctx, query, dev.ID, dev.EmployeeID, dev.SelectionStart, dev.SelectionEnd, dev.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to upsert under-selection developer: %w", err)
	}
	return nil
}

func (r *underSelectionRepository) Get(ctx context.Context, id uuid.UUID) (*models.UnderSelectionDeveloper, error) {
	dev, err := scanUnderSelection(r.db.QueryRow(ctx, underSelectionSelect+` WHERE u.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(apperrors.KindUnderSelection)
		}
		return nil, fmt.Errorf("failed to get under-selection developer: %w", err)
	}
	return dev, nil
}

func (r *underSelectionRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.UnderSelectionDeveloper, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx, underSelectionSelect+` WHERE u.id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get under-selection developers by ids: %w", err)
	}
	return r.collect(rows)
}

func (r *underSelectionRepository) List(ctx context.Context) ([]models.UnderSelectionDeveloper, error) {
	rows, err := r.db.Query(ctx, underSelectionSelect+` ORDER BY e.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list under-selection developers: %w", err)
	}
	return r.collect(rows)
}

func (r *underSelectionRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.UnderSelectionDeveloper, error) {
	rows, err := r.db.Query(ctx, underSelectionSelect+` WHERE u.project_id = $1`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list under-selection developers by project: %w", err)
	}
	return r.collect(rows)
}

func (r *underSelectionRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM under_selection_developers WHERE project_id = $1`, projectID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count under-selection developers by project: %w", err)
	}
	return count, nil
}

func (r *underSelectionRepository) ListSelectionOverlapping(ctx context.Context, from, to time.Time) ([]models.UnderSelectionDeveloper, error) {
	query := underSelectionSelect + ` WHERE u.selection_start < $2 AND u.selection_end >= $1`

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list under-selection developers by window: %w", err)
	}
	return r.collect(rows)
}

func (r *underSelectionRepository) SetProject(ctx context.Context, id uuid.UUID, projectID *uuid.UUID) error {
	result, err := r.db.Exec(ctx, `UPDATE under_selection_developers SET project_id = $2 WHERE id = $1`, id, projectID)
	if err != nil {
		return fmt.Errorf("failed to set under-selection developer project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound(apperrors.KindUnderSelection)
	}
	return nil
}

// Ensure underSelectionRepository implements UnderSelectionRepository at
// compile time.
var _ UnderSelectionRepository = (*underSelectionRepository)(nil)
