// Package repositories contains the PostgreSQL data access layer. Each
// repository owns the SQL for one entity; services never see pgx directly.
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

// EmployeeRepository defines data access for employee records.
type EmployeeRepository interface {
	Upsert(ctx context.Context, employee *models.Employee) error
	Get(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	// SetAvailableDate stamps the earliest date the employee can be newly
	// staffed. The release routine uses it to put people back on the bench.
	SetAvailableDate(ctx context.Context, id uuid.UUID, at time.Time) error
}

type employeeRepository struct {
	db *database.DB
}

// NewEmployeeRepository creates a new employee repository.
func NewEmployeeRepository(db *database.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) Upsert(ctx context.Context, employee *models.Employee) error {
	if employee.ID == uuid.Nil {
		employee.ID = uuid.New()
	}

	query := `
		INSERT INTO employees (id, name, salary, available_date)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    salary = EXCLUDED.salary,
		    available_date = EXCLUDED.available_date`

	_, err := r.db.Exec(ctx, query, employee.ID, employee.Name, employee.Salary, employee.AvailableDate)
	if err != nil {
		return fmt.Errorf("failed to upsert employee: %w", err)
	}
	return nil
}

func (r *employeeRepository) Get(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	query := `SELECT id, name, salary, available_date FROM employees WHERE id = $1`

	var employee models.Employee
	err := r.db.QueryRow(ctx, query, id).Scan(
		&employee.ID,
		&employee.Name,
		&employee.Salary,
		&employee.AvailableDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(apperrors.KindEmployee)
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	return &employee, nil
}

func (r *employeeRepository) SetAvailableDate(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE employees SET available_date = $2 WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to set employee available date: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound(apperrors.KindEmployee)
	}
	return nil
}

// Ensure employeeRepository implements EmployeeRepository at compile time.
var _ EmployeeRepository = (*employeeRepository)(nil)
