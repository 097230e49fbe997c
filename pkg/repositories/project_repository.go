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

// ProjectRepository defines data access for projects. Lifecycle writes are
// split into focused statements so that list appends and the send counter
// stay atomic on the store side.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	Get(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context) ([]models.Project, error)
	// Update re-stamps the mutable descriptive fields. Lifecycle and
	// assignment fields are untouched.
	Update(ctx context.Context, project *models.Project) error
	// UpdateAssignment persists the staffing fields written by assignTeam.
	UpdateAssignment(ctx context.Context, project *models.Project) error
	// MarkSent atomically increments the send counter and appends to the
	// send history while moving the project to SENT_TO_CLIENT.
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) (*models.Project, error)
	MarkRejected(ctx context.Context, id uuid.UUID, at time.Time) (*models.Project, error)
	// MarkAccepted freezes the finished cost: an already-set value is
	// never overwritten.
	MarkAccepted(ctx context.Context, id uuid.UUID, at time.Time, cost float64) (*models.Project, error)
	MarkCancelled(ctx context.Context, project *models.Project) error
	// ListExpiredAccepted returns accepted projects whose end date has
	// passed. The release sweeper feeds on it.
	ListExpiredAccepted(ctx context.Context, now time.Time) ([]models.Project, error)
	// ListOverlapping returns non-cancelled projects whose active window
	// [creation_date, end_date] intersects [from, to), ordered by creation
	// date ascending.
	ListOverlapping(ctx context.Context, from, to time.Time) ([]models.Project, error)
	// ListDelayedOverlapping returns every project, cancelled included,
	// that ever had a delay and overlaps the window.
	ListDelayedOverlapping(ctx context.Context, from, to time.Time) ([]models.Project, error)
	// CountEarlierNonCancelledByClient counts the client's non-cancelled
	// projects created before the given instant, excluding one project id.
	CountEarlierNonCancelledByClient(ctx context.Context, clientID uuid.UUID, before time.Time, excludeID uuid.UUID) (int, error)
}

type projectRepository struct {
	db *database.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *database.DB) ProjectRepository {
	return &projectRepository{db: db}
}

const projectColumns = `id, name, industry, studio, dev_amount, max_budget, start_date, end_date,
	creation_date, state, client_id, pm_id, pm_assign_date, first_dev_assign_date,
	last_dev_assign_date, had_delay, pm_delay_cancel, cancel_date, sent_count,
	sent_dates, reject_dates, accept_date, finished_cost`

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID, &p.Name, &p.Industry, &p.Studio, &p.DevAmount, &p.MaxBudget,
		&p.StartDate, &p.EndDate, &p.CreationDate, &p.State, &p.ClientID, &p.PMID,
		&p.PMAssignDate, &p.FirstDevAssignDate, &p.LastDevAssignDate, &p.HadDelay,
		&p.PMDelayCancel, &p.CancelDate, &p.SentCount, &p.SentDates, &p.RejectDates,
		&p.AcceptDate, &p.FinishedCost,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepository) collect(rows pgx.Rows) ([]models.Project, error) {
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	if project.State == "" {
		project.State = models.StateOpen
	}

	query := `
		INSERT INTO projects (id, name, industry, studio, dev_amount, max_budget,
			start_date, end_date, creation_date, state, client_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(ctx, query,
		project.ID, project.Name, project.Industry, project.Studio,
		project.DevAmount, project.MaxBudget, project.StartDate, project.EndDate,
		project.CreationDate, project.State, project.ClientID,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

func (r *projectRepository) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	project, err := scanProject(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(apperrors.KindProject)
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

func (r *projectRepository) List(ctx context.Context) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY creation_date DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return r.collect(rows)
}

func (r *projectRepository) Update(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects
		SET name = $2, industry = $3, studio = $4, dev_amount = $5,
			max_budget = $6, start_date = $7, end_date = $8, client_id = $9
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query,
		project.ID, project.Name, project.Industry, project.Studio,
		project.DevAmount, project.MaxBudget, project.StartDate, project.EndDate,
		project.ClientID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound(apperrors.KindProject)
	}
	return nil
}

func (r *projectRepository) UpdateAssignment(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects
		SET pm_id = $2, pm_assign_date = $3, first_dev_assign_date = $4,
			last_dev_assign_date = $5, had_delay = $6, state = $7
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query,
		project.ID, project.PMID, project.PMAssignDate, project.FirstDevAssignDate,
		project.LastDevAssignDate, project.HadDelay, project.State,
	)
	if err != nil {
		return fmt.Errorf("failed to update project assignment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound(apperrors.KindProject)
	}
	return nil
}

func (r *projectRepository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) (*models.Project, error) {
	query := `
		UPDATE projects
		SET state = $2, sent_count = sent_count + 1, sent_dates = array_append(sent_dates, $3)
		WHERE id = $1
		RETURNING ` + projectColumns

	project, err := scanProject(r.db.QueryRow(ctx, query, id, models.StateSentToClient, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(apperrors.KindProject)
		}
		return nil, fmt.Errorf("failed to mark project sent: %w", err)
	}
	return project, nil
}

func (r *projectRepository) MarkRejected(ctx context.Context, id uuid.UUID, at time.Time) (*models.Project, error) {
	query := `
		UPDATE projects
		SET state = $2, reject_dates = array_append(reject_dates, $3)
		WHERE id = $1
		RETURNING ` + projectColumns

	project, err := scanProject(r.db.QueryRow(ctx, query, id, models.StateRejectedByClient, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(apperrors.KindProject)
		}
		return nil, fmt.Errorf("failed to mark project rejected: %w", err)
	}
	return project, nil
}

func (r *projectRepository) MarkAccepted(ctx context.Context, id uuid.UUID, at time.Time, cost float64) (*models.Project, error) {
	query := `
		UPDATE projects
		SET state = $2, accept_date = $3, finished_cost = COALESCE(finished_cost, $4)
		WHERE id = $1
		RETURNING ` + projectColumns

	project, err := scanProject(r.db.QueryRow(ctx, query, id, models.StateAccepted, at, cost))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(apperrors.KindProject)
		}
		return nil, fmt.Errorf("failed to mark project accepted: %w", err)
	}
	return project, nil
}

func (r *projectRepository) MarkCancelled(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects
		SET state = $2, cancel_date = $3, pm_delay_cancel = $4, had_delay = $5
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query,
		project.ID, project.State, project.CancelDate, project.PMDelayCancel, project.HadDelay,
	)
	if err != nil {
		return fmt.Errorf("failed to mark project cancelled: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound(apperrors.KindProject)
	}
	return nil
}

func (r *projectRepository) ListExpiredAccepted(ctx context.Context, now time.Time) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE state = $1 AND end_date <= $2`

	rows, err := r.db.Query(ctx, query, models.StateAccepted, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired accepted projects: %w", err)
	}
	return r.collect(rows)
}

func (r *projectRepository) ListOverlapping(ctx context.Context, from, to time.Time) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + `
		FROM projects
		WHERE state <> $1 AND creation_date < $3 AND end_date >= $2
		ORDER BY creation_date ASC`

	rows, err := r.db.Query(ctx, query, models.StateCancelled, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects by window: %w", err)
	}
	return r.collect(rows)
}

func (r *projectRepository) ListDelayedOverlapping(ctx context.Context, from, to time.Time) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + `
		FROM projects
		WHERE had_delay AND creation_date < $2 AND end_date >= $1
		ORDER BY creation_date ASC`

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list delayed projects by window: %w", err)
	}
	return r.collect(rows)
}

func (r *projectRepository) CountEarlierNonCancelledByClient(ctx context.Context, clientID uuid.UUID, before time.Time, excludeID uuid.UUID) (int, error) {
	query := `
		SELECT count(*)
		FROM projects
		WHERE client_id = $1 AND creation_date < $2 AND id <> $3 AND state <> $4`

	var count int
	err := r.db.QueryRow(ctx, query, clientID, before, excludeID, models.StateCancelled).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count earlier client projects: %w", err)
	}
	return count, nil
}

// Ensure projectRepository implements ProjectRepository at compile time.
var _ ProjectRepository = (*projectRepository)(nil)
