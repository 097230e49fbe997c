package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/staffhive/staffing-engine/pkg/apperrors"
	"github.com/staffhive/staffing-engine/pkg/models"
	"github.com/staffhive/staffing-engine/pkg/repositories"
)

// ClientInput describes a client to create inline with a project when no
// existing client id is supplied.
type ClientInput struct {
	Name         string
	ContactName  string
	ContactEmail string
	ContactPhone string
}

// ProjectInput carries the descriptive fields of a project plus exactly
// one way to bind its client: ClientID references an existing client,
// NewClient creates one inline.
type ProjectInput struct {
	Name      string
	Industry  string
	Studio    string
	DevAmount int
	MaxBudget float64
	StartDate time.Time
	EndDate   time.Time

	ClientID  *uuid.UUID
	NewClient *ClientInput
}

// LifecycleService owns project creation, descriptive updates, and every
// state transition of the project lifecycle. Transitions are validated
// against the state machine before any write; ClearEmployees releases a
// project's roster and is shared with the expiry sweeper.
type LifecycleService interface {
	CreateProject(ctx context.Context, input ProjectInput) (*models.Project, error)
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
	UpdateProject(ctx context.Context, id uuid.UUID, input ProjectInput) (*models.Project, error)
	CancelProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	SendToClient(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ClientRejected(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ClientAccepted(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ClearEmployees(ctx context.Context, project *models.Project) error
}

type lifecycleService struct {
	projects  repositories.ProjectRepository
	clients   repositories.ClientRepository
	employees repositories.EmployeeRepository
	cost      CostService
	roster    rosterLoader
	clock     Clock
	logger    *zap.Logger
}

// NewLifecycleService creates a new lifecycle service.
func NewLifecycleService(
	projects repositories.ProjectRepository,
	clients repositories.ClientRepository,
	employees repositories.EmployeeRepository,
	pms repositories.PMRepository,
	developers repositories.DeveloperRepository,
	underSelection repositories.UnderSelectionRepository,
	cost CostService,
	clock Clock,
	logger *zap.Logger,
) LifecycleService {
	return &lifecycleService{
		projects:  projects,
		clients:   clients,
		employees: employees,
		cost:      cost,
		roster: rosterLoader{
			pms:            pms,
			developers:     developers,
			underSelection: underSelection,
		},
		clock:  clock,
		logger: logger.Named("lifecycle-service"),
	}
}

var _ LifecycleService = (*lifecycleService)(nil)

// resolveClient returns the client id the project should reference,
// creating an inline client when the input asks for one.
func (s *lifecycleService) resolveClient(ctx context.Context, input ProjectInput) (uuid.UUID, error) {
	if input.ClientID != nil {
		client, err := s.clients.Get(ctx, *input.ClientID)
		if err != nil {
			return uuid.Nil, err
		}
		return client.ID, nil
	}
	if input.NewClient == nil {
		return uuid.Nil, apperrors.InvariantViolation("a project requires an existing client id or inline client data")
	}

	client := &models.Client{
		ID:           uuid.New(),
		Name:         input.NewClient.Name,
		ContactName:  input.NewClient.ContactName,
		ContactEmail: input.NewClient.ContactEmail,
		ContactPhone: input.NewClient.ContactPhone,
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client.ID, nil
}

func (s *lifecycleService) CreateProject(ctx context.Context, input ProjectInput) (*models.Project, error) {
	clientID, err := s.resolveClient(ctx, input)
	if err != nil {
		return nil, err
	}

	project := &models.Project{
		ID:           uuid.New(),
		Name:         input.Name,
		Industry:     input.Industry,
		Studio:       input.Studio,
		DevAmount:    input.DevAmount,
		MaxBudget:    input.MaxBudget,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		CreationDate: s.clock.Now(),
		State:        models.StateOpen,
		ClientID:     clientID,
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	if err := s.clients.AppendPastProject(ctx, clientID, project.ID); err != nil {
		return nil, err
	}

	s.logger.Info("Project created",
		zap.String("project_id", project.ID.String()),
		zap.String("client_id", clientID.String()))
	return project, nil
}

func (s *lifecycleService) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return s.projects.Get(ctx, id)
}

func (s *lifecycleService) ListProjects(ctx context.Context) ([]models.Project, error) {
	return s.projects.List(ctx)
}

func (s *lifecycleService) UpdateProject(ctx context.Context, id uuid.UUID, input ProjectInput) (*models.Project, error) {
	project, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	clientID, err := s.resolveClient(ctx, input)
	if err != nil {
		return nil, err
	}

	// Descriptive fields only. State, staffing and history fields never
	// change through an update.
	project.Name = input.Name
	project.Industry = input.Industry
	project.Studio = input.Studio
	project.DevAmount = input.DevAmount
	project.MaxBudget = input.MaxBudget
	project.StartDate = input.StartDate
	project.EndDate = input.EndDate
	project.ClientID = clientID

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	if err := s.clients.AppendPastProject(ctx, clientID, project.ID); err != nil {
		return nil, err
	}

	return project, nil
}

func (s *lifecycleService) CancelProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !project.State.CanTransition(models.StateCancelled) {
		return nil, apperrors.InvariantViolation(fmt.Sprintf("cannot cancel a project in state %s", project.State))
	}

	roster, err := s.roster.Load(ctx, project)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	report := EvaluateDelay(roster, now)
	if report.Delayed {
		project.HadDelay = true
	}

	// A cancellation is attributed to PM-side scheduling trouble when the
	// project never got a PM, when the roster is currently delayed, or
	// when the assigned PM is still committed elsewhere.
	project.PMDelayCancel = project.PMID == nil ||
		report.Delayed ||
		(roster.PM != nil && roster.PM.Employee != nil && roster.PM.Employee.Committed(now))

	project.State = models.StateCancelled
	project.CancelDate = &now

	if err := s.projects.MarkCancelled(ctx, project); err != nil {
		return nil, err
	}
	if err := s.releaseRoster(ctx, project, roster); err != nil {
		return nil, err
	}

	s.logger.Info("Project cancelled",
		zap.String("project_id", project.ID.String()),
		zap.Bool("pm_delay_cancel", project.PMDelayCancel),
		zap.Bool("had_delay", project.HadDelay))
	return project, nil
}

func (s *lifecycleService) SendToClient(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !project.State.CanTransition(models.StateSentToClient) {
		return nil, apperrors.InvariantViolation(fmt.Sprintf("cannot send a project in state %s to the client", project.State))
	}

	updated, err := s.projects.MarkSent(ctx, id, s.clock.Now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("Project sent to client",
		zap.String("project_id", id.String()),
		zap.Int("sent_count", updated.SentCount))
	return updated, nil
}

func (s *lifecycleService) ClientRejected(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !project.State.CanTransition(models.StateRejectedByClient) {
		return nil, apperrors.InvariantViolation(fmt.Sprintf("cannot reject a project in state %s", project.State))
	}

	updated, err := s.projects.MarkRejected(ctx, id, s.clock.Now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("Project rejected by client", zap.String("project_id", id.String()))
	return updated, nil
}

func (s *lifecycleService) ClientAccepted(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !project.State.CanTransition(models.StateAccepted) {
		return nil, apperrors.InvariantViolation(fmt.Sprintf("cannot accept a project in state %s", project.State))
	}

	// The cost estimate is taken before the state flip so the roster is
	// still attached; it then freezes as the project's finished cost.
	cost, err := s.cost.EstimateForProject(ctx, project)
	if err != nil {
		return nil, err
	}

	updated, err := s.projects.MarkAccepted(ctx, id, s.clock.Now(), cost)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Project accepted",
		zap.String("project_id", id.String()),
		zap.Float64("finished_cost", cost))
	return updated, nil
}

// ClearEmployees detaches the project's roster. For projects that stopped
// short of TEAM_ASSIGNED nothing was ever truly booked, so availability
// dates are left alone; otherwise each released employee becomes available
// now. Per-record failures are logged and skipped so one bad row cannot
// strand the rest of the roster.
func (s *lifecycleService) ClearEmployees(ctx context.Context, project *models.Project) error {
	roster, err := s.roster.Load(ctx, project)
	if err != nil {
		return err
	}
	return s.releaseRoster(ctx, project, roster)
}

func (s *lifecycleService) releaseRoster(ctx context.Context, project *models.Project, roster *models.Roster) error {
	now := s.clock.Now()
	freeEmployees := project.State != models.StateTeamAssigned

	release := func(kind string, recordID, employeeID uuid.UUID, detach func() error) {
		if err := detach(); err != nil {
			s.logger.Warn("Failed to detach staff record",
				zap.String("kind", kind),
				zap.String("record_id", recordID.String()),
				zap.String("project_id", project.ID.String()),
				zap.Error(err))
			return
		}
		if !freeEmployees {
			return
		}
		if err := s.employees.SetAvailableDate(ctx, employeeID, now); err != nil {
			s.logger.Warn("Failed to reset employee availability",
				zap.String("employee_id", employeeID.String()),
				zap.Error(err))
		}
	}

	// A PM record is only released when it still points at this project;
	// a PM already reassigned elsewhere must keep the new booking.
	if roster.PM != nil && roster.PM.ProjectID != nil && *roster.PM.ProjectID == project.ID {
		pm := roster.PM
		release(apperrors.KindPM, pm.ID, pm.EmployeeID, func() error {
			return s.roster.pms.SetProject(ctx, pm.ID, nil)
		})
	}
	for i := range roster.Developers {
		dev := roster.Developers[i]
		release(apperrors.KindDeveloper, dev.ID, dev.EmployeeID, func() error {
			return s.roster.developers.SetProject(ctx, dev.ID, nil)
		})
	}
	for i := range roster.UnderSelection {
		dev := roster.UnderSelection[i]
		release(apperrors.KindUnderSelection, dev.ID, dev.EmployeeID, func() error {
			return s.roster.underSelection.SetProject(ctx, dev.ID, nil)
		})
	}

	return nil
}
