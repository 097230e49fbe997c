package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/staffhive/staffing-engine/pkg/apperrors"
	"github.com/staffhive/staffing-engine/pkg/models"
	"github.com/staffhive/staffing-engine/pkg/repositories"
)

// AssignTeamRequest names the staff an operator wants on a project. The
// developer and under-selection id sets are cumulative: callers send the
// full desired roster, not a diff.
type AssignTeamRequest struct {
	PMID              *uuid.UUID
	DeveloperIDs      []uuid.UUID
	UnderSelectionIDs []uuid.UUID
}

// StaffingService validates and commits a PM and developer-class staff to
// a project, maintains the capacity-derived booking timestamps and the
// sticky delay flag, and promotes the project to TEAM_ASSIGNED when the
// capacity target is met.
type StaffingService interface {
	AssignTeam(ctx context.Context, projectID uuid.UUID, req AssignTeamRequest) (*models.Project, error)
}

type staffingService struct {
	projects       repositories.ProjectRepository
	pms            repositories.PMRepository
	developers     repositories.DeveloperRepository
	underSelection repositories.UnderSelectionRepository
	clock          Clock
	logger         *zap.Logger
}

// NewStaffingService creates a new staffing service.
func NewStaffingService(
	projects repositories.ProjectRepository,
	pms repositories.PMRepository,
	developers repositories.DeveloperRepository,
	underSelection repositories.UnderSelectionRepository,
	clock Clock,
	logger *zap.Logger,
) StaffingService {
	return &staffingService{
		projects:       projects,
		pms:            pms,
		developers:     developers,
		underSelection: underSelection,
		clock:          clock,
		logger:         logger.Named("staffing-service"),
	}
}

var _ StaffingService = (*staffingService)(nil)

func (s *staffingService) AssignTeam(ctx context.Context, projectID uuid.UUID, req AssignTeamRequest) (*models.Project, error) {
	// Validation happens in full before any mutation: a failure here must
	// leave the project and every role record untouched.
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var pm *models.PM
	if req.PMID != nil {
		pm, err = s.pms.Get(ctx, *req.PMID)
		if err != nil {
			return nil, err
		}
	}

	devs, err := s.developers.GetByIDs(ctx, req.DeveloperIDs)
	if err != nil {
		return nil, err
	}
	if len(devs) != len(req.DeveloperIDs) {
		return nil, apperrors.InvalidReference(apperrors.KindDeveloper, len(req.DeveloperIDs), len(devs))
	}

	selection, err := s.underSelection.GetByIDs(ctx, req.UnderSelectionIDs)
	if err != nil {
		return nil, err
	}
	if len(selection) != len(req.UnderSelectionIDs) {
		return nil, apperrors.InvalidReference(apperrors.KindUnderSelection, len(req.UnderSelectionIDs), len(selection))
	}

	requested := len(req.DeveloperIDs) + len(req.UnderSelectionIDs)
	if requested > project.DevAmount {
		return nil, apperrors.InvariantViolation(fmt.Sprintf(
			"requested %d developer seats, project capacity is %d", requested, project.DevAmount))
	}

	assignedBefore, err := s.developers.CountByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()

	if pm != nil {
		project.PMID = &pm.ID
		project.PMAssignDate = &now
		if pm.Employee.Committed(now) {
			project.HadDelay = true
		}
	}
	for i := range devs {
		if devs[i].Employee.Committed(now) {
			project.HadDelay = true
		}
	}
	for i := range selection {
		if selection[i].Employee.Committed(now) {
			project.HadDelay = true
		}
	}

	if project.FirstDevAssignDate == nil && assignedBefore == 0 && len(req.DeveloperIDs) > 0 {
		project.FirstDevAssignDate = &now
	}
	if requested == project.DevAmount {
		if project.LastDevAssignDate == nil {
			project.LastDevAssignDate = &now
		}
		if project.State.CanTransition(models.StateTeamAssigned) {
			project.State = models.StateTeamAssigned
		}
	}

	// Role-record writes are independent of the project write; a racing
	// assignment of the same person to another project is last-write-wins
	// on project_id and surfaces only through the delay flag.
	if pm != nil {
		if err := s.pms.SetProject(ctx, pm.ID, &projectID); err != nil {
			return nil, err
		}
	}
	for i := range devs {
		if err := s.developers.SetProject(ctx, devs[i].ID, &projectID); err != nil {
			return nil, err
		}
	}
	for i := range selection {
		if err := s.underSelection.SetProject(ctx, selection[i].ID, &projectID); err != nil {
			return nil, err
		}
	}

	if err := s.projects.UpdateAssignment(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("Team assigned",
		zap.String("project_id", projectID.String()),
		zap.Int("developers", len(req.DeveloperIDs)),
		zap.Int("under_selection", len(req.UnderSelectionIDs)),
		zap.Bool("had_delay", project.HadDelay),
		zap.String("state", string(project.State)))

	return project, nil
}
