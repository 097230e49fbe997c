package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/staffhive/staffing-engine/pkg/models"
	"github.com/staffhive/staffing-engine/pkg/repositories"
)

// monthLength is the fixed 30-day month used to prorate monthly salaries
// over a project's planned duration.
const monthLength = 30 * 24 * time.Hour

// CostService estimates the price of a project from the salaries of its
// current roster, prorated by the planned duration. For accepted projects
// the frozen acceptance-time cost is returned instead of a live estimate.
type CostService interface {
	ProjectPrice(ctx context.Context, projectID uuid.UUID) (float64, error)
	EstimateForProject(ctx context.Context, project *models.Project) (float64, error)
}

type costService struct {
	projects repositories.ProjectRepository
	roster   rosterLoader
}

// NewCostService creates a new cost service.
func NewCostService(
	projects repositories.ProjectRepository,
	pms repositories.PMRepository,
	developers repositories.DeveloperRepository,
	underSelection repositories.UnderSelectionRepository,
) CostService {
	return &costService{
		projects: projects,
		roster: rosterLoader{
			pms:            pms,
			developers:     developers,
			underSelection: underSelection,
		},
	}
}

var _ CostService = (*costService)(nil)

func (s *costService) ProjectPrice(ctx context.Context, projectID uuid.UUID) (float64, error) {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return 0, err
	}
	return s.EstimateForProject(ctx, project)
}

func (s *costService) EstimateForProject(ctx context.Context, project *models.Project) (float64, error) {
	if project.State == models.StateAccepted && project.FinishedCost != nil {
		return *project.FinishedCost, nil
	}

	roster, err := s.roster.Load(ctx, project)
	if err != nil {
		return 0, err
	}

	// Salaries are monthly; the duration fraction is deliberately not
	// clamped, so a project shorter than a month costs less than a month
	// of salary and a multi-month project costs proportionally more.
	months := project.EndDate.Sub(project.StartDate).Hours() / monthLength.Hours()

	var total float64
	if roster.PM != nil && roster.PM.Employee != nil {
		total += roster.PM.Employee.Salary * months
	}
	for i := range roster.Developers {
		if roster.Developers[i].Employee != nil {
			total += roster.Developers[i].Employee.Salary * months
		}
	}
	for i := range roster.UnderSelection {
		if roster.UnderSelection[i].Employee != nil {
			total += roster.UnderSelection[i].Employee.Salary * months
		}
	}

	return total, nil
}
