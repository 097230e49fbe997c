package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/staffhive/staffing-engine/pkg/apperrors"
	"github.com/staffhive/staffing-engine/pkg/models"
	"github.com/staffhive/staffing-engine/pkg/repositories"
)

// rosterLoader resolves a project's assigned staff with their employees.
// It is shared by the lifecycle service (delay evaluation, release) and
// the cost service (salary proration).
type rosterLoader struct {
	pms            repositories.PMRepository
	developers     repositories.DeveloperRepository
	underSelection repositories.UnderSelectionRepository
}

// Load resolves the referenced PM (when the project has one) and every
// developer-class record currently attached to the project.
func (l *rosterLoader) Load(ctx context.Context, project *models.Project) (*models.Roster, error) {
	roster := &models.Roster{}

	if project.PMID != nil {
		pm, err := l.pms.Get(ctx, *project.PMID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to load project pm: %w", err)
		}
		if err == nil {
			roster.PM = pm
		}
	}

	developers, err := l.developers.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project developers: %w", err)
	}
	roster.Developers = developers

	underSelection, err := l.underSelection.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project under-selection developers: %w", err)
	}
	roster.UnderSelection = underSelection

	return roster, nil
}
