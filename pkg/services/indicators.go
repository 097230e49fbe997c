package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/staffhive/staffing-engine/pkg/apperrors"
	"github.com/staffhive/staffing-engine/pkg/models"
	"github.com/staffhive/staffing-engine/pkg/repositories"
)

// IndicatorService computes the monthly and quarterly KPI batch for the
// current reporting windows. Every computation is a pure read over the
// store; ratios with a zero denominator are reported as nil.
type IndicatorService interface {
	Compute(ctx context.Context) (*models.IndicatorReport, error)
}

type indicatorService struct {
	projects       repositories.ProjectRepository
	pms            repositories.PMRepository
	underSelection repositories.UnderSelectionRepository
	clock          Clock
	logger         *zap.Logger
}

// NewIndicatorService creates a new indicator service.
func NewIndicatorService(
	projects repositories.ProjectRepository,
	pms repositories.PMRepository,
	underSelection repositories.UnderSelectionRepository,
	clock Clock,
	logger *zap.Logger,
) IndicatorService {
	return &indicatorService{
		projects:       projects,
		pms:            pms,
		underSelection: underSelection,
		clock:          clock,
		logger:         logger.Named("indicator-service"),
	}
}

var _ IndicatorService = (*indicatorService)(nil)

func days(d time.Duration) float64 { return d.Hours() / 24 }

// ratio returns numerator/denominator scaled to percent, or nil when the
// denominator is zero.
func ratio(numerator, denominator float64) *float64 {
	if denominator == 0 {
		return nil
	}
	v := numerator / denominator * 100
	return &v
}

// average returns sum/count, or nil when count is zero.
func average(sum float64, count int) *float64 {
	if count == 0 {
		return nil
	}
	v := sum / float64(count)
	return &v
}

func monthWindow(now time.Time) models.Window {
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return models.Window{From: from, To: from.AddDate(0, 1, 0)}
}

func quarterWindow(now time.Time) models.Window {
	quarterStart := time.Month((int(now.Month())-1)/3*3 + 1)
	from := time.Date(now.Year(), quarterStart, 1, 0, 0, 0, 0, now.Location())
	return models.Window{From: from, To: from.AddDate(0, 3, 0)}
}

func (s *indicatorService) Compute(ctx context.Context) (*models.IndicatorReport, error) {
	now := s.clock.Now()
	month := monthWindow(now)
	quarter := quarterWindow(now)

	report := &models.IndicatorReport{Month: month, Quarter: quarter}

	monthProjects, err := s.projects.ListOverlapping(ctx, month.From, month.To)
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly projects: %w", err)
	}

	report.Monthly.IDPM, err = s.computeIDPM(ctx, monthProjects)
	if err != nil {
		return nil, err
	}
	report.Monthly.AP, report.Monthly.APPI = computeAcceptance(monthProjects)
	report.Monthly.MPP = computeMargin(monthProjects)
	report.Monthly.IDE = computeIDE(monthProjects, month)

	report.Monthly.IDNE, err = s.computeIDNE(ctx, month)
	if err != nil {
		return nil, err
	}
	report.Monthly.REPM, err = s.computeREPM(ctx, month)
	if err != nil {
		return nil, err
	}

	report.Quarterly.ICN, report.Quarterly.IR, err = s.computeClientMix(ctx, quarter)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Indicator batch computed",
		zap.Time("month_from", month.From),
		zap.Time("quarter_from", quarter.From))
	return report, nil
}

// computeIDPM averages, over projects with an assigned PM, the days by
// which the PM employee's availability trailed project creation. A PM
// already free at creation contributes zero.
func (s *indicatorService) computeIDPM(ctx context.Context, projects []models.Project) (*float64, error) {
	var (
		sum   float64
		count int
	)
	for i := range projects {
		p := &projects[i]
		if p.PMAssignDate == nil || p.PMID == nil {
			continue
		}
		pm, err := s.pms.Get(ctx, *p.PMID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to load pm for indicators: %w", err)
		}
		count++
		if pm.Employee != nil && pm.Employee.AvailableDate.After(p.CreationDate) {
			sum += days(pm.Employee.AvailableDate.Sub(p.CreationDate))
		}
	}
	return average(sum, count), nil
}

// computeAcceptance derives AP (accepted over ever-sent) and APPI
// (single-send acceptances over all acceptances) from one pass.
func computeAcceptance(projects []models.Project) (ap, appi *float64) {
	var sent, accepted, firstTry int
	for i := range projects {
		p := &projects[i]
		if p.SentCount == 0 {
			continue
		}
		sent++
		if p.State != models.StateAccepted {
			continue
		}
		accepted++
		if p.SentCount == 1 {
			firstTry++
		}
	}
	return ratio(float64(accepted), float64(sent)), ratio(float64(firstTry), float64(accepted))
}

// computeMargin derives MPP, the budget margin over accepted projects. The
// actual cost is the frozen acceptance-time cost.
func computeMargin(projects []models.Project) *float64 {
	var budget, cost float64
	var accepted int
	for i := range projects {
		p := &projects[i]
		if p.State != models.StateAccepted || p.FinishedCost == nil {
			continue
		}
		accepted++
		budget += p.MaxBudget
		cost += *p.FinishedCost
	}
	if accepted == 0 || budget == 0 {
		return nil
	}
	v := (budget - cost) / budget * 100
	return &v
}

// computeIDE averages the days between PM assignment and full team
// assignment, over projects whose team completed inside the window.
func computeIDE(projects []models.Project, window models.Window) *float64 {
	var (
		sum   float64
		count int
	)
	for i := range projects {
		p := &projects[i]
		if p.PMAssignDate == nil || p.LastDevAssignDate == nil {
			continue
		}
		if !window.Contains(*p.LastDevAssignDate) {
			continue
		}
		count++
		sum += days(p.LastDevAssignDate.Sub(*p.PMAssignDate))
	}
	return average(sum, count)
}

// computeIDNE averages the selection-process duration, in days, over
// under-selection developers whose selection window overlaps the month.
func (s *indicatorService) computeIDNE(ctx context.Context, month models.Window) (*float64, error) {
	selection, err := s.underSelection.ListSelectionOverlapping(ctx, month.From, month.To)
	if err != nil {
		return nil, fmt.Errorf("failed to load selection windows: %w", err)
	}
	var sum float64
	for i := range selection {
		sum += days(selection[i].SelectionEnd.Sub(selection[i].SelectionStart))
	}
	return average(sum, len(selection)), nil
}

// computeREPM measures, among projects that ever flagged a delay, the
// share ultimately cancelled over PM-side scheduling trouble. Cancelled
// projects stay in the population here.
func (s *indicatorService) computeREPM(ctx context.Context, month models.Window) (*float64, error) {
	delayed, err := s.projects.ListDelayedOverlapping(ctx, month.From, month.To)
	if err != nil {
		return nil, fmt.Errorf("failed to load delayed projects: %w", err)
	}
	var cancelled int
	for i := range delayed {
		p := &delayed[i]
		if p.State == models.StateCancelled && p.PMDelayCancel {
			cancelled++
		}
	}
	return ratio(float64(cancelled), float64(len(delayed))), nil
}

// computeClientMix derives ICN and IR: the quarter's split between
// projects from new clients and projects from returning clients. A client
// is new for a project when it had no earlier non-cancelled project.
func (s *indicatorService) computeClientMix(ctx context.Context, quarter models.Window) (icn, ir *float64, err error) {
	projects, err := s.projects.ListOverlapping(ctx, quarter.From, quarter.To)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load quarterly projects: %w", err)
	}
	var newClients int
	for i := range projects {
		p := &projects[i]
		earlier, err := s.projects.CountEarlierNonCancelledByClient(ctx, p.ClientID, p.CreationDate, p.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to count client history: %w", err)
		}
		if earlier == 0 {
			newClients++
		}
	}
	total := float64(len(projects))
	return ratio(float64(newClients), total), ratio(float64(len(projects)-newClients), total), nil
}
