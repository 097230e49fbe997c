package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/staffhive/staffing-engine/pkg/apperrors"
	"github.com/staffhive/staffing-engine/pkg/models"
)

// The mocks below are stateful in-memory implementations of the repository
// interfaces, shared by the service tests in this package. Each carries
// optional forced errors for failure-path tests.

type mockEmployeeRepo struct {
	mu        sync.Mutex
	employees map[uuid.UUID]*models.Employee

	setAvailableErr   error
	availableDateSets int
}

func newMockEmployeeRepo() *mockEmployeeRepo {
	return &mockEmployeeRepo{employees: make(map[uuid.UUID]*models.Employee)}
}

func (m *mockEmployeeRepo) Upsert(_ context.Context, employee *models.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *employee
	m.employees[employee.ID] = &cp
	return nil
}

func (m *mockEmployeeRepo) Get(_ context.Context, id uuid.UUID) (*models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.employees[id]
	if !ok {
		return nil, apperrors.NotFound(apperrors.KindEmployee)
	}
	cp := *e
	return &cp, nil
}

func (m *mockEmployeeRepo) SetAvailableDate(_ context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setAvailableErr != nil {
		return m.setAvailableErr
	}
	e, ok := m.employees[id]
	if !ok {
		return apperrors.NotFound(apperrors.KindEmployee)
	}
	e.AvailableDate = at
	m.availableDateSets++
	return nil
}

type mockPMRepo struct {
	mu  sync.Mutex
	pms map[uuid.UUID]*models.PM

	setProjectErr error
	projectSets   int
}

func newMockPMRepo() *mockPMRepo {
	return &mockPMRepo{pms: make(map[uuid.UUID]*models.PM)}
}

func (m *mockPMRepo) Upsert(_ context.Context, pm *models.PM) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *pm
	m.pms[pm.ID] = &cp
	return nil
}

func (m *mockPMRepo) Get(_ context.Context, id uuid.UUID) (*models.PM, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pm, ok := m.pms[id]
	if !ok {
		return nil, apperrors.NotFound(apperrors.KindPM)
	}
	cp := *pm
	return &cp, nil
}

func (m *mockPMRepo) List(_ context.Context) ([]models.PM, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.PM
	for _, pm := range m.pms {
		result = append(result, *pm)
	}
	return result, nil
}

func (m *mockPMRepo) SetProject(_ context.Context, id uuid.UUID, projectID *uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setProjectErr != nil {
		return m.setProjectErr
	}
	pm, ok := m.pms[id]
	if !ok {
		return apperrors.NotFound(apperrors.KindPM)
	}
	pm.ProjectID = projectID
	m.projectSets++
	return nil
}

type mockDeveloperRepo struct {
	mu         sync.Mutex
	developers map[uuid.UUID]*models.Developer

	setProjectErr error
}

func newMockDeveloperRepo() *mockDeveloperRepo {
	return &mockDeveloperRepo{developers: make(map[uuid.UUID]*models.Developer)}
}

func (m *mockDeveloperRepo) Upsert(_ context.Context, dev *models.Developer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *dev
	m.developers[dev.ID] = &cp
	return nil
}

func (m *mockDeveloperRepo) Get(_ context.Context, id uuid.UUID) (*models.Developer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dev, ok := m.developers[id]
	if !ok {
		return nil, apperrors.NotFound(apperrors.KindDeveloper)
	}
	cp := *dev
	return &cp, nil
}

func (m *mockDeveloperRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]models.Developer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.Developer
	for _, id := range ids {
		if dev, ok := m.developers[id]; ok {
			result = append(result, *dev)
		}
	}
	return result, nil
}

func (m *mockDeveloperRepo) List(_ context.Context) ([]models.Developer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.Developer
	for _, dev := range m.developers {
		result = append(result, *dev)
	}
	return result, nil
}

func (m *mockDeveloperRepo) ListByProject(_ context.Context, projectID uuid.UUID) ([]models.Developer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.Developer
	for _, dev := range m.developers {
		if dev.ProjectID != nil && *dev.ProjectID == projectID {
			result = append(result, *dev)
		}
	}
	return result, nil
}

func (m *mockDeveloperRepo) CountByProject(ctx context.Context, projectID uuid.UUID) (int, error) {
	devs, err := m.ListByProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	return len(devs), nil
}

func (m *mockDeveloperRepo) SetProject(_ context.Context, id uuid.UUID, projectID *uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setProjectErr != nil {
		return m.setProjectErr
	}
	dev, ok := m.developers[id]
	if !ok {
		return apperrors.NotFound(apperrors.KindDeveloper)
	}
	dev.ProjectID = projectID
	return nil
}

type mockUnderSelectionRepo struct {
	mu         sync.Mutex
	developers map[uuid.UUID]*models.UnderSelectionDeveloper

	setProjectErr error
}

func newMockUnderSelectionRepo() *mockUnderSelectionRepo {
	return &mockUnderSelectionRepo{developers: make(map[uuid.UUID]*models.UnderSelectionDeveloper)}
}

func (m *mockUnderSelectionRepo) Upsert(_ context.Context, dev *models.UnderSelectionDeveloper) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *dev
	m.developers[dev.ID] = &cp
	return nil
}

func (m *mockUnderSelectionRepo) Get(_ context.Context, id uuid.UUID) (*models.UnderSelectionDeveloper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dev, ok := m.developers[id]
	if !ok {
		return nil, apperrors.NotFound(apperrors.KindUnderSelection)
	}
	cp := *dev
	return &cp, nil
}

func (m *mockUnderSelectionRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]models.UnderSelectionDeveloper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.UnderSelectionDeveloper
	for _, id := range ids {
		if dev, ok := m.developers[id]; ok {
			result = append(result, *dev)
		}
	}
	return result, nil
}

func (m *mockUnderSelectionRepo) List(_ context.Context) ([]models.UnderSelectionDeveloper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.UnderSelectionDeveloper
	for _, dev := range m.developers {
		result = append(result, *dev)
	}
	return result, nil
}

func (m *mockUnderSelectionRepo) ListByProject(_ context.Context, projectID uuid.UUID) ([]models.UnderSelectionDeveloper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.UnderSelectionDeveloper
	for _, dev := range m.developers {
		if dev.ProjectID != nil && *dev.ProjectID == projectID {
			result = append(result, *dev)
		}
	}
	return result, nil
}

func (m *mockUnderSelectionRepo) CountByProject(ctx context.Context, projectID uuid.UUID) (int, error) {
	devs, err := m.ListByProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	return len(devs), nil
}

func (m *mockUnderSelectionRepo) ListSelectionOverlapping(_ context.Context, from, to time.Time) ([]models.UnderSelectionDeveloper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.UnderSelectionDeveloper
	for _, dev := range m.developers {
		if dev.SelectionStart.Before(to) && !dev.SelectionEnd.Before(from) {
			result = append(result, *dev)
		}
	}
	return result, nil
}

func (m *mockUnderSelectionRepo) SetProject(_ context.Context, id uuid.UUID, projectID *uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setProjectErr != nil {
		return m.setProjectErr
	}
	dev, ok := m.developers[id]
	if !ok {
		return apperrors.NotFound(apperrors.KindUnderSelection)
	}
	dev.ProjectID = projectID
	return nil
}

type mockClientRepo struct {
	mu      sync.Mutex
	clients map[uuid.UUID]*models.Client

	createErr error
}

func newMockClientRepo() *mockClientRepo {
	return &mockClientRepo{clients: make(map[uuid.UUID]*models.Client)}
}

func (m *mockClientRepo) Create(_ context.Context, client *models.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	cp := *client
	m.clients[client.ID] = &cp
	return nil
}

func (m *mockClientRepo) Get(_ context.Context, id uuid.UUID) (*models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	client, ok := m.clients[id]
	if !ok {
		return nil, apperrors.NotFound(apperrors.KindClient)
	}
	cp := *client
	cp.PastProjects = append([]uuid.UUID(nil), client.PastProjects...)
	return &cp, nil
}

func (m *mockClientRepo) List(_ context.Context) ([]models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.Client
	for _, client := range m.clients {
		result = append(result, *client)
	}
	return result, nil
}

func (m *mockClientRepo) AppendPastProject(_ context.Context, clientID, projectID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	client, ok := m.clients[clientID]
	if !ok {
		return apperrors.NotFound(apperrors.KindClient)
	}
	for _, id := range client.PastProjects {
		if id == projectID {
			return nil
		}
	}
	client.PastProjects = append(client.PastProjects, projectID)
	return nil
}

type mockProjectRepo struct {
	mu       sync.Mutex
	projects map[uuid.UUID]*models.Project

	createErr         error
	updateErr         error
	listExpiredErr    error
	assignmentUpdates int
}

func newMockProjectRepo() *mockProjectRepo {
	return &mockProjectRepo{projects: make(map[uuid.UUID]*models.Project)}
}

func (m *mockProjectRepo) copyOf(p *models.Project) *models.Project {
	cp := *p
	cp.SentDates = append([]time.Time(nil), p.SentDates...)
	cp.RejectDates = append([]time.Time(nil), p.RejectDates...)
	return &cp
}

func (m *mockProjectRepo) Create(_ context.Context, project *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.projects[project.ID] = m.copyOf(project)
	return nil
}

func (m *mockProjectRepo) Get(_ context.Context, id uuid.UUID) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, apperrors.NotFound(apperrors.KindProject)
	}
	return m.copyOf(p), nil
}

func (m *mockProjectRepo) List(_ context.Context) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.Project
	for _, p := range m.projects {
		result = append(result, *m.copyOf(p))
	}
	return result, nil
}

func (m *mockProjectRepo) Update(_ context.Context, project *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	p, ok := m.projects[project.ID]
	if !ok {
		return apperrors.NotFound(apperrors.KindProject)
	}
	p.Name = project.Name
	p.Industry = project.Industry
	p.Studio = project.Studio
	p.DevAmount = project.DevAmount
	p.MaxBudget = project.MaxBudget
	p.StartDate = project.StartDate
	p.EndDate = project.EndDate
	p.ClientID = project.ClientID
	return nil
}

func (m *mockProjectRepo) UpdateAssignment(_ context.Context, project *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	p, ok := m.projects[project.ID]
	if !ok {
		return apperrors.NotFound(apperrors.KindProject)
	}
	p.PMID = project.PMID
	p.PMAssignDate = project.PMAssignDate
	p.FirstDevAssignDate = project.FirstDevAssignDate
	p.LastDevAssignDate = project.LastDevAssignDate
	p.HadDelay = project.HadDelay
	p.State = project.State
	m.assignmentUpdates++
	return nil
}

func (m *mockProjectRepo) MarkSent(_ context.Context, id uuid.UUID, at time.Time) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, apperrors.NotFound(apperrors.KindProject)
	}
	p.State = models.StateSentToClient
	p.SentCount++
	p.SentDates = append(p.SentDates, at)
	return m.copyOf(p), nil
}

func (m *mockProjectRepo) MarkRejected(_ context.Context, id uuid.UUID, at time.Time) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, apperrors.NotFound(apperrors.KindProject)
	}
	p.State = models.StateRejectedByClient
	p.RejectDates = append(p.RejectDates, at)
	return m.copyOf(p), nil
}

func (m *mockProjectRepo) MarkAccepted(_ context.Context, id uuid.UUID, at time.Time, cost float64) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, apperrors.NotFound(apperrors.KindProject)
	}
	p.State = models.StateAccepted
	p.AcceptDate = &at
	if p.FinishedCost == nil {
		p.FinishedCost = &cost
	}
	return m.copyOf(p), nil
}

func (m *mockProjectRepo) MarkCancelled(_ context.Context, project *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[project.ID]
	if !ok {
		return apperrors.NotFound(apperrors.KindProject)
	}
	p.State = models.StateCancelled
	p.CancelDate = project.CancelDate
	p.HadDelay = project.HadDelay
	p.PMDelayCancel = project.PMDelayCancel
	return nil
}

func (m *mockProjectRepo) ListExpiredAccepted(_ context.Context, now time.Time) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listExpiredErr != nil {
		return nil, m.listExpiredErr
	}
	var result []models.Project
	for _, p := range m.projects {
		if p.State == models.StateAccepted && !p.EndDate.After(now) {
			result = append(result, *m.copyOf(p))
		}
	}
	return result, nil
}

func (m *mockProjectRepo) ListOverlapping(_ context.Context, from, to time.Time) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.Project
	for _, p := range m.projects {
		if p.State == models.StateCancelled {
			continue
		}
		if p.CreationDate.Before(to) && !p.EndDate.Before(from) {
			result = append(result, *m.copyOf(p))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreationDate.Before(result[j].CreationDate)
	})
	return result, nil
}

func (m *mockProjectRepo) ListDelayedOverlapping(_ context.Context, from, to time.Time) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.Project
	for _, p := range m.projects {
		if !p.HadDelay {
			continue
		}
		if p.CreationDate.Before(to) && !p.EndDate.Before(from) {
			result = append(result, *m.copyOf(p))
		}
	}
	return result, nil
}

func (m *mockProjectRepo) CountEarlierNonCancelledByClient(_ context.Context, clientID uuid.UUID, before time.Time, excludeID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, p := range m.projects {
		if p.ID == excludeID || p.ClientID != clientID {
			continue
		}
		if p.State == models.StateCancelled {
			continue
		}
		if p.CreationDate.Before(before) {
			count++
		}
	}
	return count, nil
}

// fixedClock returns a Clock pinned to the given instant.
func fixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}
