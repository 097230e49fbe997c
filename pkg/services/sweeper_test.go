package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/staffhive/staffing-engine/pkg/models"
)

// mockLifecycle records ClearEmployees calls and can fail selected projects.
type mockLifecycle struct {
	LifecycleService

	mu      sync.Mutex
	cleared []uuid.UUID
	failFor map[uuid.UUID]error
}

func (m *mockLifecycle) ClearEmployees(_ context.Context, project *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failFor[project.ID]; ok {
		return err
	}
	m.cleared = append(m.cleared, project.ID)
	return nil
}

func TestSweep_ReleasesOnlyExpiredAccepted(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	projects := newMockProjectRepo()
	lifecycle := &mockLifecycle{}
	sweeper := NewReleaseSweeper(projects, lifecycle, fixedClock(now), zap.NewNop())

	expired := &models.Project{ID: uuid.New(), State: models.StateAccepted, EndDate: now.AddDate(0, 0, -1)}
	running := &models.Project{ID: uuid.New(), State: models.StateAccepted, EndDate: now.AddDate(0, 1, 0)}
	open := &models.Project{ID: uuid.New(), State: models.StateOpen, EndDate: now.AddDate(0, 0, -1)}
	for _, p := range []*models.Project{expired, running, open} {
		require.NoError(t, projects.Create(context.Background(), p))
	}

	released, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, released)
	assert.Equal(t, []uuid.UUID{expired.ID}, lifecycle.cleared)
}

func TestSweep_FailuresDoNotAbortSiblings(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	projects := newMockProjectRepo()

	failing := &models.Project{ID: uuid.New(), State: models.StateAccepted, EndDate: now.AddDate(0, 0, -2)}
	healthy := &models.Project{ID: uuid.New(), State: models.StateAccepted, EndDate: now.AddDate(0, 0, -1)}
	require.NoError(t, projects.Create(context.Background(), failing))
	require.NoError(t, projects.Create(context.Background(), healthy))

	lifecycle := &mockLifecycle{failFor: map[uuid.UUID]error{failing.ID: errors.New("boom")}}
	sweeper := NewReleaseSweeper(projects, lifecycle, fixedClock(now), zap.NewNop())

	released, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, released)
	assert.Equal(t, []uuid.UUID{healthy.ID}, lifecycle.cleared)
}

func TestSweep_ListFailurePropagates(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	projects := newMockProjectRepo()
	projects.listExpiredErr = errors.New("store down")
	sweeper := NewReleaseSweeper(projects, &mockLifecycle{}, fixedClock(now), zap.NewNop())

	_, err := sweeper.Sweep(context.Background())
	assert.Error(t, err)
}

func TestSweep_NothingExpired(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	lifecycle := &mockLifecycle{}
	sweeper := NewReleaseSweeper(newMockProjectRepo(), lifecycle, fixedClock(now), zap.NewNop())

	released, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, released)
	assert.Empty(t, lifecycle.cleared)
}
