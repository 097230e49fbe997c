//go:build integration

package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffhive/staffing-engine/pkg/apperrors"
	"github.com/staffhive/staffing-engine/pkg/models"
	"github.com/staffhive/staffing-engine/pkg/testhelpers"
)

// projectTestContext holds test dependencies for project repository tests.
type projectTestContext struct {
	t        *testing.T
	repo     ProjectRepository
	clients  ClientRepository
	clientID uuid.UUID
	now      time.Time
}

func setupProjectTest(t *testing.T) *projectTestContext {
	testDB := testhelpers.GetTestDB(t)
	tc := &projectTestContext{
		t:        t,
		repo:     NewProjectRepository(testDB.DB),
		clients:  NewClientRepository(testDB.DB),
		clientID: uuid.New(),
		now:      time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, tc.clients.Create(context.Background(), &models.Client{
		ID:   tc.clientID,
		Name: "Initech",
	}))
	return tc
}

func (tc *projectTestContext) createProject() *models.Project {
	tc.t.Helper()
	p := &models.Project{
		ID:           uuid.New(),
		Name:         "replatform",
		Industry:     "retail",
		Studio:       "north",
		DevAmount:    2,
		MaxBudget:    90000,
		StartDate:    tc.now,
		EndDate:      tc.now.AddDate(0, 2, 0),
		CreationDate: tc.now,
		State:        models.StateOpen,
		ClientID:     tc.clientID,
	}
	require.NoError(tc.t, tc.repo.Create(context.Background(), p))
	return p
}

func TestProjectRepository_CreateAndGet(t *testing.T) {
	tc := setupProjectTest(t)
	ctx := context.Background()
	p := tc.createProject()

	got, err := tc.repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, models.StateOpen, got.State)
	assert.Equal(t, tc.clientID, got.ClientID)
	assert.Zero(t, got.SentCount)
	assert.Empty(t, got.SentDates)
}

func TestProjectRepository_GetMissing(t *testing.T) {
	tc := setupProjectTest(t)

	_, err := tc.repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProjectRepository_MarkSentIncrementsAtomically(t *testing.T) {
	tc := setupProjectTest(t)
	ctx := context.Background()
	p := tc.createProject()

	first := tc.now
	second := tc.now.Add(time.Hour)

	updated, err := tc.repo.MarkSent(ctx, p.ID, first)
	require.NoError(t, err)
	assert.Equal(t, models.StateSentToClient, updated.State)
	assert.Equal(t, 1, updated.SentCount)
	require.Len(t, updated.SentDates, 1)

	updated, err = tc.repo.MarkSent(ctx, p.ID, second)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.SentCount)
	require.Len(t, updated.SentDates, 2)
	assert.True(t, updated.SentDates[1].After(updated.SentDates[0]))
}

func TestProjectRepository_MarkAcceptedFreezesCost(t *testing.T) {
	tc := setupProjectTest(t)
	ctx := context.Background()
	p := tc.createProject()

	accepted, err := tc.repo.MarkAccepted(ctx, p.ID, tc.now, 5000)
	require.NoError(t, err)
	require.NotNil(t, accepted.FinishedCost)
	assert.Equal(t, float64(5000), *accepted.FinishedCost)

	// A second acceptance write must not overwrite the frozen cost.
	again, err := tc.repo.MarkAccepted(ctx, p.ID, tc.now.Add(time.Hour), 9999)
	require.NoError(t, err)
	require.NotNil(t, again.FinishedCost)
	assert.Equal(t, float64(5000), *again.FinishedCost)
}

func TestProjectRepository_MarkRejectedAppendsHistory(t *testing.T) {
	tc := setupProjectTest(t)
	ctx := context.Background()
	p := tc.createProject()

	updated, err := tc.repo.MarkRejected(ctx, p.ID, tc.now)
	require.NoError(t, err)
	assert.Equal(t, models.StateRejectedByClient, updated.State)
	require.Len(t, updated.RejectDates, 1)
}

func TestProjectRepository_ListExpiredAccepted(t *testing.T) {
	tc := setupProjectTest(t)
	ctx := context.Background()

	expired := tc.createProject()
	running := tc.createProject()

	_, err := tc.repo.MarkAccepted(ctx, expired.ID, tc.now, 100)
	require.NoError(t, err)
	_, err = tc.repo.MarkAccepted(ctx, running.ID, tc.now, 100)
	require.NoError(t, err)

	// Move the first project's end date into the past.
	expired.EndDate = tc.now.AddDate(0, 0, -1)
	require.NoError(t, tc.repo.Update(ctx, expired))

	list, err := tc.repo.ListExpiredAccepted(ctx, tc.now)
	require.NoError(t, err)

	ids := make(map[uuid.UUID]bool)
	for _, p := range list {
		ids[p.ID] = true
	}
	assert.True(t, ids[expired.ID])
	assert.False(t, ids[running.ID])
}

func TestProjectRepository_OverlapListingsExcludeCancelled(t *testing.T) {
	tc := setupProjectTest(t)
	ctx := context.Background()

	active := tc.createProject()
	cancelled := tc.createProject()
	cancelled.State = models.StateCancelled
	cancelDate := tc.now
	cancelled.CancelDate = &cancelDate
	cancelled.HadDelay = true
	cancelled.PMDelayCancel = true
	require.NoError(t, tc.repo.MarkCancelled(ctx, cancelled))

	from := tc.now.AddDate(0, 0, -1)
	to := tc.now.AddDate(0, 0, 1)

	list, err := tc.repo.ListOverlapping(ctx, from, to)
	require.NoError(t, err)
	ids := make(map[uuid.UUID]bool)
	for _, p := range list {
		ids[p.ID] = true
	}
	assert.True(t, ids[active.ID])
	assert.False(t, ids[cancelled.ID], "cancelled projects stay out of the overlap listing")

	// The delayed listing keeps cancelled projects in the population.
	delayed, err := tc.repo.ListDelayedOverlapping(ctx, from, to)
	require.NoError(t, err)
	found := false
	for _, p := range delayed {
		if p.ID == cancelled.ID {
			found = true
			assert.True(t, p.PMDelayCancel)
		}
	}
	assert.True(t, found)
}

func TestProjectRepository_CountEarlierNonCancelledByClient(t *testing.T) {
	tc := setupProjectTest(t)
	ctx := context.Background()

	earlier := tc.createProject()

	later := &models.Project{
		ID:           uuid.New(),
		Name:         "followup",
		DevAmount:    1,
		StartDate:    tc.now,
		EndDate:      tc.now.AddDate(0, 1, 0),
		CreationDate: tc.now.Add(time.Hour),
		State:        models.StateOpen,
		ClientID:     tc.clientID,
	}
	require.NoError(t, tc.repo.Create(ctx, later))

	count, err := tc.repo.CountEarlierNonCancelledByClient(ctx, tc.clientID, later.CreationDate, later.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 1)

	countForEarlier, err := tc.repo.CountEarlierNonCancelledByClient(ctx, tc.clientID, earlier.CreationDate, earlier.ID)
	require.NoError(t, err)
	assert.Zero(t, countForEarlier)
}
