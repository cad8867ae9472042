package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createVisit(t *testing.T, env *testEnv, accountID, clientID uuid.UUID, date string) *VisitResponse {
	t.Helper()
	visit, err := env.visits.CreateVisit(context.Background(), accountID, VisitRequest{
		ClientID:      clientID.String(),
		Title:         "Boiler checkup",
		ScheduledDate: date,
		ScheduledTime: "10:30",
	})
	require.NoError(t, err)
	return visit
}

func TestCreateVisitDefaults(t *testing.T) {
	env := newTestEnv(t)
	account := seedAccount(t, env.db, "tech@example.com")
	clientID := seedClient(t, env, account.ID)

	visit := createVisit(t, env, account.ID, clientID, "2026-09-15")
	assert.Equal(t, model.VisitStatusPending, visit.Status)
	assert.Equal(t, model.VisitCategoryRepair, visit.Category)
	assert.Equal(t, model.VisitPriorityNormal, visit.Priority)
	assert.Equal(t, "Maria", visit.ClientName)
	assert.Equal(t, "600111222", visit.ClientPhone)
	assert.Nil(t, visit.CompletedAt)
}

func TestCreateVisitValidation(t *testing.T) {
	env := newTestEnv(t)
	account := seedAccount(t, env.db, "tech@example.com")
	clientID := seedClient(t, env, account.ID)
	ctx := context.Background()

	_, err := env.visits.CreateVisit(ctx, account.ID, VisitRequest{
		ClientID:      clientID.String(),
		Title:         "Bad date",
		ScheduledDate: "15/09/2026",
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.visits.CreateVisit(ctx, account.ID, VisitRequest{
		ClientID:      clientID.String(),
		Title:         "Bad time",
		ScheduledDate: "2026-09-15",
		ScheduledTime: "25:99",
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.visits.CreateVisit(ctx, account.ID, VisitRequest{
		ClientID:      clientID.String(),
		Title:         "Bad status",
		ScheduledDate: "2026-09-15",
		Status:        "postponed",
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestCreateVisitRejectsForeignClient(t *testing.T) {
	env := newTestEnv(t)
	accountA := seedAccount(t, env.db, "a@example.com")
	accountB := seedAccount(t, env.db, "b@example.com")
	clientA := seedClient(t, env, accountA.ID)

	_, err := env.visits.CreateVisit(context.Background(), accountB.ID, VisitRequest{
		ClientID:      clientA.String(),
		Title:         "Should not exist",
		ScheduledDate: "2026-09-15",
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCompleteVisit(t *testing.T) {
	env := newTestEnv(t)
	account := seedAccount(t, env.db, "tech@example.com")
	clientID := seedClient(t, env, account.ID)

	visit := createVisit(t, env, account.ID, clientID, "2026-09-15")
	visitID, err := uuid.Parse(visit.ID)
	require.NoError(t, err)

	done, err := env.visits.CompleteVisit(context.Background(), account.ID, visitID, CompleteVisitRequest{
		Signature:  "data:image/png;base64,AAAA",
		SignerName: "Maria",
	})
	require.NoError(t, err)
	assert.Equal(t, model.VisitStatusCompleted, done.Status)
	assert.NotNil(t, done.CompletedAt)
	assert.Equal(t, "Maria", done.SignerName)
}

func TestCompletedAtFollowsStatus(t *testing.T) {
	env := newTestEnv(t)
	account := seedAccount(t, env.db, "tech@example.com")
	clientID := seedClient(t, env, account.ID)
	ctx := context.Background()

	visit := createVisit(t, env, account.ID, clientID, "2026-09-15")
	visitID, err := uuid.Parse(visit.ID)
	require.NoError(t, err)

	done, err := env.visits.ChangeVisitStatus(ctx, account.ID, visitID, model.VisitStatusCompleted)
	require.NoError(t, err)
	assert.NotNil(t, done.CompletedAt)

	// Reopening the visit clears the completion timestamp.
	reopened, err := env.visits.ChangeVisitStatus(ctx, account.ID, visitID, model.VisitStatusConfirmed)
	require.NoError(t, err)
	assert.Nil(t, reopened.CompletedAt)
}

func TestListVisitsFilters(t *testing.T) {
	env := newTestEnv(t)
	account := seedAccount(t, env.db, "tech@example.com")
	clientID := seedClient(t, env, account.ID)
	ctx := context.Background()

	today := time.Now().Format("2006-01-02")
	createVisit(t, env, account.ID, clientID, today)
	createVisit(t, env, account.ID, clientID, "2030-01-01")

	todays, err := env.visits.ListVisitsToday(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, todays, 1)
	assert.Equal(t, today, todays[0].ScheduledDate)

	all, err := env.visits.ListVisits(ctx, account.ID, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = env.visits.ListVisits(ctx, account.ID, "", "postponed")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestVisitTenantIsolation(t *testing.T) {
	env := newTestEnv(t)
	accountA := seedAccount(t, env.db, "a@example.com")
	accountB := seedAccount(t, env.db, "b@example.com")
	clientA := seedClient(t, env, accountA.ID)
	ctx := context.Background()

	visit := createVisit(t, env, accountA.ID, clientA, "2026-09-15")
	visitID, err := uuid.Parse(visit.ID)
	require.NoError(t, err)

	_, err = env.visits.GetVisit(ctx, accountB.ID, visitID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	err = env.visits.DeleteVisit(ctx, accountB.ID, visitID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
