package postgres_test

import (
	"context"
	"os"
	"testing"

	"alcyxob/marathon-tracker/internal/domain"
	"alcyxob/marathon-tracker/internal/repository"
	"alcyxob/marathon-tracker/internal/repository/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) repository.Store {
	t.Helper()
	url := os.Getenv("POSTGRES_TEST_URL")
	if url == "" {
		t.Skip("POSTGRES_TEST_URL not set")
	}
	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, url)
	require.NoError(t, err)
	require.NoError(t, postgres.EnsureSchema(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE user_progress, workouts, users`)
	require.NoError(t, err)

	t.Cleanup(pool.Close)
	return postgres.NewStore(pool)
}

func TestPostgresStore_ProgressAndCascade(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	yes := true
	dist := 9.5

	require.NoError(t, store.Definitions.Upsert(ctx,
		domain.WorkoutDefinition{ID: "bcn-w1-d1", PlanID: "bcn", Week: 1, Order: 1, Description: "easy"},
		domain.WorkoutDefinition{ID: "bcn-w1-d2", PlanID: "bcn", Week: 1, Order: 2, Description: "tempo"},
	))
	require.NoError(t, store.Users.Create(ctx, &domain.User{ID: "u1", Name: "Ana", Role: domain.RoleUser}))
	assert.ErrorIs(t,
		store.Users.Create(ctx, &domain.User{ID: "u2", Name: "ANA", Role: domain.RoleUser}),
		repository.ErrDuplicateName)

	p, err := store.Progress.Upsert(ctx, "u1", "bcn-w1-d1", domain.ProgressPatch{Completed: &yes, ActualDistanceKm: &dist})
	require.NoError(t, err)
	assert.True(t, p.Completed)

	_, err = store.Progress.Upsert(ctx, "u1", "bcn-w1-d2", domain.ProgressPatch{Skipped: &yes})
	require.NoError(t, err)

	all, err := store.Progress.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 9.5, *all["bcn-w1-d1"].ActualDistanceKm)

	require.NoError(t, store.Users.Delete(ctx, "u1"))
	all, err = store.Progress.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPostgresStore_WeightHistoryRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := &domain.User{ID: "u1", Name: "Bea", Role: domain.RoleUser}
	require.NoError(t, store.Users.Create(ctx, u))
	u.UpsertWeight("2026-01", 70)
	require.NoError(t, store.Users.Update(ctx, u))

	got, err := store.Users.GetByName(ctx, "bea")
	require.NoError(t, err)
	assert.Equal(t, []domain.WeightEntry{{Month: "2026-01", Value: 70}}, got.WeightHistory)
}
