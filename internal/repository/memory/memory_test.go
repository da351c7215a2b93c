package memory_test

import (
	"context"
	"fmt"
	"testing"

	"alcyxob/marathon-tracker/internal/domain"
	"alcyxob/marathon-tracker/internal/repository"
	"alcyxob/marathon-tracker/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestUserRepository_CreateRejectsDuplicateNameIgnoringCase(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	require.NoError(t, store.Users.Create(ctx, &domain.User{ID: "1", Name: "Corredor1", Role: domain.RoleUser}))
	err := store.Users.Create(ctx, &domain.User{ID: "2", Name: "CORREDOR1", Role: domain.RoleUser})
	assert.ErrorIs(t, err, repository.ErrDuplicateName)

	u, err := store.Users.GetByName(ctx, "corredor1")
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID)
}

func TestUserRepository_DeleteCascadesProgress(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	require.NoError(t, store.Users.Create(ctx, &domain.User{ID: "u1", Name: "ana", Role: domain.RoleUser}))
	require.NoError(t, store.Users.Create(ctx, &domain.User{ID: "u2", Name: "bea", Role: domain.RoleUser}))
	for i := 1; i <= 5; i++ {
		_, err := store.Progress.Upsert(ctx, "u1", fmt.Sprintf("bcn-w1-d%d", i), domain.ProgressPatch{Completed: boolPtr(true)})
		require.NoError(t, err)
	}
	_, err := store.Progress.Upsert(ctx, "u2", "bcn-w1-d1", domain.ProgressPatch{Skipped: boolPtr(true)})
	require.NoError(t, err)

	require.NoError(t, store.Users.Delete(ctx, "u1"))

	left, err := store.Progress.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, left)

	other, err := store.Progress.ListByUser(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, other, 1)

	_, err = store.Users.GetByID(ctx, "u1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProgressRepository_UpsertMerges(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	feelings := "good"

	_, err := store.Progress.Upsert(ctx, "u1", "w1", domain.ProgressPatch{Completed: boolPtr(true), Feelings: &feelings})
	require.NoError(t, err)
	got, err := store.Progress.Upsert(ctx, "u1", "w1", domain.ProgressPatch{Completed: boolPtr(false)})
	require.NoError(t, err)

	assert.False(t, got.Completed)
	require.NotNil(t, got.Feelings)
	assert.Equal(t, "good", *got.Feelings)

	_, err = store.Progress.Get(ctx, "u1", "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDefinitionRepository_ListByPlanSortedByOrder(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	require.NoError(t, store.Definitions.Upsert(ctx,
		domain.WorkoutDefinition{ID: "bcn-w1-d2", PlanID: "bcn", Week: 1, Order: 2},
		domain.WorkoutDefinition{ID: "bcn-w1-d1", PlanID: "bcn", Week: 1, Order: 1},
		domain.WorkoutDefinition{ID: "mad-w1-d1", PlanID: "mad", Week: 1, Order: 1},
	))

	defs, err := store.Definitions.ListByPlan(ctx, "bcn")
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "bcn-w1-d1", defs[0].ID)
	assert.Equal(t, "bcn-w1-d2", defs[1].ID)

	n, err := store.Definitions.CountByPlan(ctx, "mad")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	d, err := store.Definitions.GetByOrder(ctx, "bcn", 2)
	require.NoError(t, err)
	assert.Equal(t, "bcn-w1-d2", d.ID)

	empty, err := store.Definitions.ListByPlan(ctx, "nope")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
