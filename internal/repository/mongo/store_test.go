package mongo_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"alcyxob/marathon-tracker/internal/domain"
	"alcyxob/marathon-tracker/internal/repository"
	mongorepo "alcyxob/marathon-tracker/internal/repository/mongo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) repository.Store {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	client, err := mongorepo.ConnectDB(uri)
	require.NoError(t, err)

	dbName := fmt.Sprintf("marathon_test_%d", time.Now().UnixNano())
	ctx := context.Background()
	require.NoError(t, mongorepo.EnsureIndexes(ctx, client.Database(dbName)))

	t.Cleanup(func() {
		_ = client.Database(dbName).Drop(context.Background())
		_ = mongorepo.DisconnectDB(client)
	})
	return mongorepo.NewStore(client, dbName)
}

func TestMongoStore_ProgressUpsertAndCascade(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	done := true
	note := "calf"
	empty := ""

	require.NoError(t, store.Users.Create(ctx, &domain.User{ID: "u1", Name: "Ana", Role: domain.RoleUser}))
	err := store.Users.Create(ctx, &domain.User{ID: "u2", Name: "ana", Role: domain.RoleUser})
	assert.ErrorIs(t, err, repository.ErrDuplicateName)

	p, err := store.Progress.Upsert(ctx, "u1", "bcn-w1-d1", domain.ProgressPatch{Completed: &done, InjuryNote: &note})
	require.NoError(t, err)
	assert.True(t, p.Completed)
	assert.False(t, p.Skipped)
	require.NotNil(t, p.InjuryNote)

	p, err = store.Progress.Upsert(ctx, "u1", "bcn-w1-d1", domain.ProgressPatch{InjuryNote: &empty})
	require.NoError(t, err)
	assert.True(t, p.Completed)
	assert.Nil(t, p.InjuryNote)

	require.NoError(t, store.Users.Delete(ctx, "u1"))
	left, err := store.Progress.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestMongoStore_Definitions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Definitions.Upsert(ctx,
		domain.WorkoutDefinition{ID: "bcn-w1-d2", PlanID: "bcn", Week: 1, Order: 2},
		domain.WorkoutDefinition{ID: "bcn-w1-d1", PlanID: "bcn", Week: 1, Order: 1},
	))

	defs, err := store.Definitions.ListByPlan(ctx, "bcn")
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, 1, defs[0].Order)

	_, err = store.Definitions.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
