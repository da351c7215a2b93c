package service_test

import (
	"context"
	"testing"
	"time"

	"alcyxob/marathon-tracker/internal/domain"
	"alcyxob/marathon-tracker/internal/metrics"
	"alcyxob/marathon-tracker/internal/repository"
	"alcyxob/marathon-tracker/internal/repository/memory"
	"alcyxob/marathon-tracker/internal/service"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// testCatalog has a two week plan at testNow.
var testCatalog = domain.Catalog{
	{ID: "bcn", Name: "BARCELONA", TargetDate: testNow.Add(14 * 24 * time.Hour)},
	{ID: "mad", Name: "MADRID", TargetDate: testNow.Add(-24 * time.Hour)},
}

type fixture struct {
	ctx      context.Context
	store    repository.Store
	metrics  *metrics.Manager
	plans    service.PlanService
	progress service.ProgressService
	users    service.UserService
	auth     service.AuthService
	userID   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		ctx:     context.Background(),
		store:   memory.NewStore(),
		metrics: metrics.NewTestManager(),
	}
	f.plans = service.NewPlanService(testCatalog, f.store.Definitions, service.NewGenerator(fixedClock, 12), 4)
	f.progress = service.NewProgressService(testCatalog, f.store.Definitions, f.store.Progress, f.store.Users, f.metrics)
	f.users = service.NewUserService(f.store.Users, testCatalog, fixedClock)
	f.auth = service.NewAuthService(f.store.Users, "test-secret", time.Hour)

	require.NoError(t, f.plans.EnsureWorkouts(f.ctx))

	runner, err := f.auth.Register(f.ctx, "corredor1", "secret")
	require.NoError(t, err)
	f.userID = runner.ID
	return f
}

// complete runs the toggle then report flow for a pending workout.
func (f *fixture) complete(t *testing.T, workoutID string, km float64) {
	t.Helper()
	res, err := f.progress.ToggleComplete(f.ctx, f.userID, workoutID)
	require.NoError(t, err)
	require.Equal(t, service.ToggleNeedsReport, res)
	_, err = f.progress.RecordCompletion(f.ctx, f.userID, workoutID, domain.CompletionReport{ActualDistanceKm: &km})
	require.NoError(t, err)
}

func ptr[T any](v T) *T { return &v }
