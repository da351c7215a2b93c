package service_test

import (
	"testing"
	"time"

	"alcyxob/marathon-tracker/internal/domain"
	"alcyxob/marathon-tracker/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Weeks(t *testing.T) {
	g := service.NewGenerator(fixedClock, 12)

	tests := []struct {
		name   string
		target time.Time
		want   int
	}{
		{"exact weeks", testNow.Add(14 * 24 * time.Hour), 2},
		{"partial week rounds up", testNow.Add(15 * 24 * time.Hour), 3},
		{"one hour left", testNow.Add(time.Hour), 1},
		{"target reached", testNow, 12},
		{"target passed", testNow.Add(-time.Hour), 12},
		{"no target", time.Time{}, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Weeks(domain.TrainingPlan{ID: "p", TargetDate: tt.target}))
		})
	}
}

func TestGenerator_Generate(t *testing.T) {
	g := service.NewGenerator(fixedClock, 12)

	defs, err := g.Generate(testCatalog[0], 4)
	require.NoError(t, err)
	require.Len(t, defs, 8)

	for i, d := range defs {
		assert.Equal(t, i+1, d.Order)
		assert.Equal(t, i/4+1, d.Week)
		assert.Equal(t, "bcn", d.PlanID)
		assert.Equal(t, service.PlaceholderDescription, d.Description)
		assert.Zero(t, d.PlannedDistanceKm)
	}
	assert.Equal(t, "bcn-w1-d1", defs[0].ID)
	assert.Equal(t, "bcn-w2-d3", defs[6].ID)
}

func TestGenerator_GenerateFallback(t *testing.T) {
	g := service.NewGenerator(fixedClock, 12)

	defs, err := g.Generate(testCatalog[1], 4)
	require.NoError(t, err)
	assert.Len(t, defs, 48)
	assert.Equal(t, 12, defs[47].Week)
}

func TestGenerator_GenerateRejectsBadInput(t *testing.T) {
	g := service.NewGenerator(fixedClock, 12)

	_, err := g.Generate(testCatalog[0], 0)
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = g.Generate(domain.TrainingPlan{}, 4)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}
