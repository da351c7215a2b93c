package service_test

import (
	"testing"

	"alcyxob/marathon-tracker/internal/domain"
	"alcyxob/marathon-tracker/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func workout(week, order int, planned float64, progress domain.WorkoutProgress) domain.Workout {
	return domain.Workout{
		WorkoutDefinition: domain.WorkoutDefinition{Week: week, Order: order, PlannedDistanceKm: planned},
		WorkoutProgress:   progress,
	}
}

func TestWeeklyStats(t *testing.T) {
	workouts := []domain.Workout{
		workout(1, 1, 5, domain.WorkoutProgress{Completed: true, ActualDistanceKm: ptr(4.0)}),
		workout(1, 2, 5, domain.WorkoutProgress{Completed: true, ActualDistanceKm: ptr(6.0)}),
		workout(1, 3, 10, domain.WorkoutProgress{}),
		workout(1, 4, 10, domain.WorkoutProgress{Skipped: true}),
		workout(2, 5, 12, domain.WorkoutProgress{Completed: true}),
	}

	assert.Equal(t, service.WeekStats{DoneKm: 10, GoalKm: 30}, service.WeeklyStats(workouts, 1))
	assert.Equal(t, service.WeekStats{DoneKm: 12, GoalKm: 12}, service.WeeklyStats(workouts, 2))
	assert.Equal(t, service.WeekStats{}, service.WeeklyStats(workouts, 3))
}

func TestWeeklySummaries(t *testing.T) {
	workouts := []domain.Workout{
		workout(2, 5, 12, domain.WorkoutProgress{Completed: true}),
		workout(1, 1, 5, domain.WorkoutProgress{Completed: true, ActualDistanceKm: ptr(4.0)}),
		workout(1, 2, 5, domain.WorkoutProgress{Skipped: true}),
		workout(3, 9, 8, domain.WorkoutProgress{}),
	}

	summaries := service.WeeklySummaries(workouts)
	require.Len(t, summaries, 3)

	assert.Equal(t, 1, summaries[0].Week)
	assert.Equal(t, 3, summaries[0].RemainingWeeks)
	assert.Equal(t, service.WeekStats{DoneKm: 4, GoalKm: 10}, summaries[0].WeekStats)
	assert.Equal(t, 1, summaries[0].Completed)
	assert.Equal(t, 1, summaries[0].Skipped)
	assert.Equal(t, 2, summaries[0].Total)

	assert.Equal(t, 2, summaries[1].RemainingWeeks)
	assert.Equal(t, 1, summaries[2].RemainingWeeks)
	assert.Equal(t, 0.0, summaries[2].DoneKm)

	assert.Empty(t, service.WeeklySummaries(nil))
}
