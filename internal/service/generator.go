package service

import (
	"alcyxob/marathon-tracker/internal/domain"
	"fmt"
	"math"
	"time"
)

// PlaceholderDescription is the text of every freshly generated workout.
const PlaceholderDescription = "Workout to be defined"

const weekDuration = 7 * 24 * time.Hour

// Generator builds the initial workout definitions of a plan.
type Generator struct {
	now           func() time.Time
	fallbackWeeks int
}

// NewGenerator creates a Generator. fallbackWeeks is used when the target
// date is unknown or already reached.
func NewGenerator(now func() time.Time, fallbackWeeks int) *Generator {
	if now == nil {
		now = time.Now
	}
	if fallbackWeeks < 1 {
		fallbackWeeks = 12
	}
	return &Generator{now: now, fallbackWeeks: fallbackWeeks}
}

// Weeks returns the number of plan weeks left until the target date, rounded up.
func (g *Generator) Weeks(plan domain.TrainingPlan) int {
	if plan.TargetDate.IsZero() {
		return g.fallbackWeeks
	}
	diff := plan.TargetDate.Sub(g.now())
	if diff <= 0 {
		return g.fallbackWeeks
	}
	return int(math.Ceil(float64(diff) / float64(weekDuration)))
}

// Generate returns weeks*workoutsPerWeek definitions ordered 1..N.
func (g *Generator) Generate(plan domain.TrainingPlan, workoutsPerWeek int) ([]domain.WorkoutDefinition, error) {
	if workoutsPerWeek < 1 {
		return nil, fmt.Errorf("%w: workouts per week must be positive", ErrInvalidInput)
	}
	if plan.ID == "" {
		return nil, fmt.Errorf("%w: plan id is empty", ErrInvalidInput)
	}

	weeks := g.Weeks(plan)
	now := g.now().UTC()
	defs := make([]domain.WorkoutDefinition, 0, weeks*workoutsPerWeek)
	for w := 1; w <= weeks; w++ {
		for d := 1; d <= workoutsPerWeek; d++ {
			defs = append(defs, domain.WorkoutDefinition{
				ID:          WorkoutID(plan.ID, w, d),
				PlanID:      plan.ID,
				Week:        w,
				Order:       (w-1)*workoutsPerWeek + d,
				Description: PlaceholderDescription,
				UpdatedAt:   now,
			})
		}
	}
	return defs, nil
}

// WorkoutID is the deterministic identifier of day d in week w of a plan.
func WorkoutID(planID string, w, d int) string {
	return fmt.Sprintf("%s-w%d-d%d", planID, w, d)
}
