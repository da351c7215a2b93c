package domain

import "time"

// WorkoutsPerWeek is the number of sessions scheduled in every plan week.
const WorkoutsPerWeek = 4

// WorkoutDefinition is the plan-wide, user independent template of one session.
type WorkoutDefinition struct {
	ID                string    `bson:"_id" json:"id"`
	PlanID            string    `bson:"planId" json:"planId"`
	Week              int       `bson:"week" json:"week"`   // 1-based
	Order             int       `bson:"order" json:"order"` // 1-based, contiguous within a plan
	Description       string    `bson:"description" json:"description"`
	PlannedDistanceKm float64   `bson:"plannedDistanceKm" json:"plannedDistanceKm"`
	UpdatedAt         time.Time `bson:"updatedAt" json:"updatedAt"`
}

// DayOfWeek is the position of the workout inside its week (1..perWeek).
func (d WorkoutDefinition) DayOfWeek(perWeek int) int {
	if perWeek < 1 {
		perWeek = WorkoutsPerWeek
	}
	return (d.Order-1)%perWeek + 1
}

// DefinitionPatch carries the admin editable fields of a definition.
type DefinitionPatch struct {
	Description       *string
	PlannedDistanceKm *float64
}

// IsEmpty reports whether the patch changes nothing.
func (p DefinitionPatch) IsEmpty() bool {
	return p.Description == nil && p.PlannedDistanceKm == nil
}

// Workout is the read-only projection of a definition merged with one user's progress.
type Workout struct {
	WorkoutDefinition
	WorkoutProgress
}

// DoneDistanceKm is what the workout adds to the weekly total once completed.
func (w Workout) DoneDistanceKm() float64 {
	if !w.Completed {
		return 0
	}
	if w.ActualDistanceKm != nil {
		return *w.ActualDistanceKm
	}
	return w.PlannedDistanceKm
}

// IsResolved reports whether the workout no longer blocks its successor.
func (w Workout) IsResolved() bool {
	return w.Completed || w.Skipped
}
