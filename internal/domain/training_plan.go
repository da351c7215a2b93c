// internal/domain/training_plan.go
package domain

import "time"

// TrainingPlan is a marathon the runners train towards. Plans come from the
// static catalog in config and never change at runtime.
type TrainingPlan struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	TargetDate time.Time `json:"targetDate"`
}

// Catalog is the read-only plan table handed to the services.
type Catalog []TrainingPlan

// Find returns the plan with the given ID.
func (c Catalog) Find(planID string) (TrainingPlan, bool) {
	for _, p := range c {
		if p.ID == planID {
			return p, true
		}
	}
	return TrainingPlan{}, false
}
