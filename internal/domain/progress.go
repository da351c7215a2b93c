package domain

// WorkoutProgress is one user's overlay on a WorkoutDefinition.
// Completed and Skipped are never both true.
type WorkoutProgress struct {
	Completed        bool     `bson:"completed" json:"completed"`
	Skipped          bool     `bson:"skipped" json:"skipped"`
	ActualDistanceKm *float64 `bson:"actualDistanceKm,omitempty" json:"actualDistanceKm,omitempty"`
	Duration         *string  `bson:"duration,omitempty" json:"duration,omitempty"` // e.g. "01:20:00"
	Feelings         *string  `bson:"feelings,omitempty" json:"feelings,omitempty"`
	HasInjury        bool     `bson:"hasInjury" json:"hasInjury"`
	InjuryNote       *string  `bson:"injuryNote,omitempty" json:"injuryNote,omitempty"`
}

// ProgressPatch is a partial update of a WorkoutProgress record.
// Nil fields are left untouched by the store. A non-nil empty InjuryNote
// removes the stored note.
type ProgressPatch struct {
	Completed        *bool
	Skipped          *bool
	ActualDistanceKm *float64
	Duration         *string
	Feelings         *string
	HasInjury        *bool
	InjuryNote       *string
}

// Apply merges the patch into p and returns the result.
func (p WorkoutProgress) Apply(patch ProgressPatch) WorkoutProgress {
	if patch.Completed != nil {
		p.Completed = *patch.Completed
	}
	if patch.Skipped != nil {
		p.Skipped = *patch.Skipped
	}
	if patch.ActualDistanceKm != nil {
		v := *patch.ActualDistanceKm
		p.ActualDistanceKm = &v
	}
	if patch.Duration != nil {
		p.Duration = optionalString(*patch.Duration)
	}
	if patch.Feelings != nil {
		p.Feelings = optionalString(*patch.Feelings)
	}
	if patch.HasInjury != nil {
		p.HasInjury = *patch.HasInjury
	}
	if patch.InjuryNote != nil {
		p.InjuryNote = optionalString(*patch.InjuryNote)
	}
	return p
}

// CompletionReport is what the runner submits after finishing a workout.
type CompletionReport struct {
	ActualDistanceKm *float64
	Duration         string
	Feelings         string
	HasInjury        bool
	InjuryNote       string
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
