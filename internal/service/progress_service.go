package service

import (
	"alcyxob/marathon-tracker/internal/domain"
	"alcyxob/marathon-tracker/internal/metrics"
	"alcyxob/marathon-tracker/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ToggleResult tells the caller what a completion toggle did.
type ToggleResult int

const (
	// ToggleUncompleted means a completed workout went back to pending.
	ToggleUncompleted ToggleResult = iota + 1
	// ToggleNeedsReport means the workout may be completed; nothing was
	// stored and the caller has to collect a CompletionReport.
	ToggleNeedsReport
)

func (r ToggleResult) String() string {
	switch r {
	case ToggleUncompleted:
		return "uncompleted"
	case ToggleNeedsReport:
		return "needs_report"
	default:
		return "unknown"
	}
}

// ProgressService applies the per-user workout state rules.
type ProgressService interface {
	View(ctx context.Context, planID, userID string) ([]domain.Workout, error)
	ToggleComplete(ctx context.Context, userID, workoutID string) (ToggleResult, error)
	RecordCompletion(ctx context.Context, userID, workoutID string, report domain.CompletionReport) (*domain.Workout, error)
	Skip(ctx context.Context, userID, workoutID string) (*domain.Workout, error)

	AdminEditDefinition(ctx context.Context, workoutID string, patch domain.DefinitionPatch) (*domain.WorkoutDefinition, error)
	AdminResetProgress(ctx context.Context, userID, workoutID string) error
}

type progressService struct {
	catalog      domain.Catalog
	defRepo      repository.DefinitionRepository
	progressRepo repository.ProgressRepository
	userRepo     repository.UserRepository
	metrics      *metrics.Manager
}

// NewProgressService creates a new instance of progressService.
func NewProgressService(
	catalog domain.Catalog,
	defRepo repository.DefinitionRepository,
	progressRepo repository.ProgressRepository,
	userRepo repository.UserRepository,
	metricsManager *metrics.Manager,
) ProgressService {
	return &progressService{
		catalog:      catalog,
		defRepo:      defRepo,
		progressRepo: progressRepo,
		userRepo:     userRepo,
		metrics:      metricsManager,
	}
}

// View merges the plan definitions with the user's progress, ordered by Order.
func (s *progressService) View(ctx context.Context, planID, userID string) ([]domain.Workout, error) {
	if _, ok := s.catalog.Find(planID); !ok {
		return nil, ErrPlanNotFound
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	defs, err := s.defRepo.ListByPlan(ctx, planID)
	if err != nil {
		return nil, storeErr("list definitions", err)
	}
	progress, err := s.progressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeErr("list progress", err)
	}

	workouts := make([]domain.Workout, 0, len(defs))
	for _, def := range defs {
		workouts = append(workouts, domain.Workout{
			WorkoutDefinition: def,
			WorkoutProgress:   progress[def.ID],
		})
	}
	return workouts, nil
}

func (s *progressService) ToggleComplete(ctx context.Context, userID, workoutID string) (ToggleResult, error) {
	w, err := s.load(ctx, userID, workoutID)
	if err != nil {
		return 0, err
	}

	switch {
	case w.Skipped:
		return 0, ErrWorkoutSkipped
	case w.Completed:
		if _, err := s.progressRepo.Upsert(ctx, userID, workoutID, domain.ProgressPatch{Completed: boolPtr(false)}); err != nil {
			return 0, storeErr("update progress", err)
		}
		s.metrics.CounterUncompletions.Inc()
		log.WithFields(log.Fields{"user_id": userID, "workout_id": workoutID}).Debug("workout uncompleted")
		return ToggleUncompleted, nil
	}

	if err := s.checkGate(ctx, userID, w.WorkoutDefinition); err != nil {
		return 0, err
	}
	return ToggleNeedsReport, nil
}

// RecordCompletion stores the report and marks the workout completed. A
// completed workout can be reported again to correct its data.
func (s *progressService) RecordCompletion(ctx context.Context, userID, workoutID string, report domain.CompletionReport) (*domain.Workout, error) {
	w, err := s.load(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	if w.Skipped {
		return nil, ErrWorkoutSkipped
	}
	if !w.Completed {
		if err := s.checkGate(ctx, userID, w.WorkoutDefinition); err != nil {
			return nil, err
		}
	}

	actual := 0.0
	if report.ActualDistanceKm != nil {
		actual = *report.ActualDistanceKm
	}
	note := ""
	if report.HasInjury {
		note = strings.TrimSpace(report.InjuryNote)
	}
	patch := domain.ProgressPatch{
		Completed:        boolPtr(true),
		Skipped:          boolPtr(false),
		ActualDistanceKm: &actual,
		Duration:         &report.Duration,
		Feelings:         &report.Feelings,
		HasInjury:        &report.HasInjury,
		InjuryNote:       &note,
	}
	progress, err := s.progressRepo.Upsert(ctx, userID, workoutID, patch)
	if err != nil {
		return nil, storeErr("update progress", err)
	}

	s.metrics.CounterCompletions.Inc()
	log.WithFields(log.Fields{
		"user_id":     userID,
		"workout_id":  workoutID,
		"distance_km": actual,
		"injury":      report.HasInjury,
	}).Info("workout completed")

	return &domain.Workout{WorkoutDefinition: w.WorkoutDefinition, WorkoutProgress: *progress}, nil
}

// Skip marks a pending workout as skipped. Skipping is not gated.
func (s *progressService) Skip(ctx context.Context, userID, workoutID string) (*domain.Workout, error) {
	w, err := s.load(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	if w.Completed {
		return nil, ErrAlreadyCompleted
	}
	if w.Skipped {
		return nil, ErrAlreadySkipped
	}

	progress, err := s.progressRepo.Upsert(ctx, userID, workoutID, domain.ProgressPatch{Skipped: boolPtr(true)})
	if err != nil {
		return nil, storeErr("update progress", err)
	}

	s.metrics.CounterSkips.Inc()
	log.WithFields(log.Fields{"user_id": userID, "workout_id": workoutID}).Info("workout skipped")

	return &domain.Workout{WorkoutDefinition: w.WorkoutDefinition, WorkoutProgress: *progress}, nil
}

// AdminEditDefinition changes the description and/or planned distance of a
// workout for every user of the plan. Callers must enforce the admin role.
func (s *progressService) AdminEditDefinition(ctx context.Context, workoutID string, patch domain.DefinitionPatch) (*domain.WorkoutDefinition, error) {
	if patch.IsEmpty() {
		return nil, ErrNothingToUpdate
	}
	def, err := s.getDefinition(ctx, workoutID)
	if err != nil {
		return nil, err
	}

	if patch.Description != nil {
		def.Description = *patch.Description
	}
	if patch.PlannedDistanceKm != nil {
		if *patch.PlannedDistanceKm < 0 {
			return nil, fmt.Errorf("%w: planned distance cannot be negative", ErrInvalidInput)
		}
		def.PlannedDistanceKm = *patch.PlannedDistanceKm
	}
	if err := s.defRepo.Upsert(ctx, *def); err != nil {
		return nil, storeErr("update definition", err)
	}

	log.WithFields(log.Fields{"workout_id": workoutID}).Info("workout definition updated")
	return def, nil
}

// AdminResetProgress drops the user's progress on a workout, returning it to
// pending. It is the only way out of the skipped state.
func (s *progressService) AdminResetProgress(ctx context.Context, userID, workoutID string) error {
	if _, err := s.getDefinition(ctx, workoutID); err != nil {
		return err
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return err
	}

	err := s.progressRepo.Delete(ctx, userID, workoutID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return storeErr("delete progress", err)
	}

	s.metrics.CounterResets.Inc()
	log.WithFields(log.Fields{"user_id": userID, "workout_id": workoutID}).Info("workout progress reset")
	return nil
}

// load returns the definition merged with the user's current progress.
func (s *progressService) load(ctx context.Context, userID, workoutID string) (*domain.Workout, error) {
	def, err := s.getDefinition(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	progress, err := s.getProgress(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	return &domain.Workout{WorkoutDefinition: *def, WorkoutProgress: progress}, nil
}

// checkGate fails with ErrGated unless the workout right before def in the
// plan is completed or skipped. The first workout is never gated.
func (s *progressService) checkGate(ctx context.Context, userID string, def domain.WorkoutDefinition) error {
	if def.Order <= 1 {
		return nil
	}
	prev, err := s.defRepo.GetByOrder(ctx, def.PlanID, def.Order-1)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return storeErr("get previous definition", err)
	}
	progress, err := s.getProgress(ctx, userID, prev.ID)
	if err != nil {
		return err
	}
	if progress.Completed || progress.Skipped {
		return nil
	}

	s.metrics.CounterGated.Inc()
	return fmt.Errorf("%w (pending: %s)", ErrGated, prev.ID)
}

func (s *progressService) getDefinition(ctx context.Context, workoutID string) (*domain.WorkoutDefinition, error) {
	def, err := s.defRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, storeErr("get definition", err)
	}
	return def, nil
}

func (s *progressService) getProgress(ctx context.Context, userID, workoutID string) (domain.WorkoutProgress, error) {
	p, err := s.progressRepo.Get(ctx, userID, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.WorkoutProgress{}, nil
		}
		return domain.WorkoutProgress{}, storeErr("get progress", err)
	}
	return *p, nil
}

func (s *progressService) ensureUser(ctx context.Context, userID string) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return storeErr("get user", err)
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }
