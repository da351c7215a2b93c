package service

import (
	"alcyxob/marathon-tracker/internal/domain"
	"alcyxob/marathon-tracker/internal/repository"
	"context"

	log "github.com/sirupsen/logrus"
)

type PlanService interface {
	List() domain.Catalog
	Get(planID string) (domain.TrainingPlan, error)
	// EnsureWorkouts generates and stores the definitions of every plan that has none yet.
	EnsureWorkouts(ctx context.Context) error
}

type planService struct {
	catalog         domain.Catalog
	defRepo         repository.DefinitionRepository
	generator       *Generator
	workoutsPerWeek int
}

// NewPlanService creates a new instance of planService.
func NewPlanService(catalog domain.Catalog, defRepo repository.DefinitionRepository, generator *Generator, workoutsPerWeek int) PlanService {
	if workoutsPerWeek < 1 {
		workoutsPerWeek = domain.WorkoutsPerWeek
	}
	return &planService{
		catalog:         catalog,
		defRepo:         defRepo,
		generator:       generator,
		workoutsPerWeek: workoutsPerWeek,
	}
}

func (s *planService) List() domain.Catalog {
	return s.catalog
}

func (s *planService) Get(planID string) (domain.TrainingPlan, error) {
	plan, ok := s.catalog.Find(planID)
	if !ok {
		return domain.TrainingPlan{}, ErrPlanNotFound
	}
	return plan, nil
}

// EnsureWorkouts leaves plans that already have definitions untouched, so
// admin edits survive restarts and the plan length does not shrink as the
// target date approaches.
func (s *planService) EnsureWorkouts(ctx context.Context) error {
	for _, plan := range s.catalog {
		count, err := s.defRepo.CountByPlan(ctx, plan.ID)
		if err != nil {
			return storeErr("count definitions", err)
		}
		if count > 0 {
			log.WithFields(log.Fields{"plan_id": plan.ID, "workouts": count}).Debug("plan workouts already stored")
			continue
		}

		defs, err := s.generator.Generate(plan, s.workoutsPerWeek)
		if err != nil {
			return err
		}
		if err := s.defRepo.Upsert(ctx, defs...); err != nil {
			return storeErr("store definitions", err)
		}
		log.WithFields(log.Fields{"plan_id": plan.ID, "workouts": len(defs)}).Info("generated plan workouts")
	}
	return nil
}
