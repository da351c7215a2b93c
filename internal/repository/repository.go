package repository

import (
	"alcyxob/marathon-tracker/internal/domain"
	"context"
)

// Error constants for repository layer
var (
	ErrNotFound      = RepositoryError("not found")
	ErrDuplicateName = RepositoryError("duplicate user name")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// DefinitionRepository stores the plan-wide workout templates.
type DefinitionRepository interface {
	ListByPlan(ctx context.Context, planID string) ([]domain.WorkoutDefinition, error) // sorted by order
	GetByID(ctx context.Context, id string) (*domain.WorkoutDefinition, error)
	GetByOrder(ctx context.Context, planID string, order int) (*domain.WorkoutDefinition, error)
	CountByPlan(ctx context.Context, planID string) (int, error)
	Upsert(ctx context.Context, defs ...domain.WorkoutDefinition) error
}

// ProgressRepository stores the per-user overlay, keyed by (userID, workoutID).
type ProgressRepository interface {
	ListByUser(ctx context.Context, userID string) (map[string]domain.WorkoutProgress, error)
	Get(ctx context.Context, userID, workoutID string) (*domain.WorkoutProgress, error)
	// Upsert merges patch into the stored record, creating a default one first if needed.
	Upsert(ctx context.Context, userID, workoutID string, patch domain.ProgressPatch) (*domain.WorkoutProgress, error)
	Delete(ctx context.Context, userID, workoutID string) error
}

// UserRepository stores users. Delete must also remove every progress
// record owned by the user.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByName(ctx context.Context, name string) (*domain.User, error) // case-insensitive
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
}

// Store bundles one backend's repositories.
type Store struct {
	Definitions DefinitionRepository
	Progress    ProgressRepository
	Users       UserRepository
	Close       func(ctx context.Context) error
}
