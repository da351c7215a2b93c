// Package memory keeps all records in process memory. It backs the tests and
// single-node deployments that do not need durable storage.
package memory

import (
	"alcyxob/marathon-tracker/internal/domain"
	"alcyxob/marathon-tracker/internal/repository"
	"context"
	"sort"
	"sync"
	"time"
)

type db struct {
	mu          sync.RWMutex
	definitions map[string]domain.WorkoutDefinition
	progress    map[string]map[string]domain.WorkoutProgress // userID -> workoutID -> progress
	users       map[string]domain.User
}

// NewStore creates an empty in-memory store.
func NewStore() repository.Store {
	d := &db{
		definitions: make(map[string]domain.WorkoutDefinition),
		progress:    make(map[string]map[string]domain.WorkoutProgress),
		users:       make(map[string]domain.User),
	}
	return repository.Store{
		Definitions: &definitionRepository{db: d},
		Progress:    &progressRepository{db: d},
		Users:       &userRepository{db: d},
		Close:       func(context.Context) error { return nil },
	}
}

type definitionRepository struct {
	db *db
}

func (r *definitionRepository) ListByPlan(_ context.Context, planID string) ([]domain.WorkoutDefinition, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	defs := make([]domain.WorkoutDefinition, 0)
	for _, d := range r.db.definitions {
		if d.PlanID == planID {
			defs = append(defs, d)
		}
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Order < defs[j].Order })
	return defs, nil
}

func (r *definitionRepository) GetByID(_ context.Context, id string) (*domain.WorkoutDefinition, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	d, ok := r.db.definitions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (r *definitionRepository) GetByOrder(_ context.Context, planID string, order int) (*domain.WorkoutDefinition, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, d := range r.db.definitions {
		if d.PlanID == planID && d.Order == order {
			return &d, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *definitionRepository) CountByPlan(_ context.Context, planID string) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	n := 0
	for _, d := range r.db.definitions {
		if d.PlanID == planID {
			n++
		}
	}
	return n, nil
}

func (r *definitionRepository) Upsert(_ context.Context, defs ...domain.WorkoutDefinition) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := time.Now().UTC()
	for _, d := range defs {
		d.UpdatedAt = now
		r.db.definitions[d.ID] = d
	}
	return nil
}

type progressRepository struct {
	db *db
}

func (r *progressRepository) ListByUser(_ context.Context, userID string) (map[string]domain.WorkoutProgress, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make(map[string]domain.WorkoutProgress, len(r.db.progress[userID]))
	for id, p := range r.db.progress[userID] {
		out[id] = p
	}
	return out, nil
}

func (r *progressRepository) Get(_ context.Context, userID, workoutID string) (*domain.WorkoutProgress, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	p, ok := r.db.progress[userID][workoutID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *progressRepository) Upsert(_ context.Context, userID, workoutID string, patch domain.ProgressPatch) (*domain.WorkoutProgress, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	records, ok := r.db.progress[userID]
	if !ok {
		records = make(map[string]domain.WorkoutProgress)
		r.db.progress[userID] = records
	}
	merged := records[workoutID].Apply(patch)
	records[workoutID] = merged
	return &merged, nil
}

func (r *progressRepository) Delete(_ context.Context, userID, workoutID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.progress[userID][workoutID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.progress[userID], workoutID)
	return nil
}

type userRepository struct {
	db *db
}

func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	user.NameKey = domain.NameKey(user.Name)
	for _, u := range r.db.users {
		if u.NameKey == user.NameKey {
			return repository.ErrDuplicateName
		}
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.db.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u = cloneUser(u)
	return &u, nil
}

func (r *userRepository) GetByName(_ context.Context, name string) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	key := domain.NameKey(name)
	for _, u := range r.db.users {
		if u.NameKey == key {
			u = cloneUser(u)
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) List(_ context.Context) ([]domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	users := make([]domain.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		users = append(users, cloneUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (r *userRepository) Update(_ context.Context, user *domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	existing, ok := r.db.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	user.NameKey = existing.NameKey
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now().UTC()
	r.db.users[user.ID] = cloneUser(*user)
	return nil
}

// Delete removes the user together with all of their progress records.
func (r *userRepository) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.users, id)
	delete(r.db.progress, id)
	return nil
}

func cloneUser(u domain.User) domain.User {
	if u.WeightHistory != nil {
		u.WeightHistory = append([]domain.WeightEntry(nil), u.WeightHistory...)
	}
	if u.ActivePlanID != nil {
		id := *u.ActivePlanID
		u.ActivePlanID = &id
	}
	return u
}
