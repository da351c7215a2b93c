package service

import (
	"alcyxob/marathon-tracker/internal/domain"
	"alcyxob/marathon-tracker/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// MonthLayout formats the default month label of weight entries.
const MonthLayout = "2006-01"

// ProfileUpdate holds the user editable profile fields. Nil fields are kept;
// an empty ActivePlanID clears the active plan.
type ProfileUpdate struct {
	ActivePlanID  *string
	MonthlyKmGoal *float64
}

type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*domain.User, error)
	// Delete removes the user and all of their workout progress.
	Delete(ctx context.Context, userID string) error
	// RecordWeight stores value for month, replacing an existing entry. An
	// empty month means the current one.
	RecordWeight(ctx context.Context, userID, month string, value float64) (*domain.User, error)
	DeleteWeight(ctx context.Context, userID, month string) (*domain.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	catalog  domain.Catalog
	now      func() time.Time
}

// NewUserService creates a new instance of userService.
func NewUserService(userRepo repository.UserRepository, catalog domain.Catalog, now func() time.Time) UserService {
	if now == nil {
		now = time.Now
	}
	return &userService{userRepo: userRepo, catalog: catalog, now: now}
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, storeErr("list users", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *userService) Get(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storeErr("get user", err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*domain.User, error) {
	if update.ActivePlanID == nil && update.MonthlyKmGoal == nil {
		return nil, ErrNothingToUpdate
	}

	return s.modify(ctx, userID, func(user *domain.User) error {
		if update.ActivePlanID != nil {
			planID := strings.TrimSpace(*update.ActivePlanID)
			if planID == "" {
				user.ActivePlanID = nil
			} else {
				if _, ok := s.catalog.Find(planID); !ok {
					return ErrPlanNotFound
				}
				user.ActivePlanID = &planID
			}
		}
		if update.MonthlyKmGoal != nil {
			if *update.MonthlyKmGoal < 0 {
				return fmt.Errorf("%w: monthly goal cannot be negative", ErrInvalidInput)
			}
			user.MonthlyKmGoal = *update.MonthlyKmGoal
		}
		return nil
	})
}

// Delete refuses to remove admin accounts so the system always keeps one.
func (s *userService) Delete(ctx context.Context, userID string) error {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		return fmt.Errorf("%w: admin accounts cannot be deleted", ErrInvalidInput)
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return storeErr("delete user", err)
	}
	log.WithFields(log.Fields{"user_id": userID, "name": user.Name}).Info("user deleted")
	return nil
}

func (s *userService) RecordWeight(ctx context.Context, userID, month string, value float64) (*domain.User, error) {
	if value <= 0 {
		return nil, fmt.Errorf("%w: weight must be positive", ErrInvalidInput)
	}
	month = strings.TrimSpace(month)
	if month == "" {
		month = s.now().Format(MonthLayout)
	}

	return s.modify(ctx, userID, func(user *domain.User) error {
		user.UpsertWeight(month, value)
		return nil
	})
}

func (s *userService) DeleteWeight(ctx context.Context, userID, month string) (*domain.User, error) {
	return s.modify(ctx, userID, func(user *domain.User) error {
		if !user.RemoveWeight(month) {
			return ErrWeightNotFound
		}
		return nil
	})
}

// modify loads the user, applies fn and stores the result.
func (s *userService) modify(ctx context.Context, userID string, fn func(*domain.User) error) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storeErr("get user", err)
	}
	if err := fn(user); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storeErr("update user", err)
	}
	user.PasswordHash = ""
	return user, nil
}
