package service

import (
	"errors"
	"fmt"
)

// Error kinds returned by the services. Handlers match them with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrGated        = errors.New("previous workout must be completed or skipped first")
	ErrInvalidState = errors.New("workout is not in a state that allows this action")
	ErrInvalidInput = errors.New("invalid input")
)

// Specific errors wrap one of the kinds above.
var (
	ErrPlanNotFound     = fmt.Errorf("plan %w", ErrNotFound)
	ErrWorkoutNotFound  = fmt.Errorf("workout %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrWeightNotFound   = fmt.Errorf("weight entry %w", ErrNotFound)
	ErrWorkoutSkipped   = fmt.Errorf("%w: workout was skipped", ErrInvalidState)
	ErrAlreadyCompleted = fmt.Errorf("%w: workout is already completed", ErrInvalidState)
	ErrAlreadySkipped   = fmt.Errorf("%w: workout is already skipped", ErrInvalidState)
	ErrNothingToUpdate  = fmt.Errorf("%w: nothing to update", ErrInvalidInput)
)

// StoreError wraps a failure reported by a repository.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
