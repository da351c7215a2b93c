package postgres

import (
	"alcyxob/marathon-tracker/internal/domain"
	"alcyxob/marathon-tracker/internal/repository"
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProgressRepo struct {
	db *pgxpool.Pool
}

func NewProgressRepo(db *pgxpool.Pool) *ProgressRepo {
	return &ProgressRepo{db: db}
}

const progressColumns = `completed, skipped, actual_distance_km, duration, feelings, has_injury, injury_note`

func scanProgress(row pgx.Row, dest ...any) (*domain.WorkoutProgress, error) {
	p := &domain.WorkoutProgress{}
	dest = append(dest, &p.Completed, &p.Skipped, &p.ActualDistanceKm, &p.Duration, &p.Feelings, &p.HasInjury, &p.InjuryNote)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProgressRepo) ListByUser(ctx context.Context, userID string) (map[string]domain.WorkoutProgress, error) {
	rows, err := r.db.Query(ctx, `
		SELECT workout_id, `+progressColumns+`
		FROM user_progress
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]domain.WorkoutProgress)
	for rows.Next() {
		var workoutID string
		p, err := scanProgress(rows, &workoutID)
		if err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		out[workoutID] = *p
	}
	return out, rows.Err()
}

func (r *ProgressRepo) Get(ctx context.Context, userID, workoutID string) (*domain.WorkoutProgress, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+progressColumns+`
		FROM user_progress
		WHERE user_id = $1 AND workout_id = $2
	`, userID, workoutID)
	return notFound(scanProgress(row))
}

// Upsert locks the current row (if any), merges patch and writes the result back.
func (r *ProgressRepo) Upsert(ctx context.Context, userID, workoutID string, patch domain.ProgressPatch) (_ *domain.WorkoutProgress, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	current := domain.WorkoutProgress{}
	existing, err := scanProgress(tx.QueryRow(ctx, `
		SELECT `+progressColumns+`
		FROM user_progress
		WHERE user_id = $1 AND workout_id = $2
		FOR UPDATE
	`, userID, workoutID))
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		err = nil
	case err != nil:
		return nil, err
	default:
		current = *existing
	}

	merged := current.Apply(patch)
	_, err = tx.Exec(ctx, `
		INSERT INTO user_progress (user_id, workout_id, `+progressColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, workout_id) DO UPDATE
		SET completed          = EXCLUDED.completed,
		    skipped            = EXCLUDED.skipped,
		    actual_distance_km = EXCLUDED.actual_distance_km,
		    duration           = EXCLUDED.duration,
		    feelings           = EXCLUDED.feelings,
		    has_injury         = EXCLUDED.has_injury,
		    injury_note        = EXCLUDED.injury_note
	`, userID, workoutID,
		merged.Completed, merged.Skipped, merged.ActualDistanceKm,
		merged.Duration, merged.Feelings, merged.HasInjury, merged.InjuryNote,
	)
	if err != nil {
		return nil, err
	}
	return &merged, nil
}

func (r *ProgressRepo) Delete(ctx context.Context, userID, workoutID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM user_progress WHERE user_id = $1 AND workout_id = $2`, userID, workoutID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
