package postgres

import (
	"alcyxob/marathon-tracker/internal/domain"
	"alcyxob/marathon-tracker/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DefinitionRepo struct {
	db *pgxpool.Pool
}

func NewDefinitionRepo(db *pgxpool.Pool) *DefinitionRepo {
	return &DefinitionRepo{db: db}
}

const definitionColumns = `id, plan_id, week, order_num, description, distance_km, updated_at`

func scanDefinition(row pgx.Row) (*domain.WorkoutDefinition, error) {
	d := &domain.WorkoutDefinition{}
	if err := row.Scan(&d.ID, &d.PlanID, &d.Week, &d.Order, &d.Description, &d.PlannedDistanceKm, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *DefinitionRepo) ListByPlan(ctx context.Context, planID string) ([]domain.WorkoutDefinition, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+definitionColumns+`
		FROM workouts
		WHERE plan_id = $1
		ORDER BY order_num
	`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	defs := make([]domain.WorkoutDefinition, 0)
	for rows.Next() {
		d, err := scanDefinition(rows)
		if err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		defs = append(defs, *d)
	}
	return defs, rows.Err()
}

func (r *DefinitionRepo) GetByID(ctx context.Context, id string) (*domain.WorkoutDefinition, error) {
	row := r.db.QueryRow(ctx, `SELECT `+definitionColumns+` FROM workouts WHERE id = $1`, id)
	return notFound(scanDefinition(row))
}

func (r *DefinitionRepo) GetByOrder(ctx context.Context, planID string, order int) (*domain.WorkoutDefinition, error) {
	row := r.db.QueryRow(ctx, `SELECT `+definitionColumns+` FROM workouts WHERE plan_id = $1 AND order_num = $2`, planID, order)
	return notFound(scanDefinition(row))
}

func (r *DefinitionRepo) CountByPlan(ctx context.Context, planID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM workouts WHERE plan_id = $1`, planID).Scan(&n)
	return n, err
}

func (r *DefinitionRepo) Upsert(ctx context.Context, defs ...domain.WorkoutDefinition) error {
	if len(defs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, d := range defs {
		batch.Queue(`
			INSERT INTO workouts (id, plan_id, week, order_num, description, distance_km, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE
			SET description = EXCLUDED.description,
			    distance_km = EXCLUDED.distance_km,
			    updated_at  = EXCLUDED.updated_at
		`, d.ID, d.PlanID, d.Week, d.Order, d.Description, d.PlannedDistanceKm, now)
	}
	return r.db.SendBatch(ctx, batch).Close()
}

func notFound[T any](v *T, err error) (*T, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
