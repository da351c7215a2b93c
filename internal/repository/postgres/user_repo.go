package postgres

import (
	"alcyxob/marathon-tracker/internal/domain"
	"alcyxob/marathon-tracker/internal/repository"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepo struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, name, name_key, password_hash, role, weight_history, active_plan_id, monthly_km_goal, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	u := &domain.User{}
	var history []byte
	if err := row.Scan(&u.ID, &u.Name, &u.NameKey, &u.PasswordHash, &u.Role, &history,
		&u.ActivePlanID, &u.MonthlyKmGoal, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(history, &u.WeightHistory); err != nil {
		return nil, fmt.Errorf("decode weight history: %w", err)
	}
	return u, nil
}

func marshalHistory(h []domain.WeightEntry) ([]byte, error) {
	if h == nil {
		h = []domain.WeightEntry{}
	}
	return json.Marshal(h)
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	user.NameKey = domain.NameKey(user.Name)
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	history, err := marshalHistory(user.WeightHistory)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, user.ID, user.Name, user.NameKey, user.PasswordHash, user.Role, history,
		user.ActivePlanID, user.MonthlyKmGoal, user.CreatedAt, user.UpdatedAt)
	if isUniqueViolation(err) {
		return repository.ErrDuplicateName
	}
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return notFound(scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)))
}

func (r *UserRepo) GetByName(ctx context.Context, name string) (*domain.User, error) {
	return notFound(scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE name_key = $1`, domain.NameKey(name))))
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *UserRepo) Update(ctx context.Context, user *domain.User) error {
	history, err := marshalHistory(user.WeightHistory)
	if err != nil {
		return err
	}
	user.UpdatedAt = time.Now().UTC()
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET weight_history = $2, active_plan_id = $3, monthly_km_goal = $4, password_hash = $5, updated_at = $6
		WHERE id = $1
	`, user.ID, history, user.ActivePlanID, user.MonthlyKmGoal, user.PasswordHash, user.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete relies on ON DELETE CASCADE to drop the user's progress rows.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
