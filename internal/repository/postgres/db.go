package postgres

import (
	"alcyxob/marathon-tracker/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	name_key        TEXT UNIQUE NOT NULL,
	password_hash   TEXT NOT NULL DEFAULT '',
	role            TEXT NOT NULL DEFAULT 'user',
	weight_history  JSONB NOT NULL DEFAULT '[]',
	active_plan_id  TEXT,
	monthly_km_goal DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS workouts (
	id          TEXT PRIMARY KEY,
	plan_id     TEXT NOT NULL,
	week        INTEGER NOT NULL,
	order_num   INTEGER NOT NULL,
	description TEXT NOT NULL,
	distance_km DOUBLE PRECISION NOT NULL DEFAULT 0,
	updated_at  TIMESTAMPTZ NOT NULL,
	UNIQUE (plan_id, order_num)
);
CREATE TABLE IF NOT EXISTS user_progress (
	user_id            TEXT REFERENCES users(id) ON DELETE CASCADE,
	workout_id         TEXT REFERENCES workouts(id) ON DELETE CASCADE,
	completed          BOOLEAN NOT NULL DEFAULT FALSE,
	skipped            BOOLEAN NOT NULL DEFAULT FALSE,
	actual_distance_km DOUBLE PRECISION,
	duration           TEXT,
	feelings           TEXT,
	has_injury         BOOLEAN NOT NULL DEFAULT FALSE,
	injury_note        TEXT,
	PRIMARY KEY (user_id, workout_id),
	CHECK (NOT (completed AND skipped))
);`

// NewPool parses the connection URL and opens a pgx pool.
func NewPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	poolConfig.MaxConns = 10
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the tables if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}

// NewStore wires the Postgres repositories on top of one pool.
func NewStore(pool *pgxpool.Pool) repository.Store {
	return repository.Store{
		Definitions: NewDefinitionRepo(pool),
		Progress:    NewProgressRepo(pool),
		Users:       NewUserRepo(pool),
		Close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}
}

// https://www.postgresql.org/docs/current/errcodes-appendix.html
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
