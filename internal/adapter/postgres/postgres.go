package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps a *sql.DB and implements the domain repository interfaces.
type DB struct {
	sql *sql.DB
}

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS users (id BIGSERIAL PRIMARY KEY, email TEXT UNIQUE NOT NULL, name TEXT NOT NULL, password_hash TEXT NOT NULL, verified BOOLEAN NOT NULL DEFAULT FALSE, verification_token TEXT NOT NULL DEFAULT '', created_at TIMESTAMPTZ NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_users_verification_token ON users(verification_token) WHERE verification_token <> '';",
		"CREATE TABLE IF NOT EXISTS sessions (token TEXT PRIMARY KEY, user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE, expires_at TIMESTAMPTZ NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);",
		"CREATE TABLE IF NOT EXISTS products (id BIGSERIAL PRIMARY KEY, title TEXT NOT NULL, categories TEXT NOT NULL DEFAULT '', weight DOUBLE PRECISION NOT NULL DEFAULT 0, calories DOUBLE PRECISION NOT NULL DEFAULT 0, blood_not_allowed BOOLEAN[] NOT NULL DEFAULT '{}');",
		"CREATE TABLE IF NOT EXISTS diaries (id BIGSERIAL PRIMARY KEY, user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE, day DATE NOT NULL, necessary_calories DOUBLE PRECISION NOT NULL, consumed_calories DOUBLE PRECISION NOT NULL DEFAULT 0, remaining_calories DOUBLE PRECISION NOT NULL DEFAULT 0, percentage_remaining DOUBLE PRECISION NOT NULL DEFAULT 0, consumed_products JSONB NOT NULL DEFAULT '[]', non_recommended_food JSONB NOT NULL DEFAULT '[]', UNIQUE(user_id, day));",
		"CREATE INDEX IF NOT EXISTS idx_diaries_user_day ON diaries(user_id, day DESC);",
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
