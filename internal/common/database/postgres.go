package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"service-automation/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient owns the connection pool used by the application, job and
// audit repositories.
type PostgresClient struct {
	DB *sql.DB
}

func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// NewPostgresFromDB wraps an existing handle, e.g. one from sqlmock.
func NewPostgresFromDB(db *sql.DB) *PostgresClient {
	return &PostgresClient{DB: db}
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// WithTx runs fn in a transaction, rolling back when fn fails.
func (c *PostgresClient) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// schema holds the tables owned by the automation service. The
// applications table belongs to the intake side and is only read/updated.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS automation_jobs (
		id            TEXT PRIMARY KEY,
		order_id      TEXT NOT NULL,
		type          TEXT NOT NULL,
		current_stage TEXT NOT NULL,
		status        TEXT NOT NULL,
		attempts      INTEGER NOT NULL DEFAULT 1,
		last_error    TEXT,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL,
		seq           BIGSERIAL
	)`,
	`ALTER TABLE automation_jobs ADD COLUMN IF NOT EXISTS seq BIGSERIAL`,
	`DROP INDEX IF EXISTS idx_automation_jobs_order`,
	`CREATE INDEX IF NOT EXISTS idx_automation_jobs_order_seq ON automation_jobs (order_id, created_at DESC, seq DESC)`,
	`CREATE TABLE IF NOT EXISTS automation_job_logs (
		id         BIGSERIAL PRIMARY KEY,
		job_id     TEXT NOT NULL REFERENCES automation_jobs(id),
		level      TEXT NOT NULL,
		message    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id         BIGSERIAL PRIMARY KEY,
		event_type TEXT NOT NULL,
		entity_id  TEXT NOT NULL,
		actor_id   TEXT,
		details    JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates the automation tables if they are missing.
func (c *PostgresClient) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
