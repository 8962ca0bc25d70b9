package postgres

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/vfg2006/sales-dashboard-api/infrastructure/database"
	"github.com/vfg2006/sales-dashboard-api/internal/config"
)

type Connection struct {
	*sql.DB
	dsn string
}

var _ database.Conn = (*Connection)(nil)

func NewConnection(
	ctx context.Context,
	cfg config.Database,
) (*Connection, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &Connection{DB: db, dsn: cfg.DSN}, nil
}

func (c *Connection) Dialect() database.Dialect {
	return database.Postgres
}

// DSN is needed by listeners, which hold a dedicated connection
func (c *Connection) DSN() string {
	return c.dsn
}

func (c *Connection) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// RunInTransaction run a query in the transaction
func (c *Connection) RunInTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	return database.RunInTransaction(ctx, c.DB, fn)
}

// Migrate creates the tables the service needs when they are missing
func (c *Connection) Migrate(ctx context.Context) error {
	return database.Migrate(ctx, c, schema)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id    TEXT PRIMARY KEY,
		name  TEXT NOT NULL,
		price TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id        TEXT PRIMARY KEY,
		timestamp BIGINT NOT NULL,
		entries   JSONB NOT NULL DEFAULT '[]'::jsonb,
		total     TEXT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS sales_timestamp_idx ON sales (timestamp DESC)`,
	`CREATE TABLE IF NOT EXISTS users (
		id            SERIAL PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		active        BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    BIGINT NOT NULL,
		updated_at    BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		user_id    INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		created_at BIGINT NOT NULL,
		expires_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS daily_summaries (
		date        TEXT PRIMARY KEY,
		sales_count INTEGER NOT NULL,
		total       TEXT NOT NULL,
		updated_at  BIGINT NOT NULL
	)`,
}
