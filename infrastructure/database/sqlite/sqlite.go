package sqlite

import (
	"context"
	"database/sql"

	"github.com/vfg2006/sales-dashboard-api/infrastructure/database"
	"github.com/vfg2006/sales-dashboard-api/internal/config"
	_ "modernc.org/sqlite"
)

// MemoryDSN opens a private in-memory database
const MemoryDSN = ":memory:"

type Connection struct {
	*sql.DB
}

var _ database.Conn = (*Connection)(nil)

func NewConnection(
	ctx context.Context,
	cfg config.Database,
) (*Connection, error) {
	return Open(ctx, cfg.DSN)
}

// Open connects to the database file at dsn and enables foreign keys
func Open(ctx context.Context, dsn string) (*Connection, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// a single writer avoids SQLITE_BUSY and keeps :memory: databases shared
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}

	return &Connection{DB: db}, nil
}

func (c *Connection) Dialect() database.Dialect {
	return database.SQLite
}

func (c *Connection) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

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
		timestamp INTEGER NOT NULL,
		entries   TEXT NOT NULL DEFAULT '[]',
		total     TEXT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS sales_timestamp_idx ON sales (timestamp DESC)`,
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		active        BOOLEAN NOT NULL DEFAULT 1,
		created_at    INTEGER NOT NULL,
		updated_at    INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		user_id    INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		created_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS daily_summaries (
		date        TEXT PRIMARY KEY,
		sales_count INTEGER NOT NULL,
		total       TEXT NOT NULL,
		updated_at  INTEGER NOT NULL
	)`,
}
