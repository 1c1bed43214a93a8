// Package sqlite implements the repository interfaces on SQLite.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite: no CGo, no C compiler, and
// cross-compilation works like for any other Go package. The whole store is
// one file on disk (or ":memory:" in tests).
//
// DATABASE/SQL RECAP:
//   - sql.DB   - a connection pool, not a single connection
//   - sql.Tx   - a transaction; Commit or Rollback exactly once
//   - sql.Row  - QueryRowContext result; Scan returns sql.ErrNoRows if empty
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB is the SQLite-backed store.
type DB struct {
	conn *sql.DB
}

// New opens (creating if needed) the database at dbPath and migrates it.
//
//   - "data/gitstats.db" - persistent file
//   - ":memory:"         - throwaway database for tests
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// An in-memory database lives in a single connection; a second pooled
	// connection would see a different, empty database.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a stats snapshot is being written.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}
	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database file is still reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// migrate creates the schema. Every step is idempotent, so it runs on each
// start.
//
// The cached statistics are one nullable TEXT (JSON) column per aggregate.
// NULL means "never computed"; a row with any NULL among them is treated as
// having no cache at all.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			github_id  INTEGER NOT NULL UNIQUE,
			login      TEXT NOT NULL,
			email      TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_users_login ON users(login);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	columns := []struct{ name, definition string }{
		{"access_token", "TEXT NOT NULL DEFAULT ''"},
		{"repo_commits", "TEXT"},
		{"user_repo_info", "TEXT"},
		{"deletions", "TEXT"},
		{"contrib_repo_commits", "TEXT"},
		{"stargazers", "TEXT"},
	}
	for _, c := range columns {
		if err := db.addColumnIfNotExists("users", c.name, c.definition); err != nil {
			return fmt.Errorf("adding users.%s: %w", c.name, err)
		}
	}
	return nil
}

// addColumnIfNotExists makes ALTER TABLE ADD COLUMN idempotent; SQLite has
// no "IF NOT EXISTS" for columns.
func (db *DB) addColumnIfNotExists(table, column, definition string) error {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil
	}
	_, err = db.conn.Exec(fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition))
	return err
}
