// Package sqlite implements the repository interfaces on an embedded SQLite
// database (modernc.org/sqlite, pure Go, no cgo).
//
// Each collection is one table. Every write is a single statement, so the
// model relies on SQLite's per-statement atomicity and never opens a
// transaction.
//
// Use ":memory:" as the path for tests.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/xid"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements UserRepository,
// HikeRepository and ChatRepository.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath, applies pragmas and creates the schema.
func New(dbPath string) (*DB, error) {
	// Pragmas go in the DSN so every pooled connection gets them, not just
	// the first one. WAL lets readers proceed while a write is in flight.
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// An in-memory database lives only as long as its connection, so every
	// pooled connection would otherwise see a different empty database.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable. Used by the health check.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// migrate creates the tables and their lookup indexes. CREATE ... IF NOT
// EXISTS keeps it safe to run on every start.
func (db *DB) migrate() error {
	// clerk_id is UNIQUE: at most one profile per external identity, and the
	// loser of a concurrent first sync fails safely on the constraint.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id              TEXT PRIMARY KEY,
			clerk_id        TEXT NOT NULL UNIQUE,
			email           TEXT NOT NULL DEFAULT '',
			name            TEXT NOT NULL DEFAULT '',
			profile_image   TEXT NOT NULL DEFAULT '',
			auth_provider   TEXT NOT NULL DEFAULT '',
			custom_username TEXT,
			first_name      TEXT,
			last_name       TEXT,
			created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS hikes (
			id               TEXT PRIMARY KEY,
			trail_name       TEXT NOT NULL,
			distance_km      REAL NOT NULL,
			duration_minutes INTEGER NOT NULL,
			difficulty       TEXT NOT NULL,
			elevation_gain_m REAL,
			notes            TEXT,
			user_id          TEXT NOT NULL,
			created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_hikes_user_id ON hikes(user_id, created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating hikes table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS chat_messages (
			id           TEXT PRIMARY KEY,
			user_id      TEXT,
			user_message TEXT NOT NULL,
			bot_reply    TEXT NOT NULL,
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_chat_messages_created_at ON chat_messages(created_at);
		CREATE INDEX IF NOT EXISTS idx_chat_messages_user_id ON chat_messages(user_id, created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating chat_messages table: %w", err)
	}

	return nil
}

// validID reports whether id could have been issued by this store.
// Malformed ids are answered with NotFound without touching the database.
func validID(id string) bool {
	_, err := xid.FromString(id)
	return err == nil
}
