package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQL database connection
type DB struct {
	conn *sql.DB
}

// Tx is a single unit of work against the database. Every emoji cache
// operation runs inside one.
type Tx struct {
	tx *sql.Tx
}

// NewDB creates a new database connection and initializes tables
func NewDB(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.initTables(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	return db, nil
}

// dsn appends the connection options every connection needs. Transactions take
// the write lock up front so concurrent cache operations queue instead of
// failing with SQLITE_BUSY halfway through.
func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_busy_timeout=10000&_txlock=immediate&_foreign_keys=on"
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// WithTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func (db *DB) WithTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	sqlTx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Tx{tx: sqlTx}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("failed to roll back: %w", rbErr))
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// initTables creates the necessary database tables
func (db *DB) initTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS emoji_records (
		emoji_id TEXT PRIMARY KEY,
		guild_id TEXT NOT NULL,
		last_fetched DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_emoji_records_last_fetched ON emoji_records(last_fetched);
	CREATE INDEX IF NOT EXISTS idx_emoji_records_guild_id ON emoji_records(guild_id);

	CREATE TABLE IF NOT EXISTS user_emoji (
		user_id TEXT PRIMARY KEY,
		emoji_id TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS user_timezones (
		user_id TEXT PRIMARY KEY,
		time_zone TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := db.conn.Exec(query)
	return err
}
