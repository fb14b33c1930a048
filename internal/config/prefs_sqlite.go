package config

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const prefsSchema = `
CREATE TABLE IF NOT EXISTS prefs (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// SQLitePrefs stores prefs as rows of a single table; a commit is one
// transaction.
type SQLitePrefs struct {
	db *sql.DB
}

func OpenSQLitePrefs(path string) (*SQLitePrefs, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=10000;",
		prefsSchema,
	} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init %s: %w", path, err)
		}
	}

	return &SQLitePrefs{db: db}, nil
}

func (p *SQLitePrefs) Close() error {
	return p.db.Close()
}

func (p *SQLitePrefs) Lookup(key string) (string, bool, error) {
	var v string
	err := p.db.QueryRow(`SELECT value FROM prefs WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return v, true, nil
}

func (p *SQLitePrefs) Commit(values map[string]string) error {
	tx, err := p.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for k, v := range values {
		if _, err := tx.Exec(`
			INSERT INTO prefs(key, value) VALUES(?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, k, v); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}

	return tx.Commit()
}
