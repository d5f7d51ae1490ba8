package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// NewSQLite opens (or creates) the on-device SQLite database and ensures the
// schema exists. The table shapes mirror the remote relational schema.
func NewSQLite(ctx context.Context, path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS usuarios (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE,
			password_hash TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS transacoes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			descricao TEXT,
			valor REAL,
			tipo TEXT,
			categoria TEXT,
			data TEXT,
			usuario_id INTEGER,
			sincronizado INTEGER DEFAULT 0
		)`,
	}
	for _, stmt := range schema {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			conn.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	return conn, nil
}
