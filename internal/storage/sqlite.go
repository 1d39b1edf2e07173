// Package storage provides the persistent key-value backing for the single
// document: one row in a local SQLite file, pure-Go driver, no server.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"fintrack/internal/store"

	_ "modernc.org/sqlite"
)

// documentKey names the one row the tracker owns. Versioned so a future
// structure change can coexist with old data.
const documentKey = "fintrack_data_v1"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Read implements store.Backend.
func (r *SQLiteRepository) Read(ctx context.Context) ([]byte, error) {
	var body string
	err := r.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE key = ?`, documentKey).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, store.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("read document row: %w", err)
	}
	return []byte(body), nil
}

// Write implements store.Backend.
func (r *SQLiteRepository) Write(ctx context.Context, data []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (key, body, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET
			body = excluded.body,
			updated_at = CURRENT_TIMESTAMP`,
		documentKey, string(data))
	if err != nil {
		return fmt.Errorf("upsert document row: %w", err)
	}
	slog.DebugContext(ctx, "document persisted", "bytes", len(data))
	return nil
}

// Delete implements store.Backend.
func (r *SQLiteRepository) Delete(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM documents WHERE key = ?`, documentKey)
	if err != nil {
		return fmt.Errorf("delete document row: %w", err)
	}
	return nil
}
