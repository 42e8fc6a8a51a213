// Package db persists characters, locations, projects and panels in SQLite.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/abdulachik/panelforge/internal/db/migrations"
	_ "modernc.org/sqlite"
)

// Store wraps the database connection and provides access to queries.
type Store struct {
	*sql.DB
	*Queries
}

// NewStore opens the database at path, creating its directory if needed.
func NewStore(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One writer at a time.
	sqlDB.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := sqlDB.ExecContext(ctx, pragma); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("exec %q: %w", pragma, err)
		}
	}

	return &Store{DB: sqlDB, Queries: New(sqlDB)}, nil
}

// InTx runs fn inside a transaction, committing when fn returns nil.
func (s *Store) InTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(s.Queries.WithTx(tx)); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Migrate applies every embedded migration not yet recorded in
// schema_migrations.
func (s *Store) Migrate(ctx context.Context) error {
	slog.Debug("running database migrations")

	if _, err := s.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	applied, err := s.appliedMigrations(ctx)
	if err != nil {
		return err
	}

	files, err := migrationFiles()
	if err != nil {
		return err
	}

	for _, file := range files {
		if applied[file] {
			continue
		}

		content, err := fs.ReadFile(migrations.FS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}

		err = s.InTx(ctx, func(q *Queries) error {
			if _, err := q.db.ExecContext(ctx, extractUpMigration(string(content))); err != nil {
				return fmt.Errorf("execute migration %s: %w", file, err)
			}
			if _, err := q.db.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", file); err != nil {
				return fmt.Errorf("record migration %s: %w", file, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		slog.Info("applied migration", "file", file)
	}

	return nil
}

func (s *Store) appliedMigrations(ctx context.Context) (map[string]bool, error) {
	rows, err := s.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan migration: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate migrations: %w", err)
	}
	return applied, nil
}

func migrationFiles() ([]string, error) {
	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// extractUpMigration returns the part of a migration before its
// "-- +migrate Down" marker.
func extractUpMigration(content string) string {
	up, _, found := strings.Cut(content, "-- +migrate Down")
	if !found {
		return content
	}
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(up), "-- +migrate Up"))
}

// Counts summarises the stored entities.
type Counts struct {
	Characters int64 `json:"characters"`
	Locations  int64 `json:"locations"`
	Projects   int64 `json:"projects"`
	Panels     int64 `json:"panels"`
}

// Counts returns the number of rows of every entity table.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	var err error
	if c.Characters, err = s.CountCharacters(ctx); err != nil {
		return c, fmt.Errorf("count characters: %w", err)
	}
	if c.Locations, err = s.CountLocations(ctx); err != nil {
		return c, fmt.Errorf("count locations: %w", err)
	}
	if c.Projects, err = s.CountProjects(ctx); err != nil {
		return c, fmt.Errorf("count projects: %w", err)
	}
	if c.Panels, err = s.CountPanels(ctx); err != nil {
		return c, fmt.Errorf("count panels: %w", err)
	}
	return c, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.DB.Close()
}
