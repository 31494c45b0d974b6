// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records conversion runs and their per-page outcomes in a
// SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pdfocr/pkg/types"
)

const defaultLimit = 20

// Store manages the history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path, creating its parent
// directory and the schema if they do not exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			pdf_path TEXT NOT NULL,
			output_dir TEXT NOT NULL,
			mode TEXT NOT NULL,
			expected_pages INTEGER NOT NULL,
			rasterize_failed INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pages (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			number TEXT NOT NULL,
			image_path TEXT NOT NULL,
			text_path TEXT NOT NULL,
			status TEXT NOT NULL,
			bytes INTEGER NOT NULL,
			PRIMARY KEY (run_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_output_dir ON runs(output_dir)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores run and its pages in one transaction and returns the new
// run id.
func (s *Store) Record(ctx context.Context, run types.RunResult) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	r, err := tx.ExecContext(ctx,
		`INSERT INTO runs (pdf_path, output_dir, mode, expected_pages, rasterize_failed, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.PDFPath, run.OutputDir, string(run.Mode), run.ExpectedPages, run.RasterizeFailed,
		run.StartedAt.UTC().Format(time.RFC3339Nano), run.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	id, err := r.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO pages (run_id, seq, number, image_path, text_path, status, bytes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing page insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range run.Pages {
		if _, err := stmt.ExecContext(ctx, id, i, p.Number, p.ImagePath, p.TextPath, string(p.Status), p.Bytes); err != nil {
			return 0, fmt.Errorf("inserting page %s: %w", p.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return id, nil
}

// Runs returns up to limit runs, newest first, each with its pages in
// aggregation order. A non-positive limit selects the default of 20.
func (s *Store) Runs(ctx context.Context, limit int) ([]types.RunResult, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, pdf_path, output_dir, mode, expected_pages, rasterize_failed, started_at, finished_at
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.RunResult
	for rows.Next() {
		var (
			r                 types.RunResult
			mode              string
			started, finished string
		)
		if err := rows.Scan(&r.ID, &r.PDFPath, &r.OutputDir, &mode, &r.ExpectedPages,
			&r.RasterizeFailed, &started, &finished); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Mode = types.AggregateMode(mode)
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parsing started_at of run %d: %w", r.ID, err)
		}
		if r.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("parsing finished_at of run %d: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	rows.Close()

	for i := range runs {
		pages, err := s.pages(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Pages = pages
	}
	return runs, nil
}

func (s *Store) pages(ctx context.Context, runID int64) ([]types.PageResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT number, image_path, text_path, status, bytes FROM pages WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying pages for run %d: %w", runID, err)
	}
	defer rows.Close()

	var pages []types.PageResult
	for rows.Next() {
		var (
			p      types.PageResult
			status string
		)
		if err := rows.Scan(&p.Number, &p.ImagePath, &p.TextPath, &status, &p.Bytes); err != nil {
			return nil, fmt.Errorf("scanning page: %w", err)
		}
		p.Status = types.PageStatus(status)
		pages = append(pages, p)
	}
	return pages, rows.Err()
}
