package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Storage handles all database operations
type Storage struct {
	db *sql.DB
}

// NewStorage creates a new Storage instance, opening/creating the DB and initializing schema
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	storage := &Storage{db: db}

	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// initSchema creates tables and indices if they don't exist
func (s *Storage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		seeds TEXT NOT NULL,
		max_pages INTEGER NOT NULL,
		started_at TIMESTAMP NOT NULL,
		ended_at TIMESTAMP NOT NULL,
		pages_crawled INTEGER DEFAULT 0,
		links_recorded INTEGER DEFAULT 0,
		pages_failed INTEGER DEFAULT 0,
		triangles_found INTEGER DEFAULT 0,
		termination_reason TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// RecordRun stores a crawl summary, assigning a run ID when none is set.
// Returns the run ID.
func (s *Storage) RecordRun(run Run) (string, error) {
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}

	_, err := s.db.Exec(`
		INSERT INTO runs (run_id, seeds, max_pages, started_at, ended_at,
			pages_crawled, links_recorded, pages_failed, triangles_found, termination_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.RunID, strings.Join(run.Seeds, "\n"), run.MaxPages, run.StartedAt.UTC(), run.EndedAt.UTC(),
		run.PagesCrawled, run.LinksRecorded, run.PagesFailed, run.TrianglesFound, run.TerminationReason)

	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return run.RunID, nil
}

// ListRuns returns the most recent runs, newest first
func (s *Storage) ListRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT run_id, seeds, max_pages, started_at, ended_at,
			pages_crawled, links_recorded, pages_failed, triangles_found, termination_reason
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)

	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run    Run
			seeds  string
			reason sql.NullString
		)
		if err := rows.Scan(&run.RunID, &seeds, &run.MaxPages, &run.StartedAt, &run.EndedAt,
			&run.PagesCrawled, &run.LinksRecorded, &run.PagesFailed, &run.TrianglesFound, &reason); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if seeds != "" {
			run.Seeds = strings.Split(seeds, "\n")
		}
		run.TerminationReason = reason.String
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}
