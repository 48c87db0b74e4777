// Package cache persists review metadata between refresh cycles. The
// engine itself never writes here; the store is the explicit cache
// object handed to the prioritizer and the tree assembler so both stay
// pure functions of their inputs.
package cache

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"canopy/internal/errors"
	"canopy/internal/model"
)

// Store is a SQLite-backed review metadata cache.
type Store struct {
	conn   *sql.DB
	logger *slog.Logger
	dbPath string
}

// Open opens or creates the review cache at <canopyDir>/reviews.db.
func Open(canopyDir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(canopyDir, 0755); err != nil {
		return nil, errors.New(errors.CacheUnavailable, "create cache directory", err)
	}

	dbPath := filepath.Join(canopyDir, "reviews.db")
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.New(errors.CacheUnavailable, "open review cache", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, errors.New(errors.CacheUnavailable, "set pragma", err)
		}
	}

	s := &Store{conn: conn, logger: logger, dbPath: dbPath}
	if err := s.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, errors.New(errors.CacheUnavailable, "initialize schema", err)
	}
	return s, nil
}

func (s *Store) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS review_items (
			source_branch TEXT PRIMARY KEY,
			number INTEGER NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL DEFAULT 'open',
			draft INTEGER NOT NULL DEFAULT 0,
			decision TEXT NOT NULL DEFAULT '',
			checks TEXT NOT NULL DEFAULT '',
			labels TEXT NOT NULL DEFAULT '[]',
			assignees TEXT NOT NULL DEFAULT '[]',
			reviewers TEXT NOT NULL DEFAULT '[]',
			additions INTEGER NOT NULL DEFAULT 0,
			deletions INTEGER NOT NULL DEFAULT 0,
			changed_files INTEGER NOT NULL DEFAULT 0,
			refreshed_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_review_items_refreshed ON review_items(refreshed_at);

		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);
		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Put upserts one review item keyed by its source branch, stamping the
// refresh time if the item carries none.
func (s *Store) Put(item model.ReviewItem) error {
	if item.RefreshedAt.IsZero() {
		item.RefreshedAt = time.Now().UTC()
	}
	labels, _ := json.Marshal(orEmpty(item.Labels))
	assignees, _ := json.Marshal(orEmpty(item.Assignees))
	reviewers, _ := json.Marshal(orEmpty(item.Reviewers))

	_, err := s.conn.Exec(`
		INSERT INTO review_items (
			source_branch, number, title, state, draft, decision, checks,
			labels, assignees, reviewers, additions, deletions, changed_files, refreshed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_branch) DO UPDATE SET
			number = excluded.number,
			title = excluded.title,
			state = excluded.state,
			draft = excluded.draft,
			decision = excluded.decision,
			checks = excluded.checks,
			labels = excluded.labels,
			assignees = excluded.assignees,
			reviewers = excluded.reviewers,
			additions = excluded.additions,
			deletions = excluded.deletions,
			changed_files = excluded.changed_files,
			refreshed_at = excluded.refreshed_at`,
		item.SourceBranch, item.Number, item.Title, string(item.State), boolToInt(item.Draft),
		string(item.Decision), string(item.Checks),
		string(labels), string(assignees), string(reviewers),
		item.Additions, item.Deletions, item.ChangedFiles,
		item.RefreshedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return errors.New(errors.CacheUnavailable, "upsert review item", err)
	}
	return nil
}

// PutAll upserts a batch of items.
func (s *Store) PutAll(items []model.ReviewItem) error {
	for _, item := range items {
		if err := s.Put(item); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the cached item for a branch, or nil when absent.
func (s *Store) Get(branch string) (*model.ReviewItem, error) {
	row := s.conn.QueryRow(`
		SELECT source_branch, number, title, state, draft, decision, checks,
		       labels, assignees, reviewers, additions, deletions, changed_files, refreshed_at
		FROM review_items WHERE source_branch = ?`, branch)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.New(errors.CacheUnavailable, "read review item", err)
	}
	return item, nil
}

// List returns all cached items ordered by branch name.
func (s *Store) List() ([]model.ReviewItem, error) {
	rows, err := s.conn.Query(`
		SELECT source_branch, number, title, state, draft, decision, checks,
		       labels, assignees, reviewers, additions, deletions, changed_files, refreshed_at
		FROM review_items ORDER BY source_branch`)
	if err != nil {
		return nil, errors.New(errors.CacheUnavailable, "list review items", err)
	}
	defer rows.Close()

	var items []model.ReviewItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, errors.New(errors.CacheUnavailable, "scan review item", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// Delete removes the cached entry for a branch.
func (s *Store) Delete(branch string) error {
	if _, err := s.conn.Exec(`DELETE FROM review_items WHERE source_branch = ?`, branch); err != nil {
		return errors.New(errors.CacheUnavailable, "delete review item", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.conn.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*model.ReviewItem, error) {
	var (
		item      model.ReviewItem
		state     string
		decision  string
		checks    string
		draft     int
		labels    string
		assignees string
		reviewers string
		refreshed string
	)
	err := row.Scan(&item.SourceBranch, &item.Number, &item.Title, &state, &draft,
		&decision, &checks, &labels, &assignees, &reviewers,
		&item.Additions, &item.Deletions, &item.ChangedFiles, &refreshed)
	if err != nil {
		return nil, err
	}
	item.State = model.ReviewState(state)
	item.Decision = model.ReviewDecision(decision)
	item.Checks = model.CheckState(checks)
	item.Draft = draft != 0
	_ = json.Unmarshal([]byte(labels), &item.Labels)
	_ = json.Unmarshal([]byte(assignees), &item.Assignees)
	_ = json.Unmarshal([]byte(reviewers), &item.Reviewers)
	if t, err := time.Parse(time.RFC3339, refreshed); err == nil {
		item.RefreshedAt = t
	}
	return &item, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
