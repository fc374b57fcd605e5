// Package sqlite provides a SQLite-backed knowledge store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation. Confirmed
// mappings survive process restarts and are shared by every run against
// the same data directory.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/lenslink/internal/core/ports/driven"
	"github.com/custodia-labs/lenslink/internal/logger"
)

// Ensure KnowledgeStore implements the interface.
var _ driven.KnowledgeStore = (*KnowledgeStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS mappings (
	group_key         TEXT    NOT NULL,
	variation_ordinal INTEGER NOT NULL,
	pattern_ordinal   INTEGER NOT NULL,
	updated_at        DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (group_key, variation_ordinal)
);
CREATE INDEX IF NOT EXISTS idx_mappings_group ON mappings(group_key);
`

// KnowledgeStore persists confirmed variation-to-pattern mappings in a
// SQLite database.
type KnowledgeStore struct {
	db   *sql.DB
	path string
}

// NewKnowledgeStore opens (or creates) the knowledge database at path.
// A corrupt database file is moved aside and recreated empty; losing
// learned mappings is recoverable, refusing to run is not.
func NewKnowledgeStore(path string) (*KnowledgeStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".lenslink", "knowledge.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := open(path)
	if err != nil {
		aside := fmt.Sprintf("%s.corrupt-%d", path, time.Now().Unix())
		logger.Warn("knowledge database unusable, moving aside to %s: %v", aside, err)
		if mvErr := os.Rename(path, aside); mvErr != nil {
			return nil, fmt.Errorf("moving corrupt database aside: %w", mvErr)
		}
		db, err = open(path)
		if err != nil {
			return nil, fmt.Errorf("recreating knowledge database: %w", err)
		}
	}

	return &KnowledgeStore{db: db, path: path}, nil
}

// open connects with WAL mode and applies the schema.
func open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return db, nil
}

// GetMapping returns the stored mapping for a group key. A missing group
// yields an empty map.
func (s *KnowledgeStore) GetMapping(ctx context.Context, groupKey string) (map[int]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT variation_ordinal, pattern_ordinal FROM mappings WHERE group_key = ?", groupKey)
	if err != nil {
		return nil, fmt.Errorf("querying mappings: %w", err)
	}
	defer rows.Close()

	mapping := make(map[int]int)
	for rows.Next() {
		var from, to int
		if err := rows.Scan(&from, &to); err != nil {
			return nil, fmt.Errorf("scanning mapping: %w", err)
		}
		mapping[from] = to
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading mappings: %w", err)
	}
	return mapping, nil
}

// AddMapping merges additions into the stored mapping for a group key,
// last write wins per ordinal.
func (s *KnowledgeStore) AddMapping(ctx context.Context, groupKey string, additions map[int]int) error {
	if len(additions) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO mappings (group_key, variation_ordinal, pattern_ordinal)
		VALUES (?, ?, ?)
		ON CONFLICT (group_key, variation_ordinal)
		DO UPDATE SET pattern_ordinal = excluded.pattern_ordinal, updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for from, to := range additions {
		if _, err := stmt.ExecContext(ctx, groupKey, from, to); err != nil {
			return fmt.Errorf("upserting mapping %d -> %d: %w", from, to, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing mappings: %w", err)
	}
	return nil
}

// Groups lists every group key with at least one stored mapping.
func (s *KnowledgeStore) Groups(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT group_key FROM mappings ORDER BY group_key")
	if err != nil {
		return nil, fmt.Errorf("querying groups: %w", err)
	}
	defer rows.Close()

	var groups []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, fmt.Errorf("scanning group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading groups: %w", err)
	}
	return groups, nil
}

// DeleteGroup removes all mappings for a group key.
func (s *KnowledgeStore) DeleteGroup(ctx context.Context, groupKey string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM mappings WHERE group_key = ?", groupKey); err != nil {
		return fmt.Errorf("deleting group %s: %w", groupKey, err)
	}
	return nil
}

// Path returns the database file path.
func (s *KnowledgeStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *KnowledgeStore) Close() error {
	return s.db.Close()
}
