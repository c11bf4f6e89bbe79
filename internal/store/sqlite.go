package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	amerrors "github.com/Aman-CERP/amanmcp-memory/internal/errors"
	_ "modernc.org/sqlite" // pure Go SQLite driver, no CGO
)

// Store is the single durable home for a user's facts, chunks, sessions,
// decisions, changes, and identity rows (SPEC_FULL.md §4.1). One Store
// backs every project the user works on; rows are partitioned by the
// project column, not by separate database files.
type Store struct {
	mu         sync.RWMutex
	db         *sql.DB
	path       string
	closed     bool
	ftsEnabled bool
	vectors    *VectorIndex
}

// Open creates or reopens the database at path, applying WAL pragmas and
// the schema. An empty path opens a private in-memory database, used by
// tests that don't need persistence across process restarts.
func Open(path string) (*Store, error) {
	var dsn string
	if path == "" {
		dsn = ":memory:"
	} else {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, amerrors.Wrap(amerrors.ErrCodeFilePermission, err, "create store directory")
		}
		dsn = path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, amerrors.Wrap(amerrors.ErrCodeDatabaseCorrupt, err, "open database")
	}

	// Single writer avoids SQLITE_BUSY storms under the WAL journal.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if path != "" {
		pragmas := []string{
			"PRAGMA journal_mode = WAL",
			"PRAGMA busy_timeout = 5000",
			"PRAGMA synchronous = NORMAL",
			"PRAGMA wal_autocheckpoint = 1000",
			"PRAGMA foreign_keys = ON",
		}
		for _, p := range pragmas {
			if _, err := db.Exec(p); err != nil {
				_ = db.Close()
				return nil, amerrors.Wrap(amerrors.ErrCodeDatabaseCorrupt, err, "set pragma: "+p)
			}
		}
	}

	s := &Store{db: db, path: path}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, amerrors.Wrap(amerrors.ErrCodeDatabaseCorrupt, err, "apply schema")
	}

	if _, err := db.Exec(ftsSchemaSQL); err != nil {
		slog.Warn("fts5_unavailable", slog.String("error", err.Error()))
		s.ftsEnabled = false
	} else {
		s.ftsEnabled = true
	}

	vecPath := ""
	if path != "" {
		vecPath = path + ".hnsw"
	}
	vi, err := OpenVectorIndex(vecPath)
	if err != nil {
		slog.Warn("vector_index_unavailable", slog.String("error", err.Error()))
	}
	s.vectors = vi

	return s, nil
}

// FTSEnabled reports whether FTS5 virtual tables were created successfully.
// When false, lexical search callers must fall back to LIKE queries.
func (s *Store) FTSEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ftsEnabled
}

// Vectors returns the vector index paired with this store, or nil if it
// failed to load (SPEC_FULL.md's vector search degrades to lexical-only).
func (s *Store) Vectors() *VectorIndex {
	return s.vectors
}

// DB exposes the underlying handle for packages (search, session) that need
// ad hoc queries this package doesn't wrap directly.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close releases the database handle and persists the vector index.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if s.vectors != nil {
		if err := s.vectors.Save(); err != nil {
			errs = append(errs, fmt.Errorf("save vector index: %w", err))
		}
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close db: %w", err))
	}
	if len(errs) > 0 {
		return amerrors.Wrap(amerrors.ErrCodeInternal, errs[0], "close store")
	}
	return nil
}
