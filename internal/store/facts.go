package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	amerrors "github.com/Aman-CERP/amanmcp-memory/internal/errors"
)

// InsertFact validates f.Kind, assigns an ID and timestamp if missing, and
// writes a new row with heat 1.0 (SPEC_FULL.md §3, §4.1). memory_write goes
// through memory.Writer.Write, which applies the dedup rule before calling
// this.
func (s *Store) InsertFact(f *Fact) error {
	if err := ValidateFactKind(f.Kind); err != nil {
		return err
	}
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Timestamp.IsZero() {
		f.Timestamp = time.Now().UTC()
	}
	if f.Heat == 0 {
		f.Heat = HeatCeil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO facts (id, project, content, type, domain, tags, timestamp,
			heat_score, last_accessed, session_id, source_file, source_mtime)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Project, f.Content, string(f.Kind), f.Domain, f.Tags,
		f.Timestamp.Format(time.RFC3339), f.Heat, nullTime(f.LastAccessed),
		f.SessionID, nullString(f.SourceFile), f.SourceMtime,
	)
	if err != nil {
		return amerrors.Wrap(amerrors.ErrCodeInternal, err, "insert fact")
	}
	return nil
}

// FindFactBySource locates the existing fact for (project, source_file,
// type), the key memory_write dedups against (SPEC_FULL.md §4.3). Returns
// nil, nil if no such fact exists.
func (s *Store) FindFactBySource(project, sourceFile string, kind FactKind) (*Fact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, project, content, type, domain, tags, timestamp, heat_score,
			last_accessed, session_id, source_file, source_mtime, rowid
		FROM facts
		WHERE project = ? AND source_file = ? AND type = ?
		ORDER BY timestamp DESC LIMIT 1`,
		project, sourceFile, string(kind),
	)
	f, err := scanFact(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "find fact by source")
	}
	return f, nil
}

// UpdateFactContent rewrites content and timestamp for an existing fact and
// resets heat to 1.0, the behavior memory_write applies when a tracked
// source file's content changed since the last write.
func (s *Store) UpdateFactContent(id, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`
		UPDATE facts SET content = ?, timestamp = ?, heat_score = ?
		WHERE id = ?`,
		content, time.Now().UTC().Format(time.RFC3339), HeatCeil, id,
	)
	if err != nil {
		return amerrors.Wrap(amerrors.ErrCodeInternal, err, "update fact content")
	}
	return nil
}

// GetFact fetches a single fact by ID.
func (s *Store) GetFact(id string) (*Fact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRow(`
		SELECT id, project, content, type, domain, tags, timestamp, heat_score,
			last_accessed, session_id, source_file, source_mtime, rowid
		FROM facts WHERE id = ?`, id)
	f, err := scanFact(row)
	if err == sql.ErrNoRows {
		return nil, amerrors.New(amerrors.ErrCodeFileNotFound, "fact not found: "+id)
	}
	if err != nil {
		return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "get fact")
	}
	return f, nil
}

// DeleteFact removes a fact by ID. Removal from the vector index is the
// caller's responsibility (memory.Writer.Delete owns that pairing).
func (s *Store) DeleteFact(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`DELETE FROM facts WHERE id = ?`, id)
	if err != nil {
		return amerrors.Wrap(amerrors.ErrCodeInternal, err, "delete fact")
	}
	return nil
}

// ListFactsByProject returns every fact for a project ordered by recency,
// used by the decay sweep that runs before each search.
func (s *Store) ListFactsByProject(project string) ([]*Fact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.Query(`
		SELECT id, project, content, type, domain, tags, timestamp, heat_score,
			last_accessed, session_id, source_file, source_mtime, rowid
		FROM facts WHERE project = ? ORDER BY timestamp DESC`, project)
	if err != nil {
		return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "list facts by project")
	}
	defer rows.Close()
	return scanFacts(rows)
}

// GetFactsByIDs fetches facts in bulk for search-result hydration,
// preserving no particular order — callers reorder by their own ranking.
func (s *Store) GetFactsByIDs(ids []string) (map[string]*Fact, error) {
	out := make(map[string]*Fact, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	query, args := buildInClause(`
		SELECT id, project, content, type, domain, tags, timestamp, heat_score,
			last_accessed, session_id, source_file, source_mtime, rowid
		FROM facts WHERE id IN (%s)`, ids)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "get facts by ids")
	}
	defer rows.Close()
	facts, err := scanFacts(rows)
	if err != nil {
		return nil, err
	}
	for _, f := range facts {
		out[f.ID] = f
	}
	return out, nil
}

// UpdateHeat applies a new heat value and sets last_accessed to accessed. Used
// both by the decay sweep (heat decreasing) and the access boost (heat
// increasing) described in SPEC_FULL.md §4.4.
func (s *Store) UpdateHeat(id string, heat float64, accessed time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`
		UPDATE facts SET heat_score = ?, last_accessed = ? WHERE id = ?`,
		ClampHeat(heat), accessed.UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return amerrors.Wrap(amerrors.ErrCodeInternal, err, "update heat")
	}
	return nil
}

func scanFact(row *sql.Row) (*Fact, error) {
	var f Fact
	var kind, timestamp string
	var lastAccessed, sourceFile sql.NullString
	var sourceMtime sql.NullFloat64

	err := row.Scan(&f.ID, &f.Project, &f.Content, &kind, &f.Domain, &f.Tags,
		&timestamp, &f.Heat, &lastAccessed, &f.SessionID, &sourceFile,
		&sourceMtime, &f.RowID)
	if err != nil {
		return nil, err
	}
	f.Kind = FactKind(kind)
	f.Timestamp = parseTimestamp(timestamp)
	if lastAccessed.Valid {
		t := parseTimestamp(lastAccessed.String)
		f.LastAccessed = &t
	}
	if sourceFile.Valid {
		f.SourceFile = sourceFile.String
	}
	if sourceMtime.Valid {
		f.SourceMtime = &sourceMtime.Float64
	}
	return &f, nil
}

func scanFacts(rows *sql.Rows) ([]*Fact, error) {
	var out []*Fact
	for rows.Next() {
		var f Fact
		var kind, timestamp string
		var lastAccessed, sourceFile sql.NullString
		var sourceMtime sql.NullFloat64

		err := rows.Scan(&f.ID, &f.Project, &f.Content, &kind, &f.Domain, &f.Tags,
			&timestamp, &f.Heat, &lastAccessed, &f.SessionID, &sourceFile,
			&sourceMtime, &f.RowID)
		if err != nil {
			return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "scan fact row")
		}
		f.Kind = FactKind(kind)
		f.Timestamp = parseTimestamp(timestamp)
		if lastAccessed.Valid {
			t := parseTimestamp(lastAccessed.String)
			f.LastAccessed = &t
		}
		if sourceFile.Valid {
			f.SourceFile = sourceFile.String
		}
		if sourceMtime.Valid {
			f.SourceMtime = &sourceMtime.Float64
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// buildInClause expands a "%s" placeholder in query into the right number
// of "?" markers for len(ids) and returns the matching arg slice.
func buildInClause(query string, ids []string) (string, []interface{}) {
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	return fmt.Sprintf(query, strings.Join(placeholders, ",")), args
}
