package store

import (
	"database/sql"
	"time"

	amerrors "github.com/Aman-CERP/amanmcp-memory/internal/errors"
)

// InsertChange appends a row to the automatic change log, written by the
// file_change hook on every tracked file write (SPEC_FULL.md §4.5).
func (s *Store) InsertChange(c *Change) error {
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`
		INSERT INTO changes (session_id, project, file_path, action, timestamp)
		VALUES (?, ?, ?, ?, ?)`,
		c.SessionID, c.Project, c.FilePath, string(c.Action), c.Timestamp.Format(time.RFC3339),
	)
	if err != nil {
		return amerrors.Wrap(amerrors.ErrCodeInternal, err, "insert change")
	}
	return nil
}

// ListChangesForSession returns every change recorded under sessionID, in
// the order they were made — the raw material for the emergency bridge a
// crashed session leaves behind.
func (s *Store) ListChangesForSession(sessionID string) ([]*Change, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.Query(`
		SELECT id, session_id, project, file_path, action, timestamp
		FROM changes WHERE session_id = ? ORDER BY timestamp ASC`, sessionID)
	if err != nil {
		return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "list changes for session")
	}
	defer rows.Close()
	return scanChanges(rows)
}

func scanChanges(rows *sql.Rows) ([]*Change, error) {
	var out []*Change
	for rows.Next() {
		var c Change
		var action, ts string
		if err := rows.Scan(&c.ID, &c.SessionID, &c.Project, &c.FilePath, &action, &ts); err != nil {
			return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "scan change")
		}
		c.Action = ChangeAction(action)
		c.Timestamp = parseTimestamp(ts)
		out = append(out, &c)
	}
	return out, rows.Err()
}
