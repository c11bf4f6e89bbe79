package store

import (
	"time"

	"github.com/google/uuid"

	amerrors "github.com/Aman-CERP/amanmcp-memory/internal/errors"
)

// InsertDecision appends a row to the decision log (SPEC_FULL.md §4.1).
// The log is append-only: there is no UpdateDecision or DeleteDecision.
func (s *Store) InsertDecision(d *Decision) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Timestamp.IsZero() {
		d.Timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`
		INSERT INTO decisions (id, project, decision, reason, alternatives, timestamp, session_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Project, d.Decision, d.Reason, d.Alternatives,
		d.Timestamp.Format(time.RFC3339), d.SessionID,
	)
	if err != nil {
		return amerrors.Wrap(amerrors.ErrCodeInternal, err, "insert decision")
	}
	return nil
}

// ListDecisions returns the most recent decisions for project, newest first,
// capped at limit.
func (s *Store) ListDecisions(project string, limit int) ([]*Decision, error) {
	if limit <= 0 {
		limit = 20
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.Query(`
		SELECT id, project, decision, reason, alternatives, timestamp, session_id
		FROM decisions WHERE project = ? ORDER BY timestamp DESC LIMIT ?`, project, limit)
	if err != nil {
		return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "list decisions")
	}
	defer rows.Close()

	var out []*Decision
	for rows.Next() {
		var d Decision
		var ts string
		if err := rows.Scan(&d.ID, &d.Project, &d.Decision, &d.Reason, &d.Alternatives, &ts, &d.SessionID); err != nil {
			return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "scan decision")
		}
		d.Timestamp = parseTimestamp(ts)
		out = append(out, &d)
	}
	return out, rows.Err()
}
