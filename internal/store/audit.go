package store

import (
	"time"

	amerrors "github.com/Aman-CERP/amanmcp-memory/internal/errors"
)

// InsertAudit appends one row to the identity audit log. identity_set does
// not call it: UpsertIdentity writes its own audit rows, one per changed
// safety field, with its own inline INSERT (SPEC_FULL.md §4.6); tech-field
// changes are not audited.
func (s *Store) InsertAudit(a *Audit) error {
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`
		INSERT INTO identity_audit_log (project, field_name, old_value, new_value, changed_by, reason, session_id, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Project, a.Field, a.OldValue, a.NewValue, a.Actor, a.Reason, a.SessionID,
		a.Timestamp.Format(time.RFC3339),
	)
	if err != nil {
		return amerrors.Wrap(amerrors.ErrCodeInternal, err, "insert audit")
	}
	return nil
}

// ListAudit returns the most recent audit rows for project, newest first.
func (s *Store) ListAudit(project string, limit int) ([]*Audit, error) {
	if limit <= 0 {
		limit = 50
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.Query(`
		SELECT id, project, field_name, old_value, new_value, changed_by, reason, session_id, timestamp
		FROM identity_audit_log WHERE project = ? ORDER BY timestamp DESC LIMIT ?`, project, limit)
	if err != nil {
		return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "list audit")
	}
	defer rows.Close()

	var out []*Audit
	for rows.Next() {
		var a Audit
		var ts string
		if err := rows.Scan(&a.ID, &a.Project, &a.Field, &a.OldValue, &a.NewValue, &a.Actor, &a.Reason, &a.SessionID, &ts); err != nil {
			return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "scan audit row")
		}
		a.Timestamp = parseTimestamp(ts)
		out = append(out, &a)
	}
	return out, rows.Err()
}
