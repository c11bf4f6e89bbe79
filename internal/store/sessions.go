package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	amerrors "github.com/Aman-CERP/amanmcp-memory/internal/errors"
)

// CreateSession opens a new session row. ID and StartTime are assigned if
// unset.
func (s *Store) CreateSession(sess *Session) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.StartTime.IsZero() {
		sess.StartTime = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`
		INSERT INTO sessions (id, project, start_time) VALUES (?, ?, ?)`,
		sess.ID, sess.Project, sess.StartTime.Format(time.RFC3339),
	)
	if err != nil {
		return amerrors.Wrap(amerrors.ErrCodeInternal, err, "create session")
	}
	return nil
}

// CloseSession sets end_time, summary and bridge_content for a session,
// and its final facts/changes counters. Idempotent: calling it twice
// overwrites bridge_content only if it was previously empty, matching the
// at-most-once bridge semantics the session_end hook relies on.
func (s *Store) CloseSession(id string, endTime time.Time, summary, bridge string, factsCount, changesCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existingBridge sql.NullString
	if err := s.db.QueryRow(`SELECT bridge_content FROM sessions WHERE id = ?`, id).Scan(&existingBridge); err != nil {
		if err == sql.ErrNoRows {
			return amerrors.New(amerrors.ErrCodeNoActiveSession, "session not found: "+id)
		}
		return amerrors.Wrap(amerrors.ErrCodeInternal, err, "lookup session before close")
	}

	effectiveBridge := bridge
	if existingBridge.Valid && existingBridge.String != "" {
		effectiveBridge = existingBridge.String
	}

	_, err := s.db.Exec(`
		UPDATE sessions SET end_time = ?, summary = ?, bridge_content = ?,
			facts_count = ?, changes_count = ?
		WHERE id = ?`,
		endTime.UTC().Format(time.RFC3339), summary, effectiveBridge, factsCount, changesCount, id,
	)
	if err != nil {
		return amerrors.Wrap(amerrors.ErrCodeInternal, err, "close session")
	}
	return nil
}

// GetSession fetches a session by ID.
func (s *Store) GetSession(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRow(`
		SELECT id, project, start_time, end_time, summary, bridge_content, facts_count, changes_count
		FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, amerrors.New(amerrors.ErrCodeNoActiveSession, "session not found: "+id)
	}
	if err != nil {
		return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "get session")
	}
	return sess, nil
}

// MostRecentOpenSession returns the latest session for project with no
// end_time, or nil if none exists. This is the raw candidate for crash
// recovery; the caller applies the age-based grace window.
func (s *Store) MostRecentOpenSession(project string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRow(`
		SELECT id, project, start_time, end_time, summary, bridge_content, facts_count, changes_count
		FROM sessions WHERE project = ? AND end_time IS NULL
		ORDER BY start_time DESC LIMIT 1`, project)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "most recent open session")
	}
	return sess, nil
}

// LatestClosedSession returns the most recently closed session for project
// that has bridge content, the source for "running bridge" continuity.
func (s *Store) LatestClosedSession(project string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRow(`
		SELECT id, project, start_time, end_time, summary, bridge_content, facts_count, changes_count
		FROM sessions
		WHERE project = ? AND end_time IS NOT NULL AND bridge_content IS NOT NULL AND bridge_content != ''
		ORDER BY end_time DESC LIMIT 1`, project)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "latest closed session")
	}
	return sess, nil
}

func scanSession(row *sql.Row) (*Session, error) {
	var sess Session
	var startTime string
	var endTime, summary, bridge sql.NullString
	err := row.Scan(&sess.ID, &sess.Project, &startTime, &endTime, &summary, &bridge, &sess.FactsCount, &sess.ChangesCount)
	if err != nil {
		return nil, err
	}
	sess.StartTime = parseTimestamp(startTime)
	if endTime.Valid {
		t := parseTimestamp(endTime.String)
		sess.EndTime = &t
	}
	sess.Summary = summary.String
	sess.Bridge = bridge.String
	return &sess, nil
}
