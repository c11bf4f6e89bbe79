package store

import (
	"database/sql"
	"time"

	amerrors "github.com/Aman-CERP/amanmcp-memory/internal/errors"
)

// RegisterOrTouchProject inserts a new project row, or if one already
// exists with this name, updates last_session to now (SPEC_FULL.md §4.5,
// grounded in the original's register_project_if_new).
func (s *Store) RegisterOrTouchProject(name, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	var existing string
	err := s.db.QueryRow(`SELECT name FROM projects WHERE name = ?`, name).Scan(&existing)
	if err == sql.ErrNoRows {
		_, err := s.db.Exec(`
			INSERT INTO projects (name, path, created, last_session) VALUES (?, ?, ?, ?)`,
			name, path, now, now,
		)
		if err != nil {
			return amerrors.Wrap(amerrors.ErrCodeInternal, err, "register project")
		}
		return nil
	}
	if err != nil {
		return amerrors.Wrap(amerrors.ErrCodeInternal, err, "lookup project")
	}

	_, err = s.db.Exec(`UPDATE projects SET last_session = ? WHERE name = ?`, now, name)
	if err != nil {
		return amerrors.Wrap(amerrors.ErrCodeInternal, err, "touch project")
	}
	return nil
}

// GetProject fetches a registered project by name.
func (s *Store) GetProject(name string) (*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRow(`
		SELECT name, path, dna_content, dna_updated, created, last_session
		FROM projects WHERE name = ?`, name)

	var p Project
	var dnaContent, dnaUpdated, lastSession sql.NullString
	var created string
	err := row.Scan(&p.Name, &p.Path, &dnaContent, &dnaUpdated, &created, &lastSession)
	if err == sql.ErrNoRows {
		return nil, amerrors.New(amerrors.ErrCodeNoActiveProject, "project not registered: "+name)
	}
	if err != nil {
		return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "get project")
	}
	p.DNAContent = dnaContent.String
	p.Created = parseTimestamp(created)
	if dnaUpdated.Valid {
		t := parseTimestamp(dnaUpdated.String)
		p.DNAUpdated = &t
	}
	if lastSession.Valid {
		t := parseTimestamp(lastSession.String)
		p.LastSession = &t
	}
	return &p, nil
}

// UpdateProjectDNA writes a freshly generated DNA briefing for project and
// stamps dna_updated.
func (s *Store) UpdateProjectDNA(name, dna string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`
		UPDATE projects SET dna_content = ?, dna_updated = ? WHERE name = ?`,
		dna, time.Now().UTC().Format(time.RFC3339), name,
	)
	if err != nil {
		return amerrors.Wrap(amerrors.ErrCodeInternal, err, "update project dna")
	}
	return nil
}
