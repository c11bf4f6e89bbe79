package store

import (
	"database/sql"
	"strings"

	amerrors "github.com/Aman-CERP/amanmcp-memory/internal/errors"
)

// escapeFTSQuery doubles embedded double quotes (grounded in
// fts_search.py's query.replace('"', '""')). The query is not wrapped in
// quotes, so FTS5 operators in user text keep their meaning; a query that
// FTS5 rejects as a syntax error makes the caller fall back to the LIKE scan.
func escapeFTSQuery(q string) string {
	return strings.ReplaceAll(q, `"`, `""`)
}

// FactHit is one lexical match against facts, carrying its rank position
// (0-based) for the hybrid ranker's position-based lexical score.
type FactHit struct {
	Fact     *Fact
	Position int
}

// SearchFactsLexical runs an FTS5 MATCH query over facts, falling back to a
// LIKE scan if the FTS5 query syntax is rejected (malformed operators,
// unbalanced quotes) or if FTS5 isn't available in this build. project=""
// and kind="" are treated as "no filter".
func (s *Store) SearchFactsLexical(query, project string, kind FactKind, limit int) ([]FactHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var conds []string
	var args []interface{}
	if project != "" {
		conds = append(conds, "f.project = ?")
		args = append(args, project)
	}
	if kind != "" {
		conds = append(conds, "f.type = ?")
		args = append(args, string(kind))
	}
	where := ""
	if len(conds) > 0 {
		where = "AND " + strings.Join(conds, " AND ")
	}

	if s.ftsEnabled {
		sqlText := `
			SELECT f.id, f.project, f.content, f.type, f.domain, f.tags, f.timestamp,
				f.heat_score, f.last_accessed, f.session_id, f.source_file, f.source_mtime, f.rowid
			FROM facts f
			JOIN facts_fts fts ON f.rowid = fts.rowid
			WHERE facts_fts MATCH ? ` + where + `
			ORDER BY rank LIMIT ?`
		ftsArgs := append([]interface{}{escapeFTSQuery(query)}, args...)
		ftsArgs = append(ftsArgs, limit)
		rows, err := s.db.Query(sqlText, ftsArgs...)
		if err == nil {
			defer rows.Close()
			facts, scanErr := scanFacts(rows)
			if scanErr != nil {
				return nil, scanErr
			}
			return toHits(facts), nil
		}
		// fall through to LIKE on FTS5 query-syntax errors
	}

	likeWhere := strings.ReplaceAll(where, "f.", "")
	sqlText := `
		SELECT id, project, content, type, domain, tags, timestamp, heat_score,
			last_accessed, session_id, source_file, source_mtime, rowid
		FROM facts WHERE content LIKE ? ` + likeWhere + `
		ORDER BY heat_score DESC LIMIT ?`
	likeArgs := append([]interface{}{"%" + query + "%"}, args...)
	likeArgs = append(likeArgs, limit)
	rows, err := s.db.Query(sqlText, likeArgs...)
	if err != nil {
		return nil, amerrors.Wrap(amerrors.ErrCodeSearchFailed, err, "lexical fact search")
	}
	defer rows.Close()
	facts, err := scanFacts(rows)
	if err != nil {
		return nil, err
	}
	return toHits(facts), nil
}

func toHits(facts []*Fact) []FactHit {
	hits := make([]FactHit, len(facts))
	for i, f := range facts {
		hits[i] = FactHit{Fact: f, Position: i}
	}
	return hits
}

// ChunkHit is one lexical match against file_chunks, with its rank position.
type ChunkHit struct {
	Chunk    *Chunk
	Position int
}

// SearchChunksLexical mirrors SearchFactsLexical for file_chunks. fileFilter
// is a "*"-glob-ish substring filter matching the original's LIKE pattern
// construction, not a full glob.
func (s *Store) SearchChunksLexical(query, project, fileFilter string, limit int) ([]ChunkHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var conds []string
	var args []interface{}
	if project != "" {
		conds = append(conds, "fc.project = ?")
		args = append(args, project)
	}
	if fileFilter != "" {
		conds = append(conds, "fc.file_path LIKE ?")
		args = append(args, "%"+strings.ReplaceAll(fileFilter, "*", "%")+"%")
	}
	where := ""
	if len(conds) > 0 {
		where = "AND " + strings.Join(conds, " AND ")
	}

	if s.ftsEnabled {
		sqlText := `
			SELECT fc.id, fc.project, fc.file_path, fc.section_title, fc.chunk_index,
				fc.content, fc.file_mtime, fc.rowid
			FROM file_chunks fc
			JOIN chunks_fts cfts ON fc.rowid = cfts.rowid
			WHERE chunks_fts MATCH ? ` + where + `
			ORDER BY rank LIMIT ?`
		ftsArgs := append([]interface{}{escapeFTSQuery(query)}, args...)
		ftsArgs = append(ftsArgs, limit)
		rows, err := s.db.Query(sqlText, ftsArgs...)
		if err == nil {
			defer rows.Close()
			chunks, scanErr := scanChunkRows(rows)
			if scanErr != nil {
				return nil, scanErr
			}
			return toChunkHits(chunks), nil
		}
	}

	likeWhere := strings.ReplaceAll(where, "fc.", "")
	sqlText := `
		SELECT id, project, file_path, section_title, chunk_index, content, file_mtime, rowid
		FROM file_chunks WHERE content LIKE ? ` + likeWhere + `
		ORDER BY id LIMIT ?`
	likeArgs := append([]interface{}{"%" + query + "%"}, args...)
	likeArgs = append(likeArgs, limit)
	rows, err := s.db.Query(sqlText, likeArgs...)
	if err != nil {
		return nil, amerrors.Wrap(amerrors.ErrCodeSearchFailed, err, "lexical chunk search")
	}
	defer rows.Close()
	chunks, err := scanChunkRows(rows)
	if err != nil {
		return nil, err
	}
	return toChunkHits(chunks), nil
}

func toChunkHits(chunks []*Chunk) []ChunkHit {
	hits := make([]ChunkHit, len(chunks))
	for i, c := range chunks {
		hits[i] = ChunkHit{Chunk: c, Position: i}
	}
	return hits
}

func scanChunkRows(rows *sql.Rows) ([]*Chunk, error) {
	var out []*Chunk
	for rows.Next() {
		var c Chunk
		if err := rows.Scan(&c.ID, &c.Project, &c.FilePath, &c.SectionTitle,
			&c.ChunkIndex, &c.Content, &c.FileMtime, &c.RowID); err != nil {
			return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "scan chunk hit")
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
