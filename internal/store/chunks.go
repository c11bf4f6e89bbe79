package store

import (
	"strconv"

	amerrors "github.com/Aman-CERP/amanmcp-memory/internal/errors"
)

// ReplaceFileChunks deletes every existing chunk row for (project, filePath)
// and inserts chunks in their place, within one transaction. This is the
// reindex unit: a changed file is always replaced wholesale rather than
// diffed chunk-by-chunk (SPEC_FULL.md §4.5). Returns the inserted rowids in
// the same order as chunks, for pairing with vector index inserts.
func (s *Store) ReplaceFileChunks(project, filePath string, fileMtime float64, chunks []*Chunk) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "begin replace chunks tx")
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM file_chunks WHERE project = ? AND file_path = ?`, project, filePath); err != nil {
		return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "delete existing chunks")
	}

	rowIDs := make([]int64, 0, len(chunks))
	stmt, err := tx.Prepare(`
		INSERT INTO file_chunks (project, file_path, file_mtime, section_title, chunk_index, content)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "prepare insert chunk")
	}
	defer stmt.Close()

	for _, c := range chunks {
		res, err := stmt.Exec(project, filePath, fileMtime, c.SectionTitle, c.ChunkIndex, c.Content)
		if err != nil {
			return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "insert chunk")
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "chunk last insert id")
		}
		rowIDs = append(rowIDs, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "commit replace chunks tx")
	}
	return rowIDs, nil
}

// DeleteFileChunks removes every chunk for (project, filePath), used when a
// previously indexed file has been deleted from disk.
func (s *Store) DeleteFileChunks(project, filePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`DELETE FROM file_chunks WHERE project = ? AND file_path = ?`, project, filePath)
	if err != nil {
		return amerrors.Wrap(amerrors.ErrCodeInternal, err, "delete file chunks")
	}
	return nil
}

// ListIndexedFiles returns the distinct (file_path, file_mtime) pairs
// currently indexed for project, letting the reconciler diff against what's
// actually on disk.
func (s *Store) ListIndexedFiles(project string) (map[string]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.Query(`
		SELECT file_path, MAX(file_mtime) FROM file_chunks
		WHERE project = ? GROUP BY file_path`, project)
	if err != nil {
		return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "list indexed files")
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var path string
		var mtime float64
		if err := rows.Scan(&path, &mtime); err != nil {
			return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "scan indexed file")
		}
		out[path] = mtime
	}
	return out, rows.Err()
}

// GetChunksByIDs fetches chunk rows in bulk by their INTEGER PRIMARY KEY ids,
// for hydrating hybrid search results.
func (s *Store) GetChunksByIDs(ids []int64) (map[int64]*Chunk, error) {
	out := make(map[int64]*Chunk, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = strconv.FormatInt(id, 10)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	query, args := buildInClause(`
		SELECT id, project, file_path, file_mtime, section_title, chunk_index, content, rowid
		FROM file_chunks WHERE id IN (%s)`, strIDs)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "get chunks by ids")
	}
	defer rows.Close()

	for rows.Next() {
		var c Chunk
		if err := rows.Scan(&c.ID, &c.Project, &c.FilePath, &c.FileMtime,
			&c.SectionTitle, &c.ChunkIndex, &c.Content, &c.RowID); err != nil {
			return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "scan chunk")
		}
		out[c.ID] = &c
	}
	return out, rows.Err()
}

