package indexer

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Aman-CERP/amanmcp-memory/internal/chunk"
	"github.com/Aman-CERP/amanmcp-memory/internal/embed"
	"github.com/Aman-CERP/amanmcp-memory/internal/store"
)

// mtimeTolerance is how close two mtimes have to be to count as
// "unchanged" — filesystem mtime resolution on some platforms is coarser
// than a second, so an exact comparison would cause spurious reindexing.
const mtimeTolerance = 1.0 // seconds

// Reconciler keeps one project's file_chunks rows in sync with its files on
// disk (SPEC_FULL.md §4.3).
type Reconciler struct {
	store    *store.Store
	embedder embed.Embedder
}

// NewReconciler builds a Reconciler over st, embedding new chunks with emb.
func NewReconciler(st *store.Store, emb embed.Embedder) *Reconciler {
	return &Reconciler{store: st, embedder: emb}
}

// Result summarizes one reconciliation pass.
type Result struct {
	FilesIndexed int
	FilesRemoved int
	TimedOut     bool
}

// Reconcile scans projectPath, reindexes any file whose content changed
// (or is new) since the last pass, and deletes chunk rows for files no
// longer on disk. It stops early once budget elapses, mirroring
// reindex_project's time_budget loop — a large project is covered over
// several calls rather than blocking one session_start indefinitely.
func (r *Reconciler) Reconcile(ctx context.Context, project, projectPath string, budget time.Duration) (Result, error) {
	start := time.Now()
	var res Result

	indexed, err := r.store.ListIndexedFiles(project)
	if err != nil {
		return res, err
	}

	files, err := ScanProjectFiles(projectPath)
	if err != nil {
		return res, err
	}

	onDisk := make(map[string]struct{}, len(files))
	for _, rel := range files {
		onDisk[rel] = struct{}{}
	}

	for _, rel := range files {
		if time.Since(start) > budget {
			res.TimedOut = true
			break
		}

		absPath := filepath.Join(projectPath, filepath.FromSlash(rel))
		info, err := os.Stat(absPath)
		if err != nil {
			continue
		}
		currentMtime := mtimeSeconds(info)

		if existingMtime, ok := indexed[rel]; ok {
			if abs(existingMtime-currentMtime) < mtimeTolerance {
				continue
			}
		}

		content, err := os.ReadFile(absPath)
		if err != nil {
			continue
		}
		if !isLikelyText(content) {
			continue
		}

		chunks := chunk.ChunkFile(string(content), rel)
		if len(chunks) == 0 {
			continue
		}

		storeChunks := make([]*store.Chunk, len(chunks))
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			storeChunks[i] = &store.Chunk{
				SectionTitle: c.SectionTitle,
				ChunkIndex:   c.ChunkIndex,
				Content:      c.Content,
			}
			if c.SectionTitle != "" {
				texts[i] = c.SectionTitle + ": " + c.Content
			} else {
				texts[i] = c.Content
			}
		}

		rowIDs, err := r.store.ReplaceFileChunks(project, rel, currentMtime, storeChunks)
		if err != nil {
			continue
		}

		if r.embedder != nil && r.embedder.Available(ctx) {
			vectors, err := r.embedder.EmbedBatch(ctx, texts)
			if err == nil {
				vi := r.store.Vectors()
				if vi != nil {
					for i, id := range rowIDs {
						_ = vi.Add("chunks", chunkVectorKey(project, id), vectors[i])
					}
				}
			}
		}

		res.FilesIndexed++
	}

	for path := range indexed {
		if _, stillThere := onDisk[path]; !stillThere {
			if err := r.store.DeleteFileChunks(project, path); err == nil {
				res.FilesRemoved++
			}
		}
	}

	return res, nil
}

// chunkVectorKey is the vector index ID a chunk row is stored under: a
// project-qualified rowid so chunks from different projects never collide
// in the shared HNSW graph.
func chunkVectorKey(project string, rowID int64) string {
	return project + "#" + strconv.FormatInt(rowID, 10)
}

func mtimeSeconds(info os.FileInfo) float64 {
	return float64(info.ModTime().UnixNano()) / 1e9
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// isLikelyText rejects files containing a NUL byte in their first 8KB, a
// cheap binary sniff so a stray non-UTF8 file doesn't get chunked as text.
func isLikelyText(content []byte) bool {
	n := len(content)
	if n > 8192 {
		n = 8192
	}
	for i := 0; i < n; i++ {
		if content[i] == 0 {
			return false
		}
	}
	return true
}
