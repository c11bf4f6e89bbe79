// Package memory implements memory_write and memory_delete: the dedup rule
// over (project, source_file, kind), embedding new/changed fact content
// into the vector index, and deletion of both the row and its vector
// (SPEC_FULL.md §4.1, §6 Tool Surface). The Store already exposes the raw
// CRUD (InsertFact, FindFactBySource, UpdateFactContent); this package owns
// the business decision layered on top, the same split internal/identity
// and internal/session make against internal/store.
package memory

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/Aman-CERP/amanmcp-memory/internal/embed"
	amerrors "github.com/Aman-CERP/amanmcp-memory/internal/errors"
	"github.com/Aman-CERP/amanmcp-memory/internal/i18n"
	"github.com/Aman-CERP/amanmcp-memory/internal/store"
)

// Writer implements memory_write/memory_delete over a Store, embedding
// fact content with Embedder when available.
type Writer struct {
	store    *store.Store
	embedder embed.Embedder
}

// NewWriter builds a Writer. emb may be nil to force lexical-only storage
// (facts are still written; only the vector-index half is skipped).
func NewWriter(st *store.Store, emb embed.Embedder) *Writer {
	return &Writer{store: st, embedder: emb}
}

// Input is one memory_write call's arguments.
type Input struct {
	Project     string
	ProjectPath string
	SessionID   string
	Content     string
	Kind        store.FactKind
	Domain      string
	Tags        string
	SourceFile  string
}

// Write applies the dedup rule: a second write against the same
// (project, source_file, kind) updates the existing fact in place rather
// than inserting a duplicate (SPEC_FULL.md §3 global invariant). Returns
// the "saved"/"updated"/"unchanged" receipt text.
func (w *Writer) Write(ctx context.Context, in Input) (string, error) {
	if err := store.ValidateFactKind(in.Kind); err != nil {
		return "", err
	}
	if strings.TrimSpace(in.Content) == "" {
		return "", amerrors.New(amerrors.ErrCodeInvalidInput, "content must not be empty")
	}

	if in.SourceFile != "" {
		existing, err := w.store.FindFactBySource(in.Project, in.SourceFile, in.Kind)
		if err != nil {
			return "", err
		}
		if existing != nil {
			if existing.Content == in.Content {
				return i18n.T("memory_write.unchanged"), nil
			}
			if err := w.store.UpdateFactContent(existing.ID, in.Content); err != nil {
				return "", err
			}
			w.embed(ctx, existing.ID, in.Content)
			return i18n.T("memory_write.updated"), nil
		}
	}

	f := &store.Fact{
		Project:    in.Project,
		Content:    in.Content,
		Kind:       in.Kind,
		Domain:     in.Domain,
		Tags:       in.Tags,
		SessionID:  in.SessionID,
		SourceFile: in.SourceFile,
	}
	if in.SourceFile != "" {
		if mtime, ok := fileMtime(in.ProjectPath, in.SourceFile); ok {
			f.SourceMtime = &mtime
		}
	}
	if err := w.store.InsertFact(f); err != nil {
		return "", err
	}
	w.embed(ctx, f.ID, in.Content)
	return i18n.T("memory_write.saved"), nil
}

// embed is best-effort: an embedding failure never blocks the write
// (SPEC_FULL.md §5 "Embedding on the write path is best-effort: if it
// raises, the base row is still committed").
func (w *Writer) embed(ctx context.Context, factID, content string) {
	if w.embedder == nil || !w.embedder.Available(ctx) {
		return
	}
	vi := w.store.Vectors()
	if vi == nil {
		return
	}
	vec, err := w.embedder.Embed(ctx, content)
	if err != nil {
		return
	}
	_ = vi.Add("facts", factID, vec)
}

func fileMtime(projectPath, relPath string) (float64, bool) {
	if projectPath == "" {
		return 0, false
	}
	info, err := os.Stat(filepath.Join(projectPath, filepath.FromSlash(relPath)))
	if err != nil {
		return 0, false
	}
	return float64(info.ModTime().UnixNano()) / 1e9, true
}

// Delete removes each fact in ids from both the Store and the facts vector
// index, returning the number actually deleted. Unknown ids are skipped
// rather than erroring, since memory_delete is expected to tolerate a
// caller re-deleting an already-gone id.
func (w *Writer) Delete(ids []string) (int, error) {
	deleted := 0
	for _, id := range ids {
		f, err := w.store.GetFact(id)
		if err != nil {
			continue
		}
		if err := w.store.DeleteFact(id); err != nil {
			return deleted, err
		}
		if vi := w.store.Vectors(); vi != nil {
			_ = vi.Delete("facts", f.ID)
		}
		deleted++
	}
	return deleted, nil
}
