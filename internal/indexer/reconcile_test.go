package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/amanmcp-memory/internal/embed"
	"github.com/Aman-CERP/amanmcp-memory/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestReconcile_IndexesNewFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes.md"), "# Notes\nsome content worth indexing")

	st := openTestStore(t)
	r := NewReconciler(st, embed.NewStaticEmbedder())

	res, err := r.Reconcile(context.Background(), "proj", dir, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, res.FilesIndexed)
	assert.False(t, res.TimedOut)

	indexed, err := st.ListIndexedFiles("proj")
	require.NoError(t, err)
	assert.Contains(t, indexed, "notes.md")
}

func TestReconcile_SkipsUnchangedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes.md"), "# Notes\ncontent")

	st := openTestStore(t)
	r := NewReconciler(st, embed.NewStaticEmbedder())

	_, err := r.Reconcile(context.Background(), "proj", dir, time.Minute)
	require.NoError(t, err)

	res, err := r.Reconcile(context.Background(), "proj", dir, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 0, res.FilesIndexed)
}

func TestReconcile_ReindexesChangedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	writeFile(t, path, "# Notes\noriginal content")

	st := openTestStore(t)
	r := NewReconciler(st, embed.NewStaticEmbedder())

	_, err := r.Reconcile(context.Background(), "proj", dir, time.Minute)
	require.NoError(t, err)

	future := time.Now().Add(5 * time.Second)
	writeFile(t, path, "# Notes\nupdated content that differs")
	require.NoError(t, os.Chtimes(path, future, future))

	res, err := r.Reconcile(context.Background(), "proj", dir, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, res.FilesIndexed)
}

func TestReconcile_RemovesDeletedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	writeFile(t, path, "# Notes\ncontent")

	st := openTestStore(t)
	r := NewReconciler(st, embed.NewStaticEmbedder())

	_, err := r.Reconcile(context.Background(), "proj", dir, time.Minute)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	res, err := r.Reconcile(context.Background(), "proj", dir, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, res.FilesRemoved)

	indexed, err := st.ListIndexedFiles("proj")
	require.NoError(t, err)
	assert.NotContains(t, indexed, "notes.md")
}

func TestReconcile_TimeoutDoesNotDeleteUnreachedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.md"), "# A\nfirst file")
	writeFile(t, filepath.Join(dir, "b.md"), "# B\nsecond file")

	st := openTestStore(t)
	r := NewReconciler(st, embed.NewStaticEmbedder())

	_, err := r.Reconcile(context.Background(), "proj", dir, time.Minute)
	require.NoError(t, err)

	// Budget already elapsed before the bounded loop starts: the per-file
	// work never runs, but the candidate set must still cover every file
	// on disk, not just the ones the loop reached.
	res, err := r.Reconcile(context.Background(), "proj", dir, -1*time.Second)
	require.NoError(t, err)
	assert.True(t, res.TimedOut)
	assert.Equal(t, 0, res.FilesIndexed)
	assert.Equal(t, 0, res.FilesRemoved)

	indexed, err := st.ListIndexedFiles("proj")
	require.NoError(t, err)
	assert.Contains(t, indexed, "a.md")
	assert.Contains(t, indexed, "b.md")
}

func TestReconcile_SkipsBinaryFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "data.json"), "not\x00valid\x00text")

	st := openTestStore(t)
	r := NewReconciler(st, embed.NewStaticEmbedder())

	res, err := r.Reconcile(context.Background(), "proj", dir, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 0, res.FilesIndexed)
}
