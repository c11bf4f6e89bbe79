package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/amanmcp-memory/internal/embed"
	"github.com/Aman-CERP/amanmcp-memory/internal/indexer"
	"github.com/Aman-CERP/amanmcp-memory/internal/store"
)

func TestWatcher_ReconcilesOnFileCreate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# hello\n"), 0o644))

	st, err := store.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	rec := indexer.NewReconciler(st, embed.NewStaticEmbedder())
	w := New(rec, 30*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, "proj", dir, time.Second) }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.md"), []byte("# new\n"), 0o644))

	<-done

	files, err := st.ListIndexedFiles("proj")
	require.NoError(t, err)
	require.NotEmpty(t, files)
}
