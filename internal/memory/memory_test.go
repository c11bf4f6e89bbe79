package memory

import (
	"context"
	"testing"

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

func TestWrite_InsertsNewFact(t *testing.T) {
	w := NewWriter(openTestStore(t), nil)
	msg, err := w.Write(context.Background(), Input{
		Project: "proj", Content: "use pnpm", Kind: store.KindFact,
	})
	require.NoError(t, err)
	assert.Equal(t, "Saved.", msg)
}

func TestWrite_RejectsUnknownKind(t *testing.T) {
	w := NewWriter(openTestStore(t), nil)
	_, err := w.Write(context.Background(), Input{
		Project: "proj", Content: "x", Kind: store.FactKind("not-a-kind"),
	})
	require.Error(t, err)
}

func TestWrite_RejectsEmptyContent(t *testing.T) {
	w := NewWriter(openTestStore(t), nil)
	_, err := w.Write(context.Background(), Input{Project: "proj", Content: "  ", Kind: store.KindFact})
	require.Error(t, err)
}

func TestWrite_DedupBySourceFile(t *testing.T) {
	st := openTestStore(t)
	w := NewWriter(st, nil)

	msg, err := w.Write(context.Background(), Input{
		Project: "proj", Content: "v1", Kind: store.KindPattern, SourceFile: "README.md",
	})
	require.NoError(t, err)
	assert.Equal(t, "Saved.", msg)

	msg, err = w.Write(context.Background(), Input{
		Project: "proj", Content: "v1", Kind: store.KindPattern, SourceFile: "README.md",
	})
	require.NoError(t, err)
	assert.Equal(t, "No change — content matches the existing fact.", msg)

	msg, err = w.Write(context.Background(), Input{
		Project: "proj", Content: "v2", Kind: store.KindPattern, SourceFile: "README.md",
	})
	require.NoError(t, err)
	assert.Equal(t, "Updated existing fact.", msg)

	f, err := st.FindFactBySource("proj", "README.md", store.KindPattern)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "v2", f.Content)
	assert.Equal(t, store.HeatCeil, f.Heat)
}

func TestWrite_EmbedsFactWhenEmbedderAvailable(t *testing.T) {
	st := openTestStore(t)
	w := NewWriter(st, embed.NewStaticEmbedder())
	_, err := w.Write(context.Background(), Input{Project: "proj", Content: "hybrid search", Kind: store.KindFact})
	require.NoError(t, err)
	assert.Equal(t, 1, st.Vectors().Count("facts"))
}

func TestDelete_RemovesRowAndVector(t *testing.T) {
	st := openTestStore(t)
	w := NewWriter(st, embed.NewStaticEmbedder())
	_, err := w.Write(context.Background(), Input{Project: "proj", Content: "ephemeral", Kind: store.KindFact})
	require.NoError(t, err)

	facts, err := st.ListFactsByProject("proj")
	require.NoError(t, err)
	require.Len(t, facts, 1)

	n, err := w.Delete([]string{facts[0].ID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 0, st.Vectors().Count("facts"))
}

func TestDelete_SkipsUnknownIDs(t *testing.T) {
	w := NewWriter(openTestStore(t), nil)
	n, err := w.Delete([]string{"does-not-exist"})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
