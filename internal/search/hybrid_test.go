package search

import (
	"context"
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

func TestSearchFacts_TrivialQueryShortCircuits(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.InsertFact(&store.Fact{Project: "proj", Content: "pnpm is the package manager", Kind: store.KindCommand}))

	s := NewSearcher(st, nil)
	results, err := s.SearchFacts(context.Background(), "pn", "proj", "project", "", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestSearchFacts_LexicalMatch(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.InsertFact(&store.Fact{Project: "proj", Content: "use pnpm for this repository", Kind: store.KindCommand}))
	require.NoError(t, st.InsertFact(&store.Fact{Project: "proj", Content: "unrelated content about testing", Kind: store.KindFact}))

	s := NewSearcher(st, nil)
	results, err := s.SearchFacts(context.Background(), "pnpm", "proj", "project", "", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Contains(t, results[0].Fact.Content, "pnpm")
}

func TestSearchFacts_ScopeAllMarksCrossProject(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.InsertFact(&store.Fact{Project: "other", Content: "deploy with pm2 restart", Kind: store.KindCommand}))

	s := NewSearcher(st, nil)
	results, err := s.SearchFacts(context.Background(), "pm2", "proj", "all", "", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.True(t, results[0].CrossProject)
}

func TestSearchFacts_HeatBoostedOnHit(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.InsertFact(&store.Fact{Project: "proj", Content: "recurring build failure gotcha", Kind: store.KindGotcha, Heat: 0.5}))

	s := NewSearcher(st, nil)
	results, err := s.SearchFacts(context.Background(), "recurring build failure", "proj", "project", "", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	refreshed, err := st.GetFact(results[0].Fact.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, refreshed.Heat, 0.01)
}

func TestSearchFacts_VectorFusionFindsNonLexicalMatch(t *testing.T) {
	st := openTestStore(t)
	emb := embed.NewStaticEmbedder()

	vec, err := emb.Embed(context.Background(), "authentication token refresh cadence")
	require.NoError(t, err)
	require.NoError(t, st.InsertFact(&store.Fact{ID: "f1", Project: "proj", Content: "authentication token refresh cadence", Kind: store.KindFact}))
	require.NoError(t, st.Vectors().Add("facts", "f1", vec))

	s := NewSearcher(st, emb)
	results, err := s.SearchFacts(context.Background(), "refreshing tokens", "proj", "project", "", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
}

func TestSearchChunks_LexicalMatch(t *testing.T) {
	st := openTestStore(t)
	_, err := st.ReplaceFileChunks("proj", "README.md", 100, []*store.Chunk{
		{SectionTitle: "Setup", ChunkIndex: 0, Content: "run make build to compile"},
	})
	require.NoError(t, err)

	s := NewSearcher(st, nil)
	results, err := s.SearchChunks(context.Background(), "make build", "proj", "", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
}

func TestSearchChunks_FileFilter(t *testing.T) {
	st := openTestStore(t)
	_, err := st.ReplaceFileChunks("proj", "docs/guide.md", 100, []*store.Chunk{
		{SectionTitle: "Intro", ChunkIndex: 0, Content: "overview of the deployment pipeline"},
	})
	require.NoError(t, err)

	s := NewSearcher(st, nil)
	results, err := s.SearchChunks(context.Background(), "deployment pipeline", "proj", "*.md", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
}

func TestResolveProjectFilter(t *testing.T) {
	assert.Equal(t, "proj", resolveProjectFilter("proj", ""))
	assert.Equal(t, "proj", resolveProjectFilter("proj", "project"))
	assert.Equal(t, "", resolveProjectFilter("proj", "all"))
	assert.Equal(t, "other", resolveProjectFilter("proj", "other"))
}

func TestApplyDecay_OldFactDecays(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.InsertFact(&store.Fact{
		ID: "old", Project: "proj", Content: "stale decision", Kind: store.KindDecision,
		Heat: 1.0, Timestamp: time.Now().UTC().Add(-40 * 24 * time.Hour),
	}))

	require.NoError(t, ApplyDecay(st, "proj", time.Now().UTC()))

	f, err := st.GetFact("old")
	require.NoError(t, err)
	assert.InDelta(t, 0.70, f.Heat, 0.01)
}
