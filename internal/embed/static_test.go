package embed

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticEmbedder_Deterministic(t *testing.T) {
	e := NewStaticEmbedder()
	ctx := context.Background()

	v1, err := e.Embed(ctx, "Use pnpm for this repo")
	require.NoError(t, err)
	v2, err := e.Embed(ctx, "Use pnpm for this repo")
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Len(t, v1, Dimensions)
}

func TestStaticEmbedder_EmptyInput(t *testing.T) {
	e := NewStaticEmbedder()
	vec, err := e.Embed(context.Background(), "   ")
	require.NoError(t, err)
	assert.Len(t, vec, Dimensions)
	for _, f := range vec {
		assert.Zero(t, f)
	}
}

func TestStaticEmbedder_Normalized(t *testing.T) {
	e := NewStaticEmbedder()
	vec, err := e.Embed(context.Background(), "The billing worker is paused on Fridays")
	require.NoError(t, err)

	var sumSquares float64
	for _, f := range vec {
		sumSquares += float64(f) * float64(f)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sumSquares), 1e-4)
}

func TestStaticEmbedder_SimilarTextsCloser(t *testing.T) {
	e := NewStaticEmbedder()
	ctx := context.Background()

	a, _ := e.Embed(ctx, "The billing worker is paused on Fridays")
	b, _ := e.Embed(ctx, "Billing worker paused every Friday")
	c, _ := e.Embed(ctx, "Completely unrelated text about weather forecasts")

	simAB := cosine(a, b)
	simAC := cosine(a, c)
	assert.Greater(t, simAB, simAC)
}

func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

func TestStaticEmbedder_BatchMatchesSingle(t *testing.T) {
	e := NewStaticEmbedder()
	ctx := context.Background()
	texts := []string{"alpha", "beta", "gamma"}

	batch, err := e.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	require.Len(t, batch, 3)

	for i, text := range texts {
		single, err := e.Embed(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, single, batch[i])
	}
}

func TestStaticEmbedder_ClosedRejectsCalls(t *testing.T) {
	e := NewStaticEmbedder()
	require.NoError(t, e.Close())

	_, err := e.Embed(context.Background(), "x")
	assert.Error(t, err)
	assert.False(t, e.Available(context.Background()))
}

func TestCachedEmbedder_CacheHit(t *testing.T) {
	inner := NewStaticEmbedder()
	cached := NewCachedEmbedder(inner, 10)
	ctx := context.Background()

	v1, err := cached.Embed(ctx, "repeat me")
	require.NoError(t, err)
	v2, err := cached.Embed(ctx, "repeat me")
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
}

func TestCachedEmbedder_BatchMixedCache(t *testing.T) {
	inner := NewStaticEmbedder()
	cached := NewCachedEmbedder(inner, 10)
	ctx := context.Background()

	_, err := cached.Embed(ctx, "already-cached")
	require.NoError(t, err)

	results, err := cached.EmbedBatch(ctx, []string{"already-cached", "fresh-one"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Len(t, results[0], Dimensions)
	assert.Len(t, results[1], Dimensions)
}

func TestGet_SingletonStable(t *testing.T) {
	resetForTest()
	defer resetForTest()

	a := Get()
	b := Get()
	assert.Same(t, a, b)
	assert.True(t, a.Available(context.Background()))
}
