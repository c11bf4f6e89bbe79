// Package embed provides the deterministic text-to-vector embedder used by
// the Store's vector index. Per SPEC_FULL.md §4.2 the embedder is a pure
// function of its input, loaded once and cached for process lifetime; there
// is no remote model to download, warm up, or retry against.
package embed

import (
	"context"
	"math"
)

// Dimensions is the fixed embedding width. The spec pins this at 384; it is
// not configurable because the vector index's stored rows are dimensioned
// to it.
const Dimensions = 384

// Embedder maps text to a deterministic 384-float vector.
type Embedder interface {
	// Embed returns the embedding for a single text. Pure with respect to
	// its input: the same text always yields the same vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch embeds a sequence of texts, preserving order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions reports the embedding width.
	Dimensions() int

	// Available reports whether the embedder is ready to serve requests.
	// A static, local embedder is always available once constructed; the
	// method exists so callers never branch on an import error, only on
	// this capability probe (SPEC_FULL.md §9, extension-loading note).
	Available(ctx context.Context) bool
}

// normalizeVector scales v to unit length, returning v unchanged if it is
// the zero vector (all-stopword or empty input).
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	if sumSquares == 0 {
		return v
	}
	magnitude := math.Sqrt(sumSquares)
	out := make([]float32, len(v))
	for i, val := range v {
		out[i] = float32(float64(val) / magnitude)
	}
	return out
}
