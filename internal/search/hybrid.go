// Package search implements the hybrid lexical+vector ranker exposed as
// memory_search and file_search (SPEC_FULL.md §4.4): heat decay before the
// fetch, a five-step lexical/vector pipeline, and post-retrieval staleness
// and heat annotations.
package search

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/amanmcp-memory/internal/embed"
	"github.com/Aman-CERP/amanmcp-memory/internal/store"
)

// Fusion weights and fetch multipliers are a pinned part of the observable
// contract (SPEC_FULL.md §4.4, §9), not configuration.
const (
	LexWeight             = 0.4
	VecWeight             = 0.6
	vectorFetchMultiplier = 3
	vectorScoreSpread     = 1.2
	trivialQueryChars     = 3

	// minScoreDenom floors the vector-score denominator so an exact match
	// (maxDistance == 0 across all candidates) scores 1.0 instead of being
	// skipped as if it had no vector relevance at all.
	minScoreDenom = 0.001
)

// FactResult is one ranked memory_search hit.
type FactResult struct {
	Fact         *store.Fact
	Score        float64
	Stale        string
	CrossProject bool
}

// ChunkResult is one ranked file_search hit.
type ChunkResult struct {
	Chunk *store.Chunk
	Score float64
}

// Searcher runs the hybrid pipeline over a Store, embedding queries with
// Embedder when available and falling back to lexical-only ranking when it
// isn't (SPEC_FULL.md's degraded-mode design).
type Searcher struct {
	store    *store.Store
	embedder embed.Embedder
}

// NewSearcher builds a Searcher over st, embedding queries with emb. emb
// may be nil to force lexical-only search.
func NewSearcher(st *store.Store, emb embed.Embedder) *Searcher {
	return &Searcher{store: st, embedder: emb}
}

// resolveProjectFilter maps memory_search's scope parameter to a Store
// project filter: "" or "project" restricts to the caller's active
// project, "all" removes the filter, anything else names an explicit
// project.
func resolveProjectFilter(currentProject, scope string) string {
	switch scope {
	case "", "project":
		return currentProject
	case "all":
		return ""
	default:
		return scope
	}
}

// trimQuery strips quotes and wildcard characters the way the trivial-query
// check measures length (SPEC_FULL.md §4.4 step 1).
func trimQuery(q string) string {
	q = strings.TrimSpace(q)
	return strings.Trim(q, `"'*?`)
}

// SearchFacts runs the full memory_search pipeline: decay sweep, trivial
// short-circuit or hybrid rank, then staleness/heat annotation on the
// returned window.
func (s *Searcher) SearchFacts(ctx context.Context, query, currentProject, scope string, kind store.FactKind, limit int) ([]FactResult, error) {
	if limit <= 0 {
		limit = 5
	}
	now := time.Now().UTC()
	if currentProject != "" {
		_ = ApplyDecay(s.store, currentProject, now)
	}

	projectFilter := resolveProjectFilter(currentProject, scope)
	trimmed := trimQuery(query)

	var results []FactResult
	var err error
	if len(trimmed) < trivialQueryChars {
		results, err = s.trivialFacts(projectFilter, kind, limit)
	} else {
		results, err = s.hybridFacts(ctx, trimmed, projectFilter, kind, limit)
	}
	if err != nil {
		return nil, err
	}

	s.annotateFacts(results, currentProject, scope, now)
	return results, nil
}

func (s *Searcher) trivialFacts(projectFilter string, kind store.FactKind, limit int) ([]FactResult, error) {
	hits, err := s.store.SearchFactsLexical("", projectFilter, kind, limit)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Fact.Heat != hits[j].Fact.Heat {
			return hits[i].Fact.Heat > hits[j].Fact.Heat
		}
		return hits[i].Fact.Timestamp.After(hits[j].Fact.Timestamp)
	})
	out := make([]FactResult, len(hits))
	for i, h := range hits {
		out[i] = FactResult{Fact: h.Fact, Score: 1.0}
	}
	return out, nil
}

type factCandidate struct {
	fact    *store.Fact
	lexPos  int
	hasVec  bool
	vecDist float32
}

func (s *Searcher) hybridFacts(ctx context.Context, query, projectFilter string, kind store.FactKind, limit int) ([]FactResult, error) {
	fetchLimit := limit
	vectorFusion := s.embedder != nil && s.embedder.Available(ctx) && s.store.Vectors() != nil
	if vectorFusion {
		fetchLimit = limit * vectorFetchMultiplier
	}

	var lexHits []store.FactHit
	var lexErr error
	var vecResults []store.VectorResult
	var vecErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lexHits, lexErr = s.store.SearchFactsLexical(query, projectFilter, kind, fetchLimit)
		return nil
	})
	g.Go(func() error {
		if !vectorFusion {
			return nil
		}
		vec, err := s.embedder.Embed(gctx, query)
		if err != nil {
			vecErr = err
			return nil
		}
		vecResults, vecErr = s.store.Vectors().Search("facts", vec, fetchLimit)
		return nil
	})
	_ = g.Wait()
	if lexErr != nil {
		return nil, lexErr
	}

	candidates := make(map[string]*factCandidate, len(lexHits))
	n := len(lexHits)
	for i, h := range lexHits {
		candidates[h.Fact.ID] = &factCandidate{fact: h.Fact, lexPos: i}
	}

	var maxDistance float32
	if vecErr == nil && len(vecResults) > 0 {
		ids := make([]string, len(vecResults))
		for i, vr := range vecResults {
			ids[i] = vr.ID
			if vr.Distance > maxDistance {
				maxDistance = vr.Distance
			}
		}
		hydrated, err := s.store.GetFactsByIDs(ids)
		if err == nil {
			for _, vr := range vecResults {
				f, ok := hydrated[vr.ID]
				if !ok {
					continue
				}
				if projectFilter != "" && f.Project != projectFilter {
					continue
				}
				if kind != "" && f.Kind != kind {
					continue
				}
				if c, exists := candidates[f.ID]; exists {
					c.hasVec = true
					c.vecDist = vr.Distance
				} else {
					candidates[f.ID] = &factCandidate{fact: f, lexPos: -1, hasVec: true, vecDist: vr.Distance}
				}
			}
		}
	}

	results := make([]FactResult, 0, len(candidates))
	for _, c := range candidates {
		var lexScore, vecScore float64
		if c.lexPos >= 0 {
			lexScore = 1 - float64(c.lexPos)/float64(maxInt(n, 1))
		}
		if c.hasVec {
			denom := vectorScoreSpread * float64(maxDistance)
			if denom < minScoreDenom {
				denom = minScoreDenom
			}
			vecScore = 1 - float64(c.vecDist)/denom
		}
		results = append(results, FactResult{
			Fact:  c.fact,
			Score: LexWeight*lexScore + VecWeight*vecScore,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Fact.Timestamp.After(results[j].Fact.Timestamp)
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// annotateFacts applies the post-retrieval staleness tag, cross-project
// marker, and heat boost to the returned window (SPEC_FULL.md §4.4).
func (s *Searcher) annotateFacts(results []FactResult, currentProject, scope string, now time.Time) {
	roots := make(map[string]string)
	for i := range results {
		f := results[i].Fact
		root, ok := roots[f.Project]
		if !ok {
			if p, err := s.store.GetProject(f.Project); err == nil {
				root = p.Path
			}
			roots[f.Project] = root
		}
		results[i].Stale = Tag(f, root)
		results[i].CrossProject = scope == "all" && f.Project != currentProject
		_ = Boost(s.store, f.ID, f.Heat, now)
	}
}

// SearchChunks runs the file_search pipeline: no heat/staleness annotation,
// since chunks carry no heat of their own.
func (s *Searcher) SearchChunks(ctx context.Context, query, project, fileFilter string, limit int) ([]ChunkResult, error) {
	if limit <= 0 {
		limit = 5
	}
	trimmed := trimQuery(query)
	if len(trimmed) < trivialQueryChars {
		hits, err := s.store.SearchChunksLexical("", project, fileFilter, limit)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].Chunk.ID > hits[j].Chunk.ID })
		out := make([]ChunkResult, len(hits))
		for i, h := range hits {
			out[i] = ChunkResult{Chunk: h.Chunk, Score: 1.0}
		}
		return out, nil
	}
	return s.hybridChunks(ctx, trimmed, project, fileFilter, limit)
}

type chunkCandidate struct {
	chunk   *store.Chunk
	lexPos  int
	hasVec  bool
	vecDist float32
}

func (s *Searcher) hybridChunks(ctx context.Context, query, project, fileFilter string, limit int) ([]ChunkResult, error) {
	fetchLimit := limit
	vectorFusion := s.embedder != nil && s.embedder.Available(ctx) && s.store.Vectors() != nil
	if vectorFusion {
		fetchLimit = limit * vectorFetchMultiplier
	}

	var lexHits []store.ChunkHit
	var lexErr error
	var vecResults []store.VectorResult
	var vecErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lexHits, lexErr = s.store.SearchChunksLexical(query, project, fileFilter, fetchLimit)
		return nil
	})
	g.Go(func() error {
		if !vectorFusion {
			return nil
		}
		vec, err := s.embedder.Embed(gctx, query)
		if err != nil {
			vecErr = err
			return nil
		}
		vecResults, vecErr = s.store.Vectors().Search("chunks", vec, fetchLimit)
		return nil
	})
	_ = g.Wait()
	if lexErr != nil {
		return nil, lexErr
	}

	candidates := make(map[int64]*chunkCandidate, len(lexHits))
	n := len(lexHits)
	for i, h := range lexHits {
		candidates[h.Chunk.ID] = &chunkCandidate{chunk: h.Chunk, lexPos: i}
	}

	var maxDistance float32
	if vecErr == nil && len(vecResults) > 0 {
		ids := make([]int64, 0, len(vecResults))
		distByID := make(map[int64]float32, len(vecResults))
		for _, vr := range vecResults {
			rowID, ok := parseChunkVectorKey(vr.ID)
			if !ok {
				continue
			}
			ids = append(ids, rowID)
			distByID[rowID] = vr.Distance
			if vr.Distance > maxDistance {
				maxDistance = vr.Distance
			}
		}
		hydrated, err := s.store.GetChunksByIDs(ids)
		if err == nil {
			for id, c := range hydrated {
				if project != "" && c.Project != project {
					continue
				}
				if !matchFileFilter(c.FilePath, fileFilter) {
					continue
				}
				if existing, ok := candidates[id]; ok {
					existing.hasVec = true
					existing.vecDist = distByID[id]
				} else {
					candidates[id] = &chunkCandidate{chunk: c, lexPos: -1, hasVec: true, vecDist: distByID[id]}
				}
			}
		}
	}

	results := make([]ChunkResult, 0, len(candidates))
	for _, c := range candidates {
		var lexScore, vecScore float64
		if c.lexPos >= 0 {
			lexScore = 1 - float64(c.lexPos)/float64(maxInt(n, 1))
		}
		if c.hasVec {
			denom := vectorScoreSpread * float64(maxDistance)
			if denom < minScoreDenom {
				denom = minScoreDenom
			}
			vecScore = 1 - float64(c.vecDist)/denom
		}
		results = append(results, ChunkResult{
			Chunk: c.chunk,
			Score: LexWeight*lexScore + VecWeight*vecScore,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ID > results[j].Chunk.ID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// parseChunkVectorKey splits the indexer's "project#rowid" vector key back
// into the raw file_chunks row id.
func parseChunkVectorKey(key string) (int64, bool) {
	idx := strings.LastIndex(key, "#")
	if idx < 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(key[idx+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func matchFileFilter(path, filter string) bool {
	if filter == "" {
		return true
	}
	pattern := strings.ReplaceAll(filter, "*", "")
	if pattern == "" {
		return true
	}
	return strings.Contains(path, pattern)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
