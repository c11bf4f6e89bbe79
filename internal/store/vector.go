package store

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/coder/hnsw"

	amerrors "github.com/Aman-CERP/amanmcp-memory/internal/errors"
	"github.com/Aman-CERP/amanmcp-memory/internal/embed"
)

// VectorResult is one nearest-neighbor hit, keyed by the caller's ID —
// a fact UUID or a "project#rowid" chunk key.
type VectorResult struct {
	ID       string
	Distance float32
	Score    float32
}

// ErrDimensionMismatch reports a vector of the wrong width reaching the
// index. The embedder is fixed-dimension (SPEC_FULL.md §4.2), so this only
// fires against a corrupt or foreign caller.
type ErrDimensionMismatch struct {
	Expected int
	Got      int
}

func (e ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Got)
}

// namespaceGraph is one HNSW graph plus its string-ID mapping. VectorIndex
// keeps one for facts and one for chunks so a fact and a chunk can reuse
// the same rowid space without colliding.
type namespaceGraph struct {
	graph   *hnsw.Graph[uint64]
	idMap   map[string]uint64
	keyMap  map[uint64]string
	nextKey uint64
}

func newNamespaceGraph() *namespaceGraph {
	g := hnsw.NewGraph[uint64]()
	g.Distance = hnsw.CosineDistance
	g.M = 32
	g.Ml = 0.25
	g.EfSearch = 64
	return &namespaceGraph{
		graph:  g,
		idMap:  make(map[string]uint64),
		keyMap: make(map[uint64]string),
	}
}

// VectorIndex is the approximate-nearest-neighbor half of the store's
// search capability (SPEC_FULL.md §4.1, §4.4), covering both facts and
// chunks in one on-disk file plus its path+".meta" companion. Backed by coder/hnsw, a pure-Go HNSW
// implementation, so the module never needs CGO.
type VectorIndex struct {
	mu         sync.RWMutex
	path       string
	facts      *namespaceGraph
	chunks     *namespaceGraph
	dimensions int
	closed     bool
}

// vectorIndexMeta is the gob-persisted half of VectorIndex: everything the
// graph Export/Import pair doesn't already carry.
type vectorIndexMeta struct {
	Dimensions    int
	FactsIDMap    map[string]uint64
	FactsNextKey  uint64
	ChunksIDMap   map[string]uint64
	ChunksNextKey uint64
}

// OpenVectorIndex loads path (and path+".meta") if present, else starts an
// empty index. An empty path returns an in-memory-only index, used by
// tests. A load failure is non-fatal: the caller falls back to an empty
// index and lexical-only search, per SPEC_FULL.md's degraded-mode design.
func OpenVectorIndex(path string) (*VectorIndex, error) {
	vi := &VectorIndex{
		path:       path,
		facts:      newNamespaceGraph(),
		chunks:     newNamespaceGraph(),
		dimensions: embed.Dimensions,
	}
	if path == "" {
		return vi, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return vi, nil
	}
	if err := vi.load(); err != nil {
		return vi, err
	}
	return vi, nil
}

func (v *VectorIndex) graphFor(namespace string) (*namespaceGraph, error) {
	switch namespace {
	case "facts":
		return v.facts, nil
	case "chunks":
		return v.chunks, nil
	default:
		return nil, fmt.Errorf("unknown vector namespace %q", namespace)
	}
}

// Add inserts or replaces the vector for id within namespace ("facts" or
// "chunks"). Replacing an existing id orphans its old graph node rather
// than deleting it — coder/hnsw's Delete can corrupt the graph when the
// removed node was the entry point, so lazy deletion is the safer default.
func (v *VectorIndex) Add(namespace, id string, vector []float32) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return amerrors.New(amerrors.ErrCodeInternal, "vector index closed")
	}
	if len(vector) != v.dimensions {
		return ErrDimensionMismatch{Expected: v.dimensions, Got: len(vector)}
	}
	ng, err := v.graphFor(namespace)
	if err != nil {
		return err
	}

	if existingKey, ok := ng.idMap[id]; ok {
		delete(ng.keyMap, existingKey)
		delete(ng.idMap, id)
	}

	vec := make([]float32, len(vector))
	copy(vec, vector)
	normalizeVectorInPlace(vec)

	key := ng.nextKey
	ng.nextKey++
	ng.graph.Add(hnsw.MakeNode(key, vec))
	ng.idMap[id] = key
	ng.keyMap[key] = id
	return nil
}

// Delete removes id from namespace by orphaning its mapping.
func (v *VectorIndex) Delete(namespace, id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return amerrors.New(amerrors.ErrCodeInternal, "vector index closed")
	}
	ng, err := v.graphFor(namespace)
	if err != nil {
		return err
	}
	if key, ok := ng.idMap[id]; ok {
		delete(ng.keyMap, key)
		delete(ng.idMap, id)
	}
	return nil
}

// Search returns up to k nearest neighbors to query within namespace,
// cosine distance converted to a [0,1] similarity score.
func (v *VectorIndex) Search(namespace string, query []float32, k int) ([]VectorResult, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.closed {
		return nil, amerrors.New(amerrors.ErrCodeInternal, "vector index closed")
	}
	if len(query) != v.dimensions {
		return nil, ErrDimensionMismatch{Expected: v.dimensions, Got: len(query)}
	}
	ng, err := v.graphFor(namespace)
	if err != nil {
		return nil, err
	}
	if ng.graph.Len() == 0 || k <= 0 {
		return []VectorResult{}, nil
	}

	q := make([]float32, len(query))
	copy(q, query)
	normalizeVectorInPlace(q)

	// Over-fetch to absorb orphaned (lazily deleted) nodes the graph still
	// returns, then trim to k live results.
	fetch := k * 3
	if fetch < k+8 {
		fetch = k + 8
	}
	nodes := ng.graph.Search(q, fetch)

	results := make([]VectorResult, 0, k)
	for _, node := range nodes {
		id, ok := ng.keyMap[node.Key]
		if !ok {
			continue
		}
		distance := ng.graph.Distance(q, node.Value)
		results = append(results, VectorResult{
			ID:       id,
			Distance: distance,
			Score:    1.0 - distance/2.0,
		})
		if len(results) == k {
			break
		}
	}
	return results, nil
}

// Count returns the number of live (non-orphaned) vectors in namespace.
func (v *VectorIndex) Count(namespace string) int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	ng, err := v.graphFor(namespace)
	if err != nil {
		return 0
	}
	return len(ng.idMap)
}

// Save persists the index to v.path using an atomic temp-file-plus-rename
// write. A no-op when the index is in-memory only (empty path).
func (v *VectorIndex) Save() error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.path == "" {
		return nil
	}

	dir := filepath.Dir(v.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create vector index directory: %w", err)
	}

	tmpPath := v.path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp vector file: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := v.facts.graph.Export(w); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("export facts graph: %w", err)
	}
	if err := v.chunks.graph.Export(w); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("export chunks graph: %w", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("flush vector file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp vector file: %w", err)
	}
	if err := os.Rename(tmpPath, v.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename vector file: %w", err)
	}

	return v.saveMeta()
}

func (v *VectorIndex) saveMeta() error {
	metaPath := v.path + ".meta"
	tmpPath := metaPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp meta file: %w", err)
	}
	meta := vectorIndexMeta{
		Dimensions:    v.dimensions,
		FactsIDMap:    v.facts.idMap,
		FactsNextKey:  v.facts.nextKey,
		ChunksIDMap:   v.chunks.idMap,
		ChunksNextKey: v.chunks.nextKey,
	}
	if err := gob.NewEncoder(f).Encode(meta); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode meta: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close meta file: %w", err)
	}
	return os.Rename(tmpPath, metaPath)
}

func (v *VectorIndex) load() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	metaFile, err := os.Open(v.path + ".meta")
	if err != nil {
		return fmt.Errorf("open meta file: %w", err)
	}
	defer metaFile.Close()
	var meta vectorIndexMeta
	if err := gob.NewDecoder(metaFile).Decode(&meta); err != nil {
		return fmt.Errorf("decode meta: %w", err)
	}

	f, err := os.Open(v.path)
	if err != nil {
		return fmt.Errorf("open vector file: %w", err)
	}
	defer f.Close()
	r := bufio.NewReader(f)

	facts := newNamespaceGraph()
	if err := facts.graph.Import(r); err != nil {
		return fmt.Errorf("import facts graph: %w", err)
	}
	chunks := newNamespaceGraph()
	if err := chunks.graph.Import(r); err != nil {
		return fmt.Errorf("import chunks graph: %w", err)
	}

	facts.idMap = meta.FactsIDMap
	facts.nextKey = meta.FactsNextKey
	facts.keyMap = invertIDMap(meta.FactsIDMap)
	chunks.idMap = meta.ChunksIDMap
	chunks.nextKey = meta.ChunksNextKey
	chunks.keyMap = invertIDMap(meta.ChunksIDMap)

	v.facts = facts
	v.chunks = chunks
	if meta.Dimensions > 0 {
		v.dimensions = meta.Dimensions
	}
	return nil
}

func invertIDMap(idMap map[string]uint64) map[uint64]string {
	keyMap := make(map[uint64]string, len(idMap))
	for id, key := range idMap {
		keyMap[key] = id
	}
	return keyMap
}

func normalizeVectorInPlace(v []float32) {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	if sumSquares == 0 {
		return
	}
	invMagnitude := float32(1.0 / math.Sqrt(sumSquares))
	for i := range v {
		v[i] *= invMagnitude
	}
}
