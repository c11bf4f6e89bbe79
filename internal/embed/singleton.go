package embed

import "sync"

var (
	instanceOnce sync.Once
	instance     Embedder
)

// Get returns the process-lifetime embedder singleton, constructing it on
// first call. SPEC_FULL.md §4.2: "loaded on first use and cached for
// process lifetime." Construction cannot fail for the static embedder, so
// the only degraded path callers need is Available().
func Get() Embedder {
	instanceOnce.Do(func() {
		instance = NewCachedEmbedder(NewStaticEmbedder(), DefaultCacheSize)
	})
	return instance
}

// resetForTest clears the singleton so tests can observe fresh construction.
// Unexported: only this package's tests may reach for it.
func resetForTest() {
	instanceOnce = sync.Once{}
	instance = nil
}
