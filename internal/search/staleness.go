package search

import (
	"os"
	"path/filepath"

	"github.com/Aman-CERP/amanmcp-memory/internal/store"
)

// Staleness tags for a fact whose content was recorded against a source
// file (SPEC_FULL.md §4.4 post-retrieval annotation).
const (
	StaleNone    = ""
	StaleStale   = "STALE"
	StaleDeleted = "DELETED"
)

// Tag compares f's recorded source_mtime against the file's current mtime
// on disk, resolved relative to projectRoot. Facts with no source_file are
// always untagged.
func Tag(f *store.Fact, projectRoot string) string {
	if f.SourceFile == "" || f.SourceMtime == nil {
		return StaleNone
	}
	absPath := filepath.Join(projectRoot, filepath.FromSlash(f.SourceFile))
	info, err := os.Stat(absPath)
	if os.IsNotExist(err) {
		return StaleDeleted
	}
	if err != nil {
		return StaleNone
	}
	currentMtime := float64(info.ModTime().UnixNano()) / 1e9
	if currentMtime > *f.SourceMtime+mtimeTolerance {
		return StaleStale
	}
	return StaleNone
}

// mtimeTolerance matches the indexer's reconciliation tolerance so a
// filesystem's coarse mtime resolution never produces a spurious STALE tag.
const mtimeTolerance = 1.0
