// Package indexer walks a project's files and keeps the store's file_chunks
// table in sync with what's on disk (SPEC_FULL.md §4.3).
package indexer

import (
	"os"
	"path/filepath"
	"strings"
)

// MaxScanDepth bounds how many directory levels deep the scanner descends
// from the project root, avoiding runaway walks into deeply nested
// dependency trees that slipped past IgnoreDirs.
const MaxScanDepth = 3

// MaxFileSize is the largest file the indexer will read, in bytes. Anything
// bigger is skipped rather than truncated, since a truncated config or doc
// file chunks into misleading fragments.
const MaxFileSize = 200_000

// DocExtensions lists the file types ChunkFile knows how to split.
var DocExtensions = map[string]struct{}{
	".md": {}, ".txt": {}, ".json": {}, ".yaml": {}, ".yml": {}, ".toml": {},
}

// IgnoreDirs are directory names the scanner never descends into.
var IgnoreDirs = map[string]struct{}{
	"node_modules": {}, ".git": {}, "__pycache__": {}, ".next": {},
	"dist": {}, "build": {}, "venv": {}, ".venv": {}, ".claude": {},
}

// IgnoreFiles are noisy lockfiles that match a doc extension but carry no
// useful search content.
var IgnoreFiles = map[string]struct{}{
	"package-lock.json": {}, "yarn.lock": {}, "pnpm-lock.yaml": {},
}

// NeverIndex are filenames that must never be read into the store, even if
// they otherwise match a doc extension — secrets live here.
var NeverIndex = map[string]struct{}{
	".env": {}, ".env.local": {}, ".env.production": {}, ".env.development": {},
	"credentials.json": {},
}

// ScanProjectFiles walks projectPath up to MaxScanDepth levels and returns
// every indexable file's path, relative to projectPath, using "/" as the
// separator regardless of host OS. Permission errors on a subdirectory are
// swallowed and that subtree is skipped, matching the original's best
// effort walk.
func ScanProjectFiles(projectPath string) ([]string, error) {
	var files []string
	var walk func(dir string, depth int) error
	walk = func(dir string, depth int) error {
		if depth > MaxScanDepth {
			return nil
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil // permission errors are non-fatal, skip the subtree
		}
		for _, entry := range entries {
			full := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				if _, ignored := IgnoreDirs[entry.Name()]; ignored {
					continue
				}
				if err := walk(full, depth+1); err != nil {
					return err
				}
				continue
			}
			if !isIndexableFile(entry.Name()) {
				continue
			}
			info, err := entry.Info()
			if err != nil || info.Size() > MaxFileSize {
				continue
			}
			rel, err := filepath.Rel(projectPath, full)
			if err != nil {
				continue
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	}

	if err := walk(projectPath, 0); err != nil {
		return nil, err
	}
	return files, nil
}

func isIndexableFile(name string) bool {
	if _, never := NeverIndex[name]; never {
		return false
	}
	if _, ignored := IgnoreFiles[name]; ignored {
		return false
	}
	_, ok := DocExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}
