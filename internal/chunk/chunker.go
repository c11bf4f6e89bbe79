// Package chunk splits an indexed project file into the section-sized
// pieces the store's file_chunks table holds (SPEC_FULL.md §4.3).
package chunk

import (
	"path/filepath"
	"strconv"
	"strings"
)

// MaxChars bounds a single chunk's content. A section longer than this gets
// windowed by splitLarge.
const MaxChars = 2000

// Overlap is how many trailing characters of one window carry into the
// next, so a sentence split across the boundary still shows up whole in
// one of the two chunks.
const Overlap = 200

// Chunk is one piece of a source file, not yet assigned a database rowid.
type Chunk struct {
	SectionTitle string
	ChunkIndex   int
	Content      string
}

// docExtensions lists the file types the indexer chunks at all; everything
// else is skipped by the scanner before reaching this package.
var docExtensions = map[string]struct{}{
	".md": {}, ".txt": {}, ".json": {}, ".yaml": {}, ".yml": {}, ".toml": {},
}

// IsDocumentFile reports whether path has an extension this package knows
// how to chunk.
func IsDocumentFile(path string) bool {
	_, ok := docExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ChunkFile dispatches to the right chunker based on path's extension.
func ChunkFile(content, path string) []Chunk {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md":
		return ChunkMarkdown(content, path)
	case ".json":
		return ChunkJSON(content, path)
	case ".yaml", ".yml", ".toml":
		return ChunkYAML(content, path)
	default:
		return ChunkText(content, path)
	}
}

// splitLarge breaks text into MaxChars windows with Overlap trailing
// characters repeated at the start of the next window, when text alone
// already fits it returns a single chunk unchanged.
func splitLarge(text, title string, startIdx int) []Chunk {
	if len(text) <= MaxChars {
		return []Chunk{{SectionTitle: title, Content: text, ChunkIndex: startIdx}}
	}

	var chunks []Chunk
	pos := 0
	idx := startIdx
	for pos < len(text) {
		end := pos + MaxChars
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, Chunk{
			SectionTitle: title + " (part " + strconv.Itoa(idx-startIdx+1) + ")",
			Content:      text[pos:end],
			ChunkIndex:   idx,
		})
		idx++
		if end < len(text) {
			pos = end - Overlap
		} else {
			pos = end
		}
	}
	return chunks
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
