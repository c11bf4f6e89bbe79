package chunk

import "path/filepath"

// ChunkText handles plain text and any extension none of the other
// chunkers claim: the whole file as one chunk if it fits under MaxChars,
// else windowed by splitLarge.
func ChunkText(content, path string) []Chunk {
	fname := filepath.Base(path)
	if len(content) <= MaxChars {
		return []Chunk{{SectionTitle: fname, Content: content, ChunkIndex: 0}}
	}
	return splitLarge(content, fname, 0)
}
