package chunk

import (
	"path/filepath"
	"strings"
)

// ChunkYAML chunks a YAML or TOML file by top-level keys: a line with no
// leading whitespace that contains a colon starts a new section. This is a
// line-oriented heuristic, not a real parser, matching the original
// chunker's approach rather than depending on a schema-exact YAML walk.
func ChunkYAML(content, path string) []Chunk {
	fname := filepath.Base(path)
	currentKey := fname
	var currentLines []string
	chunkIdx := 0
	var chunks []Chunk

	flush := func() {
		text := strings.TrimSpace(strings.Join(currentLines, "\n"))
		if text == "" {
			return
		}
		chunks = append(chunks, Chunk{
			SectionTitle: currentKey,
			Content:      truncate(text, MaxChars),
			ChunkIndex:   chunkIdx,
		})
		chunkIdx++
	}

	for _, line := range strings.Split(content, "\n") {
		if isTopLevelKeyLine(line) {
			flush()
			currentKey = strings.TrimSpace(strings.SplitN(line, ":", 2)[0])
			currentLines = []string{line}
		} else {
			currentLines = append(currentLines, line)
		}
	}
	flush()

	if len(chunks) == 0 {
		return []Chunk{{SectionTitle: fname, Content: truncate(content, MaxChars), ChunkIndex: 0}}
	}
	return chunks
}

func isTopLevelKeyLine(line string) bool {
	if line == "" {
		return false
	}
	if line[0] == ' ' || line[0] == '\t' {
		return false
	}
	return strings.Contains(line, ":")
}
