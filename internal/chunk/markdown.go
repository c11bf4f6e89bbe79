package chunk

import (
	"path/filepath"
	"regexp"
	"strings"
)

// headingPattern matches an H1/H2/H3 heading line; SPEC_FULL.md caps
// markdown sectioning at three levels, deeper headings stay inside their
// parent section's content.
var headingPattern = regexp.MustCompile(`(?m)^(#{1,3}\s+.+)$`)

// ChunkMarkdown splits content into one chunk per H1/H2/H3 section,
// oversized sections further windowed by splitLarge.
func ChunkMarkdown(content, path string) []Chunk {
	var chunks []Chunk

	parts := splitKeepDelim(content, headingPattern)

	currentTitle := filepath.Base(path)
	var currentLines []string
	chunkIdx := 0

	flush := func() {
		text := strings.TrimSpace(strings.Join(currentLines, "\n"))
		if text == "" {
			return
		}
		for _, c := range splitLarge(text, currentTitle, chunkIdx) {
			chunks = append(chunks, c)
			chunkIdx++
		}
	}

	for _, part := range parts {
		if headingPattern.MatchString(part) {
			flush()
			currentTitle = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(part), "#"))
			currentLines = nil
		} else {
			currentLines = append(currentLines, part)
		}
	}
	flush()

	return chunks
}

// splitKeepDelim splits s on re's matches, keeping every match as its own
// element interleaved with the non-matching spans, mirroring Python's
// re.split with a capturing group.
func splitKeepDelim(s string, re *regexp.Regexp) []string {
	locs := re.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return []string{s}
	}

	var parts []string
	prev := 0
	for _, loc := range locs {
		if loc[0] > prev {
			parts = append(parts, s[prev:loc[0]])
		}
		parts = append(parts, s[loc[0]:loc[1]])
		prev = loc[1]
	}
	if prev < len(s) {
		parts = append(parts, s[prev:])
	}
	return parts
}
