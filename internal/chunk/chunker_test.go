package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkMarkdown_SplitsByHeading(t *testing.T) {
	md := "# Title\nintro text\n\n## Section A\ncontent a\n\n## Section B\ncontent b\n"
	chunks := ChunkMarkdown(md, "notes.md")
	require.Len(t, chunks, 3)
	assert.Equal(t, "Title", chunks[0].SectionTitle)
	assert.Equal(t, "Section A", chunks[1].SectionTitle)
	assert.Equal(t, "Section B", chunks[2].SectionTitle)
}

func TestChunkMarkdown_LargeSectionWindowed(t *testing.T) {
	big := strings.Repeat("x", MaxChars+500)
	md := "# Title\n" + big
	chunks := ChunkMarkdown(md, "big.md")
	require.Len(t, chunks, 2)
	assert.Contains(t, chunks[0].SectionTitle, "(part 1)")
	assert.Contains(t, chunks[1].SectionTitle, "(part 2)")
}

func TestChunkJSON_PackageJSON(t *testing.T) {
	content := `{"name": "demo", "version": "1.0.0", "license": "MIT", "scripts": {"test": "go test ./..."}}`
	chunks := ChunkJSON(content, "package.json")

	var titles []string
	for _, c := range chunks {
		titles = append(titles, c.SectionTitle)
	}
	assert.Contains(t, titles, "package.json — name")
	assert.Contains(t, titles, "package.json — version")
	assert.Contains(t, titles, "package.json — scripts")
	assert.NotContains(t, titles, "package.json — license")
}

func TestChunkJSON_GenericPreservesKeyOrder(t *testing.T) {
	content := `{"zeta": 1, "alpha": 2, "middle": 3}`
	chunks := ChunkJSON(content, "config.json")
	require.Len(t, chunks, 3)
	assert.Equal(t, "config.json — zeta", chunks[0].SectionTitle)
	assert.Equal(t, "config.json — alpha", chunks[1].SectionTitle)
	assert.Equal(t, "config.json — middle", chunks[2].SectionTitle)
}

func TestChunkJSON_Malformed(t *testing.T) {
	chunks := ChunkJSON("{not valid json", "broken.json")
	require.Len(t, chunks, 1)
	assert.Equal(t, "broken.json", chunks[0].SectionTitle)
}

func TestChunkYAML_TopLevelKeys(t *testing.T) {
	yaml := "name: demo\nversion: 1\nservices:\n  web:\n    image: nginx\n"
	chunks := ChunkYAML(yaml, "docker-compose.yml")
	require.Len(t, chunks, 3)
	assert.Equal(t, "name", chunks[0].SectionTitle)
	assert.Equal(t, "version", chunks[1].SectionTitle)
	assert.Equal(t, "services", chunks[2].SectionTitle)
	assert.Contains(t, chunks[2].Content, "web:")
}

func TestChunkText_SmallFileIsOneChunk(t *testing.T) {
	chunks := ChunkText("short note", "notes.txt")
	require.Len(t, chunks, 1)
	assert.Equal(t, "short note", chunks[0].Content)
}

func TestChunkText_LargeFileWindowed(t *testing.T) {
	big := strings.Repeat("y", MaxChars*2)
	chunks := ChunkText(big, "log.txt")
	assert.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		assert.GreaterOrEqual(t, chunks[i].ChunkIndex, chunks[i-1].ChunkIndex)
	}
}

func TestChunkFile_DispatchesByExtension(t *testing.T) {
	assert.Len(t, ChunkFile("# H\nbody", "a.md"), 1)
	assert.True(t, len(ChunkFile(`{"a":1}`, "a.json")) >= 1)
	assert.True(t, len(ChunkFile("a: 1\n", "a.yaml")) >= 1)
	assert.Len(t, ChunkFile("plain", "a.unknownext"), 1)
}

func TestIsDocumentFile(t *testing.T) {
	assert.True(t, IsDocumentFile("README.md"))
	assert.True(t, IsDocumentFile("package.json"))
	assert.False(t, IsDocumentFile("main.go"))
	assert.False(t, IsDocumentFile("binary.exe"))
}
