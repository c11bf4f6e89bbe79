package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/amanmcp-memory/internal/store"
)

func TestGenerateBriefing_NoIdentity(t *testing.T) {
	dir := t.TempDir()
	briefing := GenerateBriefing(dir, nil)
	assert.Contains(t, briefing, "unknown (no identity recorded yet)")
}

func TestGenerateBriefing_WithIdentityAndDeploy(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs"), 0o755))

	id := &store.Identity{
		Language: "Go", Framework: "Cobra CLI", DeployMethod: "pm2", PM2ProcessName: "amanmcp",
		DomainPrimary: "example.com",
	}
	briefing := GenerateBriefing(dir, id)
	assert.Contains(t, briefing, "Go + Cobra CLI")
	assert.Contains(t, briefing, "docs")
	assert.Contains(t, briefing, "src")
	assert.Contains(t, briefing, "pm2 (pm2: amanmcp) -> example.com")
}

func TestInjectInstructionBlock_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CLAUDE.md")

	require.NoError(t, InjectInstructionBlock(path, "hello project"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, blockBegin)
	assert.Contains(t, content, "hello project")
	assert.Contains(t, content, blockEnd)
}

func TestInjectInstructionBlock_ReplacesExistingBlock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CLAUDE.md")
	require.NoError(t, os.WriteFile(path, []byte("# My Project\n\n"+blockBegin+"\nold content\n"+blockEnd+"\n"), 0o644))

	require.NoError(t, InjectInstructionBlock(path, "new content"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "# My Project")
	assert.Contains(t, content, "new content")
	assert.NotContains(t, content, "old content")
}

func TestInjectInstructionBlock_ReplacesLegacyMarkers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CLAUDE.md")
	require.NoError(t, os.WriteFile(path, []byte(legacyBlockBegin+"\nlegacy content\n"+legacyBlockEnd+"\n"), 0o644))

	require.NoError(t, InjectInstructionBlock(path, "fresh content"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, blockBegin)
	assert.Contains(t, content, "fresh content")
	assert.NotContains(t, content, "legacy content")
	assert.NotContains(t, content, legacyBlockBegin)
}
