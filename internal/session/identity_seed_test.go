package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestSeedIdentity_ReactProjectWithTailwind(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{
		"name": "demo",
		"dependencies": {"react": "^18.0.0", "tailwindcss": "^3.0.0"}
	}`)

	fields := SeedIdentity(dir)
	assert.Equal(t, "React", fields["framework"])
	assert.Equal(t, "JavaScript", fields["language"])
	assert.Equal(t, "Tailwind CSS", fields["css_approach"])
	assert.Equal(t, "web-app", fields["project_category"])
}

func TestSeedIdentity_GoCLIProject(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module example.com/tool\n\ngo 1.25\n")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "cmd", "tool"), 0o755))

	fields := SeedIdentity(dir)
	assert.Equal(t, "Go", fields["language"])
	assert.Equal(t, "cli-tool", fields["project_category"])
}

func TestSeedIdentity_PlainLibraryFallsBackToLibrary(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "requirements.txt", "flask==2.0.0\n")

	fields := SeedIdentity(dir)
	assert.Equal(t, "Python", fields["language"])
	assert.Equal(t, "library", fields["project_category"])
}

func TestSeedIdentity_DockerSignal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Dockerfile", "FROM scratch\n")

	fields := SeedIdentity(dir)
	assert.Equal(t, "Docker", fields["containerization"])
}

func TestSeedIdentity_GithubRemote(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".git/config", `[core]
	repositoryformatversion = 0
[remote "origin"]
	url = git@github.com:Aman-CERP/amanmcp.git
	fetch = +refs/heads/*:refs/remotes/origin/*
`)

	fields := SeedIdentity(dir)
	assert.Equal(t, "git@github.com:Aman-CERP/amanmcp.git", fields["github_repo_url"])
	assert.Equal(t, "Aman-CERP", fields["github_org"])
}
