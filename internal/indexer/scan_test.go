package indexer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScanProjectFiles_FindsDocFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "README.md"), "# Hello")
	writeFile(t, filepath.Join(dir, "package.json"), "{}")
	writeFile(t, filepath.Join(dir, "main.go"), "package main")

	files, err := ScanProjectFiles(dir)
	require.NoError(t, err)
	assert.Contains(t, files, "README.md")
	assert.Contains(t, files, "package.json")
	assert.NotContains(t, files, "main.go")
}

func TestScanProjectFiles_SkipsIgnoredDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "node_modules", "pkg", "readme.md"), "nested")
	writeFile(t, filepath.Join(dir, "docs", "guide.md"), "guide")

	files, err := ScanProjectFiles(dir)
	require.NoError(t, err)
	assert.Contains(t, files, "docs/guide.md")
	for _, f := range files {
		assert.NotContains(t, f, "node_modules")
	}
}

func TestScanProjectFiles_NeverIndexesSecrets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env"), "SECRET=1")
	writeFile(t, filepath.Join(dir, "credentials.json"), "{}")

	files, err := ScanProjectFiles(dir)
	require.NoError(t, err)
	assert.NotContains(t, files, ".env")
	assert.NotContains(t, files, "credentials.json")
}

func TestScanProjectFiles_SkipsLockfiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package-lock.json"), "{}")

	files, err := ScanProjectFiles(dir)
	require.NoError(t, err)
	assert.NotContains(t, files, "package-lock.json")
}

func TestScanProjectFiles_RespectsDepthBound(t *testing.T) {
	dir := t.TempDir()
	deep := filepath.Join(dir, "a", "b", "c", "d", "too-deep.md")
	writeFile(t, deep, "deep")

	files, err := ScanProjectFiles(dir)
	require.NoError(t, err)
	assert.NotContains(t, files, "a/b/c/d/too-deep.md")
}

func TestScanProjectFiles_SkipsOversizedFiles(t *testing.T) {
	dir := t.TempDir()
	big := make([]byte, MaxFileSize+1)
	writeFile(t, filepath.Join(dir, "big.txt"), string(big))

	files, err := ScanProjectFiles(dir)
	require.NoError(t, err)
	assert.NotContains(t, files, "big.txt")
}
