package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/amanmcp-memory/internal/indexer"
	"github.com/Aman-CERP/amanmcp-memory/internal/store"
)

func TestResolveProjectName_PackageJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"name": "my-app"}`)
	assert.Equal(t, "my-app", ResolveProjectName(dir))
}

func TestResolveProjectName_GoModFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module github.com/example/widget\n")
	assert.Equal(t, "widget", ResolveProjectName(dir))
}

func TestResolveProjectName_PyprojectFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pyproject.toml", "[project]\nname = \"ml-pipeline\"\nversion = \"0.1.0\"\n")
	assert.Equal(t, "ml-pipeline", ResolveProjectName(dir))
}

func TestResolveProjectName_DirectoryBasenameFallback(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Base(dir), ResolveProjectName(dir))
}

func TestManager_StartCreatesSessionAndDescriptor(t *testing.T) {
	withIsolatedDataHome(t)
	st := openTestStore(t)
	mgr := NewManager(st, nil, 60*time.Second)

	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module example.com/demo\n")

	result, err := mgr.Start(context.Background(), dir, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, result.SessionID)
	assert.Equal(t, "demo", result.Project)

	desc, err := ReadDescriptor()
	require.NoError(t, err)
	require.NotNil(t, desc)
	assert.Equal(t, result.SessionID, desc.SessionID)

	data, err := os.ReadFile(filepath.Join(dir, "CLAUDE.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), blockBegin)
}

func TestManager_StartRecoversCrashedSession(t *testing.T) {
	withIsolatedDataHome(t)
	st := openTestStore(t)
	mgr := NewManager(st, nil, 1*time.Millisecond)

	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module example.com/demo\n")

	stale := &store.Session{Project: "demo", StartTime: time.Now().UTC().Add(-time.Hour)}
	require.NoError(t, st.CreateSession(stale))
	time.Sleep(5 * time.Millisecond)

	result, err := mgr.Start(context.Background(), dir, 0)
	require.NoError(t, err)
	assert.Contains(t, result.CrashNotice, "Recovered")

	recovered, err := st.GetSession(stale.ID)
	require.NoError(t, err)
	require.NotNil(t, recovered.EndTime)
	assert.NotEmpty(t, recovered.Bridge)
}

func TestManager_EndSynthesizesBridgeAndClearsDescriptor(t *testing.T) {
	withIsolatedDataHome(t)
	st := openTestStore(t)
	mgr := NewManager(st, nil, 60*time.Second)

	sess := &store.Session{Project: "proj"}
	require.NoError(t, st.CreateSession(sess))
	require.NoError(t, st.InsertChange(&store.Change{SessionID: sess.ID, Project: "proj", FilePath: "x.go", Action: store.ActionEdit}))
	require.NoError(t, WriteDescriptor(Descriptor{SessionID: sess.ID, Project: "proj"}))

	var logged []string
	err := mgr.End(sess.ID, func(line string) error {
		logged = append(logged, line)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, logged, 1)

	closed, err := st.GetSession(sess.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.EndTime)
	assert.Contains(t, closed.Bridge, "x.go (edit)")

	desc, err := ReadDescriptor()
	require.NoError(t, err)
	assert.Nil(t, desc)
}

func TestManager_WithReconciler(t *testing.T) {
	withIsolatedDataHome(t)
	st := openTestStore(t)
	rec := indexer.NewReconciler(st, nil)
	mgr := NewManager(st, rec, 60*time.Second)

	dir := t.TempDir()
	writeFile(t, dir, "README.md", "# Demo\n\nSome docs.\n")

	_, err := mgr.Start(context.Background(), dir, 500*time.Millisecond)
	require.NoError(t, err)
}
