package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withIsolatedDataHome(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
}

func TestDescriptorRoundTrip(t *testing.T) {
	withIsolatedDataHome(t)

	d := Descriptor{SessionID: "sess-1", Project: "demo", ProjectPath: "/tmp/demo", StartTime: time.Now().UTC()}
	require.NoError(t, WriteDescriptor(d))

	got, err := ReadDescriptor()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, d.SessionID, got.SessionID)
	assert.Equal(t, d.Project, got.Project)

	require.NoError(t, ClearDescriptor())
	got, err = ReadDescriptor()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReadDescriptor_MissingFileIsNotError(t *testing.T) {
	withIsolatedDataHome(t)

	got, err := ReadDescriptor()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDescriptorPath_UnderDataHome(t *testing.T) {
	withIsolatedDataHome(t)
	assert.Equal(t, filepath.Join(os.Getenv("XDG_DATA_HOME"), "amanmcp-memory", "active_session.json"), DescriptorPath())
}
