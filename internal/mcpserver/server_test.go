package mcpserver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/amanmcp-memory/internal/dispatch"
	"github.com/Aman-CERP/amanmcp-memory/internal/store"
)

func TestBoundary_WrapsErrorWithToolName(t *testing.T) {
	err := boundary("memory_search", errors.New("no active project"))
	require.Error(t, err)
	assert.Equal(t, "Error in memory_search: no active project", err.Error())
}

func TestBoundary_NilErrorPassesThrough(t *testing.T) {
	assert.NoError(t, boundary("memory_search", nil))
}

func TestNewServer_RegistersAllTools(t *testing.T) {
	st, err := store.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	d := dispatch.New(st, nil)
	s := NewServer(d, nil)
	require.NotNil(t, s.MCPServer())
}
