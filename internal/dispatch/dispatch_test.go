package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/amanmcp-memory/internal/embed"
	"github.com/Aman-CERP/amanmcp-memory/internal/session"
	"github.com/Aman-CERP/amanmcp-memory/internal/store"
)

// withActiveSession redirects the active-session descriptor to a temp data
// home and writes one for project/sessionID, matching what session_start
// would have left behind.
func withActiveSession(t *testing.T, project, sessionID string) {
	t.Helper()
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	require.NoError(t, session.WriteDescriptor(session.Descriptor{
		SessionID: sessionID, Project: project, ProjectPath: t.TempDir(), StartTime: time.Now().UTC(),
	}))
	t.Cleanup(func() { _ = session.ClearDescriptor() })
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestMemorySearch_NoActiveProject(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	d := New(openTestStore(t), nil)
	msg, err := d.MemorySearch(context.Background(), "anything", "", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "No matching facts found.", msg)
}

func TestMemoryWrite_RequiresActiveProject(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	d := New(openTestStore(t), nil)
	_, err := d.MemoryWrite(context.Background(), "x", "", "", "", "")
	require.Error(t, err)
}

func TestMemoryWriteThenSearch_RoundTrips(t *testing.T) {
	withActiveSession(t, "proj", "sess-1")
	st := openTestStore(t)
	d := New(st, embed.NewStaticEmbedder())

	msg, err := d.MemoryWrite(context.Background(), "use pnpm for installs", "pattern", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Saved.", msg)

	result, err := d.MemorySearch(context.Background(), "pnpm installs", "", "", 0)
	require.NoError(t, err)
	assert.Contains(t, result, "use pnpm for installs")
}

func TestMemoryDelete_RequiresIDs(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	d := New(openTestStore(t), nil)
	_, err := d.MemoryDelete(nil)
	require.Error(t, err)
}

func TestVerifyIdentity_NoActiveProject(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	d := New(openTestStore(t), nil)
	_, err := d.VerifyIdentity("deploy")
	require.Error(t, err)
}

func TestIdentitySetThenVerify(t *testing.T) {
	withActiveSession(t, "proj", "sess-1")
	d := New(openTestStore(t), nil)

	msg, err := d.IdentitySet(map[string]string{
		"deploy_ssh_alias": "prod", "deploy_ssh_host": "1.2.3.4", "deploy_app_port": "3000",
		"deploy_path": "/srv/app", "deploy_method": "pm2", "domain_primary": "example.com",
	}, true)
	require.NoError(t, err)
	assert.Contains(t, msg, "locked")

	result, err := d.VerifyIdentity("deploy")
	require.NoError(t, err)
	assert.Contains(t, result, "VERIFIED")
}

func TestRecommendTech_NoActiveProject(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	d := New(openTestStore(t), nil)
	_, err := d.RecommendTech("", "", "web-app")
	require.Error(t, err)
}

func TestSessionBridge_UnknownAction(t *testing.T) {
	withActiveSession(t, "proj", "sess-1")
	d := New(openTestStore(t), nil)
	_, err := d.SessionBridge("bogus", "")
	require.Error(t, err)
}

func TestDecisionLog_Empty(t *testing.T) {
	withActiveSession(t, "proj", "sess-1")
	d := New(openTestStore(t), nil)
	msg, err := d.DecisionLog("", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "No decisions recorded yet.", msg)
}
