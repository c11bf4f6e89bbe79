package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/amanmcp-memory/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestIdentitySet_RejectsUnknownField(t *testing.T) {
	g := NewGate(openTestStore(t))
	_, err := g.IdentitySet("proj", map[string]string{"not_a_field": "x"}, false, "user", "")
	require.Error(t, err)
}

func TestIdentitySet_UpdatesUnlockedRow(t *testing.T) {
	g := NewGate(openTestStore(t))
	msg, err := g.IdentitySet("proj", map[string]string{"deploy_ssh_alias": "prod"}, false, "user", "")
	require.NoError(t, err)
	assert.Equal(t, "updated", msg)
}

func TestIdentitySet_LocksOnRequest(t *testing.T) {
	g := NewGate(openTestStore(t))
	_, err := g.IdentitySet("proj", map[string]string{
		"deploy_ssh_alias": "prod", "deploy_ssh_host": "1.2.3.4", "deploy_app_port": "3000",
		"deploy_path": "/srv/app", "deploy_method": "pm2", "domain_primary": "example.com",
	}, true, "user", "")
	require.NoError(t, err)

	_, err = g.IdentitySet("proj", map[string]string{"deploy_ssh_alias": "changed"}, false, "user", "")
	assert.Error(t, err)
}

func TestIdentitySet_RelockOverridesLockedField(t *testing.T) {
	g := NewGate(openTestStore(t))
	_, err := g.IdentitySet("proj", map[string]string{"deploy_ssh_alias": "prod"}, true, "user", "")
	require.NoError(t, err)

	_, err = g.IdentitySet("proj", map[string]string{"deploy_ssh_alias": "prod2"}, true, "user", "")
	require.NoError(t, err)
}

func TestVerifyIdentity_NoActiveProject(t *testing.T) {
	g := NewGate(openTestStore(t))
	_, err := g.VerifyIdentity("", "deploy")
	require.Error(t, err)
}

func TestVerifyIdentity_UnknownAction(t *testing.T) {
	g := NewGate(openTestStore(t))
	_, err := g.VerifyIdentity("proj", "reformat-disk")
	require.Error(t, err)
}

func TestVerifyIdentity_NoIdentityRow(t *testing.T) {
	g := NewGate(openTestStore(t))
	_, err := g.VerifyIdentity("proj", "ssh")
	require.Error(t, err)
}

func TestVerifyIdentity_MissingFields(t *testing.T) {
	g := NewGate(openTestStore(t))
	_, err := g.IdentitySet("proj", map[string]string{"deploy_ssh_alias": "prod"}, false, "user", "")
	require.NoError(t, err)

	_, err = g.VerifyIdentity("proj", "ssh")
	require.Error(t, err)
}

func TestVerifyIdentity_WarningWhenUnlocked(t *testing.T) {
	g := NewGate(openTestStore(t))
	_, err := g.IdentitySet("proj", map[string]string{
		"deploy_ssh_alias": "prod", "deploy_ssh_host": "1.2.3.4", "deploy_ssh_user": "deploy",
	}, false, "user", "")
	require.NoError(t, err)

	msg, err := g.VerifyIdentity("proj", "ssh")
	require.NoError(t, err)
	assert.Contains(t, msg, "WARNING")
}

func TestVerifyIdentity_VerifiedWhenLocked(t *testing.T) {
	g := NewGate(openTestStore(t))
	_, err := g.IdentitySet("proj", map[string]string{
		"deploy_ssh_alias": "prod", "deploy_ssh_host": "1.2.3.4", "deploy_ssh_user": "deploy",
	}, true, "user", "")
	require.NoError(t, err)

	msg, err := g.VerifyIdentity("proj", "ssh")
	require.NoError(t, err)
	assert.Contains(t, msg, "VERIFIED")
}

func TestComputeSafetyLockHash_ChangesWithFields(t *testing.T) {
	st := openTestStore(t)
	g := NewGate(st)
	_, err := g.IdentitySet("proj", map[string]string{
		"deploy_ssh_alias": "prod", "deploy_ssh_host": "1.2.3.4", "deploy_ssh_user": "deploy",
	}, true, "user", "")
	require.NoError(t, err)

	locked, err := st.GetIdentity("proj")
	require.NoError(t, err)
	storedHash := locked.SafetyLockHash

	locked.DeploySSHHost = "9.9.9.9"
	assert.NotEqual(t, storedHash, store.ComputeSafetyLockHash(locked))
}
