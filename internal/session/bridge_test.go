package session

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

func TestSynthesizeEmergencyBridge_Empty(t *testing.T) {
	b := SynthesizeEmergencyBridge(nil, nil)
	assert.Contains(t, b, "no changes or facts")
}

func TestSynthesizeEmergencyBridge_ChangesAndFacts(t *testing.T) {
	changes := []*store.Change{
		{FilePath: "a.go", Action: store.ActionEdit},
		{FilePath: "b.go", Action: store.ActionCreate},
		{FilePath: "a.go", Action: store.ActionEdit},
	}
	facts := []*store.Fact{
		{Kind: store.KindGotcha, Content: "watch out for the race in the scheduler"},
	}
	b := SynthesizeEmergencyBridge(changes, facts)
	assert.Contains(t, b, "a.go (edit)")
	assert.Contains(t, b, "b.go (create)")
	assert.Contains(t, b, "[gotcha] watch out for the race in the scheduler")
}

func TestSynthesizeEmergencyBridge_CapsAndCounts(t *testing.T) {
	var changes []*store.Change
	for i := 0; i < 15; i++ {
		changes = append(changes, &store.Change{FilePath: string(rune('a' + i)), Action: store.ActionEdit})
	}
	b := SynthesizeEmergencyBridge(changes, nil)
	assert.Contains(t, b, "+5 more")
}

func TestLoadBridge_NoneRecorded(t *testing.T) {
	st := openTestStore(t)
	b, err := LoadBridge(st, "proj")
	require.NoError(t, err)
	assert.Contains(t, b, "No bridge available")
}

func TestLoadBridge_ReturnsLatestClosed(t *testing.T) {
	st := openTestStore(t)
	sess := &store.Session{Project: "proj"}
	require.NoError(t, st.CreateSession(sess))
	require.NoError(t, st.CloseSession(sess.ID, sess.StartTime, "done", "## Session Bridge\n\nshipped the thing", 0, 0))

	b, err := LoadBridge(st, "proj")
	require.NoError(t, err)
	assert.Contains(t, b, "shipped the thing")
}

func TestSaveBridge_RejectsEmptyContent(t *testing.T) {
	st := openTestStore(t)
	err := SaveBridge(st, "sess-1", "   ")
	require.Error(t, err)
}

func TestSaveBridge_RejectsMissingSession(t *testing.T) {
	st := openTestStore(t)
	err := SaveBridge(st, "", "content")
	require.Error(t, err)
}

func TestSaveBridge_UpdatesOpenSession(t *testing.T) {
	st := openTestStore(t)
	sess := &store.Session{Project: "proj"}
	require.NoError(t, st.CreateSession(sess))

	require.NoError(t, SaveBridge(st, sess.ID, "work in progress"))

	got, err := st.GetSession(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "work in progress", got.Bridge)
}
