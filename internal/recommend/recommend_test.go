package recommend

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

func TestRecommend_NoActiveProject(t *testing.T) {
	_, err := Recommend(openTestStore(t), "", "", "", "web-app")
	require.Error(t, err)
}

func TestRecommend_NoCategoryOrSimilarTo(t *testing.T) {
	msg, err := Recommend(openTestStore(t), "proj", "", "", "")
	require.NoError(t, err)
	assert.Contains(t, msg, "Provide a category")
}

func TestRecommend_UnknownCategory(t *testing.T) {
	_, err := Recommend(openTestStore(t), "proj", "", "", "desktop-app")
	require.Error(t, err)
}

func TestRecommend_WebAppDefault(t *testing.T) {
	msg, err := Recommend(openTestStore(t), "proj", "", "", "web-app")
	require.NoError(t, err)
	assert.Contains(t, msg, "React + Tailwind CSS")
}

func TestRecommend_WebAppRespectsExistingUILibrary(t *testing.T) {
	st := openTestStore(t)
	_, err := st.UpsertIdentity(store.IdentityUpdate{
		Project: "proj", Fields: map[string]string{"ui_library": "MUI"}, Actor: "test",
	})
	require.NoError(t, err)

	msg, err := Recommend(st, "proj", "", "", "web-app")
	require.NoError(t, err)
	assert.Contains(t, msg, "MUI")
}

func TestRecommend_APIServiceByLanguage(t *testing.T) {
	st := openTestStore(t)
	_, err := st.UpsertIdentity(store.IdentityUpdate{
		Project: "proj", Fields: map[string]string{"language": "Go"}, Actor: "test",
	})
	require.NoError(t, err)

	msg, err := Recommend(st, "proj", "", "", "api-service")
	require.NoError(t, err)
	assert.Contains(t, msg, "chi or gin")
}

func TestRecommend_SimilarToEchoesOtherProject(t *testing.T) {
	st := openTestStore(t)
	_, err := st.UpsertIdentity(store.IdentityUpdate{
		Project: "other", Fields: map[string]string{"framework": "Next.js", "language": "TypeScript"}, Actor: "test",
	})
	require.NoError(t, err)

	msg, err := Recommend(st, "proj", "", "other", "")
	require.NoError(t, err)
	assert.Contains(t, msg, "Next.js")
}

func TestRecommend_SimilarToMissingFallsBackToCategory(t *testing.T) {
	msg, err := Recommend(openTestStore(t), "proj", "", "ghost-project", "cli-tool")
	require.NoError(t, err)
	assert.Contains(t, msg, "No identity row recorded for project ghost-project")
	assert.Contains(t, msg, "standard flag/argument library")
}
