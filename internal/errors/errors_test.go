package errors

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SetsCategoryAndSeverity(t *testing.T) {
	err := New(ErrCodeNoActiveSession, "no active session")
	assert.Equal(t, CategoryPrerequisite, err.Category)
	assert.Equal(t, SeverityError, err.Severity)

	err = New(ErrCodeDatabaseBusy, "locked")
	assert.Equal(t, CategoryDatabase, err.Category)
	assert.Equal(t, SeverityWarning, err.Severity)
	assert.True(t, err.Retryable())
}

func TestForTool_WrapsMessage(t *testing.T) {
	got := ForTool("memory_search", New(ErrCodeInvalidQuery, "query too long"))
	assert.Equal(t, "Error in memory_search: [ERR_403_INVALID_QUERY] query too long", got)
}

func TestBlocked_EnumeratesFields(t *testing.T) {
	got := Blocked("missing required fields", []string{"deploy_ssh_alias", "domain_primary"})
	assert.Equal(t, "BLOCKED — missing required fields: deploy_ssh_alias, domain_primary", got)
}

func TestRetryBusy_StopsOnNonBusyError(t *testing.T) {
	calls := 0
	err := RetryBusy(context.Background(), 50*time.Millisecond, func() error {
		calls++
		return New(ErrCodeInvalidInput, "bad input")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryBusy_RetriesUntilBudgetExpires(t *testing.T) {
	calls := 0
	err := RetryBusy(context.Background(), 30*time.Millisecond, func() error {
		calls++
		return assertBusyErr{}
	})
	require.Error(t, err)
	assert.GreaterOrEqual(t, calls, 2)
}

type assertBusyErr struct{}

func (assertBusyErr) Error() string { return "database is locked" }
