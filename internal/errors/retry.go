package errors

import (
	"context"
	"strings"
	"time"
)

// RetryBusy retries fn while it reports SQLite's "database is locked"/"busy"
// condition, honoring the store's own busy_timeout rather than layering a
// second application-level lock on top (SPEC_FULL.md §9, Cross-process
// coordination). The overall wait is bounded by budget; once exceeded the
// last error is returned as-is so the caller can surface ErrCodeDatabaseBusy.
func RetryBusy(ctx context.Context, budget time.Duration, fn func() error) error {
	deadline := time.Now().Add(budget)
	backoff := 10 * time.Millisecond

	for {
		err := fn()
		if err == nil || !looksBusy(err) {
			return err
		}
		if time.Now().After(deadline) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		if backoff < 200*time.Millisecond {
			backoff *= 2
		}
	}
}

func looksBusy(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "sqlite_busy")
}
