// Package session implements the session_start/file_change/session_end
// state machine, the cross-process active-session descriptor, project
// identity auto-seeding, and the project briefing/bridge tooling
// (SPEC_FULL.md §4.5).
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	amerrors "github.com/Aman-CERP/amanmcp-memory/internal/errors"
	"github.com/Aman-CERP/amanmcp-memory/internal/logging"
)

// Descriptor is the JSON shape of active_session.json (SPEC_FULL.md §6
// Persisted file layout), the one piece of state every short-lived hook
// process reads to find the currently open session without touching the
// Store.
type Descriptor struct {
	SessionID   string    `json:"session_id"`
	Project     string    `json:"project"`
	ProjectPath string    `json:"project_path"`
	StartTime   time.Time `json:"start_time"`
}

// DescriptorPath is where the active-session descriptor lives, rooted at
// the shared data home so every process on the machine finds the same
// file regardless of working directory.
func DescriptorPath() string {
	return filepath.Join(logging.DataHome(), "active_session.json")
}

func descriptorLock() *flock.Flock {
	return flock.New(DescriptorPath() + ".lock")
}

// WriteDescriptor atomically (temp-file-plus-rename, under an flock guard)
// writes d as the active session, following the same pattern teacher's
// FileLock wraps for its own download lock.
func WriteDescriptor(d Descriptor) error {
	path := DescriptorPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return amerrors.Wrap(amerrors.ErrCodeFilePermission, err, "create data home")
	}

	lock := descriptorLock()
	if err := lock.Lock(); err != nil {
		return amerrors.Wrap(amerrors.ErrCodeFilePermission, err, "lock active session descriptor")
	}
	defer lock.Unlock()

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return amerrors.Wrap(amerrors.ErrCodeInternal, err, "marshal active session descriptor")
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return amerrors.Wrap(amerrors.ErrCodeFilePermission, err, "write active session descriptor")
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return amerrors.Wrap(amerrors.ErrCodeFilePermission, err, "rename active session descriptor")
	}
	return nil
}

// ReadDescriptor returns the current active session, or nil if none is
// recorded.
func ReadDescriptor() (*Descriptor, error) {
	lock := descriptorLock()
	if err := lock.Lock(); err != nil {
		return nil, amerrors.Wrap(amerrors.ErrCodeFilePermission, err, "lock active session descriptor")
	}
	defer lock.Unlock()

	data, err := os.ReadFile(DescriptorPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, amerrors.Wrap(amerrors.ErrCodeFilePermission, err, "read active session descriptor")
	}
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, amerrors.Wrap(amerrors.ErrCodeFileCorrupt, err, "parse active session descriptor")
	}
	return &d, nil
}

// ClearDescriptor removes the active-session descriptor, called at the end
// of session_end. Missing file is not an error.
func ClearDescriptor() error {
	lock := descriptorLock()
	if err := lock.Lock(); err != nil {
		return amerrors.Wrap(amerrors.ErrCodeFilePermission, err, "lock active session descriptor")
	}
	defer lock.Unlock()

	if err := os.Remove(DescriptorPath()); err != nil && !os.IsNotExist(err) {
		return amerrors.Wrap(amerrors.ErrCodeFilePermission, err, "remove active session descriptor")
	}
	return nil
}
