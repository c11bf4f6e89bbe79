package session

import (
	"fmt"
	"strings"
	"time"

	amerrors "github.com/Aman-CERP/amanmcp-memory/internal/errors"
	"github.com/Aman-CERP/amanmcp-memory/internal/i18n"
	"github.com/Aman-CERP/amanmcp-memory/internal/store"
)

// maxEmergencyChanges and maxEmergencyFacts cap the synthesized emergency
// bridge (SPEC_FULL.md §4.5 session_end).
const (
	maxEmergencyChanges   = 10
	maxEmergencyFactChars = 80
	maxEmergencyFacts     = 5
)

// SynthesizeEmergencyBridge builds a bridge from a session's raw Changes
// and Facts when it closed without explicit bridge content: a header line,
// up to 10 distinct "path (action)" entries with a "+N more" suffix, then
// up to 5 fact previews truncated to 80 characters as "[kind] preview". A
// session with neither changes nor facts gets a single placeholder line.
func SynthesizeEmergencyBridge(changes []*store.Change, facts []*store.Fact) string {
	var b strings.Builder
	b.WriteString(i18n.T("session_bridge.header"))
	b.WriteString("\n\n")

	if len(changes) == 0 && len(facts) == 0 {
		b.WriteString("(no changes or facts recorded before this session ended)")
		return b.String()
	}

	if len(changes) > 0 {
		b.WriteString("Files touched:\n")
		seen := make(map[string]struct{})
		var distinct []string
		for _, c := range changes {
			key := c.FilePath + " (" + string(c.Action) + ")"
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			distinct = append(distinct, key)
		}
		shown := distinct
		extra := 0
		if len(shown) > maxEmergencyChanges {
			extra = len(shown) - maxEmergencyChanges
			shown = shown[:maxEmergencyChanges]
		}
		for _, line := range shown {
			b.WriteString("- ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		if extra > 0 {
			b.WriteString(fmt.Sprintf("- +%d more\n", extra))
		}
	}

	if len(facts) > 0 {
		b.WriteString("\nFacts recorded:\n")
		n := len(facts)
		if n > maxEmergencyFacts {
			n = maxEmergencyFacts
		}
		for _, f := range facts[:n] {
			preview := f.Content
			if len(preview) > maxEmergencyFactChars {
				preview = preview[:maxEmergencyFactChars]
			}
			b.WriteString(fmt.Sprintf("- [%s] %s\n", f.Kind, preview))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// LoadBridge returns the most recent closed session's bridge text for
// project as stored, or the "no bridge" message.
func LoadBridge(st *store.Store, project string) (string, error) {
	sess, err := st.LatestClosedSession(project)
	if err != nil {
		return "", err
	}
	if sess == nil {
		return i18n.T("session_bridge.no_bridge"), nil
	}
	return sess.Bridge, nil
}

// SaveBridge writes content as the bridge of project's currently open
// session. Rejects empty content or a missing active session
// (SPEC_FULL.md §4.5 session_bridge tool, action=save).
func SaveBridge(st *store.Store, sessionID, content string) error {
	if strings.TrimSpace(content) == "" {
		return amerrors.New(amerrors.ErrCodeInvalidInput, i18n.T("session_bridge.empty"))
	}
	if sessionID == "" {
		return amerrors.New(amerrors.ErrCodeNoActiveSession, i18n.T("session_bridge.no_session"))
	}

	res, err := st.DB().Exec(
		`UPDATE sessions SET bridge_content = ? WHERE id = ? AND end_time IS NULL`,
		content, sessionID,
	)
	if err != nil {
		return amerrors.Wrap(amerrors.ErrCodeInternal, err, "save session bridge")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return amerrors.Wrap(amerrors.ErrCodeInternal, err, "save session bridge")
	}
	if n == 0 {
		return amerrors.New(amerrors.ErrCodeNoActiveSession, i18n.T("session_bridge.no_session"))
	}
	return nil
}

// CrashMarkerSummary is the summary text stamped on a session recovered by
// the next session_start after it was abandoned.
func CrashMarkerSummary(startTime time.Time) string {
	return fmt.Sprintf("[recovered: session abandoned, started %s]", startTime.UTC().Format(time.RFC3339))
}
