package dispatch

import (
	"fmt"
	"strings"

	amerrors "github.com/Aman-CERP/amanmcp-memory/internal/errors"
	"github.com/Aman-CERP/amanmcp-memory/internal/i18n"
	"github.com/Aman-CERP/amanmcp-memory/internal/session"
)

// ProjectContext implements the project_context tool: the current
// project's briefing, its last bridge, and a few headline stats.
func (d *Dispatcher) ProjectContext() (string, error) {
	project, _, _, err := d.active()
	if err != nil {
		return "", err
	}
	if err := requireProject(project); err != nil {
		return "", err
	}

	p, err := d.store.GetProject(project)
	if err != nil {
		return "", err
	}
	bridge, err := session.LoadBridge(d.store, project)
	if err != nil {
		return "", err
	}
	facts, err := d.store.ListFactsByProject(project)
	if err != nil {
		return "", err
	}
	decisions, err := d.store.ListDecisions(project, 0)
	if err != nil {
		return "", err
	}
	indexed, err := d.store.ListIndexedFiles(project)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(p.DNAContent)
	b.WriteString("\n\n")
	b.WriteString(bridge)
	fmt.Fprintf(&b, "\n\nStats: %d fact(s), %d decision(s), %d indexed file(s)\n", len(facts), len(decisions), len(indexed))
	return strings.TrimRight(b.String(), "\n"), nil
}

// SessionBridge implements the session_bridge tool.
func (d *Dispatcher) SessionBridge(action, content string) (string, error) {
	project, sessionID, _, err := d.active()
	if err != nil {
		return "", err
	}

	switch action {
	case "", "load":
		if err := requireProject(project); err != nil {
			return "", err
		}
		return session.LoadBridge(d.store, project)
	case "save":
		if err := session.SaveBridge(d.store, sessionID, content); err != nil {
			return "", err
		}
		return i18n.T("session_bridge.saved"), nil
	default:
		return "", amerrors.New(amerrors.ErrCodeInvalidInput, "unknown session_bridge action "+action+"; expected \"load\" or \"save\"")
	}
}

// DecisionLog implements the decision_log tool: the most recent decisions
// for project (defaulting to the active project), optionally filtered by a
// case-insensitive substring over decision/reason/alternatives.
func (d *Dispatcher) DecisionLog(query, project string, limit int) (string, error) {
	if project == "" {
		active, _, _, err := d.active()
		if err != nil {
			return "", err
		}
		project = active
	}
	if err := requireProject(project); err != nil {
		return "", err
	}

	decisions, err := d.store.ListDecisions(project, limit)
	if err != nil {
		return "", err
	}

	if query != "" {
		needle := strings.ToLower(query)
		filtered := decisions[:0]
		for _, dec := range decisions {
			haystack := strings.ToLower(dec.Decision + " " + dec.Reason + " " + dec.Alternatives)
			if strings.Contains(haystack, needle) {
				filtered = append(filtered, dec)
			}
		}
		decisions = filtered
	}

	if len(decisions) == 0 {
		return i18n.T("decision_log.none"), nil
	}

	var b strings.Builder
	for i, dec := range decisions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, dec.Decision)
		if dec.Reason != "" {
			fmt.Fprintf(&b, "   reason: %s\n", dec.Reason)
		}
		if dec.Alternatives != "" {
			fmt.Fprintf(&b, "   alternatives: %s\n", dec.Alternatives)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
