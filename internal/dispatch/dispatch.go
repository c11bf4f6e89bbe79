// Package dispatch implements the ten memory_* / session_* / identity_*
// operations the tool surface exposes (SPEC_FULL.md §6), wiring together
// the Store, Searcher, Writer, Gate, and the active-session descriptor.
// Each method returns the exact text a tool call answers with; the MCP
// transport layer (internal/mcpserver) owns converting a returned error
// into the "Error in <tool>: <message>" boundary text (SPEC_FULL.md §7).
package dispatch

import (
	"github.com/Aman-CERP/amanmcp-memory/internal/embed"
	amerrors "github.com/Aman-CERP/amanmcp-memory/internal/errors"
	"github.com/Aman-CERP/amanmcp-memory/internal/i18n"
	"github.com/Aman-CERP/amanmcp-memory/internal/identity"
	"github.com/Aman-CERP/amanmcp-memory/internal/memory"
	"github.com/Aman-CERP/amanmcp-memory/internal/search"
	"github.com/Aman-CERP/amanmcp-memory/internal/session"
	"github.com/Aman-CERP/amanmcp-memory/internal/store"
)

// Dispatcher holds everything a tool call needs, re-resolving the active
// project/session on every call (session.ReadDescriptor) so a long-lived
// server process always reflects whichever hook process most recently
// ran session_start.
type Dispatcher struct {
	store    *store.Store
	searcher *search.Searcher
	writer   *memory.Writer
	gate     *identity.Gate
}

// New builds a Dispatcher over st. emb may be nil to run lexical-only.
func New(st *store.Store, emb embed.Embedder) *Dispatcher {
	return &Dispatcher{
		store:    st,
		searcher: search.NewSearcher(st, emb),
		writer:   memory.NewWriter(st, emb),
		gate:     identity.NewGate(st),
	}
}

// active resolves the current active-session descriptor. project is "" and
// err is nil when no session is open — callers decide whether that is
// fatal for their tool.
func (d *Dispatcher) active() (project, sessionID, projectPath string, err error) {
	desc, err := session.ReadDescriptor()
	if err != nil {
		return "", "", "", err
	}
	if desc == nil {
		return "", "", "", nil
	}
	return desc.Project, desc.SessionID, desc.ProjectPath, nil
}

func requireProject(project string) error {
	if project == "" {
		return amerrors.New(amerrors.ErrCodeNoActiveProject, i18n.T("verify.no_project"))
	}
	return nil
}
