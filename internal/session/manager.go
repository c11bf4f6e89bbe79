package session

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	amerrors "github.com/Aman-CERP/amanmcp-memory/internal/errors"
	"github.com/Aman-CERP/amanmcp-memory/internal/indexer"
	"github.com/Aman-CERP/amanmcp-memory/internal/store"
)

// StartResult is everything session_start produces, ready to be rendered
// into the project's instruction file and/or returned to the caller.
type StartResult struct {
	SessionID        string
	Project          string
	Briefing         string
	LastBridge       string
	CrashNotice      string
	InstructionBlock string
}

// Manager drives the session_start/file_change/session_end state machine
// described in SPEC_FULL.md §4.5, coordinating the Store, the Indexer, and
// the active-session descriptor.
type Manager struct {
	store      *store.Store
	reconciler *indexer.Reconciler
	crashGrace time.Duration
}

// NewManager builds a Manager. rec may be nil, in which case session_start
// skips the indexing pass.
func NewManager(st *store.Store, rec *indexer.Reconciler, crashGrace time.Duration) *Manager {
	return &Manager{store: st, reconciler: rec, crashGrace: crashGrace}
}

// Start runs the full session_start sequence for the project rooted at
// projectPath: resolve identity, register/touch the project, recover any
// crashed session, seed the Identity row, build the briefing, open a new
// session, persist the active-session descriptor, and (budget permitting)
// run the Indexer.
func (m *Manager) Start(ctx context.Context, projectPath string, indexBudget time.Duration) (*StartResult, error) {
	project := ResolveProjectName(projectPath)

	if err := m.store.RegisterOrTouchProject(project, projectPath); err != nil {
		return nil, err
	}

	crashNotice, err := m.recoverCrashedSession(project)
	if err != nil {
		return nil, err
	}

	id, err := m.store.GetIdentity(project)
	if err != nil {
		return nil, err
	}
	if id == nil {
		seeded := SeedIdentity(projectPath)
		if err := ApplySeed(m.store, project, seeded); err != nil {
			return nil, err
		}
		id, err = m.store.GetIdentity(project)
		if err != nil {
			return nil, err
		}
	}

	briefing := GenerateBriefing(projectPath, id)
	if err := m.store.UpdateProjectDNA(project, briefing); err != nil {
		return nil, err
	}

	lastBridge, err := LoadBridge(m.store, project)
	if err != nil {
		return nil, err
	}

	sess := &store.Session{Project: project}
	if err := m.store.CreateSession(sess); err != nil {
		return nil, err
	}

	if err := WriteDescriptor(Descriptor{
		SessionID:   sess.ID,
		Project:     project,
		ProjectPath: projectPath,
		StartTime:   sess.StartTime,
	}); err != nil {
		return nil, err
	}

	block := BuildInstructionBlock(briefing, lastBridge, crashNotice)
	instructionPath := filepath.Join(projectPath, "CLAUDE.md")
	if err := InjectInstructionBlock(instructionPath, block); err != nil {
		return nil, err
	}

	if m.reconciler != nil && indexBudget > 0 {
		_, _ = m.reconciler.Reconcile(ctx, project, projectPath, indexBudget)
	}

	return &StartResult{
		SessionID:        sess.ID,
		Project:          project,
		Briefing:         briefing,
		LastBridge:       lastBridge,
		CrashNotice:      crashNotice,
		InstructionBlock: block,
	}, nil
}

// recoverCrashedSession finds the project's most recent open session older
// than the crash grace window, synthesizes an emergency bridge if it has
// none, and closes it with a crash-marker summary. Returns a human-readable
// notice describing what was recovered, or "" if nothing needed recovery.
func (m *Manager) recoverCrashedSession(project string) (string, error) {
	open, err := m.store.MostRecentOpenSession(project)
	if err != nil || open == nil {
		return "", err
	}
	if time.Since(open.StartTime) < m.crashGrace {
		return "", nil
	}

	if open.Bridge == "" {
		changes, err := m.store.ListChangesForSession(open.ID)
		if err != nil {
			return "", err
		}
		facts, err := m.store.ListFactsByProject(project)
		if err != nil {
			return "", err
		}
		open.Bridge = SynthesizeEmergencyBridge(changes, sessionFacts(facts, open.ID))
	}

	if err := m.store.CloseSession(open.ID, open.StartTime, CrashMarkerSummary(open.StartTime), open.Bridge, 0, 0); err != nil {
		return "", err
	}

	return "Recovered a session abandoned on " + open.StartTime.UTC().Format(time.RFC3339) + ".", nil
}

func sessionFacts(facts []*store.Fact, sessionID string) []*store.Fact {
	var out []*store.Fact
	for _, f := range facts {
		if f.SessionID == sessionID {
			out = append(out, f)
		}
	}
	return out
}

// RecordFileChange appends a Change row for an active session, silently
// swallowing any error per SPEC_FULL.md §4.5 file_change's "completes in
// under 100ms, any error is swallowed silently".
func (m *Manager) RecordFileChange(sessionID, project, path string, action store.ChangeAction) {
	_ = m.store.InsertChange(&store.Change{
		SessionID: sessionID,
		Project:   project,
		FilePath:  path,
		Action:    action,
	})
}

// End runs session_end: closes the session with final counts, synthesizing
// an emergency bridge if the session never had one, appends a line to the
// textual session-end log, and clears the active-session descriptor.
func (m *Manager) End(sessionID string, logWriter func(string) error) error {
	sess, err := m.store.GetSession(sessionID)
	if err != nil {
		return err
	}

	changes, err := m.store.ListChangesForSession(sessionID)
	if err != nil {
		return err
	}
	allFacts, err := m.store.ListFactsByProject(sess.Project)
	if err != nil {
		return err
	}
	facts := sessionFacts(allFacts, sessionID)

	bridge := sess.Bridge
	if bridge == "" {
		bridge = SynthesizeEmergencyBridge(changes, facts)
	}

	now := time.Now().UTC()
	if err := m.store.CloseSession(sessionID, now, summarize(sess.Project, len(changes), len(facts)), bridge, len(facts), len(changes)); err != nil {
		return err
	}

	if logWriter != nil {
		line := now.Format(time.RFC3339) + " session=" + sessionID + " project=" + sess.Project +
			" changes=" + itoa(len(changes)) + " facts=" + itoa(len(facts))
		if err := logWriter(line); err != nil {
			return amerrors.Wrap(amerrors.ErrCodeFilePermission, err, "write session-end log")
		}
	}

	return ClearDescriptor()
}

func summarize(project string, changes, facts int) string {
	return "Session on " + project + ": " + itoa(changes) + " file change(s), " + itoa(facts) + " fact(s) recorded."
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}

// ResolveProjectName implements SPEC_FULL.md §4.5 step 1: package manifest
// name, then project config name, then directory basename.
func ResolveProjectName(projectPath string) string {
	if name := nameFromPackageJSON(projectPath); name != "" {
		return name
	}
	if name := nameFromPyproject(projectPath); name != "" {
		return name
	}
	if name := nameFromGoMod(projectPath); name != "" {
		return name
	}
	return filepath.Base(projectPath)
}

func nameFromPackageJSON(projectPath string) string {
	data, err := os.ReadFile(filepath.Join(projectPath, "package.json"))
	if err != nil {
		return ""
	}
	var manifest struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return ""
	}
	return manifest.Name
}

// nameFromPyproject scans pyproject.toml line by line for a name = "..."
// key under [project] or [tool.poetry], avoiding a full TOML dependency for
// a single scalar lookup.
func nameFromPyproject(projectPath string) string {
	f, err := os.Open(filepath.Join(projectPath, "pyproject.toml"))
	if err != nil {
		return ""
	}
	defer f.Close()

	inRelevantSection := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "[") {
			inRelevantSection = line == "[project]" || line == "[tool.poetry]"
			continue
		}
		if !inRelevantSection || !strings.HasPrefix(line, "name") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		return strings.Trim(strings.TrimSpace(parts[1]), `"'`)
	}
	return ""
}

func nameFromGoMod(projectPath string) string {
	f, err := os.Open(filepath.Join(projectPath, "go.mod"))
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "module ") {
			modulePath := strings.TrimSpace(strings.TrimPrefix(line, "module"))
			segments := strings.Split(modulePath, "/")
			return segments[len(segments)-1]
		}
	}
	return ""
}
