package session

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/Aman-CERP/amanmcp-memory/internal/store"
)

const (
	blockBegin       = "<!-- AMANMCP:BEGIN -->"
	blockEnd         = "<!-- AMANMCP:END -->"
	legacyBlockBegin = "<!-- COGNILAYER:BEGIN -->"
	legacyBlockEnd   = "<!-- COGNILAYER:END -->"
)

// GenerateBriefing builds the project "DNA": a stack summary line from the
// identity's tech fields, a listing of top-level directories, and a deploy
// hint if deploy_method is set (SPEC_FULL.md §4.5 step 5).
func GenerateBriefing(projectPath string, id *store.Identity) string {
	var b strings.Builder

	b.WriteString("Stack: ")
	b.WriteString(stackSummary(id))
	b.WriteString("\n")

	if dirs := topLevelDirs(projectPath); len(dirs) > 0 {
		b.WriteString("Layout: ")
		b.WriteString(strings.Join(dirs, ", "))
		b.WriteString("\n")
	}

	if id != nil && id.DeployMethod != "" {
		b.WriteString("Deploy: ")
		b.WriteString(deployHint(id))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func stackSummary(id *store.Identity) string {
	if id == nil {
		return "unknown (no identity recorded yet)"
	}
	var parts []string
	if id.Language != "" {
		parts = append(parts, id.Language)
	}
	if id.Framework != "" {
		parts = append(parts, id.Framework)
	}
	if id.UILibrary != "" {
		parts = append(parts, id.UILibrary)
	}
	if id.DBTechnology != "" {
		parts = append(parts, id.DBTechnology)
	}
	if id.Containerization != "" {
		parts = append(parts, id.Containerization)
	}
	if len(parts) == 0 {
		return "unknown (no identity recorded yet)"
	}
	return strings.Join(parts, " + ")
}

func deployHint(id *store.Identity) string {
	hint := id.DeployMethod
	if id.PM2ProcessName != "" {
		hint += " (pm2: " + id.PM2ProcessName + ")"
	}
	if id.DomainPrimary != "" {
		hint += " -> " + id.DomainPrimary
	}
	return hint
}

func topLevelDirs(projectPath string) []string {
	entries, err := os.ReadDir(projectPath)
	if err != nil {
		return nil
	}
	var dirs []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		dirs = append(dirs, e.Name())
	}
	sort.Strings(dirs)
	return dirs
}

var legacyBlockPattern = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(legacyBlockBegin) + `.*?` + regexp.QuoteMeta(legacyBlockEnd))
var currentBlockPattern = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(blockBegin) + `.*?` + regexp.QuoteMeta(blockEnd))

// InjectInstructionBlock writes block, delimited by the begin/end markers,
// into the project's instruction file at instructionPath. Any existing
// block (current or legacy marker pair) is replaced in place; the file is
// created if missing. Newlines are normalized to \n (SPEC_FULL.md §4.5
// step 9).
func InjectInstructionBlock(instructionPath, block string) error {
	existing, err := os.ReadFile(instructionPath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	content := normalizeNewlines(string(existing))

	wrapped := blockBegin + "\n" + block + "\n" + blockEnd

	var next string
	switch {
	case currentBlockPattern.MatchString(content):
		next = currentBlockPattern.ReplaceAllLiteralString(content, wrapped)
	case legacyBlockPattern.MatchString(content):
		next = legacyBlockPattern.ReplaceAllLiteralString(content, wrapped)
	case content == "":
		next = wrapped + "\n"
	default:
		next = strings.TrimRight(content, "\n") + "\n\n" + wrapped + "\n"
	}

	if err := os.MkdirAll(filepath.Dir(instructionPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(instructionPath, []byte(next), 0o644)
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}

// BuildInstructionBlock assembles the injected block's body: a short
// preamble, the briefing, the last bridge if any, and an optional
// crash-recovery notice.
func BuildInstructionBlock(briefing, lastBridge, crashNotice string) string {
	var b strings.Builder
	b.WriteString("This project is tracked by amanmcp-memory. Use its tools to record decisions, gotchas, and context as you work.\n\n")
	b.WriteString(briefing)
	b.WriteString("\n")
	if lastBridge != "" {
		b.WriteString("\n## Last Session\n")
		b.WriteString(lastBridge)
		b.WriteString("\n")
	}
	if crashNotice != "" {
		b.WriteString("\n")
		b.WriteString(crashNotice)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
