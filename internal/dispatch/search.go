package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/Aman-CERP/amanmcp-memory/internal/i18n"
	"github.com/Aman-CERP/amanmcp-memory/internal/search"
	"github.com/Aman-CERP/amanmcp-memory/internal/store"
)

// MaxLimit clamps the limit argument of memory_search and file_search
// (SPEC_FULL.md §6 tool surface table, "limit(≤10, default 5)").
// decision_log passes its limit to the store unclamped.
const MaxLimit = 10

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// MemorySearch implements the memory_search tool.
func (d *Dispatcher) MemorySearch(ctx context.Context, query, scope, kind string, limit int) (string, error) {
	project, _, _, err := d.active()
	if err != nil {
		return "", err
	}
	if scope == "" {
		scope = "project"
	}
	factKind := store.FactKind(kind)
	if kind != "" {
		if err := store.ValidateFactKind(factKind); err != nil {
			return "", err
		}
	}

	results, err := d.searcher.SearchFacts(ctx, query, project, scope, factKind, clampLimit(limit, 5))
	if err != nil {
		return "", err
	}
	return formatFactResults(results), nil
}

func formatFactResults(results []search.FactResult) string {
	if len(results) == 0 {
		return i18n.T("memory_search.no_results")
	}
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. [%s] %s (heat %.2f)\n", i+1, r.Fact.Kind, r.Fact.Content, r.Fact.Heat)
		switch r.Stale {
		case search.StaleStale:
			b.WriteString("   " + i18n.T("memory_search.stale_hint") + "\n")
		case search.StaleDeleted:
			b.WriteString("   " + i18n.T("memory_search.deleted_hint") + "\n")
		}
		if r.CrossProject {
			b.WriteString("   " + i18n.T("memory_search.cross_project", r.Fact.Project) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FileSearch implements the file_search tool.
func (d *Dispatcher) FileSearch(ctx context.Context, query, scope, fileFilter string, limit int) (string, error) {
	project, _, _, err := d.active()
	if err != nil {
		return "", err
	}
	projectFilter := project
	if scope == "all" {
		projectFilter = ""
	} else if scope != "" && scope != "project" {
		projectFilter = scope
	}

	results, err := d.searcher.SearchChunks(ctx, query, projectFilter, fileFilter, clampLimit(limit, 5))
	if err != nil {
		return "", err
	}
	return formatChunkResults(results), nil
}

func formatChunkResults(results []search.ChunkResult) string {
	if len(results) == 0 {
		return i18n.T("file_search.no_results")
	}
	var b strings.Builder
	for i, r := range results {
		title := r.Chunk.SectionTitle
		if title == "" {
			title = r.Chunk.FilePath
		}
		fmt.Fprintf(&b, "%d. %s — %s\n   %s\n", i+1, r.Chunk.FilePath, title, truncate(r.Chunk.Content, 200))
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
