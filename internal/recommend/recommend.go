// Package recommend implements recommend_tech: a deterministic rule table
// over a project's Identity tech fields, supplemented from
// original_source's tech_templates heuristic (SPEC_FULL.md §2.3, §6 Tool
// Surface).
package recommend

import (
	"strings"

	amerrors "github.com/Aman-CERP/amanmcp-memory/internal/errors"
	"github.com/Aman-CERP/amanmcp-memory/internal/i18n"
	"github.com/Aman-CERP/amanmcp-memory/internal/store"
)

// categories lists the four recognized project_category values, in the
// order enumerated in rejection and "no category" messages.
var categories = []string{"web-app", "api-service", "cli-tool", "library"}

func isKnownCategory(c string) bool {
	for _, k := range categories {
		if k == c {
			return true
		}
	}
	return false
}

// apiFrameworks maps a lowercased Identity.Language to the idiomatic
// backend framework recommend_tech proposes for category "api-service".
var apiFrameworks = map[string]string{
	"go":         "net/http with chi or gin",
	"node":       "Express",
	"javascript": "Express",
	"typescript": "Express (or NestJS for a larger service)",
	"python":     "FastAPI",
	"php":        "Laravel",
	"ruby":       "Rails",
}

// cliLibraries maps a lowercased Identity.Language to its idiomatic
// command-line flag/argument library for category "cli-tool".
var cliLibraries = map[string]string{
	"go":         "the standard flag package (or spf13/cobra for subcommands)",
	"node":       "commander",
	"javascript": "commander",
	"typescript": "commander",
	"python":     "argparse",
	"php":        "symfony/console",
	"ruby":       "optparse",
}

// Recommend implements recommend_tech. project must already be resolved by
// the caller (the active session's project); an empty project means "no
// active project". similarTo, when non-empty, takes priority: if a
// project of that name has an Identity row, its tech fields are echoed
// instead of the rule table.
func Recommend(st *store.Store, project, description, similarTo, category string) (string, error) {
	if project == "" {
		return "", amerrors.New(amerrors.ErrCodeNoActiveProject, i18n.T("recommend.no_project"))
	}

	var notice string
	if similarTo != "" {
		other, err := st.GetIdentity(similarTo)
		if err != nil {
			return "", err
		}
		if other != nil {
			return i18n.T("recommend.similar_to", similarTo, formatTechFields(other)), nil
		}
		notice = i18n.T("recommend.similar_to_missing", similarTo) + "\n"
	}

	if category == "" {
		if notice != "" {
			return strings.TrimRight(notice, "\n") + "\n" + i18n.T("recommend.no_category"), nil
		}
		return i18n.T("recommend.no_category"), nil
	}
	if !isKnownCategory(category) {
		return "", amerrors.New(amerrors.ErrCodeInvalidInput,
			"unknown category "+category+". Valid categories: "+strings.Join(categories, ", "))
	}

	current, err := st.GetIdentity(project)
	if err != nil {
		return "", err
	}

	stack, reasoning := rule(category, current)
	return notice + i18n.T("recommend.rule", category, stack, reasoning), nil
}

func rule(category string, id *store.Identity) (stack, reasoning string) {
	switch category {
	case "web-app":
		if id != nil && id.UILibrary != "" {
			return id.UILibrary, "this project already has ui_library=" + id.UILibrary + " recorded; reuse it instead of introducing a second UI stack"
		}
		return "React + Tailwind CSS", "the default web-app stack absent an existing ui_library override"

	case "api-service":
		lang := strings.ToLower(languageOf(id))
		if fw, ok := apiFrameworks[lang]; ok {
			return fw, lang + " projects in this codebase line up with " + fw
		}
		return "a framework idiomatic to your project's language", "no language is recorded for this project yet; set identity field \"language\" for a concrete suggestion"

	case "cli-tool":
		lang := strings.ToLower(languageOf(id))
		if lib, ok := cliLibraries[lang]; ok {
			return lib, lang + " CLI tools conventionally use " + lib
		}
		return "your language's standard flag/argument library", "no language is recorded for this project yet; set identity field \"language\" for a concrete suggestion"

	default: // library
		return "a minimal, dependency-light package with no framework", "libraries are consumed by other code, not run standalone, so a framework would only add weight"
	}
}

func languageOf(id *store.Identity) string {
	if id == nil {
		return ""
	}
	return id.Language
}

func formatTechFields(id *store.Identity) string {
	var b strings.Builder
	for _, field := range store.TechFieldNames {
		v := id.Get(field)
		if v == "" {
			continue
		}
		b.WriteString("  ")
		b.WriteString(field)
		b.WriteString(" = ")
		b.WriteString(v)
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return "  (no tech fields recorded)"
	}
	return strings.TrimRight(b.String(), "\n")
}
