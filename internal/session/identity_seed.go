package session

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/Aman-CERP/amanmcp-memory/internal/store"
)

// manifestDeps is the subset of package.json this module reads: its two
// dependency maps, keyed by package name.
type manifestDeps struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// SeedIdentity inspects projectPath for framework/language/containerization/
// git-remote signals and returns the tech fields to seed a fresh Identity
// row (SPEC_FULL.md §4.5 step 4). Called only when no Identity row exists
// yet; never overwrites an existing one.
func SeedIdentity(projectPath string) map[string]string {
	fields := map[string]string{}

	framework, uiLibrary, hasUIFramework := seedFromPackageJSON(projectPath, fields)
	_ = framework

	seedLanguage(projectPath, fields)
	seedContainerization(projectPath, fields)
	seedGitRemote(projectPath, fields)

	fields["project_category"] = deriveCategory(projectPath, hasUIFramework)
	if uiLibrary != "" {
		fields["ui_library"] = uiLibrary
	}
	return fields
}

// seedFromPackageJSON reads package.json's dependency maps for framework and
// UI-library signals, writing directly into fields, and reports the
// framework name plus whether it counts as a UI framework for category
// derivation.
func seedFromPackageJSON(projectPath string, fields map[string]string) (framework, uiLibrary string, hasUIFramework bool) {
	data, err := os.ReadFile(filepath.Join(projectPath, "package.json"))
	if err != nil {
		return "", "", false
	}
	var manifest manifestDeps
	if err := json.Unmarshal(data, &manifest); err != nil {
		return "", "", false
	}

	deps := map[string]string{}
	for k, v := range manifest.Dependencies {
		deps[k] = v
	}
	for k, v := range manifest.DevDependencies {
		deps[k] = v
	}

	switch {
	case has(deps, "next"):
		framework, hasUIFramework = "Next.js", true
		fields["framework"] = "Next.js"
		fields["language"] = "JavaScript"
	case has(deps, "react"):
		framework, hasUIFramework = "React", true
		fields["framework"] = "React"
		fields["language"] = "JavaScript"
	case has(deps, "vue"):
		framework, hasUIFramework = "Vue", true
		fields["framework"] = "Vue"
		fields["language"] = "JavaScript"
	case has(deps, "express"):
		framework = "Express"
		fields["framework"] = "Express"
		fields["language"] = "JavaScript"
	case has(deps, "fastify"):
		framework = "Fastify"
		fields["framework"] = "Fastify"
		fields["language"] = "JavaScript"
	}

	switch {
	case has(deps, "tailwindcss"):
		uiLibrary = "Tailwind CSS"
		fields["css_approach"] = "Tailwind CSS"
	case has(deps, "@mui/material"):
		uiLibrary = "MUI"
	case has(deps, "bootstrap"):
		uiLibrary = "Bootstrap"
	}

	fields["package_manager"] = detectPackageManager(projectPath)
	return framework, uiLibrary, hasUIFramework
}

func has(deps map[string]string, name string) bool {
	_, ok := deps[name]
	return ok
}

func detectPackageManager(projectPath string) string {
	switch {
	case exists(filepath.Join(projectPath, "pnpm-lock.yaml")):
		return "pnpm"
	case exists(filepath.Join(projectPath, "yarn.lock")):
		return "yarn"
	case exists(filepath.Join(projectPath, "package-lock.json")):
		return "npm"
	default:
		return ""
	}
}

// seedLanguage derives Identity.language from the presence of a
// language-specific manifest, skipped if package.json already set it.
func seedLanguage(projectPath string, fields map[string]string) {
	if fields["language"] != "" {
		return
	}
	switch {
	case exists(filepath.Join(projectPath, "requirements.txt")), exists(filepath.Join(projectPath, "pyproject.toml")):
		fields["language"] = "Python"
	case exists(filepath.Join(projectPath, "composer.json")):
		fields["language"] = "PHP"
	case exists(filepath.Join(projectPath, "go.mod")):
		fields["language"] = "Go"
	}
}

func seedContainerization(projectPath string, fields map[string]string) {
	if exists(filepath.Join(projectPath, "Dockerfile")) || exists(filepath.Join(projectPath, "docker-compose.yml")) {
		fields["containerization"] = "Docker"
	}
}

// seedGitRemote reads .git/config's [remote "origin"] url as the repo URL,
// and the org only for github.com remotes (SPEC_FULL.md §4.5 step 4).
func seedGitRemote(projectPath string, fields map[string]string) {
	f, err := os.Open(filepath.Join(projectPath, ".git", "config"))
	if err != nil {
		return
	}
	defer f.Close()

	inOrigin := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "[") {
			inOrigin = strings.EqualFold(line, `[remote "origin"]`)
			continue
		}
		if !inOrigin || !strings.HasPrefix(line, "url") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		url := strings.TrimSpace(parts[1])
		fields["github_repo_url"] = url
		if org := githubOrgFromURL(url); org != "" {
			fields["github_org"] = org
		}
		return
	}
}

// githubOrgFromURL extracts the org segment from a github.com remote URL,
// whether HTTPS (https://github.com/org/repo.git) or SSH
// (git@github.com:org/repo.git).
func githubOrgFromURL(url string) string {
	if !strings.Contains(url, "github.com") {
		return ""
	}
	trimmed := strings.TrimSuffix(url, ".git")
	var path string
	switch {
	case strings.Contains(trimmed, "github.com/"):
		path = strings.SplitN(trimmed, "github.com/", 2)[1]
	case strings.Contains(trimmed, "github.com:"):
		path = strings.SplitN(trimmed, "github.com:", 2)[1]
	default:
		return ""
	}
	segments := strings.Split(path, "/")
	if len(segments) < 2 {
		return ""
	}
	return segments[0]
}

// deriveCategory implements exactly the three outcomes SPEC_FULL.md §4.5
// step 4 names for project_category: web-app when a UI framework signal
// was found, cli-tool for a cmd/ directory with no UI framework, library
// otherwise. The tool surface lists "api-service" as a recognized category
// value elsewhere (§6, recommend_tech), but no auto-derivation rule
// produces it here — it is only ever set explicitly via identity_set.
func deriveCategory(projectPath string, hasUIFramework bool) string {
	if hasUIFramework {
		return "web-app"
	}
	if info, err := os.Stat(filepath.Join(projectPath, "cmd")); err == nil && info.IsDir() {
		return "cli-tool"
	}
	return "library"
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ApplySeed writes seeded fields into a fresh Identity row via the store,
// bypassing the Gate's field-name validation since the seed only ever
// produces known field names.
func ApplySeed(st *store.Store, project string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	_, err := st.UpsertIdentity(store.IdentityUpdate{
		Project: project,
		Fields:  fields,
		Actor:   "auto-seed",
	})
	return err
}
