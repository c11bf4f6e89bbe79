package store

import (
	"strconv"
	"time"
)

// Identity is the per-project operational metadata row (SPEC_FULL.md §3,
// §4.6): 20 safety fields gating destructive actions, 14 tech fields
// describing the stack, plus lock bookkeeping. Modeled as a closed struct
// with optional fields per SPEC_FULL.md §9's "dynamic mapping of
// configuration" design note, rather than an open map, so the 34 names
// are fixed at compile time and validated on every mutation.
type Identity struct {
	Project string

	// Safety fields (20) — gate destructive actions via verify_identity.
	DeploySSHAlias         string
	DeploySSHHost          string
	DeploySSHPort          int
	DeploySSHUser          string
	DeployAppPort          int
	DeployPath             string
	DeployMethod           string
	PM2ProcessName         string
	PM2ProcessID           int
	GithubRepoURL          string
	GithubOrg              string
	GitProductionBranch    string
	DomainPrimary          string
	DomainAliases          string
	ReverseProxy           string
	ReverseProxyConfigPath string
	DBType                 string
	DBConnectionHint       string
	EnvFilePattern         string
	EnvSecretsNote         string

	// Tech fields (14) — descriptive only, never gated.
	Framework        string
	FrameworkVersion string
	Language         string
	CSSApproach      string
	UILibrary        string
	DBTechnology     string
	HostingPattern   string
	Containerization string
	DesignSystem     string
	DesignFonts      string
	DesignNotes      string
	BuildTool        string
	PackageManager   string
	ProjectCategory  string

	// Lock bookkeeping.
	SafetyLockedAt     *time.Time
	SafetyLockedBy     string
	SafetyLastVerified *time.Time
	SafetyLockHash     string

	Created time.Time
	Updated time.Time
}

// SafetyFieldNames lists the 20 safety-field keys accepted by identity_set,
// in the declaration order used to build the Identity struct. Sorted order
// (used for the lock hash) is computed separately in SortedSafetyFieldNames.
var SafetyFieldNames = []string{
	"deploy_ssh_alias", "deploy_ssh_host", "deploy_ssh_port", "deploy_ssh_user",
	"deploy_app_port", "deploy_path", "deploy_method",
	"pm2_process_name", "pm2_process_id",
	"github_repo_url", "github_org", "git_production_branch",
	"domain_primary", "domain_aliases",
	"reverse_proxy", "reverse_proxy_config_path",
	"db_type", "db_connection_hint",
	"env_file_pattern", "env_secrets_note",
}

// TechFieldNames lists the 14 tech-field keys accepted by identity_set.
var TechFieldNames = []string{
	"framework", "framework_version", "language",
	"css_approach", "ui_library", "db_technology",
	"hosting_pattern", "containerization",
	"design_system", "design_fonts", "design_notes",
	"build_tool", "package_manager", "project_category",
}

var safetyFieldSet = fieldSet(SafetyFieldNames)
var techFieldSet = fieldSet(TechFieldNames)
var allFieldSet = fieldSet(append(append([]string{}, SafetyFieldNames...), TechFieldNames...))

func fieldSet(names []string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

// IsSafetyField reports whether field is one of the 20 safety fields.
func IsSafetyField(field string) bool {
	_, ok := safetyFieldSet[field]
	return ok
}

// IsKnownField reports whether field is any recognized identity field
// (safety or tech).
func IsKnownField(field string) bool {
	_, ok := allFieldSet[field]
	return ok
}

// SortedSafetyFieldNames returns the safety field names in sorted order, the
// order the lock hash is computed over (SPEC_FULL.md §4.6).
func SortedSafetyFieldNames() []string {
	out := make([]string, len(SafetyFieldNames))
	copy(out, SafetyFieldNames)
	// Field names are already alphabetically close but not guaranteed
	// sorted; sort explicitly since the hash is a contract.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// Get returns the named field's string value for hashing/display purposes.
// Unknown fields return "".
func (id *Identity) Get(field string) string {
	switch field {
	case "deploy_ssh_alias":
		return id.DeploySSHAlias
	case "deploy_ssh_host":
		return id.DeploySSHHost
	case "deploy_ssh_port":
		return itoaIfSet(id.DeploySSHPort)
	case "deploy_ssh_user":
		return id.DeploySSHUser
	case "deploy_app_port":
		return itoaIfSet(id.DeployAppPort)
	case "deploy_path":
		return id.DeployPath
	case "deploy_method":
		return id.DeployMethod
	case "pm2_process_name":
		return id.PM2ProcessName
	case "pm2_process_id":
		return itoaIfSet(id.PM2ProcessID)
	case "github_repo_url":
		return id.GithubRepoURL
	case "github_org":
		return id.GithubOrg
	case "git_production_branch":
		return id.GitProductionBranch
	case "domain_primary":
		return id.DomainPrimary
	case "domain_aliases":
		return id.DomainAliases
	case "reverse_proxy":
		return id.ReverseProxy
	case "reverse_proxy_config_path":
		return id.ReverseProxyConfigPath
	case "db_type":
		return id.DBType
	case "db_connection_hint":
		return id.DBConnectionHint
	case "env_file_pattern":
		return id.EnvFilePattern
	case "env_secrets_note":
		return id.EnvSecretsNote
	case "framework":
		return id.Framework
	case "framework_version":
		return id.FrameworkVersion
	case "language":
		return id.Language
	case "css_approach":
		return id.CSSApproach
	case "ui_library":
		return id.UILibrary
	case "db_technology":
		return id.DBTechnology
	case "hosting_pattern":
		return id.HostingPattern
	case "containerization":
		return id.Containerization
	case "design_system":
		return id.DesignSystem
	case "design_fonts":
		return id.DesignFonts
	case "design_notes":
		return id.DesignNotes
	case "build_tool":
		return id.BuildTool
	case "package_manager":
		return id.PackageManager
	case "project_category":
		return id.ProjectCategory
	default:
		return ""
	}
}

// Set assigns value to the named field. Caller must validate the field name
// with IsKnownField first.
func (id *Identity) Set(field, value string) {
	switch field {
	case "deploy_ssh_alias":
		id.DeploySSHAlias = value
	case "deploy_ssh_host":
		id.DeploySSHHost = value
	case "deploy_ssh_port":
		id.DeploySSHPort = atoiIfSet(value)
	case "deploy_ssh_user":
		id.DeploySSHUser = value
	case "deploy_app_port":
		id.DeployAppPort = atoiIfSet(value)
	case "deploy_path":
		id.DeployPath = value
	case "deploy_method":
		id.DeployMethod = value
	case "pm2_process_name":
		id.PM2ProcessName = value
	case "pm2_process_id":
		id.PM2ProcessID = atoiIfSet(value)
	case "github_repo_url":
		id.GithubRepoURL = value
	case "github_org":
		id.GithubOrg = value
	case "git_production_branch":
		id.GitProductionBranch = value
	case "domain_primary":
		id.DomainPrimary = value
	case "domain_aliases":
		id.DomainAliases = value
	case "reverse_proxy":
		id.ReverseProxy = value
	case "reverse_proxy_config_path":
		id.ReverseProxyConfigPath = value
	case "db_type":
		id.DBType = value
	case "db_connection_hint":
		id.DBConnectionHint = value
	case "env_file_pattern":
		id.EnvFilePattern = value
	case "env_secrets_note":
		id.EnvSecretsNote = value
	case "framework":
		id.Framework = value
	case "framework_version":
		id.FrameworkVersion = value
	case "language":
		id.Language = value
	case "css_approach":
		id.CSSApproach = value
	case "ui_library":
		id.UILibrary = value
	case "db_technology":
		id.DBTechnology = value
	case "hosting_pattern":
		id.HostingPattern = value
	case "containerization":
		id.Containerization = value
	case "design_system":
		id.DesignSystem = value
	case "design_fonts":
		id.DesignFonts = value
	case "design_notes":
		id.DesignNotes = value
	case "build_tool":
		id.BuildTool = value
	case "package_manager":
		id.PackageManager = value
	case "project_category":
		id.ProjectCategory = value
	}
}

func itoaIfSet(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func atoiIfSet(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
