// Package identity implements the verify_identity / identity_set gate
// described in SPEC_FULL.md §4.6: per-project operational metadata that
// protects destructive actions behind a lock + hash verification and an
// append-only audit trail. The field set and storage itself live in
// internal/store (the closed Identity struct, SPEC_FULL.md §9 "dynamic
// mapping of configuration"); this package owns the gating business logic
// layered on top of that storage.
package identity

// ActionType is one of the eight verify_identity action classes
// (SPEC_FULL.md §3).
type ActionType string

const (
	ActionDeploy       ActionType = "deploy"
	ActionSSH          ActionType = "ssh"
	ActionPush         ActionType = "push"
	ActionPM2          ActionType = "pm2"
	ActionDBMigrate    ActionType = "db-migrate"
	ActionDockerRemote ActionType = "docker-remote"
	ActionProxyReload  ActionType = "proxy-reload"
	ActionServiceMgmt  ActionType = "service-mgmt"
)

// requiredFields maps each action class to the safety fields that must be
// set before verify_identity can return VERIFIED, grounded in the
// original's verify_identity.py required-field tables (SPEC_FULL.md §3).
var requiredFields = map[ActionType][]string{
	ActionDeploy:       {"deploy_ssh_alias", "deploy_ssh_host", "deploy_app_port", "deploy_path", "deploy_method", "domain_primary"},
	ActionSSH:          {"deploy_ssh_alias", "deploy_ssh_host", "deploy_ssh_user"},
	ActionPush:         {"github_repo_url", "git_production_branch"},
	ActionPM2:          {"pm2_process_name", "deploy_ssh_alias"},
	ActionDBMigrate:    {"db_type", "db_connection_hint", "deploy_ssh_alias"},
	ActionDockerRemote: {"deploy_ssh_alias", "deploy_ssh_host", "containerization"},
	ActionProxyReload:  {"reverse_proxy", "reverse_proxy_config_path", "deploy_ssh_alias"},
	ActionServiceMgmt:  {"deploy_ssh_alias", "deploy_ssh_host", "deploy_method"},
}

// ValidActionTypes lists the eight action classes in table order, used to
// build the "valid actions" enumeration in rejection messages.
var ValidActionTypes = []ActionType{
	ActionDeploy, ActionSSH, ActionPush, ActionPM2,
	ActionDBMigrate, ActionDockerRemote, ActionProxyReload, ActionServiceMgmt,
}

// IsValidAction reports whether action is one of the eight recognized
// classes.
func IsValidAction(action string) bool {
	_, ok := requiredFields[ActionType(action)]
	return ok
}

// RequiredFields returns the safety fields action_type requires, or an empty
// slice if action_type is not recognized.
func RequiredFields(action ActionType) []string {
	fields := requiredFields[action]
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}
