package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"strings"
	"time"

	amerrors "github.com/Aman-CERP/amanmcp-memory/internal/errors"
)

// ComputeSafetyLockHash hashes the 20 safety fields of id, sorted by field
// name and joined as "field=value", truncated to 16 hex characters
// (SPEC_FULL.md §4.6). The truncation matches the original tool's hash
// length; it is a tamper check, not a security boundary.
func ComputeSafetyLockHash(id *Identity) string {
	names := SortedSafetyFieldNames()
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + id.Get(name)
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])[:16]
}

// GetIdentity fetches the identity row for project, or nil if none exists.
func (s *Store) GetIdentity(project string) (*Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getIdentityLocked(project)
}

func (s *Store) getIdentityLocked(project string) (*Identity, error) {
	row := s.db.QueryRow(`
		SELECT project, deploy_ssh_alias, deploy_ssh_host, deploy_ssh_port, deploy_ssh_user,
			deploy_app_port, deploy_path, deploy_method, pm2_process_name, pm2_process_id,
			github_repo_url, github_org, git_production_branch, domain_primary, domain_aliases,
			reverse_proxy, reverse_proxy_config_path, db_type, db_connection_hint,
			env_file_pattern, env_secrets_note,
			framework, framework_version, language, css_approach, ui_library, db_technology,
			hosting_pattern, containerization, design_system, design_fonts, design_notes,
			build_tool, package_manager, project_category,
			safety_locked_at, safety_locked_by, safety_last_verified, safety_lock_hash,
			created, updated
		FROM project_identity WHERE project = ?`, project)

	var id Identity
	var sshPort, appPort, pm2PID sql.NullInt64
	var sshHost, sshUser, deployPath, deployMethod, pm2Name, repoURL, org, prodBranch string
	var domainPrimary, domainAliases, revProxy, revProxyPath, dbType, dbHint, envPattern, envNote string
	var framework, frameworkVer, language, cssApproach, uiLib, dbTech string
	var hostingPattern, containerization, designSystem, designFonts, designNotes string
	var buildTool, pkgMgr, category string
	var lockedAt, lockedBy, lastVerified, lockHash sql.NullString
	var created, updated string

	err := row.Scan(&id.Project, &id.DeploySSHAlias, &sshHost, &sshPort, &sshUser,
		&appPort, &deployPath, &deployMethod, &pm2Name, &pm2PID,
		&repoURL, &org, &prodBranch, &domainPrimary, &domainAliases,
		&revProxy, &revProxyPath, &dbType, &dbHint,
		&envPattern, &envNote,
		&framework, &frameworkVer, &language, &cssApproach, &uiLib, &dbTech,
		&hostingPattern, &containerization, &designSystem, &designFonts, &designNotes,
		&buildTool, &pkgMgr, &category,
		&lockedAt, &lockedBy, &lastVerified, &lockHash,
		&created, &updated,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "get identity")
	}

	id.DeploySSHHost = sshHost
	id.DeploySSHPort = int(sshPort.Int64)
	id.DeploySSHUser = sshUser
	id.DeployAppPort = int(appPort.Int64)
	id.DeployPath = deployPath
	id.DeployMethod = deployMethod
	id.PM2ProcessName = pm2Name
	id.PM2ProcessID = int(pm2PID.Int64)
	id.GithubRepoURL = repoURL
	id.GithubOrg = org
	id.GitProductionBranch = prodBranch
	id.DomainPrimary = domainPrimary
	id.DomainAliases = domainAliases
	id.ReverseProxy = revProxy
	id.ReverseProxyConfigPath = revProxyPath
	id.DBType = dbType
	id.DBConnectionHint = dbHint
	id.EnvFilePattern = envPattern
	id.EnvSecretsNote = envNote
	id.Framework = framework
	id.FrameworkVersion = frameworkVer
	id.Language = language
	id.CSSApproach = cssApproach
	id.UILibrary = uiLib
	id.DBTechnology = dbTech
	id.HostingPattern = hostingPattern
	id.Containerization = containerization
	id.DesignSystem = designSystem
	id.DesignFonts = designFonts
	id.DesignNotes = designNotes
	id.BuildTool = buildTool
	id.PackageManager = pkgMgr
	id.ProjectCategory = category
	id.SafetyLockedBy = lockedBy.String
	id.SafetyLockHash = lockHash.String
	id.Created = parseTimestamp(created)
	id.Updated = parseTimestamp(updated)
	if lockedAt.Valid {
		t := parseTimestamp(lockedAt.String)
		id.SafetyLockedAt = &t
	}
	if lastVerified.Valid {
		t := parseTimestamp(lastVerified.String)
		id.SafetyLastVerified = &t
	}
	return &id, nil
}

// IdentityUpdate is one identity_set call: a set of field=value pairs plus
// audit metadata. Caller has already validated field names with
// IsKnownField.
type IdentityUpdate struct {
	Project    string
	Fields     map[string]string
	Actor      string
	SessionID  string
	LockSafety bool
}

// ErrSafetyLocked is returned when an update tries to change a safety field
// on a locked identity without going through the explicit relock path.
var ErrSafetyLocked = amerrors.New(amerrors.ErrCodeLockedRowMutation, "safety fields are locked")

// UpsertIdentity creates or updates the identity row for u.Project, writing
// one audit row per changed safety field, then optionally locks the safety
// fields (SPEC_FULL.md §4.6). Returns the resulting identity row.
func (s *Store) UpsertIdentity(u IdentityUpdate) (*Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	existing, err := s.getIdentityLocked(u.Project)
	if err != nil {
		return nil, err
	}

	if existing != nil && existing.SafetyLockedAt != nil && !u.LockSafety {
		for field := range u.Fields {
			if IsSafetyField(field) {
				return nil, ErrSafetyLocked
			}
		}
	}

	if existing == nil {
		existing = &Identity{Project: u.Project, Created: now}
	}

	var auditRows []*Audit
	for field, value := range u.Fields {
		if IsSafetyField(field) {
			old := existing.Get(field)
			if old != value {
				auditRows = append(auditRows, &Audit{
					Project: u.Project, Field: field, OldValue: old, NewValue: value,
					Actor: u.Actor, SessionID: u.SessionID, Timestamp: now,
				})
			}
		}
		existing.Set(field, value)
	}
	existing.Updated = now

	if err := s.upsertIdentityRow(existing); err != nil {
		return nil, err
	}

	for _, a := range auditRows {
		if _, err := s.db.Exec(`
			INSERT INTO identity_audit_log (project, field_name, old_value, new_value, changed_by, reason, session_id, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			a.Project, a.Field, a.OldValue, a.NewValue, a.Actor, a.Reason, a.SessionID,
			a.Timestamp.Format(time.RFC3339),
		); err != nil {
			return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "insert identity audit row")
		}
	}

	if u.LockSafety {
		hash := ComputeSafetyLockHash(existing)
		existing.SafetyLockedAt = &now
		existing.SafetyLockedBy = "user"
		existing.SafetyLockHash = hash
		_, err := s.db.Exec(`
			UPDATE project_identity SET safety_locked_at = ?, safety_locked_by = 'user', safety_lock_hash = ?
			WHERE project = ?`,
			now.Format(time.RFC3339), hash, u.Project,
		)
		if err != nil {
			return nil, amerrors.Wrap(amerrors.ErrCodeInternal, err, "lock identity")
		}
	}

	return existing, nil
}

func (s *Store) upsertIdentityRow(id *Identity) error {
	_, err := s.db.Exec(`
		INSERT INTO project_identity (
			project, deploy_ssh_alias, deploy_ssh_host, deploy_ssh_port, deploy_ssh_user,
			deploy_app_port, deploy_path, deploy_method, pm2_process_name, pm2_process_id,
			github_repo_url, github_org, git_production_branch, domain_primary, domain_aliases,
			reverse_proxy, reverse_proxy_config_path, db_type, db_connection_hint,
			env_file_pattern, env_secrets_note,
			framework, framework_version, language, css_approach, ui_library, db_technology,
			hosting_pattern, containerization, design_system, design_fonts, design_notes,
			build_tool, package_manager, project_category,
			created, updated
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project) DO UPDATE SET
			deploy_ssh_alias=excluded.deploy_ssh_alias, deploy_ssh_host=excluded.deploy_ssh_host,
			deploy_ssh_port=excluded.deploy_ssh_port, deploy_ssh_user=excluded.deploy_ssh_user,
			deploy_app_port=excluded.deploy_app_port, deploy_path=excluded.deploy_path,
			deploy_method=excluded.deploy_method, pm2_process_name=excluded.pm2_process_name,
			pm2_process_id=excluded.pm2_process_id, github_repo_url=excluded.github_repo_url,
			github_org=excluded.github_org, git_production_branch=excluded.git_production_branch,
			domain_primary=excluded.domain_primary, domain_aliases=excluded.domain_aliases,
			reverse_proxy=excluded.reverse_proxy, reverse_proxy_config_path=excluded.reverse_proxy_config_path,
			db_type=excluded.db_type, db_connection_hint=excluded.db_connection_hint,
			env_file_pattern=excluded.env_file_pattern, env_secrets_note=excluded.env_secrets_note,
			framework=excluded.framework, framework_version=excluded.framework_version,
			language=excluded.language, css_approach=excluded.css_approach,
			ui_library=excluded.ui_library, db_technology=excluded.db_technology,
			hosting_pattern=excluded.hosting_pattern, containerization=excluded.containerization,
			design_system=excluded.design_system, design_fonts=excluded.design_fonts,
			design_notes=excluded.design_notes, build_tool=excluded.build_tool,
			package_manager=excluded.package_manager, project_category=excluded.project_category,
			updated=excluded.updated`,
		id.Project, id.DeploySSHAlias, id.DeploySSHHost, nullInt(id.DeploySSHPort), id.DeploySSHUser,
		nullInt(id.DeployAppPort), id.DeployPath, id.DeployMethod, id.PM2ProcessName, nullInt(id.PM2ProcessID),
		id.GithubRepoURL, id.GithubOrg, id.GitProductionBranch, id.DomainPrimary, id.DomainAliases,
		id.ReverseProxy, id.ReverseProxyConfigPath, id.DBType, id.DBConnectionHint,
		id.EnvFilePattern, id.EnvSecretsNote,
		id.Framework, id.FrameworkVersion, id.Language, id.CSSApproach, id.UILibrary, id.DBTechnology,
		id.HostingPattern, id.Containerization, id.DesignSystem, id.DesignFonts, id.DesignNotes,
		id.BuildTool, id.PackageManager, id.ProjectCategory,
		id.Created.Format(time.RFC3339), id.Updated.Format(time.RFC3339),
	)
	if err != nil {
		return amerrors.Wrap(amerrors.ErrCodeInternal, err, "upsert identity row")
	}
	return nil
}

// RecordVerification stamps safety_last_verified to now, called after a
// successful verify_identity check.
func (s *Store) RecordVerification(project string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`
		UPDATE project_identity SET safety_last_verified = ? WHERE project = ?`,
		time.Now().UTC().Format(time.RFC3339), project,
	)
	if err != nil {
		return amerrors.Wrap(amerrors.ErrCodeInternal, err, "record verification")
	}
	return nil
}

func nullInt(v int) interface{} {
	if v == 0 {
		return nil
	}
	return v
}
