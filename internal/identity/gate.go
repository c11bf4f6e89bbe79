package identity

import (
	"sort"
	"strings"

	amerrors "github.com/Aman-CERP/amanmcp-memory/internal/errors"
	"github.com/Aman-CERP/amanmcp-memory/internal/i18n"
	"github.com/Aman-CERP/amanmcp-memory/internal/store"
)

// Gate implements verify_identity and identity_set over a Store
// (SPEC_FULL.md §4.6). It holds no state of its own; every call re-reads
// the current identity row so concurrent mutations from another process
// are always observed.
type Gate struct {
	store *store.Store
}

// NewGate builds a Gate backed by st.
func NewGate(st *store.Store) *Gate {
	return &Gate{store: st}
}

// IdentitySet validates fields against the closed field set, refuses a
// locked-safety-field mutation without a re-lock, applies the update, and
// optionally (re)locks the safety fields (SPEC_FULL.md §4.6 Mutation).
func (g *Gate) IdentitySet(project string, fields map[string]string, lockSafety bool, actor, sessionID string) (string, error) {
	for field := range fields {
		if !store.IsKnownField(field) {
			return "", amerrors.New(amerrors.ErrCodeUnknownField,
				i18n.T("identity.unknown_field", field, strings.Join(allFieldNames(), ", ")))
		}
	}

	id, err := g.store.UpsertIdentity(store.IdentityUpdate{
		Project:    project,
		Fields:     fields,
		Actor:      actor,
		SessionID:  sessionID,
		LockSafety: lockSafety,
	})
	if err == store.ErrSafetyLocked {
		var attempted []string
		for field := range fields {
			if store.IsSafetyField(field) {
				attempted = append(attempted, field)
			}
		}
		sort.Strings(attempted)
		return "", amerrors.New(amerrors.ErrCodeLockedRowMutation,
			i18n.T("identity.locked", strings.Join(attempted, ", ")))
	}
	if err != nil {
		return "", err
	}

	if lockSafety {
		return i18n.T("identity.locked_now") + " (hash " + id.SafetyLockHash + ")", nil
	}
	if id.SafetyLockedAt != nil {
		return i18n.T("identity.locked_update"), nil
	}
	return i18n.T("identity.updated"), nil
}

func allFieldNames() []string {
	all := append(append([]string{}, store.SafetyFieldNames...), store.TechFieldNames...)
	sort.Strings(all)
	return all
}

// VerifyIdentity implements the five-step gating sequence of SPEC_FULL.md
// §4.6. project must already be resolved by the caller (the active
// session's project); an empty project means "no active project".
func (g *Gate) VerifyIdentity(project, actionType string) (string, error) {
	if project == "" {
		return "", amerrors.New(amerrors.ErrCodeNoActiveProject, i18n.T("verify.no_project"))
	}
	if !IsValidAction(actionType) {
		return "", amerrors.New(amerrors.ErrCodeUnknownAction,
			i18n.T("verify.unknown_action", actionType, joinActions()))
	}
	action := ActionType(actionType)
	required := RequiredFields(action)

	id, err := g.store.GetIdentity(project)
	if err != nil {
		return "", err
	}
	if id == nil {
		return "", amerrors.New(amerrors.ErrCodeNoIdentityRow,
			i18n.T("verify.no_identity", actionType, strings.Join(required, ", ")))
	}

	var missing []string
	for _, field := range required {
		if id.Get(field) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return "", amerrors.New(amerrors.ErrCodeMissingRequired,
			i18n.T("verify.missing_fields", actionType, strings.Join(missing, ", ")))
	}

	if id.SafetyLockedAt == nil {
		return i18n.T("verify.warning", formatFields(id, required)), nil
	}

	if store.ComputeSafetyLockHash(id) != id.SafetyLockHash {
		return "", amerrors.New(amerrors.ErrCodeHashMismatch, i18n.T("verify.tamper"))
	}

	if err := g.store.RecordVerification(project); err != nil {
		return "", err
	}
	return i18n.T("verify.verified", actionType, formatFields(id, required)), nil
}

func formatFields(id *store.Identity, fields []string) string {
	var b strings.Builder
	for _, f := range fields {
		b.WriteString("  ")
		b.WriteString(f)
		b.WriteString(" = ")
		b.WriteString(id.Get(f))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func joinActions() string {
	names := make([]string, len(ValidActionTypes))
	for i, a := range ValidActionTypes {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}
