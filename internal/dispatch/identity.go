package dispatch

import "github.com/Aman-CERP/amanmcp-memory/internal/recommend"

// VerifyIdentity implements the verify_identity tool.
func (d *Dispatcher) VerifyIdentity(actionType string) (string, error) {
	project, _, _, err := d.active()
	if err != nil {
		return "", err
	}
	return d.gate.VerifyIdentity(project, actionType)
}

// IdentitySet implements the identity_set tool.
func (d *Dispatcher) IdentitySet(fields map[string]string, lockSafety bool) (string, error) {
	project, sessionID, _, err := d.active()
	if err != nil {
		return "", err
	}
	if err := requireProject(project); err != nil {
		return "", err
	}
	return d.gate.IdentitySet(project, fields, lockSafety, "user-explicit", sessionID)
}

// RecommendTech implements the recommend_tech tool.
func (d *Dispatcher) RecommendTech(description, similarTo, category string) (string, error) {
	project, _, _, err := d.active()
	if err != nil {
		return "", err
	}
	return recommend.Recommend(d.store, project, description, similarTo, category)
}
