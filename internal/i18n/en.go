package i18n

// enDict is the only locale shipped today. Keys are grouped by the
// component that owns them, mirroring the original's mcp-server/i18n.py
// key namespace (tool name prefix, dot, short name).
var enDict = map[string]string{
	"memory_write.saved":     "Saved.",
	"memory_write.updated":   "Updated existing fact.",
	"memory_write.unchanged": "No change — content matches the existing fact.",

	"memory_delete.result": "Deleted {0} fact(s).",

	"memory_search.no_results":  "No matching facts found.",
	"memory_search.stale_hint":  "(STALE — source file has changed since this was recorded; verify before relying on it)",
	"memory_search.deleted_hint": "(DELETED — source file no longer exists)",
	"memory_search.cross_project": "[from project: {0}]",

	"file_search.no_results": "No matching chunks found.",

	"session_bridge.no_bridge": "No bridge available from a previous session.",
	"session_bridge.saved":     "Bridge saved.",
	"session_bridge.empty":     "Bridge content must not be empty.",
	"session_bridge.no_session": "No active session to save a bridge against.",
	"session_bridge.header":    "## Session Bridge",

	"decision_log.none": "No decisions recorded yet.",

	"identity.unknown_field":  "Unknown identity field: {0}. Known fields: {1}.",
	"identity.locked":        "BLOCKED — safety fields are locked; re-lock to change: {0}.",
	"identity.locked_update": "updated (safety fields remain locked)",
	"identity.updated":       "updated",
	"identity.locked_now":    "locked",

	"verify.unknown_action":    "Unknown action_type {0}. Valid actions: {1}.",
	"verify.no_project":        "No active project — start a session first.",
	"verify.no_identity":       "BLOCKED — no identity row for this project. Required fields for {0}: {1}.",
	"verify.missing_fields":    "BLOCKED — missing required fields for {0}: {1}.",
	"verify.warning":           "WARNING — required fields are set but not locked. Review the values below and lock them before proceeding:\n{0}",
	"verify.tamper":            "BLOCKED — tamper detected: the identity row has been modified outside identity_set. Recorded hash no longer matches stored safety fields.",
	"verify.verified":          "VERIFIED for {0}. Confirm these values with the user before executing:\n{1}",

	"recommend.no_project":  "No active project — start a session first.",
	"recommend.similar_to":  "Reusing the tech stack recorded for project {0}:\n{1}",
	"recommend.similar_to_missing": "No identity row recorded for project {0}; falling back to the category rule table.",
	"recommend.rule":        "Recommended stack for category \"{0}\": {1}\nReasoning: {2}",
	"recommend.no_category":  "Provide a category (web-app, api-service, cli-tool, library) or a similar_to project name to get a recommendation.",
}
