package errors

import "fmt"

// ForTool converts any error into the tool-boundary textual form
// ("Error in <tool>: <message>") mandated by SPEC_FULL.md §7. This keeps the
// MCP stdio transport alive regardless of what failed underneath a tool call.
func ForTool(tool string, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error in %s: %s", tool, err.Error())
}

// Blocked formats a BLOCKED response enumerating the offending fields,
// used by the identity gate (§4.6) for both missing-field and tamper cases.
func Blocked(reason string, fields []string) string {
	if len(fields) == 0 {
		return fmt.Sprintf("BLOCKED — %s", reason)
	}
	list := fields[0]
	for _, f := range fields[1:] {
		list += ", " + f
	}
	return fmt.Sprintf("BLOCKED — %s: %s", reason, list)
}
