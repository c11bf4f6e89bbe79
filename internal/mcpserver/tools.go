package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// TextOutput is the shared output shape for every tool: one formatted
// block of text, matching what a human-facing AI client renders directly.
type TextOutput struct {
	Result string `json:"result" jsonschema:"the tool's formatted text result"`
}

// MemorySearchInput is the memory_search tool's input.
type MemorySearchInput struct {
	Query string `json:"query" jsonschema:"the search query"`
	Scope string `json:"scope,omitempty" jsonschema:"project (default), all, or a project name"`
	Kind  string `json:"kind,omitempty" jsonschema:"filter by fact kind: decision, fact, pattern, issue, task, skill, gotcha, procedure, error_fix, command, performance, api_contract, dependency, or client_rule"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum results, default 5, capped at 10"`
}

// MemoryWriteInput is the memory_write tool's input.
type MemoryWriteInput struct {
	Content    string `json:"content" jsonschema:"the fact content to remember"`
	Kind       string `json:"kind,omitempty" jsonschema:"decision, fact, pattern, issue, task, skill, gotcha, procedure, error_fix, command, performance, api_contract, dependency, or client_rule; default fact"`
	Tags       string `json:"tags,omitempty" jsonschema:"comma-separated tags"`
	Domain     string `json:"domain,omitempty" jsonschema:"free-form domain label"`
	SourceFile string `json:"source_file,omitempty" jsonschema:"path the fact was derived from, used for dedup"`
}

// MemoryDeleteInput is the memory_delete tool's input.
type MemoryDeleteInput struct {
	IDs []string `json:"ids" jsonschema:"fact ids to delete"`
}

// FileSearchInput is the file_search tool's input.
type FileSearchInput struct {
	Query      string `json:"query" jsonschema:"the search query"`
	Scope      string `json:"scope,omitempty" jsonschema:"project (default), all, or a project name"`
	FileFilter string `json:"file_filter,omitempty" jsonschema:"glob to restrict matched files"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum results, default 5, capped at 10"`
}

// ProjectContextInput is the project_context tool's input (no arguments).
type ProjectContextInput struct{}

// SessionBridgeInput is the session_bridge tool's input.
type SessionBridgeInput struct {
	Action  string `json:"action,omitempty" jsonschema:"load (default) or save"`
	Content string `json:"content,omitempty" jsonschema:"bridge content, required for action=save"`
}

// DecisionLogInput is the decision_log tool's input.
type DecisionLogInput struct {
	Query   string `json:"query,omitempty" jsonschema:"case-insensitive substring filter"`
	Project string `json:"project,omitempty" jsonschema:"project name, defaults to the active project"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum decisions returned, default 20"`
}

// VerifyIdentityInput is the verify_identity tool's input.
type VerifyIdentityInput struct {
	ActionType string `json:"action_type" jsonschema:"deploy, ssh, push, pm2, db-migrate, docker-remote, proxy-reload, or service-mgmt"`
}

// IdentitySetInput is the identity_set tool's input.
type IdentitySetInput struct {
	Fields     map[string]string `json:"fields" jsonschema:"identity fields to set, keyed by field name"`
	LockSafety bool              `json:"lock_safety,omitempty" jsonschema:"lock the safety field set after applying"`
}

// RecommendTechInput is the recommend_tech tool's input.
type RecommendTechInput struct {
	Description string `json:"description,omitempty" jsonschema:"what is being built"`
	SimilarTo   string `json:"similar_to,omitempty" jsonschema:"echo another project's tech stack instead of the rule table"`
	Category    string `json:"category,omitempty" jsonschema:"web-app, api-service, cli-tool, or library"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "memory_search",
		Description: "Search remembered facts, decisions, patterns, and issues for the active project.",
	}, s.handleMemorySearch)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "memory_write",
		Description: "Remember a fact, decision, pattern, or issue for the active project.",
	}, s.handleMemoryWrite)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "memory_delete",
		Description: "Delete remembered facts by id.",
	}, s.handleMemoryDelete)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "file_search",
		Description: "Search indexed source and documentation chunks for the active project.",
	}, s.handleFileSearch)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "project_context",
		Description: "Return the active project's briefing, last session bridge, and headline stats.",
	}, s.handleProjectContext)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "session_bridge",
		Description: "Load the last session's handoff note, or save one for the current session.",
	}, s.handleSessionBridge)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "decision_log",
		Description: "List recorded decisions for a project, optionally filtered by a search term.",
	}, s.handleDecisionLog)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "verify_identity",
		Description: "Check whether a risky action class (deploy, ssh, push, ...) has its required identity fields set and locked.",
	}, s.handleVerifyIdentity)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "identity_set",
		Description: "Set project identity fields, optionally locking the safety field set.",
	}, s.handleIdentitySet)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "recommend_tech",
		Description: "Recommend a technology stack for a described project, or echo a similar project's stack.",
	}, s.handleRecommendTech)
}

func (s *Server) handleMemorySearch(ctx context.Context, _ *mcp.CallToolRequest, in MemorySearchInput) (*mcp.CallToolResult, TextOutput, error) {
	result, err := s.d.MemorySearch(ctx, in.Query, in.Scope, in.Kind, in.Limit)
	if err != nil {
		return nil, TextOutput{}, boundary("memory_search", err)
	}
	return nil, TextOutput{Result: result}, nil
}

func (s *Server) handleMemoryWrite(ctx context.Context, _ *mcp.CallToolRequest, in MemoryWriteInput) (*mcp.CallToolResult, TextOutput, error) {
	result, err := s.d.MemoryWrite(ctx, in.Content, in.Kind, in.Tags, in.Domain, in.SourceFile)
	if err != nil {
		return nil, TextOutput{}, boundary("memory_write", err)
	}
	return nil, TextOutput{Result: result}, nil
}

func (s *Server) handleMemoryDelete(_ context.Context, _ *mcp.CallToolRequest, in MemoryDeleteInput) (*mcp.CallToolResult, TextOutput, error) {
	result, err := s.d.MemoryDelete(in.IDs)
	if err != nil {
		return nil, TextOutput{}, boundary("memory_delete", err)
	}
	return nil, TextOutput{Result: result}, nil
}

func (s *Server) handleFileSearch(ctx context.Context, _ *mcp.CallToolRequest, in FileSearchInput) (*mcp.CallToolResult, TextOutput, error) {
	result, err := s.d.FileSearch(ctx, in.Query, in.Scope, in.FileFilter, in.Limit)
	if err != nil {
		return nil, TextOutput{}, boundary("file_search", err)
	}
	return nil, TextOutput{Result: result}, nil
}

func (s *Server) handleProjectContext(_ context.Context, _ *mcp.CallToolRequest, _ ProjectContextInput) (*mcp.CallToolResult, TextOutput, error) {
	result, err := s.d.ProjectContext()
	if err != nil {
		return nil, TextOutput{}, boundary("project_context", err)
	}
	return nil, TextOutput{Result: result}, nil
}

func (s *Server) handleSessionBridge(_ context.Context, _ *mcp.CallToolRequest, in SessionBridgeInput) (*mcp.CallToolResult, TextOutput, error) {
	result, err := s.d.SessionBridge(in.Action, in.Content)
	if err != nil {
		return nil, TextOutput{}, boundary("session_bridge", err)
	}
	return nil, TextOutput{Result: result}, nil
}

func (s *Server) handleDecisionLog(_ context.Context, _ *mcp.CallToolRequest, in DecisionLogInput) (*mcp.CallToolResult, TextOutput, error) {
	result, err := s.d.DecisionLog(in.Query, in.Project, in.Limit)
	if err != nil {
		return nil, TextOutput{}, boundary("decision_log", err)
	}
	return nil, TextOutput{Result: result}, nil
}

func (s *Server) handleVerifyIdentity(_ context.Context, _ *mcp.CallToolRequest, in VerifyIdentityInput) (*mcp.CallToolResult, TextOutput, error) {
	result, err := s.d.VerifyIdentity(in.ActionType)
	if err != nil {
		return nil, TextOutput{}, boundary("verify_identity", err)
	}
	return nil, TextOutput{Result: result}, nil
}

func (s *Server) handleIdentitySet(_ context.Context, _ *mcp.CallToolRequest, in IdentitySetInput) (*mcp.CallToolResult, TextOutput, error) {
	result, err := s.d.IdentitySet(in.Fields, in.LockSafety)
	if err != nil {
		return nil, TextOutput{}, boundary("identity_set", err)
	}
	return nil, TextOutput{Result: result}, nil
}

func (s *Server) handleRecommendTech(_ context.Context, _ *mcp.CallToolRequest, in RecommendTechInput) (*mcp.CallToolResult, TextOutput, error) {
	result, err := s.d.RecommendTech(in.Description, in.SimilarTo, in.Category)
	if err != nil {
		return nil, TextOutput{}, boundary("recommend_tech", err)
	}
	return nil, TextOutput{Result: result}, nil
}
