// Package store implements the embedded relational knowledge base:
// schema, CRUD, the lexical (FTS5) index, and the vector (HNSW) index
// described in SPEC_FULL.md §3 and §4.1. It owns every piece of durable
// state; no other package writes to disk on its own.
package store

import (
	"time"

	amerrors "github.com/Aman-CERP/amanmcp-memory/internal/errors"
)

// FactKind is one of the 14 closed fact tags (SPEC_FULL.md §3).
type FactKind string

const (
	KindDecision    FactKind = "decision"
	KindFact        FactKind = "fact"
	KindPattern     FactKind = "pattern"
	KindIssue       FactKind = "issue"
	KindTask        FactKind = "task"
	KindSkill       FactKind = "skill"
	KindGotcha      FactKind = "gotcha"
	KindProcedure   FactKind = "procedure"
	KindErrorFix    FactKind = "error_fix"
	KindCommand     FactKind = "command"
	KindPerformance FactKind = "performance"
	KindAPIContract FactKind = "api_contract"
	KindDependency  FactKind = "dependency"
	KindClientRule  FactKind = "client_rule"
)

var validFactKinds = map[FactKind]struct{}{
	KindDecision: {}, KindFact: {}, KindPattern: {}, KindIssue: {},
	KindTask: {}, KindSkill: {}, KindGotcha: {}, KindProcedure: {},
	KindErrorFix: {}, KindCommand: {}, KindPerformance: {},
	KindAPIContract: {}, KindDependency: {}, KindClientRule: {},
}

// ValidateFactKind fails fast on any kind outside the closed set
// (SPEC_FULL.md §3 global invariant).
func ValidateFactKind(k FactKind) error {
	if _, ok := validFactKinds[k]; !ok {
		return amerrors.New(amerrors.ErrCodeUnknownFactKind, "unknown fact kind: "+string(k))
	}
	return nil
}

// HeatFloor and HeatCeil clamp a Fact's heat to [0.05, 1.0].
const (
	HeatFloor = 0.05
	HeatCeil  = 1.0
)

// ClampHeat enforces the heat invariant.
func ClampHeat(h float64) float64 {
	if h < HeatFloor {
		return HeatFloor
	}
	if h > HeatCeil {
		return HeatCeil
	}
	return h
}

// ChangeAction is one of the three recognized change actions.
type ChangeAction string

const (
	ActionCreate ChangeAction = "create"
	ActionEdit   ChangeAction = "edit"
	ActionDelete ChangeAction = "delete"
)

// Project is a registered project root (SPEC_FULL.md §3).
type Project struct {
	Name        string
	Path        string
	DNAContent  string
	DNAUpdated  *time.Time
	Created     time.Time
	LastSession *time.Time
}

// Session is one open-to-closed working session on a project.
type Session struct {
	ID           string
	Project      string
	StartTime    time.Time
	EndTime      *time.Time
	Summary      string
	Bridge       string
	FactsCount   int
	ChangesCount int
}

// Fact is an atomic memory unit (SPEC_FULL.md §3).
type Fact struct {
	ID           string
	Project      string
	Content      string
	Kind         FactKind
	Domain       string
	Tags         string
	Timestamp    time.Time
	Heat         float64
	LastAccessed *time.Time
	SourceFile   string
	SourceMtime  *float64
	SessionID    string
	RowID        int64
}

// Chunk is one section of an indexed project document (SPEC_FULL.md §3).
type Chunk struct {
	ID            int64
	Project       string
	FilePath      string
	FileMtime     float64
	SectionTitle  string
	ChunkIndex    int
	Content       string
	RowID         int64
}

// Decision is an append-only decision log entry.
type Decision struct {
	ID           string
	Project      string
	Decision     string
	Reason       string
	Alternatives string
	Timestamp    time.Time
	SessionID    string
}

// Change is an append-only file-change log entry.
type Change struct {
	ID        int64
	SessionID string
	Project   string
	FilePath  string
	Action    ChangeAction
	Timestamp time.Time
}

// Audit is an append-only record of a safety-field mutation.
type Audit struct {
	ID        int64
	Project   string
	Field     string
	OldValue  string
	NewValue  string
	Actor     string
	Reason    string
	SessionID string
	Timestamp time.Time
}
