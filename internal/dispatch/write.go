package dispatch

import (
	"context"

	amerrors "github.com/Aman-CERP/amanmcp-memory/internal/errors"
	"github.com/Aman-CERP/amanmcp-memory/internal/i18n"
	"github.com/Aman-CERP/amanmcp-memory/internal/memory"
	"github.com/Aman-CERP/amanmcp-memory/internal/store"
)

// MemoryWrite implements the memory_write tool.
func (d *Dispatcher) MemoryWrite(ctx context.Context, content, kind, tags, domain, sourceFile string) (string, error) {
	project, sessionID, projectPath, err := d.active()
	if err != nil {
		return "", err
	}
	if err := requireProject(project); err != nil {
		return "", err
	}
	if kind == "" {
		kind = string(store.KindFact)
	}
	return d.writer.Write(ctx, memory.Input{
		Project:     project,
		ProjectPath: projectPath,
		SessionID:   sessionID,
		Content:     content,
		Kind:        store.FactKind(kind),
		Domain:      domain,
		Tags:        tags,
		SourceFile:  sourceFile,
	})
}

// MemoryDelete implements the memory_delete tool.
func (d *Dispatcher) MemoryDelete(ids []string) (string, error) {
	if len(ids) == 0 {
		return "", amerrors.New(amerrors.ErrCodeInvalidInput, "ids must not be empty")
	}
	n, err := d.writer.Delete(ids)
	if err != nil {
		return "", err
	}
	return i18n.T("memory_delete.result", n), nil
}
