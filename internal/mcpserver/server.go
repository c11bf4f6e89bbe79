// Package mcpserver exposes internal/dispatch's ten tool-surface
// operations over the Model Context Protocol, following the
// mcp.AddTool/typed-Input-Output pattern teacher's internal/mcp/server.go
// uses for its own tool registration.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/amanmcp-memory/internal/dispatch"
	"github.com/Aman-CERP/amanmcp-memory/pkg/version"
)

// Server wraps a dispatch.Dispatcher with the MCP protocol surface.
type Server struct {
	mcp    *mcp.Server
	d      *dispatch.Dispatcher
	logger *slog.Logger
}

// NewServer builds a Server over d and registers all ten tools.
func NewServer(d *dispatch.Dispatcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		d:      d,
		logger: logger,
	}
	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    "amanmcp-memory",
		Version: version.Version,
	}, nil)
	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP SDK server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Serve runs the server over stdio until ctx is canceled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting MCP server", slog.String("transport", "stdio"))
	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && err != context.Canceled {
		s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("MCP server stopped")
	return nil
}

// boundary converts a dispatch error into the tool boundary's plain-text
// convention: "Error in <tool>: <message>". Every handler below routes its
// error return through this before handing it to the SDK, since the SDK
// surfaces a non-nil error as the tool result's text content.
func boundary(tool string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("Error in %s: %s", tool, err.Error())
}
