package mcp

import (
	"context"

	"github.com/brendan.keane/rdmctl/internal/config"
	"github.com/brendan.keane/rdmctl/internal/errors"
	"github.com/brendan.keane/rdmctl/internal/logger"
	"github.com/brendan.keane/rdmctl/internal/rdm"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// ServerName and ServerVersion are reported in the initialize handshake
const (
	ServerName    = "rdmctl"
	ServerVersion = "1.0.0"
)

// Backend is what the tools call into, usually a *rdm.Dispatcher
type Backend interface {
	rdm.Executor
	ResourceTypes(ctx context.Context) ([]rdm.Option, error)
}

// Server exposes every supported operation as an MCP tool over stdio
type Server struct {
	logger    zerolog.Logger
	config    *config.Config
	backend   Backend
	mcpServer *server.MCPServer
}

// NewServer creates the server and registers its tools
func NewServer(log zerolog.Logger, cfg *config.Config, backend Backend) (*Server, error) {
	if backend == nil {
		return nil, errors.New(errors.ErrorTypeMCP, "MCP server requires a backend")
	}

	opts := []server.ServerOption{server.WithToolCapabilities(false)}
	if cfg.MCP.Description != "" {
		opts = append(opts, server.WithInstructions(cfg.MCP.Description))
	}

	s := &Server{
		logger:    logger.ForComponent(log, "mcp_server"),
		config:    cfg,
		backend:   backend,
		mcpServer: server.NewMCPServer(ServerName, ServerVersion, opts...),
	}

	for _, tool := range s.tools() {
		s.mcpServer.AddTool(tool.definition, tool.handler)
	}

	return s, nil
}

// Start serves MCP messages on stdin/stdout until stdin closes
func (s *Server) Start() error {
	s.logger.Debug().
		Bool("read_only", s.config.MCP.ReadOnly).
		Msg("MCP server started, reading from stdin")

	if err := server.ServeStdio(s.mcpServer); err != nil {
		s.logger.Error().Err(err).Msg("MCP server stopped with error")
		return errors.Wrap(err, errors.ErrorTypeMCP, "MCP server failed")
	}

	s.logger.Debug().Msg("MCP server stopped")
	return nil
}

// HandleMessage processes one JSON-RPC message
func (s *Server) HandleMessage(ctx context.Context, raw []byte) mcp.JSONRPCMessage {
	return s.mcpServer.HandleMessage(ctx, raw)
}
