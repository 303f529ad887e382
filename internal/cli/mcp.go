package cli

import (
	"github.com/brendan.keane/rdmctl/internal/mcp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// MCPHandler handles MCP server commands
type MCPHandler struct {
	logger    zerolog.Logger
	operation *Handler
}

// NewMCPHandler creates a new MCP command handler sharing the operation
// handler's configuration and HTTP client
func NewMCPHandler(logger zerolog.Logger, operation *Handler) *MCPHandler {
	return &MCPHandler{
		logger:    logger.With().Str("handler", "mcp").Logger(),
		operation: operation,
	}
}

// SetLogger replaces the logger once flags have been parsed
func (h *MCPHandler) SetLogger(logger zerolog.Logger) {
	h.logger = logger.With().Str("handler", "mcp").Logger()
}

// Command builds "rdmctl mcp"
func (h *MCPHandler) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve every operation as an MCP tool over stdio",
		Args:  cobra.NoArgs,
		RunE:  h.Execute,
	}
	cmd.Flags().Bool("read-only", false, "Hide the create, update and delete tools (env: RDMCTL_MCP_READ_ONLY)")
	cmd.Flags().String("description", "", "Server instructions sent to the client (env: RDMCTL_MCP_DESCRIPTION)")
	return cmd
}

// Execute handles the MCP server command
func (h *MCPHandler) Execute(cmd *cobra.Command, args []string) error {
	cfg, err := h.operation.Config(cmd)
	if err != nil {
		return err
	}

	if readOnly, _ := cmd.Flags().GetBool("read-only"); readOnly {
		cfg.MCP.ReadOnly = true
	}
	if cmd.Flags().Changed("description") {
		cfg.MCP.Description, _ = cmd.Flags().GetString("description")
	}

	h.logger.Debug().
		Str("profile", cfg.ProfileName()).
		Bool("read_only", cfg.MCP.ReadOnly).
		Bool("sigv4", cfg.SigV4Enabled).
		Bool("continue_on_fail", cfg.ContinueOnFail).
		Msg("starting MCP server")

	server, err := mcp.NewServer(h.logger, cfg, h.operation.Dispatcher(cfg))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create MCP server")
		return err
	}

	h.logger.Debug().Msg("MCP server created, starting message loop")

	return server.Start()
}
