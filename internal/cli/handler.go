// Package cli implements the rdmctl subcommands on top of the rdm runner
package cli

import (
	"io"
	"os"

	"github.com/brendan.keane/rdmctl/internal/config"
	"github.com/brendan.keane/rdmctl/internal/credentials"
	rdmhttp "github.com/brendan.keane/rdmctl/internal/http"
	"github.com/brendan.keane/rdmctl/internal/output"
	"github.com/brendan.keane/rdmctl/internal/rdm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Handler runs operation commands: flags become runner input, runner output
// goes through the jq filter to the configured writer.
type Handler struct {
	logger     zerolog.Logger
	out        io.Writer
	httpClient rdmhttp.HTTPClientProvider
	profiles   ProfileStore
}

// HandlerOption configures a Handler
type HandlerOption func(*Handler)

// WithOutput redirects command output, stdout by default
func WithOutput(w io.Writer) HandlerOption {
	return func(h *Handler) {
		h.out = w
	}
}

// WithHTTPClient replaces the Lambda-aware default HTTP client
func WithHTTPClient(c rdmhttp.HTTPClientProvider) HandlerOption {
	return func(h *Handler) {
		h.httpClient = c
	}
}

// NewHandler creates a new command handler
func NewHandler(logger zerolog.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		logger: logger.With().Str("handler", "operation").Logger(),
		out:    os.Stdout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SetLogger replaces the logger once flags have been parsed
func (h *Handler) SetLogger(logger zerolog.Logger) {
	h.logger = logger.With().Str("handler", "operation").Logger()
}

// Config returns the configuration stored on the command context by the
// root command, loading it from flags when absent.
func (h *Handler) Config(cmd *cobra.Command) (*config.Config, error) {
	if cfg, ok := config.FromContext(cmd.Context()); ok {
		return cfg, nil
	}

	cfg, err := config.LoadFromFlags(cmd.Flags())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load configuration")
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		h.logger.Error().Err(err).Msg("configuration validation failed")
		return nil, err
	}
	return cfg, nil
}

// Dispatcher builds a dispatcher using the credential chain of cfg
func (h *Handler) Dispatcher(cfg *config.Config) *rdm.Dispatcher {
	return h.dispatcherWithStore(cfg, cfg.CredentialStore())
}

func (h *Handler) dispatcherWithStore(cfg *config.Config, store credentials.Store) *rdm.Dispatcher {
	var client *rdmhttp.Client
	if h.httpClient != nil {
		client = rdmhttp.NewClientWithDependencies(h.logger, h.httpClient, store, cfg)
	} else {
		client = rdmhttp.NewClient(h.logger, cfg, store)
	}
	return rdm.NewDispatcher(h.logger, client, store, cfg.ProfileName())
}

// Run executes source and writes the resulting items
func (h *Handler) Run(cmd *cobra.Command, source rdm.ParameterSource) error {
	cfg, err := h.Config(cmd)
	if err != nil {
		return err
	}

	return h.run(cmd, cfg, source, cfg.ContinueOnFail)
}

func (h *Handler) run(cmd *cobra.Command, cfg *config.Config, source rdm.ParameterSource, continueOnFail bool) error {
	// the filter is compiled before any request is sent
	filter, err := output.NewFilter(cfg.JQ)
	if err != nil {
		return err
	}

	h.logger.Debug().
		Int("items", source.ItemCount()).
		Bool("continue_on_fail", continueOnFail).
		Str("jq", filter.String()).
		Msg("running operation")

	runner := rdm.NewRunner(h.logger, h.Dispatcher(cfg), rdm.WithContinueOnFail(continueOnFail))
	items, err := runner.Run(cmd.Context(), source)
	if err != nil {
		return err
	}

	if filter != nil {
		if items, err = filter.Apply(cmd.Context(), items); err != nil {
			return err
		}
	}

	return output.NewWriter(h.out, cfg.Output).Write(items)
}
