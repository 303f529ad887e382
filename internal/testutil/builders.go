package testutil

import (
	"time"

	"github.com/brendan.keane/rdmctl/internal/config"
)

// ConfigBuilder provides a fluent interface for building test configurations
type ConfigBuilder struct {
	config config.Config
}

// NewConfigBuilder starts from the CLI defaults pointed at TestBaseURL
func NewConfigBuilder() *ConfigBuilder {
	cfg := config.NewConfig()
	cfg.BaseURL = TestBaseURL
	cfg.AccessToken = "test-token"
	cfg.CredentialSource = config.CredentialsEnv
	return &ConfigBuilder{config: *cfg}
}

// WithBaseURL sets the API root
func (b *ConfigBuilder) WithBaseURL(url string) *ConfigBuilder {
	b.config.BaseURL = url
	return b
}

// WithToken sets the access token
func (b *ConfigBuilder) WithToken(token string) *ConfigBuilder {
	b.config.AccessToken = token
	return b
}

// WithContinueOnFail enables per-item error isolation
func (b *ConfigBuilder) WithContinueOnFail() *ConfigBuilder {
	b.config.ContinueOnFail = true
	return b
}

// WithOutput sets the output format
func (b *ConfigBuilder) WithOutput(format string) *ConfigBuilder {
	b.config.Output = format
	return b
}

// WithJQ sets the output filter
func (b *ConfigBuilder) WithJQ(expr string) *ConfigBuilder {
	b.config.JQ = expr
	return b
}

// WithTimeout sets the request timeout
func (b *ConfigBuilder) WithTimeout(d time.Duration) *ConfigBuilder {
	b.config.Timeout = d
	return b
}

// WithSigV4 enables AWS SigV4 signing
func (b *ConfigBuilder) WithSigV4(service string) *ConfigBuilder {
	b.config.SigV4Enabled = true
	b.config.SigV4Service = service
	return b
}

// WithReadOnlyMCP hides mutating MCP tools
func (b *ConfigBuilder) WithReadOnlyMCP() *ConfigBuilder {
	b.config.MCP.ReadOnly = true
	return b
}

// Build returns a copy of the configured Config
func (b *ConfigBuilder) Build() *config.Config {
	cfg := b.config
	return &cfg
}
