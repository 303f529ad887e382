package config

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/brendan.keane/rdmctl/internal/credentials"
	"github.com/brendan.keane/rdmctl/internal/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Output formats
const (
	OutputJSON  = "json"
	OutputJSONL = "jsonl"
	OutputTable = "table"
)

// Credential sources
const (
	CredentialsEnv     = "env"
	CredentialsKeyring = "keyring"
	CredentialsAuto    = "auto"
)

// DefaultTimeout bounds a single HTTP round trip
const DefaultTimeout = 30 * time.Second

// Config holds all application configuration
type Config struct {
	// Connection
	BaseURL          string
	AccessToken      string
	Profile          string
	CredentialSource string
	Timeout          time.Duration

	// Run behaviour
	ContinueOnFail bool

	// Output
	Output string
	JQ     string

	// Authentication
	SigV4Enabled bool
	SigV4Service string

	Verbose bool
	Debug   bool

	Logger LoggerConfig

	// MCP settings
	MCP MCPConfig
}

// LoggerConfig holds logging flags
type LoggerConfig struct {
	Level  string
	Format string
}

// MCPConfig holds MCP-specific configuration
type MCPConfig struct {
	Description string
	ReadOnly    bool // hides create/update/delete tools
}

type contextKey string

const configKey contextKey = "config"

// WithConfig adds config to context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) (*Config, bool) {
	cfg, ok := ctx.Value(configKey).(*Config)
	return cfg, ok
}

// NewConfig creates a Config with default values
func NewConfig() *Config {
	return &Config{
		Profile:          credentials.DefaultProfile,
		CredentialSource: CredentialsAuto,
		Timeout:          DefaultTimeout,
		Output:           OutputJSON,
		SigV4Service:     "execute-api",
		Logger: LoggerConfig{
			Format: "pretty",
		},
	}
}

// LoadDotEnv loads variables from a .env file without overriding the
// process environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to load .env file").
			WithContext("path", path).
			WithContext("config_type", "dotenv")
	}
	return nil
}

// LoadFromFlags creates a Config from command line flags, falling back to
// RDMCTL_* environment variables for anything not set on the command line.
func LoadFromFlags(flags *pflag.FlagSet) (*Config, error) {
	config := NewConfig()

	var err error

	if config.BaseURL, err = flags.GetString("base-url"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get base-url flag")
	}

	if config.AccessToken, err = flags.GetString("token"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get token flag")
	}

	if config.Profile, err = flags.GetString("profile"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get profile flag")
	}

	if config.CredentialSource, err = flags.GetString("credentials"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get credentials flag")
	}

	if config.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get timeout flag")
	}

	if config.ContinueOnFail, err = flags.GetBool("continue-on-fail"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get continue-on-fail flag")
	}

	if config.Output, err = flags.GetString("output"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get output flag")
	}

	if config.JQ, err = flags.GetString("jq"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get jq flag")
	}

	if config.SigV4Enabled, err = flags.GetBool("sig-v4"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get sig-v4 flag")
	}

	if config.SigV4Service, err = flags.GetString("sig-v4-service"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get sig-v4-service flag")
	}

	if config.Verbose, err = flags.GetBool("verbose"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get verbose flag")
	}

	if config.Debug, err = flags.GetBool("debug"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get debug flag")
	}

	if config.Logger.Level, err = flags.GetString("log-level"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get log-level flag")
	}

	if config.Logger.Format, err = flags.GetString("log-format"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get log-format flag")
	}

	if err := config.applyEnv(flags); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnv fills values the user did not set explicitly
func (c *Config) applyEnv(flags *pflag.FlagSet) error {
	if !flags.Changed("profile") {
		if v := os.Getenv("RDMCTL_PROFILE"); v != "" {
			c.Profile = v
		}
	}

	if !flags.Changed("credentials") {
		if v := os.Getenv("RDMCTL_CREDENTIALS"); v != "" {
			c.CredentialSource = strings.ToLower(v)
		}
	}

	if !flags.Changed("timeout") {
		if v := os.Getenv("RDMCTL_TIMEOUT"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return errors.Wrap(err, errors.ErrorTypeConfig, "invalid RDMCTL_TIMEOUT").
					WithContext("value", v).
					WithContext("config_type", "env")
			}
			c.Timeout = d
		}
	}

	if !flags.Changed("continue-on-fail") {
		if v := os.Getenv("RDMCTL_CONTINUE_ON_FAIL"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return errors.Wrap(err, errors.ErrorTypeConfig, "invalid RDMCTL_CONTINUE_ON_FAIL").
					WithContext("value", v).
					WithContext("config_type", "env")
			}
			c.ContinueOnFail = b
		}
	}

	if !flags.Changed("output") {
		if v := os.Getenv("RDMCTL_OUTPUT"); v != "" {
			c.Output = strings.ToLower(v)
		}
	}

	if c.MCP.Description == "" {
		c.MCP.Description = os.Getenv("RDMCTL_MCP_DESCRIPTION")
	}

	if v := os.Getenv("RDMCTL_MCP_READ_ONLY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "invalid RDMCTL_MCP_READ_ONLY").
				WithContext("value", v).
				WithContext("config_type", "env")
		}
		c.MCP.ReadOnly = b
	}

	return nil
}

// Validate ensures the configuration is valid
func (c *Config) Validate() error {
	switch c.Output {
	case OutputJSON, OutputJSONL, OutputTable:
	default:
		return errors.New(errors.ErrorTypeValidation, "unsupported output format").
			WithContext("field", "output").
			WithContext("value", c.Output).
			WithContext("valid_formats", []string{OutputJSON, OutputJSONL, OutputTable})
	}

	switch c.CredentialSource {
	case CredentialsEnv, CredentialsKeyring, CredentialsAuto:
	default:
		return errors.New(errors.ErrorTypeValidation, "unsupported credential source").
			WithContext("field", "credentials").
			WithContext("value", c.CredentialSource).
			WithContext("valid_sources", []string{CredentialsEnv, CredentialsKeyring, CredentialsAuto})
	}

	if c.Timeout <= 0 {
		return errors.New(errors.ErrorTypeValidation, "timeout must be positive").
			WithContext("field", "timeout").
			WithContext("value", c.Timeout.String())
	}

	if c.SigV4Enabled && c.SigV4Service == "" {
		return errors.New(errors.ErrorTypeValidation, "a service name is required for SigV4 signing").
			WithContext("field", "sig-v4-service")
	}

	return nil
}

// CredentialStore assembles the lookup chain: explicit flags first, then the
// environment and/or the system keychain depending on CredentialSource.
func (c *Config) CredentialStore() credentials.Store {
	chain := credentials.Chain{
		credentials.Static{BaseURL: c.BaseURL, AccessToken: c.AccessToken},
	}

	switch c.CredentialSource {
	case CredentialsEnv:
		chain = append(chain, credentials.Env{})
	case CredentialsKeyring:
		chain = append(chain, credentials.NewKeyring())
	default:
		chain = append(chain, credentials.Env{}, credentials.NewKeyring())
	}

	return chain
}

// ProfileName returns the configured credential name or the default
func (c *Config) ProfileName() string {
	if strings.TrimSpace(c.Profile) == "" {
		return credentials.DefaultProfile
	}
	return c.Profile
}
