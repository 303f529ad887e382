package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brendan.keane/rdmctl/internal/credentials"
	"github.com/brendan.keane/rdmctl/internal/errors"
	"github.com/spf13/pflag"
)

func newFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(flags)
	if err := flags.Parse(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return flags
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg == nil {
		t.Fatal("NewConfig should return non-nil config")
	}

	if cfg.Timeout != 30*time.Second {
		t.Errorf("default timeout: got %v, expected %v", cfg.Timeout, 30*time.Second)
	}
	if cfg.Output != OutputJSON {
		t.Errorf("default output: got %q, expected %q", cfg.Output, OutputJSON)
	}
	if cfg.CredentialSource != CredentialsAuto {
		t.Errorf("default credential source: got %q, expected %q", cfg.CredentialSource, CredentialsAuto)
	}
	if cfg.Profile != credentials.DefaultProfile {
		t.Errorf("default profile: got %q", cfg.Profile)
	}
	if cfg.ContinueOnFail {
		t.Error("continue-on-fail should default to false")
	}
	if cfg.SigV4Enabled {
		t.Error("SigV4 should default to false")
	}
}

func TestLoadFromFlags(t *testing.T) {
	flags := newFlagSet(t,
		"--base-url", "https://rdm.example/api",
		"--token", "abc",
		"--continue-on-fail",
		"--timeout", "5s",
		"-o", "jsonl",
		"--jq", ".id",
	)

	cfg, err := LoadFromFlags(flags)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.BaseURL != "https://rdm.example/api" {
		t.Errorf("base URL: got %q", cfg.BaseURL)
	}
	if cfg.AccessToken != "abc" {
		t.Errorf("token: got %q", cfg.AccessToken)
	}
	if !cfg.ContinueOnFail {
		t.Error("continue-on-fail should be set")
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("timeout: got %v", cfg.Timeout)
	}
	if cfg.Output != OutputJSONL {
		t.Errorf("output: got %q", cfg.Output)
	}
	if cfg.JQ != ".id" {
		t.Errorf("jq: got %q", cfg.JQ)
	}
}

func TestLoadFromFlags_EnvFallback(t *testing.T) {
	t.Setenv("RDMCTL_PROFILE", "sandbox")
	t.Setenv("RDMCTL_TIMEOUT", "10s")
	t.Setenv("RDMCTL_CONTINUE_ON_FAIL", "true")
	t.Setenv("RDMCTL_OUTPUT", "TABLE")

	cfg, err := LoadFromFlags(newFlagSet(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Profile != "sandbox" {
		t.Errorf("profile: got %q", cfg.Profile)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("timeout: got %v", cfg.Timeout)
	}
	if !cfg.ContinueOnFail {
		t.Error("continue-on-fail should come from env")
	}
	if cfg.Output != OutputTable {
		t.Errorf("output: got %q", cfg.Output)
	}
}

func TestLoadFromFlags_FlagBeatsEnv(t *testing.T) {
	t.Setenv("RDMCTL_TIMEOUT", "10s")

	cfg, err := LoadFromFlags(newFlagSet(t, "--timeout", "2s"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Timeout != 2*time.Second {
		t.Errorf("flag should win over env, got %v", cfg.Timeout)
	}
}

func TestLoadFromFlags_InvalidEnv(t *testing.T) {
	t.Setenv("RDMCTL_TIMEOUT", "soon")

	_, err := LoadFromFlags(newFlagSet(t))
	if err == nil {
		t.Fatal("expected error for invalid RDMCTL_TIMEOUT")
	}
	if !errors.IsType(err, errors.ErrorTypeConfig) {
		t.Errorf("expected config error, got %v", errors.GetType(err))
	}
}

func TestLoadFromFlags_MCPEnv(t *testing.T) {
	t.Setenv("RDMCTL_MCP_DESCRIPTION", "Research data repository")
	t.Setenv("RDMCTL_MCP_READ_ONLY", "1")

	cfg, err := LoadFromFlags(newFlagSet(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MCP.Description != "Research data repository" {
		t.Errorf("description: got %q", cfg.MCP.Description)
	}
	if !cfg.MCP.ReadOnly {
		t.Error("read-only should come from env")
	}

	t.Setenv("RDMCTL_MCP_READ_ONLY", "sometimes")
	if _, err := LoadFromFlags(newFlagSet(t)); !errors.IsType(err, errors.ErrorTypeConfig) {
		t.Errorf("expected config error for invalid RDMCTL_MCP_READ_ONLY, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{name: "defaults are valid", modify: func(c *Config) {}},
		{name: "table output", modify: func(c *Config) { c.Output = OutputTable }},
		{name: "bad output", modify: func(c *Config) { c.Output = "xml" }, wantField: "output"},
		{name: "bad credential source", modify: func(c *Config) { c.CredentialSource = "vault" }, wantField: "credentials"},
		{name: "zero timeout", modify: func(c *Config) { c.Timeout = 0 }, wantField: "timeout"},
		{
			name:      "sigv4 without service",
			modify:    func(c *Config) { c.SigV4Enabled = true; c.SigV4Service = "" },
			wantField: "sig-v4-service",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("expected valid config, got %v", err)
				}
				return
			}

			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.IsType(err, errors.ErrorTypeValidation) {
				t.Errorf("expected validation error, got %v", errors.GetType(err))
			}
			if field := errors.GetContext(err)["field"]; field != tt.wantField {
				t.Errorf("field: got %v, expected %s", field, tt.wantField)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("values are loaded without overriding", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		content := "RDMCTL_DOTENV_TEST=from-file\nRDMCTL_DOTENV_KEEP=from-file\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		t.Setenv("RDMCTL_DOTENV_KEEP", "from-env")
		t.Setenv("RDMCTL_DOTENV_TEST", "")
		os.Unsetenv("RDMCTL_DOTENV_TEST")

		if err := LoadDotEnv(path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		t.Cleanup(func() { os.Unsetenv("RDMCTL_DOTENV_TEST") })

		if got := os.Getenv("RDMCTL_DOTENV_TEST"); got != "from-file" {
			t.Errorf("RDMCTL_DOTENV_TEST: got %q", got)
		}
		if got := os.Getenv("RDMCTL_DOTENV_KEEP"); got != "from-env" {
			t.Errorf("RDMCTL_DOTENV_KEEP should keep env value, got %q", got)
		}
	})
}

func TestCredentialStore_FlagsWin(t *testing.T) {
	t.Setenv("RDMCTL_BASE_URL", "https://env.example/api")
	t.Setenv("RDMCTL_TOKEN", "env-token")

	cfg := NewConfig()
	cfg.CredentialSource = CredentialsEnv
	cfg.AccessToken = "flag-token"

	creds, err := cfg.CredentialStore().GetCredentials(t.Context(), cfg.ProfileName())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creds.BaseURL != "https://env.example/api" {
		t.Errorf("base URL: got %q", creds.BaseURL)
	}
	if creds.AccessToken != "flag-token" {
		t.Errorf("token: got %q", creds.AccessToken)
	}
}
