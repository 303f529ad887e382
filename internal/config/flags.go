package config

import (
	"github.com/spf13/pflag"
)

// AddFlags registers the global flags read by LoadFromFlags
func AddFlags(flags *pflag.FlagSet) {
	defaults := NewConfig()

	flags.String("base-url", "", "InvenioRDM base URL; /api is appended when missing (env: RDMCTL_BASE_URL)")
	flags.String("token", "", "Personal access token (env: RDMCTL_TOKEN)")
	flags.String("profile", defaults.Profile, "Credential profile name (env: RDMCTL_PROFILE)")
	flags.String("credentials", defaults.CredentialSource, "Credential source: env, keyring or auto")
	flags.Duration("timeout", defaults.Timeout, "Timeout for each HTTP request")
	flags.Bool("continue-on-fail", false, "Emit an error item and keep going when an item fails")
	flags.StringP("output", "o", defaults.Output, "Output format: json, jsonl or table")
	flags.String("jq", "", "jq expression applied to each output item")
	flags.Bool("sig-v4", false, "Sign requests with AWS SigV4")
	flags.String("sig-v4-service", defaults.SigV4Service, "AWS service name for SigV4 signing")
	flags.BoolP("verbose", "v", false, "Verbose logging")
	flags.Bool("debug", false, "Debug logging with caller information")
	flags.String("log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.String("log-format", defaults.Logger.Format, "Log format: pretty or json")
}
