package credentials

import (
	"context"
	"os"
	"strings"
)

const envPrefix = "RDMCTL"

// Env reads credentials from RDMCTL_BASE_URL and RDMCTL_TOKEN.
// Named profiles other than the default use RDMCTL_<PROFILE>_BASE_URL and
// RDMCTL_<PROFILE>_TOKEN, falling back to the unprefixed variables.
type Env struct {
	// Lookup defaults to os.LookupEnv
	Lookup func(key string) (string, bool)
}

// GetCredentials implements Store
func (e Env) GetCredentials(ctx context.Context, name string) (Credentials, error) {
	return Credentials{
		BaseURL:     e.value(name, "BASE_URL"),
		AccessToken: e.value(name, "TOKEN"),
	}, nil
}

func (e Env) value(name, field string) string {
	lookup := e.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if name != "" && name != DefaultProfile {
		if v, ok := lookup(profileKey(name, field)); ok && v != "" {
			return v
		}
	}

	v, _ := lookup(envPrefix + "_" + field)
	return v
}

func profileKey(name, field string) string {
	profile := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(name))
	return envPrefix + "_" + profile + "_" + field
}
