// Package credentials resolves the base URL and access token used to talk to an
// InvenioRDM instance. Stores are read-only from the dispatcher's point of view.
package credentials

import (
	"context"
	"strings"

	"github.com/brendan.keane/rdmctl/internal/errors"
)

// DefaultProfile is the credential name used when none is given
const DefaultProfile = "default"

// Credentials holds what is needed to reach one InvenioRDM instance
type Credentials struct {
	BaseURL     string
	AccessToken string
}

// Complete reports whether both fields are populated
func (c Credentials) Complete() bool {
	return c.BaseURL != "" && c.AccessToken != ""
}

// Validate returns an auth error naming the first missing field
func (c Credentials) Validate(name string) error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New(errors.ErrorTypeAuth, "base URL is not configured").
			WithContext("profile", name).
			WithContext("suggestion", "use --base-url, set RDMCTL_BASE_URL or run 'rdmctl login'")
	}
	if strings.TrimSpace(c.AccessToken) == "" {
		return errors.New(errors.ErrorTypeAuth, "access token is not configured").
			WithContext("profile", name).
			WithContext("suggestion", "use --token, set RDMCTL_TOKEN or run 'rdmctl login'")
	}
	return nil
}

// Store looks up credentials by name
type Store interface {
	GetCredentials(ctx context.Context, name string) (Credentials, error)
}

// Static always returns the same credentials regardless of name
type Static Credentials

// GetCredentials implements Store
func (s Static) GetCredentials(ctx context.Context, name string) (Credentials, error) {
	return Credentials(s), nil
}

// Chain merges several stores field by field; earlier stores win.
// A store that fails is skipped so that e.g. an unavailable keychain
// does not hide credentials supplied through the environment.
type Chain []Store

// GetCredentials implements Store
func (c Chain) GetCredentials(ctx context.Context, name string) (Credentials, error) {
	var merged Credentials
	var lastErr error

	for _, store := range c {
		if merged.Complete() {
			break
		}

		creds, err := store.GetCredentials(ctx, name)
		if err != nil {
			lastErr = err
			continue
		}

		if merged.BaseURL == "" {
			merged.BaseURL = creds.BaseURL
		}
		if merged.AccessToken == "" {
			merged.AccessToken = creds.AccessToken
		}
	}

	if err := merged.Validate(name); err != nil {
		if lastErr != nil {
			return Credentials{}, errors.Wrap(lastErr, errors.ErrorTypeAuth, errors.UserMessage(err)).
				WithContext("profile", name)
		}
		return Credentials{}, err
	}

	return merged, nil
}
