package credentials

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/brendan.keane/rdmctl/internal/errors"
	"github.com/zalando/go-keyring"
)

// keyringService is the service name used for keychain entries
const keyringService = "rdmctl"

// Keyring stores credential profiles in the system keychain
// (macOS Keychain, Secret Service on Linux, Windows Credential Manager).
type Keyring struct {
	available bool
}

// NewKeyring probes the keychain once so that a locked or missing
// service is detected before the first lookup.
func NewKeyring() *Keyring {
	k := &Keyring{available: true}

	_, err := keyring.Get(keyringService, "__rdmctl_availability_test__")
	if err != nil && !stderrors.Is(err, keyring.ErrNotFound) {
		k.available = false
	}

	return k
}

// Available reports whether the keychain service can be used
func (k *Keyring) Available() bool {
	return k.available
}

// GetCredentials implements Store. Missing entries yield empty fields, not an error.
func (k *Keyring) GetCredentials(ctx context.Context, name string) (Credentials, error) {
	if !k.available {
		return Credentials{}, errors.New(errors.ErrorTypeAuth, "keychain service unavailable")
	}

	baseURL, err := k.get(name, "base_url")
	if err != nil {
		return Credentials{}, err
	}
	token, err := k.get(name, "access_token")
	if err != nil {
		return Credentials{}, err
	}

	return Credentials{BaseURL: baseURL, AccessToken: token}, nil
}

// Save writes both fields of a profile
func (k *Keyring) Save(ctx context.Context, name string, creds Credentials) error {
	if !k.available {
		return errors.New(errors.ErrorTypeAuth, "keychain service unavailable")
	}
	if err := creds.Validate(name); err != nil {
		return err
	}

	if err := keyring.Set(keyringService, entryKey(name, "base_url"), creds.BaseURL); err != nil {
		return errors.Wrap(err, errors.ErrorTypeAuth, "failed to store base URL in keychain").
			WithContext("profile", name)
	}
	if err := keyring.Set(keyringService, entryKey(name, "access_token"), creds.AccessToken); err != nil {
		return errors.Wrap(err, errors.ErrorTypeAuth, "failed to store access token in keychain").
			WithContext("profile", name)
	}

	return nil
}

// Delete removes a profile. Deleting a profile that does not exist is not an error.
func (k *Keyring) Delete(ctx context.Context, name string) error {
	if !k.available {
		return errors.New(errors.ErrorTypeAuth, "keychain service unavailable")
	}

	for _, field := range []string{"base_url", "access_token"} {
		err := keyring.Delete(keyringService, entryKey(name, field))
		if err != nil && !stderrors.Is(err, keyring.ErrNotFound) {
			return errors.Wrap(err, errors.ErrorTypeAuth, "failed to remove keychain entry").
				WithContext("profile", name).
				WithContext("field", field)
		}
	}

	return nil
}

func (k *Keyring) get(name, field string) (string, error) {
	value, err := keyring.Get(keyringService, entryKey(name, field))
	if err != nil {
		if stderrors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", errors.Wrap(err, errors.ErrorTypeAuth, "keychain error").
			WithContext("profile", name).
			WithContext("field", field)
	}
	return value, nil
}

func entryKey(name, field string) string {
	if strings.TrimSpace(name) == "" {
		name = DefaultProfile
	}
	return name + "/" + field
}
