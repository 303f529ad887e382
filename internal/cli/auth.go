package cli

import (
	"context"
	"fmt"

	"github.com/brendan.keane/rdmctl/internal/credentials"
	"github.com/spf13/cobra"
)

// ProfileStore persists credential profiles, usually the system keychain
type ProfileStore interface {
	Save(ctx context.Context, name string, creds credentials.Credentials) error
	Delete(ctx context.Context, name string) error
}

// WithProfileStore replaces the keychain used by login and logout
func WithProfileStore(store ProfileStore) HandlerOption {
	return func(h *Handler) {
		h.profiles = store
	}
}

func (h *Handler) profileStore() ProfileStore {
	if h.profiles == nil {
		h.profiles = credentials.NewKeyring()
	}
	return h.profiles
}

// NewLoginCommand builds "rdmctl login"
func NewLoginCommand(h *Handler) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Verify and store a base URL and access token in the keychain",
		Long: `Verify and store a base URL and access token in the keychain.

The values come from --base-url and --token, or RDMCTL_BASE_URL and
RDMCTL_TOKEN. They are checked with a one-record search before being
saved under --profile.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := h.Config(cmd)
			if err != nil {
				return err
			}

			name := cfg.ProfileName()
			store := credentials.Chain{
				credentials.Static{BaseURL: cfg.BaseURL, AccessToken: cfg.AccessToken},
				credentials.Env{},
			}
			creds, err := store.GetCredentials(cmd.Context(), name)
			if err != nil {
				return err
			}

			if err := h.dispatcherWithStore(cfg, store).VerifyCredentials(cmd.Context()); err != nil {
				return err
			}

			if err := h.profileStore().Save(cmd.Context(), name, creds); err != nil {
				return err
			}

			h.logger.Info().
				Str("profile", name).
				Str("base_url", creds.BaseURL).
				Msg("credentials stored")

			_, err = fmt.Fprintf(h.out, "Logged in to %s (profile %q)\n", creds.BaseURL, name)
			return err
		},
	}
}

// NewLogoutCommand builds "rdmctl logout"
func NewLogoutCommand(h *Handler) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove a stored credential profile from the keychain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := h.Config(cmd)
			if err != nil {
				return err
			}

			name := cfg.ProfileName()
			if err := h.profileStore().Delete(cmd.Context(), name); err != nil {
				return err
			}

			_, err = fmt.Fprintf(h.out, "Removed profile %q\n", name)
			return err
		},
	}
}
