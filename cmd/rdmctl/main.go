package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/brendan.keane/rdmctl/internal/cli"
	"github.com/brendan.keane/rdmctl/internal/config"
	"github.com/brendan.keane/rdmctl/internal/errors"
	"github.com/brendan.keane/rdmctl/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.InitLogger(logger.DefaultConfig())

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		errors.PresentError(err)
	}
}

func newRootCmd() *cobra.Command {
	handler := cli.NewHandler(zerolog.Nop())
	mcpHandler := cli.NewMCPHandler(zerolog.Nop(), handler)

	rootCmd := &cobra.Command{
		Use:   "rdmctl",
		Short: "Work with InvenioRDM records and communities",
		Long: `rdmctl is a command-line client and MCP tool server for InvenioRDM
research-data repositories. It gets, searches, creates, updates and deletes
records and reads communities through the REST API.

Credentials come from --base-url/--token, RDMCTL_BASE_URL/RDMCTL_TOKEN
(a .env file in the working directory is loaded first) or a keychain
profile stored with 'rdmctl login'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(".env"); err != nil {
				return err
			}

			cfg, err := config.LoadFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log := logger.SetupFromFlags(cfg.Logger.Level, cfg.Logger.Format, cfg.Verbose, cfg.Debug)
			handler.SetLogger(log)
			mcpHandler.SetLogger(log)

			log.Debug().
				Str("command", cmd.CommandPath()).
				Str("profile", cfg.ProfileName()).
				Str("credentials", cfg.CredentialSource).
				Str("output", cfg.Output).
				Msg("configuration loaded")

			cmd.SetContext(config.WithConfig(cmd.Context(), cfg))
			return nil
		},
	}

	config.AddFlags(rootCmd.PersistentFlags())

	rootCmd.RegisterFlagCompletionFunc("output", outputCompletion)
	rootCmd.RegisterFlagCompletionFunc("credentials", credentialsCompletion)

	record := cli.NewRecordCommand(handler)
	community := cli.NewCommunityCommand(handler)
	for _, group := range []*cobra.Command{record, community} {
		for _, sub := range group.Commands() {
			if sub.Flags().Lookup("sort") != nil {
				sub.RegisterFlagCompletionFunc("sort", sortCompletion)
			}
		}
	}

	rootCmd.AddCommand(
		record,
		community,
		cli.NewPingCommand(handler),
		cli.NewResourceTypesCommand(handler),
		cli.NewOperationsCommand(handler),
		cli.NewBatchCommand(handler),
		cli.NewLoginCommand(handler),
		cli.NewLogoutCommand(handler),
		mcpHandler.Command(),
		generateCompletionCmd(),
	)

	return rootCmd
}

func outputCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{config.OutputJSON, config.OutputJSONL, config.OutputTable}, cobra.ShellCompDirectiveNoFileComp
}

func credentialsCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{config.CredentialsAuto, config.CredentialsEnv, config.CredentialsKeyring}, cobra.ShellCompDirectiveNoFileComp
}

func sortCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	sorts := []string{"bestmatch", "newest", "oldest", "mostrecent", "mostviewed", "mostdownloaded", "updated-desc", "updated-asc"}
	return sorts, cobra.ShellCompDirectiveNoFileComp
}

func generateCompletionCmd() *cobra.Command {
	completionCmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate completion script",
		Long: `To load completions:

Bash:

  # Load for current session:
  $ source <(rdmctl completion bash)

  # Load for all sessions (add to ~/.bashrc):
  $ echo 'source <(rdmctl completion bash)' >> ~/.bashrc

Zsh:

  # Load for current session:
  $ source <(rdmctl completion zsh)

  # Load for all sessions (add to ~/.zshrc):
  $ echo 'source <(rdmctl completion zsh)' >> ~/.zshrc

Fish:

  # Load for current session:
  $ rdmctl completion fish | source

  # Load for all sessions:
  $ rdmctl completion fish > ~/.config/fish/completions/rdmctl.fish

PowerShell:

  # Load for current session:
  PS> rdmctl completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}

	return completionCmd
}
