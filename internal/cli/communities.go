package cli

import (
	"github.com/brendan.keane/rdmctl/internal/rdm"
	"github.com/spf13/cobra"
)

// NewCommunityCommand builds "rdmctl community" and its subcommands
func NewCommunityCommand(h *Handler) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "community",
		Aliases: []string{"communities"},
		Short:   "Get and search communities",
	}

	get := &cobra.Command{
		Use:   "get <slug>...",
		Short: "Get one or more communities",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return h.Run(cmd, identifierSource(rdm.ResourceCommunity, rdm.OperationGet, rdm.ParamCommunityID, args))
		},
	}

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"search"},
		Short:   "Search communities",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := listingParams(cmd.Flags(), rdm.ResourceCommunity, rdm.OperationGetMany)
			return h.Run(cmd, rdm.NewSingleSource(params))
		},
	}
	addListingFlags(list.Flags(), false)

	records := &cobra.Command{
		Use:   "records <slug>",
		Short: "List the records of a community",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := listingParams(cmd.Flags(), rdm.ResourceCommunity, rdm.OperationGetRecords)
			params[rdm.ParamCommunityID] = args[0]
			return h.Run(cmd, rdm.NewSingleSource(params))
		},
	}
	addListingFlags(records.Flags(), false)

	cmd.AddCommand(get, list, records)
	return cmd
}
