package cli

import (
	"strings"

	"github.com/brendan.keane/rdmctl/internal/errors"
	"github.com/brendan.keane/rdmctl/internal/rdm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NewRecordCommand builds "rdmctl record" and its subcommands
func NewRecordCommand(h *Handler) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Get, search, create, update and delete records",
	}

	get := &cobra.Command{
		Use:   "get <id>...",
		Short: "Get one or more published records",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return h.Run(cmd, identifierSource(rdm.ResourceRecord, rdm.OperationGet, rdm.ParamRecordID, args))
		},
	}

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"search"},
		Short:   "Search published records",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := listingParams(cmd.Flags(), rdm.ResourceRecord, rdm.OperationGetMany)
			return h.Run(cmd, rdm.NewSingleSource(params))
		},
	}
	addListingFlags(list.Flags(), true)

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a draft record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := recordDataFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			return h.Run(cmd, rdm.NewSingleSource(rdm.Params{
				rdm.ParamResource:   string(rdm.ResourceRecord),
				rdm.ParamOperation:  string(rdm.OperationCreate),
				rdm.ParamRecordData: data,
			}))
		},
	}
	addRecordDataFlags(create.Flags())

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a record's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := recordDataFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			return h.Run(cmd, rdm.NewSingleSource(rdm.Params{
				rdm.ParamResource:   string(rdm.ResourceRecord),
				rdm.ParamOperation:  string(rdm.OperationUpdate),
				rdm.ParamRecordID:   args[0],
				rdm.ParamRecordData: data,
			}))
		},
	}
	addRecordDataFlags(update.Flags())

	del := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete one or more records",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return h.Run(cmd, identifierSource(rdm.ResourceRecord, rdm.OperationDelete, rdm.ParamRecordID, args))
		},
	}

	cmd.AddCommand(get, list, create, update, del)
	return cmd
}

// identifierSource runs one item per identifier
func identifierSource(resource rdm.ResourceKind, operation rdm.OperationKind, param string, ids []string) *rdm.StaticSource {
	source := &rdm.StaticSource{
		Shared: rdm.Params{
			rdm.ParamResource:  string(resource),
			rdm.ParamOperation: string(operation),
		},
	}
	for _, id := range ids {
		source.Items = append(source.Items, rdm.Params{param: id})
	}
	return source
}

func addListingFlags(flags *pflag.FlagSet, records bool) {
	flags.Bool("all", false, "Return every hit the server sends")
	flags.Int("limit", 0, "Maximum number of results (1-1000)")
	flags.StringP("query", "q", "", "Search query")
	flags.String("sort", "", "Sort order: bestmatch, newest, oldest, mostrecent, mostviewed, mostdownloaded, updated-desc, updated-asc")
	if records {
		flags.Int("page", 0, "Page number")
		flags.String("language", "", "Language filter, e.g. language:eng")
	}
}

// listingParams reads only the flags the user set so that the resolver's
// defaults apply to everything else.
func listingParams(flags *pflag.FlagSet, resource rdm.ResourceKind, operation rdm.OperationKind) rdm.Params {
	params := rdm.Params{
		rdm.ParamResource:  string(resource),
		rdm.ParamOperation: string(operation),
	}

	if all, _ := flags.GetBool("all"); all {
		params[rdm.ParamReturnAll] = true
	}
	if flags.Changed("limit") {
		params[rdm.ParamLimit], _ = flags.GetInt("limit")
	}

	additional := map[string]any{}
	if flags.Changed("query") {
		additional["q"], _ = flags.GetString("query")
	}
	if flags.Changed("sort") {
		additional["sort"], _ = flags.GetString("sort")
	}
	if flags.Lookup("page") != nil && flags.Changed("page") {
		additional["page"], _ = flags.GetInt("page")
	}
	if flags.Lookup("language") != nil && flags.Changed("language") {
		additional["f"], _ = flags.GetString("language")
	}
	if len(additional) > 0 {
		params[rdm.ParamAdditionalFields] = additional
	}

	return params
}

func addRecordDataFlags(flags *pflag.FlagSet) {
	flags.StringP("data", "d", "", "Record JSON document; @file reads it from a file")
	flags.String("title", "", "Record title")
	flags.String("description", "", "Record description")
	flags.StringArray("creator", nil, `Creator, "Family, Given" for a person or a bare organisation name (repeatable)`)
	flags.String("resource-type", "", "Resource type id, see 'rdmctl resource-types'")
	flags.String("publication-date", "", "Publication date (YYYY-MM-DD)")
}

// recordDataFromFlags returns --data verbatim or builds a document from the
// metadata flags. The two styles cannot be mixed.
func recordDataFromFlags(flags *pflag.FlagSet) (string, error) {
	metadataFlags := []string{"title", "description", "creator", "resource-type", "publication-date"}

	if flags.Changed("data") {
		for _, name := range metadataFlags {
			if flags.Changed(name) {
				return "", errors.Newf(errors.ErrorTypeValidation, "--data cannot be combined with --%s", name).
					WithContext("field", "data")
			}
		}
		data, _ := flags.GetString("data")
		return readDataArgument(data)
	}

	title, _ := flags.GetString("title")
	if strings.TrimSpace(title) == "" {
		return "", errors.New(errors.ErrorTypeValidation, "either --data or --title is required").
			WithContext("field", "data")
	}

	var record rdm.RecordData
	record.Metadata.Title = title
	record.Metadata.Description, _ = flags.GetString("description")
	record.Metadata.PublicationDate, _ = flags.GetString("publication-date")

	creators, _ := flags.GetStringArray("creator")
	for _, c := range creators {
		record.Metadata.Creators = append(record.Metadata.Creators, rdm.ParseCreator(c))
	}
	if id, _ := flags.GetString("resource-type"); id != "" {
		record.Metadata.ResourceType = &rdm.ResourceType{ID: id}
	}

	if err := record.Validate(rdm.NewResolver()); err != nil {
		return "", err
	}

	data, err := record.JSON()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode record data")
	}
	return string(data), nil
}
