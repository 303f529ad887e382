package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/brendan.keane/rdmctl/internal/batch"
	"github.com/brendan.keane/rdmctl/internal/errors"
	"github.com/brendan.keane/rdmctl/internal/output"
	"github.com/brendan.keane/rdmctl/internal/rdm"
	"github.com/spf13/cobra"
)

// NewPingCommand builds "rdmctl ping"
func NewPingCommand(h *Handler) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the API is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return h.Run(cmd, rdm.NewSingleSource(rdm.Params{
				rdm.ParamResource: string(rdm.ResourcePing),
			}))
		},
	}
}

// NewResourceTypesCommand builds "rdmctl resource-types"
func NewResourceTypesCommand(h *Handler) *cobra.Command {
	return &cobra.Command{
		Use:   "resource-types",
		Short: "List resource type ids accepted by record create",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := h.Config(cmd)
			if err != nil {
				return err
			}

			options, err := h.Dispatcher(cfg).ResourceTypes(cmd.Context())
			if err != nil {
				return err
			}

			if cfg.Output == output.FormatTable {
				_, err = fmt.Fprintln(h.out, output.RenderResourceTypes(options))
				return err
			}

			items := make([]rdm.OutputItem, 0, len(options))
			for _, o := range options {
				doc, err := json.Marshal(o)
				if err != nil {
					return errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode resource type")
				}
				items = append(items, rdm.OutputItem{JSON: doc})
			}
			return output.NewWriter(h.out, cfg.Output).Write(items)
		},
	}
}

// NewOperationsCommand builds "rdmctl operations"
func NewOperationsCommand(h *Handler) *cobra.Command {
	return &cobra.Command{
		Use:   "operations",
		Short: "Show the supported resource operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(h.out, output.RenderOperations(rdm.Operations))
			return err
		},
	}
}

// NewBatchCommand builds "rdmctl batch"
func NewBatchCommand(h *Handler) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run one operation over the items of a YAML job file",
		Long: `Run one operation over the items of a YAML job file.

  resource: record
  operation: get
  continue_on_fail: true
  items:
    - recordId: abcd-1234
    - recordId: efgh-5678

continue_on_fail in the file wins over --continue-on-fail.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := h.Config(cmd)
			if err != nil {
				return err
			}

			path, _ := cmd.Flags().GetString("file")
			job, err := batch.Load(path)
			if err != nil {
				return err
			}

			h.logger.Debug().
				Str("file", path).
				Str("operation", job.Key().String()).
				Int("items", len(job.Items)).
				Msg("loaded batch job")

			return h.run(cmd, cfg, job.Source(), job.ContinueOnFailOr(cfg.ContinueOnFail))
		},
	}

	cmd.Flags().StringP("file", "f", "", "Job file, - for stdin")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// readDataArgument resolves @path and - (stdin) references
func readDataArgument(value string) (string, error) {
	switch {
	case value == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrorTypeConfig, "failed to read record data from stdin")
		}
		return string(data), nil
	case strings.HasPrefix(value, "@"):
		path := strings.TrimPrefix(value, "@")
		data, err := os.ReadFile(path)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrorTypeConfig, "failed to read record data").
				WithContext("path", path)
		}
		return string(data), nil
	default:
		return value, nil
	}
}
