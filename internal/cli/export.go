package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cosnet-io/cosnet/internal/store"
)

// NewExportCommand serializes one table to a CSV file.
func NewExportCommand(opts *RootOptions) *cobra.Command {
	var (
		fields  []string
		wheres  []string
		outPath string
		suffix  string
	)

	cmd := &cobra.Command{
		Use:   "export <shape>",
		Short: "Export a table as CSV",
		Long: "Serialize the table of a shape (cos, requests, attempts, responses) " +
			"to a CSV file: a header row of the resolved columns, then all data rows.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sh, err := store.ParseShape(args[0])
			if err != nil {
				return err
			}

			qopts, err := filterOptions(wheres)
			if err != nil {
				return err
			}
			if len(fields) > 0 {
				qopts = append(qopts, store.Fields(fields...))
			}
			if outPath != "" {
				qopts = append(qopts, store.ToPath(outPath))
			}
			if suffix != "" {
				qopts = append(qopts, store.Suffix(suffix))
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			st, err := opts.openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if !st.AsCSV(sh, qopts...) {
				return fmt.Errorf("export of %s failed", sh)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %s\n", sh)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&fields, "fields", nil, "columns to export (default: all)")
	cmd.Flags().StringArrayVar(&wheres, "where", nil, "filter condition col:op:value (repeatable)")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default: derived from shape)")
	cmd.Flags().StringVar(&suffix, "suffix", "", "suffix for the derived file name")

	return cmd
}

// filterOptions parses repeated col:op:value flags into query options.
func filterOptions(wheres []string) ([]store.QueryOption, error) {
	var qopts []store.QueryOption
	for _, w := range wheres {
		parts := strings.SplitN(w, ":", 3)
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid filter %q: want col:op:value", w)
		}
		qopts = append(qopts, store.Where(parts[0], parts[1], parts[2]))
	}
	return qopts, nil
}
