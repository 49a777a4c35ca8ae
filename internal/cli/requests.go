package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cosnet-io/cosnet/internal/model"
	"github.com/cosnet-io/cosnet/internal/store"
)

// NewRequestsCommand lists stored requests one page at a time.
func NewRequestsCommand(opts *RootOptions) *cobra.Command {
	var (
		page     int
		pageSize int
		orders   []string
		wheres   []string
	)

	cmd := &cobra.Command{
		Use:   "requests",
		Short: "List requests page by page",
		RunE: func(cmd *cobra.Command, args []string) error {
			qopts, err := filterOptions(wheres)
			if err != nil {
				return err
			}
			if len(orders) > 0 {
				qopts = append(qopts, store.OrderBy(orders...))
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

			recs := st.SelectPage(store.ShapeRequest, page, pageSize, qopts...)
			if recs == nil {
				return fmt.Errorf("request listing failed")
			}

			out := cmd.OutOrStdout()
			for _, rec := range recs {
				r := rec.(*model.Request)
				fmt.Fprintf(out, "%s src=%s cos=%s host=%s state=%s attempts=%d\n",
					r.ID, r.Src, r.CoS.Name, r.Host, r.State, len(r.Attempts))
			}
			fmt.Fprintf(out, "page %d: %d request(s)\n", page, len(recs))
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number (starts at 1)")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "rows per page")
	cmd.Flags().StringSliceVar(&orders, "order", nil, "ordering columns")
	cmd.Flags().StringArrayVar(&wheres, "where", nil, "filter condition col:op:value (repeatable)")

	return cmd
}
