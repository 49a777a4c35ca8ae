package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cosnet-io/cosnet/internal/store"
)

// NewSeedCommand loads a service-class seed document into the database.
// Conflicting identities are ignored, so re-seeding is safe.
func NewSeedCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed [file]",
		Short: "Load a service-class seed document",
		Long: "Upsert the service classes of a JSON seed document. " +
			"Without an argument the configured seed path is used.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			path := cfg.Seed.Path
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no seed file given and none configured")
			}

			st, err := opts.openStore(cfg, store.WithSeedFile(path))
			if err != nil {
				return err
			}
			defer st.Close()

			classes := st.Select(store.ShapeCoS)
			if classes == nil {
				return fmt.Errorf("could not read back service classes")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d service classes in store\n", len(classes))
			return nil
		},
	}
}
