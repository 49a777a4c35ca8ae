// Package cli implements the cosnet command line: administrative and
// reporting consumers of the persistence facade. No protocol logic lives
// here; every command talks to the store through the same boundary the
// protocol handlers use.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cosnet-io/cosnet/internal/config"
	"github.com/cosnet-io/cosnet/internal/store"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	ConfigPath string
	DBPath     string // overrides the configured database path
	Verbose    bool
}

// NewRootCommand creates the root command for the cosnet CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "cosnet",
		Short: "cosnet - task-offloading control plane store",
		Long:  "Administer and inspect the persistence facade of the cosnet control plane.",
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "conf.yml", "config file")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "database path (overrides config)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewRequestsCommand(opts))

	return cmd
}

func (o *RootOptions) logger() *slog.Logger {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig loads the configuration and applies the --db override.
func (o *RootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.ConfigPath, o.logger())
	if err != nil {
		return config.Config{}, err
	}
	if o.DBPath != "" {
		cfg.Database.Path = o.DBPath
	}
	return cfg, nil
}

// openStore opens the store for a loaded configuration. extra options are
// appended after the config-derived ones.
func (o *RootOptions) openStore(cfg config.Config, extra ...store.Option) (*store.Store, error) {
	sopts := []store.Option{
		store.WithLogger(o.logger()),
		store.WithExportDir(cfg.Export.Dir),
	}
	sopts = append(sopts, extra...)

	st, err := store.Open(cfg.Database.Path, sopts...)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}
