package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/entityevent/hydrate-go/hydrate/sqliteengine"
)

// rootOptions holds global flags for all subcommands.
type rootOptions struct {
	ConfigPath string
	Verbose    bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Event context hydration demo",
		Long:  "Seeds a SQLite database and hydrates event contexts through HCL-declared hints.",
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "demo.yaml", "path to yaml config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(newSeedCommand(opts))
	cmd.AddCommand(newLoadCommand(opts))

	return cmd
}

// newLogger builds a text logger at a level driven by the verbose flag.
func newLogger(opts *rootOptions) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openStore opens the configured SQLite database with all table bindings.
func openStore(config *Config, logger *slog.Logger) (*sqliteengine.Store, error) {
	options := []sqliteengine.Option{sqliteengine.WithLogger(logger)}
	for typeName, table := range config.Tables {
		options = append(options, sqliteengine.WithRecordTable(typeName, table))
	}

	return sqliteengine.Open(config.Database, options...)
}
