package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entityevent/hydrate-go/hydrate/sqliteengine"
)

func newSeedCommand(rootOpts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create and populate the demo database",
		Long: `Creates the SQLite database and inserts the record rows listed in the
config file's seed section.

Examples:
  demo seed --config demo.yaml`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, rootOpts)
		},
	}
}

func runSeed(cmd *cobra.Command, rootOpts *rootOptions) error {
	config, err := loadConfig(rootOpts.ConfigPath)
	if err != nil {
		return err
	}

	logger := newLogger(rootOpts)

	store, err := openStore(config, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	for _, seed := range config.Seed {
		record := sqliteengine.StoredRecord{
			ID:        seed.ID,
			Payload:   seed.Payload,
			Relations: seed.Relations,
		}

		if err := store.SeedRecord(cmd.Context(), seed.Type, record); err != nil {
			return fmt.Errorf("seed %s/%d: %w", seed.Type, seed.ID, err)
		}
	}

	logger.Info("database seeded", "path", config.Database, "records", len(config.Seed))

	return nil
}
