package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/entityevent/hydrate-go/hydrate"
	"github.com/entityevent/hydrate-go/hydrate/hclhints"
)

// eventInput is one event in the json input file.
type eventInput struct {
	Source  string `json:"source"`
	Context any    `json:"context"`
}

func newLoadCommand(rootOpts *rootOptions) *cobra.Command {
	opts := struct {
		RenderGroups []string
	}{}

	cmd := &cobra.Command{
		Use:   "load <events.json>",
		Short: "Hydrate event contexts from a json file",
		Long: `Reads events from a json file, hydrates their contexts against the seeded
database using the HCL hint declarations, and prints the result.

The input file holds an array of {"source": ..., "context": ...} objects.

Examples:
  demo load --config demo.yaml events.json
  demo load --config demo.yaml --render-group email --render-group web events.json`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, rootOpts, args[0], opts.RenderGroups)
		},
	}

	cmd.Flags().StringArrayVar(&opts.RenderGroups, "render-group", []string{"email"}, "render groups to hydrate for")

	return cmd
}

func runLoad(cmd *cobra.Command, rootOpts *rootOptions, eventsPath string, renderGroups []string) error {
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

	hints, err := hclhints.LoadDir(config.HintsDir)
	if err != nil {
		return err
	}

	events, err := readEvents(eventsPath)
	if err != nil {
		return err
	}

	loader, err := hydrate.NewContextLoader(hints, store, hydrate.WithLogger(logger))
	if err != nil {
		return err
	}

	mediums := make([]hydrate.Medium, 0, len(renderGroups))
	for _, group := range renderGroups {
		mediums = append(mediums, hydrate.Medium{Name: group, RenderGroup: group})
	}

	loaded, err := loader.Load(cmd.Context(), events, mediums)
	if err != nil {
		return err
	}

	for _, event := range loaded {
		hydrated, jsonErr := hydrate.ToJSON(event.Context)
		if jsonErr != nil {
			return jsonErr
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", event.Source, hydrated)
	}

	return nil
}

func readEvents(path string) (hydrate.Events, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read events %s: %w", path, err)
	}

	tree, err := hydrate.TreeFromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parse events %s: %w", path, err)
	}

	list, ok := tree.(hydrate.List)
	if !ok {
		return nil, fmt.Errorf("events file %s must hold a json array", path)
	}

	var events hydrate.Events

	for i, element := range list {
		entry, isMap := element.(hydrate.Map)
		if !isMap {
			return nil, fmt.Errorf("event %d in %s is not an object", i, path)
		}

		source := ""
		if scalar, isScalar := entry["source"].(hydrate.Scalar); isScalar {
			if s, isString := scalar.Val.(string); isString {
				source = s
			}
		}

		event, buildErr := hydrate.BuildEvent(source, entry["context"])
		if buildErr != nil {
			return nil, fmt.Errorf("event %d in %s: %w", i, path, buildErr)
		}

		events = append(events, event)
	}

	return events, nil
}
