// Package hydrate resolves identifier references embedded inside
// heterogeneous, nested event context trees into fully materialized records,
// with at most one backend fetch per record type.
//
// A declarative set of hints, scoped by event source and by render group,
// tells the loader which context keys hold which identifier types and which
// associated relations to eagerly attach. Hydration happens in place: raw
// identifiers (and lists of identifiers) are replaced by the fetched
// records, misses by an explicit null marker.
//
// Key types:
//   - Value / Scalar / List / Map: the context tree variant
//   - HintDeclaration / MergedHint: per-renderer hints and their merge
//   - QuerySpec: the one fetch specification per record type
//   - ContextLoader: the orchestrator
//
// Common usage pattern:
//
//	loader, err := hydrate.NewContextLoader(hintSource, recordStore,
//		hydrate.WithLogger(logger),
//		hydrate.WithConcurrentFetches())
//	if err != nil {
//		// handle error
//	}
//
//	events, err = loader.Load(ctx, events, mediums)
//	if err != nil {
//		// handle error: the whole load is aborted, no partial guarantee
//	}
//
// The backend store and the hint source are collaborators specified by the
// RecordStore and HintSource interfaces; see the postgresengine,
// sqliteengine and hclhints packages for implementations.
package hydrate
