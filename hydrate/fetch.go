package hydrate

import (
	"context"
	"errors"
	"maps"
	"slices"

	"golang.org/x/sync/errgroup"
)

// FetchedRecords is an alias type for fetched records indexed by type name
// and then by their own identifier.
type FetchedRecords = map[TypeNameString]map[IdentifierInt64]Record

// BatchFetcher issues exactly one RecordStore call per record type with a
// non-empty identifier set. Types with empty sets are skipped without a
// call. Per-type fetches touch disjoint result slots, so they may optionally
// run concurrently.
type BatchFetcher struct {
	store      RecordStore
	concurrent bool
}

// NewBatchFetcher creates a BatchFetcher that fetches types sequentially.
func NewBatchFetcher(store RecordStore) BatchFetcher {
	return BatchFetcher{store: store}
}

// NewConcurrentBatchFetcher creates a BatchFetcher that issues the per-type
// fetch calls concurrently. The first failure cancels the remaining calls
// and aborts the fetch as a whole.
func NewConcurrentBatchFetcher(store RecordStore) BatchFetcher {
	return BatchFetcher{store: store, concurrent: true}
}

// Fetch resolves the collected identifiers into records, one store call per
// type. A store failure is wrapped in ErrFetchingRecordsFailed and aborts
// the whole fetch; there is no partial result.
func (bf BatchFetcher) Fetch(
	ctx context.Context,
	idsByType map[TypeNameString]IDSet,
	specs map[TypeNameString]QuerySpec,
) (FetchedRecords, error) {

	fetched := make(FetchedRecords, len(idsByType))
	for typeName, ids := range idsByType {
		// Pre-allocate the result slot so concurrent workers never write
		// to the outer map.
		fetched[typeName] = make(map[IdentifierInt64]Record, len(ids))
	}

	if bf.concurrent {
		if err := bf.fetchConcurrently(ctx, idsByType, specs, fetched); err != nil {
			return nil, err
		}

		return fetched, nil
	}

	for typeName, ids := range idsByType {
		if err := bf.fetchOneType(ctx, typeName, ids, specs[typeName], fetched[typeName]); err != nil {
			return nil, err
		}
	}

	return fetched, nil
}

func (bf BatchFetcher) fetchConcurrently(
	ctx context.Context,
	idsByType map[TypeNameString]IDSet,
	specs map[TypeNameString]QuerySpec,
	fetched FetchedRecords,
) error {

	group, groupCtx := errgroup.WithContext(ctx)

	for typeName, ids := range idsByType {
		group.Go(func() error {
			return bf.fetchOneType(groupCtx, typeName, ids, specs[typeName], fetched[typeName])
		})
	}

	return group.Wait()
}

// fetchOneType issues the single store call for one record type and indexes
// the returned records by their own identifier into the given slot.
func (bf BatchFetcher) fetchOneType(
	ctx context.Context,
	typeName TypeNameString,
	ids IDSet,
	spec QuerySpec,
	into map[IdentifierInt64]Record,
) error {

	if len(ids) == 0 {
		return nil
	}

	records, fetchErr := bf.store.FetchByIDs(ctx, typeName, sortedIdentifiers(ids), spec)
	if fetchErr != nil {
		return errors.Join(ErrFetchingRecordsFailed, fetchErr)
	}

	for _, record := range records {
		into[record.RecordID()] = record
	}

	return nil
}

// sortedIdentifiers flattens an IDSet into a sorted slice so store calls and
// the queries they build are deterministic.
func sortedIdentifiers(ids IDSet) []IdentifierInt64 {
	return slices.Sorted(maps.Keys(ids))
}
