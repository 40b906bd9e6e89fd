package hydrate

import (
	"context"
)

// Record is an opaque fetched object. The only contract is that it exposes
// its own identifier, which the batch fetcher uses to index results.
type Record interface {
	RecordID() IdentifierInt64
}

// RecordStore is the backend collaborator that materializes records.
//
// FetchByIDs receives the ids sorted and unique, and a QuerySpec naming the
// relations to eagerly include (a performance hint the backend may ignore).
// Identifiers with no corresponding record are simply not returned, that is
// not an error. An unregistered typeName must yield ErrUnknownRecordType.
type RecordStore interface {
	FetchByIDs(ctx context.Context, typeName TypeNameString, ids []IdentifierInt64, spec QuerySpec) ([]Record, error)
}

// HintSource is the collaborator that supplies hint declarations.
//
// FetchDeclarations returns only declarations whose source is in sources and
// whose render group is in renderGroups.
type HintSource interface {
	FetchDeclarations(ctx context.Context, sources []SourceString, renderGroups []RenderGroupString) ([]HintDeclaration, error)
}
