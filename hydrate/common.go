package hydrate

import (
	"errors"
)

var ErrNilHintSource = errors.New("nil hint source supplied")
var ErrNilRecordStore = errors.New("nil record store supplied")
var ErrEmptyEventSource = errors.New("event source must not be empty")

// ErrUnknownRecordType is returned when a merged hint references a logical
// record type that no store binding can resolve. It aborts the whole load.
var ErrUnknownRecordType = errors.New("record type is not registered")

// ErrFetchingRecordsFailed wraps failures of the RecordStore collaborator.
var ErrFetchingRecordsFailed = errors.New("fetching records failed")

// ErrFetchingDeclarationsFailed wraps failures of the HintSource collaborator.
var ErrFetchingDeclarationsFailed = errors.New("fetching hint declarations failed")

type SourceString = string
type RenderGroupString = string
type ContextKeyString = string
type TypeNameString = string

// IdentifierInt64 is a type alias for int64, representing a raw record identifier
// embedded in an event's context tree.
type IdentifierInt64 = int64

// IDSet is a set of raw identifiers collected for one record type.
type IDSet = map[IdentifierInt64]struct{}
