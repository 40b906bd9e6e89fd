package testutil

import (
	"context"
	"slices"
	"sync"

	"github.com/entityevent/hydrate-go/hydrate"
)

// TestRecord is a minimal Record implementation for tests and fixtures.
type TestRecord struct {
	ID   hydrate.IdentifierInt64 `json:"id"`
	Name string                  `json:"name"`
}

// RecordID implements hydrate.Record.
func (r TestRecord) RecordID() hydrate.IdentifierInt64 {
	return r.ID
}

// InMemoryRecordStore serves pre-seeded records per type name and records
// the specs it was queried with. Safe for concurrent use.
type InMemoryRecordStore struct {
	mu      sync.Mutex
	records map[hydrate.TypeNameString][]hydrate.Record
	specs   map[hydrate.TypeNameString]hydrate.QuerySpec
}

// NewInMemoryRecordStore creates an empty in-memory record store.
func NewInMemoryRecordStore() *InMemoryRecordStore {
	return &InMemoryRecordStore{
		records: make(map[hydrate.TypeNameString][]hydrate.Record),
		specs:   make(map[hydrate.TypeNameString]hydrate.QuerySpec),
	}
}

// Seed registers records under a type name.
func (s *InMemoryRecordStore) Seed(typeName hydrate.TypeNameString, records ...hydrate.Record) *InMemoryRecordStore {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[typeName] = append(s.records[typeName], records...)

	return s
}

// FetchByIDs implements hydrate.RecordStore.
func (s *InMemoryRecordStore) FetchByIDs(
	_ context.Context,
	typeName hydrate.TypeNameString,
	ids []hydrate.IdentifierInt64,
	spec hydrate.QuerySpec,
) ([]hydrate.Record, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	seeded, exists := s.records[typeName]
	if !exists {
		return nil, hydrate.ErrUnknownRecordType
	}

	s.specs[typeName] = spec

	matched := make([]hydrate.Record, 0, len(ids))
	for _, record := range seeded {
		if slices.Contains(ids, record.RecordID()) {
			matched = append(matched, record)
		}
	}

	return matched, nil
}

// SpecFor returns the QuerySpec the store was last queried with for a type.
func (s *InMemoryRecordStore) SpecFor(typeName hydrate.TypeNameString) hydrate.QuerySpec {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.specs[typeName]
}

// StaticHintSource serves a fixed set of declarations, filtered by the
// requested sources and render groups like a real hint store would.
type StaticHintSource struct {
	Declarations []hydrate.HintDeclaration
}

// FetchDeclarations implements hydrate.HintSource.
func (s *StaticHintSource) FetchDeclarations(
	_ context.Context,
	sources []hydrate.SourceString,
	renderGroups []hydrate.RenderGroupString,
) ([]hydrate.HintDeclaration, error) {

	matched := make([]hydrate.HintDeclaration, 0, len(s.Declarations))
	for _, declaration := range s.Declarations {
		if slices.Contains(sources, declaration.Source) && slices.Contains(renderGroups, declaration.RenderGroup) {
			matched = append(matched, declaration)
		}
	}

	return matched, nil
}
