package hydrate

import (
	"context"
	"sync"
)

type stubRecord struct {
	id   IdentifierInt64
	name string
}

func (r stubRecord) RecordID() IdentifierInt64 {
	return r.id
}

type recordedFetch struct {
	typeName TypeNameString
	ids      []IdentifierInt64
	spec     QuerySpec
}

// stubRecordStore serves pre-seeded records and records every fetch call.
// It is safe for concurrent use since the concurrent fetch path hits it
// from multiple goroutines.
type stubRecordStore struct {
	mu            sync.Mutex
	recordsByType map[TypeNameString][]Record
	failWith      error
	calls         []recordedFetch
}

func (s *stubRecordStore) FetchByIDs(
	_ context.Context,
	typeName TypeNameString,
	ids []IdentifierInt64,
	spec QuerySpec,
) ([]Record, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, recordedFetch{typeName: typeName, ids: ids, spec: spec})

	if s.failWith != nil {
		return nil, s.failWith
	}

	requested := make(IDSet, len(ids))
	for _, id := range ids {
		requested[id] = struct{}{}
	}

	matched := make([]Record, 0)
	for _, record := range s.recordsByType[typeName] {
		if _, ok := requested[record.RecordID()]; ok {
			matched = append(matched, record)
		}
	}

	return matched, nil
}

func (s *stubRecordStore) callsForType(typeName TypeNameString) []recordedFetch {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]recordedFetch, 0)
	for _, call := range s.calls {
		if call.typeName == typeName {
			matched = append(matched, call)
		}
	}

	return matched
}

type stubHintSource struct {
	declarations     []HintDeclaration
	failWith         error
	seenSources      []SourceString
	seenRenderGroups []RenderGroupString
}

func (s *stubHintSource) FetchDeclarations(
	_ context.Context,
	sources []SourceString,
	renderGroups []RenderGroupString,
) ([]HintDeclaration, error) {

	s.seenSources = sources
	s.seenRenderGroups = renderGroups

	if s.failWith != nil {
		return nil, s.failWith
	}

	return s.declarations, nil
}
