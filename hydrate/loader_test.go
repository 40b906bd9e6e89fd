package hydrate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewContextLoader_RejectsNilCollaborators(t *testing.T) {
	_, err := NewContextLoader(nil, &stubRecordStore{})
	assert.ErrorIs(t, err, ErrNilHintSource)

	_, err = NewContextLoader(&stubHintSource{}, nil)
	assert.ErrorIs(t, err, ErrNilRecordStore)
}

func Test_Load_EndToEnd_TwoRenderersUnionTheirEagerLoads(t *testing.T) {
	hintSource := &stubHintSource{
		declarations: []HintDeclaration{
			{
				Source:      "feed",
				RenderGroup: "email",
				Hints: map[ContextKeyString]HintSpec{
					"user_id": {TypeName: "User", DirectEagerLoad: []string{"profile"}},
				},
			},
			{
				Source:      "feed",
				RenderGroup: "web",
				Hints: map[ContextKeyString]HintSpec{
					"user_id": {TypeName: "User", DirectEagerLoad: []string{"settings"}},
				},
			},
		},
	}
	store := &stubRecordStore{
		recordsByType: map[TypeNameString][]Record{
			"User": {stubRecord{id: 5, name: "ada"}},
		},
	}
	loader, err := NewContextLoader(hintSource, store)
	require.NoError(t, err)

	context5 := Map{"user_id": Scalar{Val: 5}}
	events := Events{{Source: "feed", Context: context5}}
	mediums := []Medium{
		{Name: "newsletter", RenderGroup: "email"},
		{Name: "site", RenderGroup: "web"},
	}

	returned, loadErr := loader.Load(context.Background(), events, mediums)
	require.NoError(t, loadErr)

	assert.Equal(t, []SourceString{"feed"}, hintSource.seenSources)
	assert.Equal(t, []RenderGroupString{"email", "web"}, hintSource.seenRenderGroups)

	userCalls := store.callsForType("User")
	require.Len(t, userCalls, 1)
	assert.Equal(t, []string{"profile", "settings"}, userCalls[0].spec.DirectEagerLoad)

	assert.Equal(t, Scalar{Val: stubRecord{id: 5, name: "ada"}}, context5["user_id"])
	assert.Equal(t, events, returned)
}

func Test_Load_EventsWithoutMatchingDeclarationsPassThroughUnchanged(t *testing.T) {
	hintSource := &stubHintSource{}
	store := &stubRecordStore{}
	loader, err := NewContextLoader(hintSource, store)
	require.NoError(t, err)

	context1 := Map{"user_id": Scalar{Val: 5}}
	events := Events{{Source: "feed", Context: context1}}

	returned, loadErr := loader.Load(context.Background(), events, []Medium{{RenderGroup: "email"}})
	require.NoError(t, loadErr)

	assert.Equal(t, Scalar{Val: 5}, context1["user_id"])
	assert.Empty(t, store.calls)
	assert.Equal(t, events, returned)
}

func Test_Load_EmptyEventsShortCircuits(t *testing.T) {
	hintSource := &stubHintSource{}
	loader, err := NewContextLoader(hintSource, &stubRecordStore{})
	require.NoError(t, err)

	returned, loadErr := loader.Load(context.Background(), Events{}, nil)
	require.NoError(t, loadErr)
	assert.Empty(t, returned)
	assert.Nil(t, hintSource.seenSources)
}

func Test_Load_HintSourceFailureAbortsTheCall(t *testing.T) {
	hintSource := &stubHintSource{failWith: errors.New("hints unavailable")}
	loader, err := NewContextLoader(hintSource, &stubRecordStore{})
	require.NoError(t, err)

	_, loadErr := loader.Load(context.Background(), Events{{Source: "feed", Context: Map{}}}, nil)

	assert.ErrorContains(t, loadErr, ErrFetchingDeclarationsFailed.Error())
	assert.ErrorContains(t, loadErr, "hints unavailable")
}

func Test_Load_RecordStoreFailureAbortsTheCall(t *testing.T) {
	hintSource := &stubHintSource{
		declarations: []HintDeclaration{
			{
				Source: "feed",
				Hints:  map[ContextKeyString]HintSpec{"user_id": {TypeName: "User"}},
			},
		},
	}
	store := &stubRecordStore{failWith: errors.New("db down")}
	loader, err := NewContextLoader(hintSource, store)
	require.NoError(t, err)

	context1 := Map{"user_id": Scalar{Val: 5}}
	_, loadErr := loader.Load(context.Background(), Events{{Source: "feed", Context: context1}}, nil)

	assert.ErrorContains(t, loadErr, ErrFetchingRecordsFailed.Error())
	// No partial hydration guarantee, but the single failed fetch must not
	// have written anything here.
	assert.Equal(t, Scalar{Val: 5}, context1["user_id"])
}

func Test_Load_HintedTypeWithoutReferencesNeverHitsTheStore(t *testing.T) {
	// A renderer may hint a key the events do not carry. No identifiers get
	// collected for the hinted type, so the store is never asked about it and
	// cannot fail the load, even when it would not recognize the type.
	hintSource := &stubHintSource{
		declarations: []HintDeclaration{
			{
				Source: "feed",
				Hints:  map[ContextKeyString]HintSpec{"legacy_id": {TypeName: "Legacy"}},
			},
		},
	}
	store := &stubRecordStore{failWith: ErrUnknownRecordType}
	loader, err := NewContextLoader(hintSource, store)
	require.NoError(t, err)

	context1 := Map{"note": Scalar{Val: "hi"}}
	returned, loadErr := loader.Load(context.Background(), Events{{Source: "feed", Context: context1}}, nil)

	require.NoError(t, loadErr)
	assert.Empty(t, store.calls)
	assert.Equal(t, Scalar{Val: "hi"}, context1["note"])
	require.Len(t, returned, 1)
}

func Test_Load_DuplicateSourcesAndRenderGroupsDeduplicated(t *testing.T) {
	hintSource := &stubHintSource{}
	loader, err := NewContextLoader(hintSource, &stubRecordStore{})
	require.NoError(t, err)

	events := Events{
		{Source: "feed", Context: Map{}},
		{Source: "feed", Context: Map{}},
		{Source: "billing", Context: Map{}},
	}
	mediums := []Medium{
		{RenderGroup: "email"},
		{RenderGroup: "email"},
	}

	_, loadErr := loader.Load(context.Background(), events, mediums)
	require.NoError(t, loadErr)

	assert.Equal(t, []SourceString{"feed", "billing"}, hintSource.seenSources)
	assert.Equal(t, []RenderGroupString{"email"}, hintSource.seenRenderGroups)
}

func Test_Load_ConcurrentFetchesProduceSameHydration(t *testing.T) {
	declarations := []HintDeclaration{
		{
			Source: "feed",
			Hints: map[ContextKeyString]HintSpec{
				"user_id": {TypeName: "User"},
				"team_id": {TypeName: "Team"},
			},
		},
	}
	records := map[TypeNameString][]Record{
		"User": {stubRecord{id: 1, name: "ada"}},
		"Team": {stubRecord{id: 7, name: "core"}},
	}

	buildEvents := func() Events {
		return Events{{Source: "feed", Context: Map{
			"user_id": Scalar{Val: 1},
			"team_id": Scalar{Val: 7},
		}}}
	}

	sequentialLoader, err := NewContextLoader(
		&stubHintSource{declarations: declarations},
		&stubRecordStore{recordsByType: records})
	require.NoError(t, err)

	concurrentLoader, err := NewContextLoader(
		&stubHintSource{declarations: declarations},
		&stubRecordStore{recordsByType: records},
		WithConcurrentFetches())
	require.NoError(t, err)

	sequential := buildEvents()
	concurrent := buildEvents()

	_, seqErr := sequentialLoader.Load(context.Background(), sequential, nil)
	require.NoError(t, seqErr)
	_, concErr := concurrentLoader.Load(context.Background(), concurrent, nil)
	require.NoError(t, concErr)

	assert.Equal(t, sequential[0].Context, concurrent[0].Context)
}
