package hclhints

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entityevent/hydrate-go/hydrate"
)

func Test_Load_ParsesRendererBlocks(t *testing.T) {
	// given
	registry, err := Load(filepath.Join("testdata", "renderers", "user_renderers.hcl"))
	require.NoError(t, err)

	// when
	declarations, err := registry.FetchDeclarations(
		context.Background(),
		[]hydrate.SourceString{"user.created"},
		[]hydrate.RenderGroupString{"email"},
	)

	// then
	require.NoError(t, err)
	require.Len(t, declarations, 1)
	assert.Equal(t, hydrate.SourceString("user.created"), declarations[0].Source)
	assert.Equal(t, hydrate.RenderGroupString("email"), declarations[0].RenderGroup)

	userHint, exists := declarations[0].Hints["user_id"]
	require.True(t, exists)
	assert.Equal(t, hydrate.TypeNameString("User"), userHint.TypeName)
	assert.Equal(t, []string{"profile"}, userHint.DirectEagerLoad)
	assert.Empty(t, userHint.TransitiveEagerLoad)

	teamHint, exists := declarations[0].Hints["team_ids"]
	require.True(t, exists)
	assert.Equal(t, hydrate.TypeNameString("Team"), teamHint.TypeName)
}

func Test_FetchDeclarations_FiltersBySourceAndRenderGroup(t *testing.T) {
	// given
	registry, err := LoadDir(filepath.Join("testdata", "renderers"))
	require.NoError(t, err)

	tests := []struct {
		name         string
		sources      []hydrate.SourceString
		renderGroups []hydrate.RenderGroupString
		expected     int
	}{
		{
			name:         "one source, one group",
			sources:      []hydrate.SourceString{"user.created"},
			renderGroups: []hydrate.RenderGroupString{"email"},
			expected:     1,
		},
		{
			name:         "one source, both groups",
			sources:      []hydrate.SourceString{"user.created"},
			renderGroups: []hydrate.RenderGroupString{"email", "web"},
			expected:     2,
		},
		{
			name:         "both sources, one group",
			sources:      []hydrate.SourceString{"user.created", "team.renamed"},
			renderGroups: []hydrate.RenderGroupString{"email"},
			expected:     2,
		},
		{
			name:         "unknown source",
			sources:      []hydrate.SourceString{"nobody.cares"},
			renderGroups: []hydrate.RenderGroupString{"email"},
			expected:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			declarations, fetchErr := registry.FetchDeclarations(context.Background(), tt.sources, tt.renderGroups)
			require.NoError(t, fetchErr)
			assert.Len(t, declarations, tt.expected)
		})
	}
}

func Test_LoadDir_IncludesBrokenFilesAndFails(t *testing.T) {
	// testdata/broken has a renderer block missing its render group label
	_, err := LoadDir(filepath.Join("testdata", "broken"))

	require.ErrorIs(t, err, ErrParsingDeclarationsFailed)
}

func Test_Load_FailsWithoutFiles(t *testing.T) {
	_, err := Load()

	require.ErrorIs(t, err, ErrNoDeclarationFiles)
}

func Test_Load_FailsForMissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "renderers", "does_not_exist.hcl"))

	require.ErrorIs(t, err, ErrParsingDeclarationsFailed)
}

func Test_Registry_FeedsTheLoader(t *testing.T) {
	// given
	registry, err := Load(filepath.Join("testdata", "renderers", "user_renderers.hcl"))
	require.NoError(t, err)

	records := &staticRecords{}
	loader, err := hydrate.NewContextLoader(registry, records)
	require.NoError(t, err)

	event, err := hydrate.BuildEvent("user.created", hydrate.Map{"user_id": hydrate.Scalar{Val: int64(7)}})
	require.NoError(t, err)

	// when
	loaded, err := loader.Load(
		context.Background(),
		hydrate.Events{event},
		[]hydrate.Medium{{Name: "mail", RenderGroup: "email"}},
	)

	// then the hcl hint drove one fetch for the User type
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Len(t, records.fetched, 1)
	assert.Equal(t, hydrate.TypeNameString("User"), records.fetched[0])
}

type staticRecords struct {
	fetched []hydrate.TypeNameString
}

func (s *staticRecords) FetchByIDs(
	_ context.Context,
	typeName hydrate.TypeNameString,
	_ []hydrate.IdentifierInt64,
	_ hydrate.QuerySpec,
) ([]hydrate.Record, error) {
	s.fetched = append(s.fetched, typeName)
	return nil, nil
}
