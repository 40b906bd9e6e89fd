package postgresengine_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entityevent/hydrate-go/hydrate"
	"github.com/entityevent/hydrate-go/hydrate/postgresengine"
	"github.com/entityevent/hydrate-go/testutil/config"
)

// These tests need a running Postgres and are opt-in through
// HYDRATE_TEST_POSTGRES_DSN. They exercise the real query and decode paths
// the fake-adapter tests can only approximate.

const itUsersTable = "it_users"
const itRenderersTable = "it_context_renderers"

var itSetupStatements = []string{
	`CREATE TABLE IF NOT EXISTS it_users (
		id        bigint PRIMARY KEY,
		payload   jsonb NOT NULL DEFAULT '{}',
		relations jsonb NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS it_context_renderers (
		source       text NOT NULL,
		render_group text NOT NULL,
		hints        jsonb NOT NULL DEFAULT '{}',
		PRIMARY KEY (source, render_group)
	)`,
	`TRUNCATE it_users, it_context_renderers`,
	`INSERT INTO it_users (id, payload, relations) VALUES
		(7, '{"name": "ada"}', '{"profile": {"id": 11}, "billing": {"id": 12}}'),
		(9, '{"name": "lin"}', '{}')`,
	`INSERT INTO it_context_renderers (source, render_group, hints) VALUES
		('user.created', 'email', '{"user_id": {"type": "User", "direct": ["profile"]}}')`,
}

func requirePostgres(t *testing.T) {
	t.Helper()

	if os.Getenv("HYDRATE_TEST_POSTGRES_DSN") == "" {
		t.Skip("set HYDRATE_TEST_POSTGRES_DSN to run the postgres integration tests")
	}
}

func setupDatabase(t *testing.T, ctx context.Context) {
	t.Helper()

	db := config.PostgresSQLDB()
	defer func() { _ = db.Close() }()

	for _, statement := range itSetupStatements {
		_, err := db.ExecContext(ctx, statement)
		require.NoError(t, err)
	}
}

func assertRecordRoundTrip(t *testing.T, store postgresengine.Store, ctx context.Context) {
	t.Helper()

	spec := hydrate.QuerySpec{TypeName: "User", DirectEagerLoad: []string{"profile"}}

	records, err := store.FetchByIDs(ctx, "User", []hydrate.IdentifierInt64{7, 9, 999}, spec)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first, ok := records[0].(postgresengine.StoredRecord)
	require.True(t, ok)
	assert.Equal(t, hydrate.IdentifierInt64(7), first.RecordID())
	assert.Equal(t, "ada", first.Payload["name"])

	// only the eager-loaded relation is projected
	require.Contains(t, first.Relations, "profile")
	assert.NotContains(t, first.Relations, "billing")

	profile := first.Relations["profile"].(map[string]any)
	assert.Equal(t, json.Number("11"), profile["id"])

	second, ok := records[1].(postgresengine.StoredRecord)
	require.True(t, ok)
	assert.Equal(t, hydrate.IdentifierInt64(9), second.RecordID())
}

func assertDeclarationRoundTrip(t *testing.T, store postgresengine.Store, ctx context.Context) {
	t.Helper()

	declarations, err := store.FetchDeclarations(
		ctx,
		[]hydrate.SourceString{"user.created"},
		[]hydrate.RenderGroupString{"email", "web"},
	)
	require.NoError(t, err)
	require.Len(t, declarations, 1)
	assert.Equal(t, hydrate.SourceString("user.created"), declarations[0].Source)
	assert.Equal(t, hydrate.RenderGroupString("email"), declarations[0].RenderGroup)

	spec, exists := declarations[0].Hints["user_id"]
	require.True(t, exists)
	assert.Equal(t, hydrate.TypeNameString("User"), spec.TypeName)
	assert.Equal(t, []string{"profile"}, spec.DirectEagerLoad)
}

func Test_Integration_PGXPool_RoundTrips(t *testing.T) {
	requirePostgres(t)

	// given
	ctx := context.Background()
	setupDatabase(t, ctx)

	pool := config.PostgresPGXPool(ctx)
	defer pool.Close()

	store, err := postgresengine.NewStoreFromPGXPool(
		pool,
		postgresengine.WithRendererTableName(itRenderersTable),
		postgresengine.WithRecordTable("User", itUsersTable),
	)
	require.NoError(t, err)

	// when / then
	assertRecordRoundTrip(t, store, ctx)
	assertDeclarationRoundTrip(t, store, ctx)
}

func Test_Integration_SQLDB_RoundTrips(t *testing.T) {
	requirePostgres(t)

	// given
	ctx := context.Background()
	setupDatabase(t, ctx)

	db := config.PostgresSQLDB()
	defer func() { _ = db.Close() }()

	store, err := postgresengine.NewStoreFromSQLDB(
		db,
		postgresengine.WithRendererTableName(itRenderersTable),
		postgresengine.WithRecordTable("User", itUsersTable),
	)
	require.NoError(t, err)

	// when / then
	assertRecordRoundTrip(t, store, ctx)
	assertDeclarationRoundTrip(t, store, ctx)
}

func Test_Integration_SQLX_RoundTrips(t *testing.T) {
	requirePostgres(t)

	// given
	ctx := context.Background()
	setupDatabase(t, ctx)

	db := config.PostgresSQLX()
	defer func() { _ = db.Close() }()

	store, err := postgresengine.NewStoreFromSQLX(
		db,
		postgresengine.WithRendererTableName(itRenderersTable),
		postgresengine.WithRecordTable("User", itUsersTable),
	)
	require.NoError(t, err)

	// when / then
	assertRecordRoundTrip(t, store, ctx)
	assertDeclarationRoundTrip(t, store, ctx)
}
