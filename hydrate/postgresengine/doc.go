// Package postgresengine provides the Postgres-backed collaborators for the
// hydration engine: a record store fetching one batch per record type and a
// hint store serving renderer declarations.
//
// Record types are bound to tables at construction time through
// WithRecordTable, forming an explicit registry; a hinted type without a
// binding fails the whole load with hydrate.ErrUnknownRecordType.
//
// Record tables are expected to carry an id (bigint), a payload (jsonb) and
// a relations (jsonb) column. The QuerySpec's eager-load sets select which
// relation entries are projected into the fetched records; everything else
// stays in the database.
//
// The engine accepts pgxpool.Pool, sql.DB and sqlx.DB connections and only
// ever reads.
package postgresengine
