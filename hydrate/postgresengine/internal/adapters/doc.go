// Package adapters provides database abstraction for the hydration stores,
// wrapping pgxpool.Pool, sql.DB and sqlx.DB behind one read-only interface.
//
// The hydration engine never writes, so the adapter surface is query-only.
package adapters
