// Package config provides database connection configuration for integration
// testing of the hydration stores. It covers all three connection flavors
// the postgres engine accepts: pgxpool, database/sql (lib/pq) and sqlx.
package config
