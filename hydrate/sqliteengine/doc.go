// Package sqliteengine provides an embedded, single-file alternative to the
// Postgres engine for local development and small deployments. It implements
// the same two collaborator interfaces, hydrate.RecordStore and
// hydrate.HintSource, on top of a SQLite database.
//
// Record payloads and relations are stored as JSON text columns. SQLite has
// no jsonb projection worth the trouble, so the eager-load restriction from
// the QuerySpec is applied in Go after decoding, which the interface allows.
//
// The package also ships seeding helpers so a database can be populated
// without writing SQL, which is what the demo command uses.
package sqliteengine
