package adapters

import "context"

// DBAdapter defines the read-only database interface the hydration stores need.
type DBAdapter interface {
	Query(ctx context.Context, query string) (DBRows, error)
}

// DBRows defines the interface for query result rows.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
}
