package adapters

import (
	"context"
	"database/sql"
)

// SQLAdapter implements DBAdapter for database/sql connections, which covers
// any registered driver (lib/pq for Postgres, mattn/go-sqlite3 for SQLite).
type SQLAdapter struct {
	db *sql.DB
}

// NewSQLAdapter creates a new SQL adapter.
func NewSQLAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db}
}

// Query executes a query using the sql.DB and returns wrapped rows.
func (s *SQLAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows}, nil
}

// stdRows wraps sql.Rows to implement the DBRows interface. It is shared by
// the sql and sqlx adapters.
type stdRows struct {
	rows *sql.Rows
}

func (r *stdRows) Next() bool {
	return r.rows.Next()
}

func (r *stdRows) Scan(dest ...any) error {
	return r.rows.Scan(dest...)
}

func (r *stdRows) Close() error {
	return r.rows.Close()
}
