package adapters

import "context"

// DBAdapter defines the interface for database operations needed by the catalog store.
// All statements go through Query; mutations use RETURNING so that the row
// count and the resulting row come back in one round trip.
type DBAdapter interface {
	Query(ctx context.Context, query string) (DBRows, error)
	BeginTx(ctx context.Context) (DBTx, error)
}

// DBTx defines the interface for operations inside a database transaction.
// Every transaction handle must end with exactly one Commit or Rollback;
// Rollback after a successful Commit must be a harmless no-op so that it can
// be deferred on every exit path.
type DBTx interface {
	Query(ctx context.Context, query string) (DBRows, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DBRows defines the interface for query result rows.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Columns() ([]string, error)
	Close() error
}
