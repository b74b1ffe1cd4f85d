// Package adapters provide database adapter implementations for the PostgreSQL catalog store.
//
// This package implements the adapter pattern to support multiple PostgreSQL database libraries:
// pgxpool.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent functionality through
// a common DBAdapter interface, allowing the catalog store to work seamlessly with any
// supported database connection type.
//
// Beyond plain query execution the adapters expose transactions (DBTx), because the
// issue/return transitions of the catalog require a read-with-lock, conditional-update,
// commit/rollback sequence on a single connection.
package adapters
