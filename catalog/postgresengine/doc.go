// Package postgresengine provides the PostgreSQL implementation of the
// library Catalog Store and Issue Ledger.
//
// The engine supports multiple database libraries through adapters:
//   - pgxpool.Pool (recommended for production)
//   - sql.DB (standard library compatibility)
//   - sqlx.DB (extended standard library features)
//
// All SQL is built with goqu for the postgres dialect. The issue/return
// transitions run inside single-row transactions: the book row is read with
// FOR UPDATE, validated, and mutated together with its ledger entry, so that
// concurrent transitions on the same book serialize and partial state is
// never observable.
//
// Create instances using the factory methods:
//   - NewCatalogStoreFromPGXPool
//   - NewCatalogStoreFromSQLDB
//   - NewCatalogStoreFromSQLX
package postgresengine
