// Package httpapi provides the JSON HTTP surface of the library catalog.
//
// The routes and response envelopes mirror the browsing and circulation
// clients: every response carries a success flag, failures add a message, and
// book rows are returned flattened with their dynamic attribute set.
//
// The package is a thin transport: all lifecycle rules live in the catalog
// store, which is consumed through the narrow CatalogStore interface so
// handlers can be tested against a fake.
package httpapi
