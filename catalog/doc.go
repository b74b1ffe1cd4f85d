// Package catalog provides the core abstractions and types for the library
// catalog: book records with a dynamic, schema-introspected attribute set,
// the issue ledger, and the common error definitions shared by all store
// implementations.
//
// The book lifecycle is a two-state machine per book, available ⇄ issued,
// with the invariant that a book has status "issued" if and only if exactly
// one open IssueRecord (return date not yet set) exists for it.
//
// Key types:
//   - Book: a catalog record with dynamic attributes plus lifecycle fields
//   - IssueRecord: one issue/return event in the permanent ledger
//   - Schema: explicit typed description of the books table, loaded once at
//     startup and passed by reference to the store and its clients
//
// Common usage pattern:
//
//	schema, err := store.IntrospectBookSchema(ctx)
//	if err != nil {
//		// handle error
//	}
//
//	book, issue, err := store.IssueBook(ctx, bookID, userID, userName)
//	if errors.Is(err, catalog.ErrBookNotAvailable) {
//		// the book is already issued to someone else
//	}
package catalog
