package catalog

import (
	"errors"
)

var ErrNilDatabaseConnection = errors.New("nil database connection supplied")
var ErrEmptyBooksTableName = errors.New("empty books table name supplied")
var ErrEmptyIssuesTableName = errors.New("empty issues table name supplied")

// Domain errors surfaced by the issue/return state machine and the catalog operations.
var ErrBookNotFound = errors.New("book not found")
var ErrBookNotAvailable = errors.New("book is not available, it is already issued")
var ErrBookNotIssued = errors.New("book is not currently issued")
var ErrNoOpenIssueRecord = errors.New("no open issue record found for issued book, the ledger is inconsistent")
var ErrNoRecognizedBookFields = errors.New("no recognized book fields supplied")

// Infrastructure errors, joined with their causes by the store engines.
var ErrBuildingQueryFailed = errors.New("building sql query failed")
var ErrQueryingCatalogFailed = errors.New("querying the catalog failed")
var ErrScanningDBRowFailed = errors.New("scanning database row failed")
var ErrExecutingStatementFailed = errors.New("executing sql statement failed")
var ErrBeginningTransactionFailed = errors.New("beginning transaction failed")
var ErrCommittingTransactionFailed = errors.New("committing transaction failed")
var ErrIntrospectingSchemaFailed = errors.New("introspecting the books schema failed")

// BookIDInt64 is a type alias for int64, representing the identity of a book row.
type BookIDInt64 = int64

// IssueIDInt64 is a type alias for int64, representing the identity of an issue record.
type IssueIDInt64 = int64
