package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/openshelf/library-catalog/catalog"
	"github.com/openshelf/library-catalog/catalog/postgresengine/internal/adapters"
)

const (
	defaultBooksTableName  = "books"
	defaultIssuesTableName = "book_issues"

	logMsgBuildQueryFailed     = "failed to build sql query"
	logMsgDBQueryFailed        = "database query execution failed"
	logMsgDBExecFailed         = "database statement execution failed"
	logMsgCloseRowsFailed      = "failed to close database rows"
	logMsgRollbackFailed       = "failed to roll back transaction"
	logMsgSchemaIntrospected   = "books schema introspected"
	logMsgBooksListed          = "books listed"
	logMsgBookAdded            = "book added"
	logMsgBookIssued           = "book issued"
	logMsgBookReturned         = "book returned"
	logMsgIssuedBooksListed    = "issued books listed"
	logMsgHistoryQueried       = "issue history queried"
	logMsgIssueConflict        = "issue conflict detected"
	logMsgLedgerInconsistent   = "issued book has no open issue record"
	logMsgSQLExecuted          = "executed sql for: "
	logMsgOperation            = "catalogstore operation: "
	logAttrError               = "error"
	logAttrQuery               = "query"
	logAttrDurationMS          = "duration_ms"
	logAttrBookID              = "book_id"
	logAttrUserID              = "user_id"
	logAttrIssueID             = "issue_id"
	logAttrPage                = "page"
	logAttrBookCount           = "book_count"
	logAttrEntryCount          = "entry_count"
	logAttrTotalCount          = "total_count"
	logAttrColumnCount         = "column_count"
	logActionIntrospectSchema  = "introspect_schema"
	logActionListBooks         = "list_books"
	logActionCountBooks        = "count_books"
	logActionAddBook           = "add_book"
	logActionLockBookRow       = "lock_book_row"
	logActionMarkBookIssued    = "mark_book_issued"
	logActionMarkBookReturned  = "mark_book_returned"
	logActionInsertIssueRecord = "insert_issue_record"
	logActionFindOpenIssue     = "find_open_issue_record"
	logActionCloseIssueRecord  = "close_issue_record"
	logActionListIssued        = "list_issued_books"
	logActionCountIssued       = "count_issued_books"
	logActionIssueHistory      = "issue_history"
	operationIntrospectSchema  = "introspect_schema"
	operationListBooks         = "list_books"
	operationAddBook           = "add_book"
	operationIssueBook         = "issue_book"
	operationReturnBook        = "return_book"
	operationListIssued        = "list_issued"
	operationIssueHistory      = "issue_history"
)

type (
	sqlQueryString = string
	queryDuration  = time.Duration
)

// queryExecutor is the common query surface of the database adapter and an
// open transaction handle, so the same helpers work inside and outside
// transactions.
type queryExecutor interface {
	Query(ctx context.Context, query string) (adapters.DBRows, error)
}

// CatalogStore is the Postgres-backed Catalog Store and Issue Ledger.
//
// It owns the book records with their availability status and the append-only
// issue history, and guards the issue/return state machine with single-row
// transactions: the book row is read with a lock, checked, and mutated
// together with its ledger entry, atomically.
type CatalogStore struct {
	db               adapters.DBAdapter
	booksTableName   string
	issuesTableName  string
	logger           Logger
	metricsCollector MetricsCollector
}

// NewCatalogStoreFromPGXPool creates a new CatalogStore using a pgx pool with optional configuration.
func NewCatalogStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (CatalogStore, error) {
	if db == nil {
		return CatalogStore{}, catalog.ErrNilDatabaseConnection
	}

	return newCatalogStore(adapters.NewPGXAdapter(db), options...)
}

// NewCatalogStoreFromSQLDB creates a new CatalogStore using a sql.DB with optional configuration.
func NewCatalogStoreFromSQLDB(db *sql.DB, options ...Option) (CatalogStore, error) {
	if db == nil {
		return CatalogStore{}, catalog.ErrNilDatabaseConnection
	}

	return newCatalogStore(adapters.NewSQLAdapter(db), options...)
}

// NewCatalogStoreFromSQLX creates a new CatalogStore using a sqlx.DB with optional configuration.
func NewCatalogStoreFromSQLX(db *sqlx.DB, options ...Option) (CatalogStore, error) {
	if db == nil {
		return CatalogStore{}, catalog.ErrNilDatabaseConnection
	}

	return newCatalogStore(adapters.NewSQLXAdapter(db), options...)
}

func newCatalogStore(db adapters.DBAdapter, options ...Option) (CatalogStore, error) {
	cs := CatalogStore{
		db:              db,
		booksTableName:  defaultBooksTableName,
		issuesTableName: defaultIssuesTableName,
	}

	for _, option := range options {
		if err := option(&cs); err != nil {
			return CatalogStore{}, err
		}
	}

	return cs, nil
}

// IntrospectBookSchema derives the current attribute set of the books table
// from the storage schema. It is meant to be called once at initialization;
// the resulting Schema is passed by reference to AddBook and to clients that
// generate listings or forms from the column set.
func (cs CatalogStore) IntrospectBookSchema(ctx context.Context) (catalog.Schema, error) {
	start := time.Now()

	sqlQuery, buildErr := cs.buildSchemaQuery()
	if buildErr != nil {
		cs.logError(logMsgBuildQueryFailed, buildErr)
		return catalog.Schema{}, buildErr
	}

	rows, _, queryErr := cs.executeQuery(ctx, cs.db, sqlQuery, logActionIntrospectSchema)
	if queryErr != nil {
		cs.recordOperationDuration(operationIntrospectSchema, statusError, time.Since(start))
		return catalog.Schema{}, errors.Join(catalog.ErrIntrospectingSchemaFailed, queryErr)
	}
	defer cs.closeRows(rows)

	columnNames, scanErr := scanColumnNames(rows)
	if scanErr != nil {
		cs.recordOperationDuration(operationIntrospectSchema, statusError, time.Since(start))
		return catalog.Schema{}, errors.Join(catalog.ErrIntrospectingSchemaFailed, scanErr)
	}

	cs.recordOperationDuration(operationIntrospectSchema, statusSuccess, time.Since(start))
	cs.logOperation(
		logMsgSchemaIntrospected,
		logAttrColumnCount, len(columnNames),
		logAttrDurationMS, cs.toMilliseconds(time.Since(start)))

	return catalog.BuildSchema(columnNames), nil
}

// ListBooks returns one page of books ordered by id ascending, together with
// the total book count. Pagination is stable in ordering only; skew across
// concurrent inserts is accepted.
func (cs CatalogStore) ListBooks(ctx context.Context, page int, pageSize int) ([]catalog.Book, int64, error) {
	start := time.Now()
	page, pageSize = normalizePagination(page, pageSize)

	totalCount, countErr := cs.countRows(ctx, cs.buildCountBooksQuery, logActionCountBooks)
	if countErr != nil {
		cs.recordOperationDuration(operationListBooks, statusError, time.Since(start))
		return nil, 0, countErr
	}

	sqlQuery, buildErr := cs.buildListBooksQuery(page, pageSize)
	if buildErr != nil {
		cs.logError(logMsgBuildQueryFailed, buildErr)
		return nil, 0, buildErr
	}

	rows, _, queryErr := cs.executeQuery(ctx, cs.db, sqlQuery, logActionListBooks)
	if queryErr != nil {
		cs.recordOperationDuration(operationListBooks, statusError, time.Since(start))
		return nil, 0, queryErr
	}
	defer cs.closeRows(rows)

	books, _, scanErr := scanBookRows(rows)
	if scanErr != nil {
		cs.recordOperationDuration(operationListBooks, statusError, time.Since(start))
		return nil, 0, scanErr
	}

	cs.recordOperationDuration(operationListBooks, statusSuccess, time.Since(start))
	cs.logOperation(
		logMsgBooksListed,
		logAttrPage, page,
		logAttrBookCount, len(books),
		logAttrTotalCount, totalCount,
		logAttrDurationMS, cs.toMilliseconds(time.Since(start)))

	return books, totalCount, nil
}

// AddBook inserts a new book from the supplied attribute fields.
//
// The fields are restricted to the writable column set of the given Schema:
// unrecognized keys are dropped, and the id and lifecycle columns
// (status, issued_to, issued_date) can never be written through this path —
// those are owned exclusively by the issue/return transitions.
// Returns ErrNoRecognizedBookFields if nothing writable remains.
func (cs CatalogStore) AddBook(
	ctx context.Context,
	schema catalog.Schema,
	fields map[string]any,
) (catalog.Book, error) {

	start := time.Now()

	writableFields := schema.FilterWritable(fields)
	if len(writableFields) == 0 {
		return catalog.Book{}, catalog.ErrNoRecognizedBookFields
	}

	sqlQuery, buildErr := cs.buildInsertBookQuery(writableFields)
	if buildErr != nil {
		cs.logError(logMsgBuildQueryFailed, buildErr)
		return catalog.Book{}, buildErr
	}

	rows, _, queryErr := cs.executeQuery(ctx, cs.db, sqlQuery, logActionAddBook)
	if queryErr != nil {
		cs.recordOperationDuration(operationAddBook, statusError, time.Since(start))
		return catalog.Book{}, queryErr
	}
	defer cs.closeRows(rows)

	books, _, scanErr := scanBookRows(rows)
	if scanErr != nil {
		cs.recordOperationDuration(operationAddBook, statusError, time.Since(start))
		return catalog.Book{}, scanErr
	}

	if len(books) == 0 {
		insertErr := errors.Join(catalog.ErrExecutingStatementFailed, errors.New("insert returned no row"))
		cs.recordOperationDuration(operationAddBook, statusError, time.Since(start))
		return catalog.Book{}, insertErr
	}

	cs.recordOperationDuration(operationAddBook, statusSuccess, time.Since(start))
	cs.logOperation(
		logMsgBookAdded,
		logAttrBookID, books[0].ID,
		logAttrDurationMS, cs.toMilliseconds(time.Since(start)))

	return books[0], nil
}

// IssueBook transitions a book from available to issued.
//
// The whole transition runs inside one transaction: the book row is read with
// a lock, its status is checked, the lifecycle fields are set, and a new open
// issue record is appended to the ledger. Both rows carry the same timestamp.
// Concurrent IssueBook calls for the same book are serialized by the row lock;
// the losing call observes ErrBookNotAvailable.
func (cs CatalogStore) IssueBook(
	ctx context.Context,
	bookID catalog.BookIDInt64,
	userID string,
	userName string,
) (catalog.Book, catalog.IssueRecord, error) {

	start := time.Now()
	issuedAt := time.Now().UTC()

	var book catalog.Book
	var issue catalog.IssueRecord

	txErr := cs.withinTransaction(ctx, func(tx adapters.DBTx) error {
		lockedBook, found, lockErr := cs.lockBookRow(ctx, tx, bookID)
		if lockErr != nil {
			return lockErr
		}

		if !found {
			return catalog.ErrBookNotFound
		}

		if !lockedBook.Status.IsAvailable() {
			cs.recordIssueConflict(operationIssueBook)
			cs.logOperation(logMsgIssueConflict, logAttrBookID, bookID, logAttrUserID, userID)

			return catalog.ErrBookNotAvailable
		}

		var stepErr error

		book, stepErr = cs.markBookIssued(ctx, tx, bookID, userID, issuedAt)
		if stepErr != nil {
			return stepErr
		}

		issue, stepErr = cs.insertIssueRecord(ctx, tx, bookID, userID, userName, issuedAt)

		return stepErr
	})
	if txErr != nil {
		cs.recordOperationDuration(operationIssueBook, statusError, time.Since(start))
		return catalog.Book{}, catalog.IssueRecord{}, txErr
	}

	cs.recordOperationDuration(operationIssueBook, statusSuccess, time.Since(start))
	cs.logOperation(
		logMsgBookIssued,
		logAttrBookID, bookID,
		logAttrUserID, userID,
		logAttrIssueID, issue.ID,
		logAttrDurationMS, cs.toMilliseconds(time.Since(start)))

	return book, issue, nil
}

// ReturnBook transitions a book from issued back to available.
//
// Inside one transaction the book row is read with a lock and required to be
// issued, the single open issue record is located (most recent issue date
// first as a defensive tie-break), the book lifecycle fields are cleared, and
// the record's return date is set. An issued book without an open issue
// record is a ledger inconsistency: the transition fails with
// ErrNoOpenIssueRecord and is never silently repaired.
func (cs CatalogStore) ReturnBook(
	ctx context.Context,
	bookID catalog.BookIDInt64,
) (catalog.Book, catalog.IssueRecord, error) {

	start := time.Now()
	returnedAt := time.Now().UTC()

	var book catalog.Book
	var issue catalog.IssueRecord

	txErr := cs.withinTransaction(ctx, func(tx adapters.DBTx) error {
		lockedBook, found, lockErr := cs.lockBookRow(ctx, tx, bookID)
		if lockErr != nil {
			return lockErr
		}

		if !found {
			return catalog.ErrBookNotFound
		}

		if lockedBook.Status != catalog.StatusIssued {
			cs.recordIssueConflict(operationReturnBook)
			cs.logOperation(logMsgIssueConflict, logAttrBookID, bookID)

			return catalog.ErrBookNotIssued
		}

		openIssue, found, findErr := cs.findOpenIssueRecord(ctx, tx, bookID)
		if findErr != nil {
			return findErr
		}

		if !found {
			cs.recordLedgerInconsistency(operationReturnBook)
			cs.logError(logMsgLedgerInconsistent, catalog.ErrNoOpenIssueRecord, logAttrBookID, bookID)

			return catalog.ErrNoOpenIssueRecord
		}

		var stepErr error

		book, stepErr = cs.markBookReturned(ctx, tx, bookID)
		if stepErr != nil {
			return stepErr
		}

		issue, stepErr = cs.closeIssueRecord(ctx, tx, openIssue.ID, returnedAt)

		return stepErr
	})
	if txErr != nil {
		cs.recordOperationDuration(operationReturnBook, statusError, time.Since(start))
		return catalog.Book{}, catalog.IssueRecord{}, txErr
	}

	cs.recordOperationDuration(operationReturnBook, statusSuccess, time.Since(start))
	cs.logOperation(
		logMsgBookReturned,
		logAttrBookID, bookID,
		logAttrIssueID, issue.ID,
		logAttrDurationMS, cs.toMilliseconds(time.Since(start)))

	return book, issue, nil
}

// ListIssued returns one page of currently-issued books joined with their open
// issue records, most recently issued first, together with the total count of
// issued books. The due date of every entry is computed from the issue date
// at read time, never persisted.
func (cs CatalogStore) ListIssued(ctx context.Context, page int, pageSize int) ([]catalog.IssuedBook, int64, error) {
	start := time.Now()
	page, pageSize = normalizePagination(page, pageSize)

	totalCount, countErr := cs.countRows(ctx, cs.buildCountIssuedBooksQuery, logActionCountIssued)
	if countErr != nil {
		cs.recordOperationDuration(operationListIssued, statusError, time.Since(start))
		return nil, 0, countErr
	}

	sqlQuery, buildErr := cs.buildListIssuedBooksQuery(page, pageSize)
	if buildErr != nil {
		cs.logError(logMsgBuildQueryFailed, buildErr)
		return nil, 0, buildErr
	}

	rows, _, queryErr := cs.executeQuery(ctx, cs.db, sqlQuery, logActionListIssued)
	if queryErr != nil {
		cs.recordOperationDuration(operationListIssued, statusError, time.Since(start))
		return nil, 0, queryErr
	}
	defer cs.closeRows(rows)

	books, rawRows, scanErr := scanBookRows(rows)
	if scanErr != nil {
		cs.recordOperationDuration(operationListIssued, statusError, time.Since(start))
		return nil, 0, scanErr
	}

	issuedBooks := make([]catalog.IssuedBook, 0, len(books))
	for i, book := range books {
		issuedBook := catalog.IssuedBook{Book: book, UserName: toString(rawRows[i][colUserName])}
		if issueDate, ok := rawRows[i][colIssueDate].(time.Time); ok {
			issuedBook.IssueDate = issueDate
		}

		issuedBooks = append(issuedBooks, issuedBook)
	}

	cs.recordOperationDuration(operationListIssued, statusSuccess, time.Since(start))
	cs.logOperation(
		logMsgIssuedBooksListed,
		logAttrPage, page,
		logAttrBookCount, len(issuedBooks),
		logAttrTotalCount, totalCount,
		logAttrDurationMS, cs.toMilliseconds(time.Since(start)))

	return issuedBooks, totalCount, nil
}

// IssueHistory returns all issue records, open and closed, matching the
// optional filters, newest first, joined with book title and author for
// display. The history is bounded by practical ledger size, so no pagination
// is applied.
func (cs CatalogStore) IssueHistory(ctx context.Context, filter catalog.HistoryFilter) ([]catalog.HistoryEntry, error) {
	start := time.Now()

	sqlQuery, buildErr := cs.buildIssueHistoryQuery(filter)
	if buildErr != nil {
		cs.logError(logMsgBuildQueryFailed, buildErr)
		return nil, buildErr
	}

	rows, _, queryErr := cs.executeQuery(ctx, cs.db, sqlQuery, logActionIssueHistory)
	if queryErr != nil {
		cs.recordOperationDuration(operationIssueHistory, statusError, time.Since(start))
		return nil, queryErr
	}
	defer cs.closeRows(rows)

	entries, scanErr := scanHistoryRows(rows)
	if scanErr != nil {
		cs.recordOperationDuration(operationIssueHistory, statusError, time.Since(start))
		return nil, scanErr
	}

	cs.recordOperationDuration(operationIssueHistory, statusSuccess, time.Since(start))
	cs.logOperation(
		logMsgHistoryQueried,
		logAttrEntryCount, len(entries),
		logAttrDurationMS, cs.toMilliseconds(time.Since(start)))

	return entries, nil
}

// withinTransaction runs operation inside a freshly begun transaction with a
// guaranteed rollback on every exit path; the rollback after a successful
// commit is a no-op per the adapter contract.
func (cs CatalogStore) withinTransaction(ctx context.Context, operation func(tx adapters.DBTx) error) error {
	tx, beginErr := cs.db.BeginTx(ctx)
	if beginErr != nil {
		return errors.Join(catalog.ErrBeginningTransactionFailed, beginErr)
	}

	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			cs.logWarn(logMsgRollbackFailed, rollbackErr)
		}
	}()

	if opErr := operation(tx); opErr != nil {
		return opErr
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		return errors.Join(catalog.ErrCommittingTransactionFailed, commitErr)
	}

	return nil
}

// lockBookRow reads the book row with a row lock, serializing concurrent
// transitions on the same book for the lifetime of the transaction.
func (cs CatalogStore) lockBookRow(
	ctx context.Context,
	tx adapters.DBTx,
	bookID catalog.BookIDInt64,
) (catalog.Book, bool, error) {

	sqlQuery, buildErr := cs.buildLockBookRowQuery(bookID)
	if buildErr != nil {
		cs.logError(logMsgBuildQueryFailed, buildErr)
		return catalog.Book{}, false, buildErr
	}

	rows, _, queryErr := cs.executeQuery(ctx, tx, sqlQuery, logActionLockBookRow)
	if queryErr != nil {
		return catalog.Book{}, false, queryErr
	}
	defer cs.closeRows(rows)

	books, _, scanErr := scanBookRows(rows)
	if scanErr != nil {
		return catalog.Book{}, false, scanErr
	}

	if len(books) == 0 {
		return catalog.Book{}, false, nil
	}

	return books[0], true, nil
}

func (cs CatalogStore) markBookIssued(
	ctx context.Context,
	tx adapters.DBTx,
	bookID catalog.BookIDInt64,
	userID string,
	issuedAt time.Time,
) (catalog.Book, error) {

	sqlQuery, buildErr := cs.buildMarkBookIssuedQuery(bookID, userID, issuedAt)
	if buildErr != nil {
		cs.logError(logMsgBuildQueryFailed, buildErr)
		return catalog.Book{}, buildErr
	}

	books, queryErr := cs.queryBookRows(ctx, tx, sqlQuery, logActionMarkBookIssued)
	if queryErr != nil {
		return catalog.Book{}, queryErr
	}

	// The row is locked and its status was just checked; an empty result here
	// means the conditional update raced anyway.
	if len(books) == 0 {
		cs.recordIssueConflict(operationIssueBook)
		return catalog.Book{}, catalog.ErrBookNotAvailable
	}

	return books[0], nil
}

func (cs CatalogStore) markBookReturned(
	ctx context.Context,
	tx adapters.DBTx,
	bookID catalog.BookIDInt64,
) (catalog.Book, error) {

	sqlQuery, buildErr := cs.buildMarkBookReturnedQuery(bookID)
	if buildErr != nil {
		cs.logError(logMsgBuildQueryFailed, buildErr)
		return catalog.Book{}, buildErr
	}

	books, queryErr := cs.queryBookRows(ctx, tx, sqlQuery, logActionMarkBookReturned)
	if queryErr != nil {
		return catalog.Book{}, queryErr
	}

	if len(books) == 0 {
		cs.recordIssueConflict(operationReturnBook)
		return catalog.Book{}, catalog.ErrBookNotIssued
	}

	return books[0], nil
}

func (cs CatalogStore) insertIssueRecord(
	ctx context.Context,
	tx adapters.DBTx,
	bookID catalog.BookIDInt64,
	userID string,
	userName string,
	issuedAt time.Time,
) (catalog.IssueRecord, error) {

	sqlQuery, buildErr := cs.buildInsertIssueRecordQuery(bookID, userID, userName, issuedAt)
	if buildErr != nil {
		cs.logError(logMsgBuildQueryFailed, buildErr)
		return catalog.IssueRecord{}, buildErr
	}

	records, queryErr := cs.queryIssueRecordRows(ctx, tx, sqlQuery, logActionInsertIssueRecord)
	if queryErr != nil {
		return catalog.IssueRecord{}, queryErr
	}

	if len(records) == 0 {
		return catalog.IssueRecord{}, errors.Join(catalog.ErrExecutingStatementFailed, errors.New("insert returned no row"))
	}

	return records[0], nil
}

func (cs CatalogStore) findOpenIssueRecord(
	ctx context.Context,
	tx adapters.DBTx,
	bookID catalog.BookIDInt64,
) (catalog.IssueRecord, bool, error) {

	sqlQuery, buildErr := cs.buildFindOpenIssueRecordQuery(bookID)
	if buildErr != nil {
		cs.logError(logMsgBuildQueryFailed, buildErr)
		return catalog.IssueRecord{}, false, buildErr
	}

	records, queryErr := cs.queryIssueRecordRows(ctx, tx, sqlQuery, logActionFindOpenIssue)
	if queryErr != nil {
		return catalog.IssueRecord{}, false, queryErr
	}

	if len(records) == 0 {
		return catalog.IssueRecord{}, false, nil
	}

	return records[0], true, nil
}

func (cs CatalogStore) closeIssueRecord(
	ctx context.Context,
	tx adapters.DBTx,
	issueID catalog.IssueIDInt64,
	returnedAt time.Time,
) (catalog.IssueRecord, error) {

	sqlQuery, buildErr := cs.buildCloseIssueRecordQuery(issueID, returnedAt)
	if buildErr != nil {
		cs.logError(logMsgBuildQueryFailed, buildErr)
		return catalog.IssueRecord{}, buildErr
	}

	records, queryErr := cs.queryIssueRecordRows(ctx, tx, sqlQuery, logActionCloseIssueRecord)
	if queryErr != nil {
		return catalog.IssueRecord{}, queryErr
	}

	if len(records) == 0 {
		return catalog.IssueRecord{}, errors.Join(catalog.ErrExecutingStatementFailed, errors.New("update returned no row"))
	}

	return records[0], nil
}

// queryBookRows executes a query returning book rows and scans them.
func (cs CatalogStore) queryBookRows(
	ctx context.Context,
	executor queryExecutor,
	sqlQuery string,
	action string,
) ([]catalog.Book, error) {

	rows, _, queryErr := cs.executeQuery(ctx, executor, sqlQuery, action)
	if queryErr != nil {
		return nil, queryErr
	}
	defer cs.closeRows(rows)

	books, _, scanErr := scanBookRows(rows)
	if scanErr != nil {
		return nil, scanErr
	}

	return books, nil
}

// queryIssueRecordRows executes a query returning issue record rows and scans them.
func (cs CatalogStore) queryIssueRecordRows(
	ctx context.Context,
	executor queryExecutor,
	sqlQuery string,
	action string,
) ([]catalog.IssueRecord, error) {

	rows, _, queryErr := cs.executeQuery(ctx, executor, sqlQuery, action)
	if queryErr != nil {
		return nil, queryErr
	}
	defer cs.closeRows(rows)

	records, scanErr := scanIssueRecordRows(rows)
	if scanErr != nil {
		return nil, scanErr
	}

	return records, nil
}

// countRows executes a COUNT(*) query built by the supplied builder.
func (cs CatalogStore) countRows(
	ctx context.Context,
	buildQuery func() (sqlQueryString, error),
	action string,
) (int64, error) {

	sqlQuery, buildErr := buildQuery()
	if buildErr != nil {
		cs.logError(logMsgBuildQueryFailed, buildErr)
		return 0, buildErr
	}

	rows, _, queryErr := cs.executeQuery(ctx, cs.db, sqlQuery, action)
	if queryErr != nil {
		return 0, queryErr
	}
	defer cs.closeRows(rows)

	return scanCount(rows)
}

// executeQuery executes the SQL query and returns rows with timing information.
func (cs CatalogStore) executeQuery(
	ctx context.Context,
	executor queryExecutor,
	sqlQuery string,
	action string,
) (adapters.DBRows, queryDuration, error) {

	start := time.Now()
	rows, queryErr := executor.Query(ctx, sqlQuery)
	duration := time.Since(start)
	cs.logQueryWithDuration(sqlQuery, action, duration)

	if queryErr != nil {
		cs.logError(logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		return nil, duration, errors.Join(catalog.ErrQueryingCatalogFailed, queryErr)
	}

	return rows, duration, nil
}

// closeRows safely closes database rows and logs any errors.
func (cs CatalogStore) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		cs.logWarn(logMsgCloseRowsFailed, closeErr)
	}
}

// normalizePagination clamps page and pageSize to sane values, mirroring the
// behavior of the browsing clients (page defaults to the first one).
func normalizePagination(page int, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}

	if pageSize < 1 {
		pageSize = 50
	}

	return page, pageSize
}
