package postgresengine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/library-catalog/catalog"
)

var bookTestColumns = []string{"id", "title", "author", "status", "issued_to", "issued_date"}

func availableBookRow(id int64, title string) []any {
	return []any{id, title, "Test Author", nil, nil, nil}
}

func issuedBookRow(id int64, title string, userID string, issuedAt time.Time) []any {
	return []any{id, title, "Test Author", "issued", userID, issuedAt}
}

func newTestStore(t *testing.T, db *fakeDB, options ...Option) CatalogStore {
	t.Helper()

	store, err := newCatalogStore(db, options...)
	require.NoError(t, err)

	return store
}

func Test_IntrospectBookSchema_When_ColumnsExist_BuildsSchema(t *testing.T) {
	// setup
	db := &fakeDB{}
	db.queueRows(
		[]string{"column_name"},
		[]any{"id"}, []any{"title"}, []any{"author"}, []any{"status"}, []any{"issued_to"}, []any{"issued_date"},
	)
	store := newTestStore(t, db)

	// act
	schema, err := store.IntrospectBookSchema(context.Background())

	// assert
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "title", "author", "status", "issued_to", "issued_date"}, schema.Columns())
	assert.True(t, schema.IsWritable("title"))
	assert.False(t, schema.IsWritable("status"))

	require.Len(t, db.queries, 1)
	assert.Contains(t, db.queries[0], `"information_schema"."columns"`)
	assert.Contains(t, db.queries[0], `'books'`)
	assert.Contains(t, db.queries[0], `"ordinal_position"`)
}

func Test_IntrospectBookSchema_When_QueryFails_WrapsError(t *testing.T) {
	// setup
	db := &fakeDB{}
	db.queueError(assert.AnError)
	store := newTestStore(t, db)

	// act
	_, err := store.IntrospectBookSchema(context.Background())

	// assert
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrIntrospectingSchemaFailed)
	assert.ErrorIs(t, err, catalog.ErrQueryingCatalogFailed)
}

func Test_IntrospectBookSchema_When_CustomTableName_QueriesThatTable(t *testing.T) {
	// setup
	db := &fakeDB{}
	db.queueRows([]string{"column_name"}, []any{"id"}, []any{"title"})
	store := newTestStore(t, db, WithBooksTableName("library_books"))

	// act
	_, err := store.IntrospectBookSchema(context.Background())

	// assert
	require.NoError(t, err)
	require.Len(t, db.queries, 1)
	assert.Contains(t, db.queries[0], `'library_books'`)
}

func Test_ListBooks_ReturnsPageWithTotalCount(t *testing.T) {
	// setup
	db := &fakeDB{}
	db.queueRows([]string{"count"}, []any{int64(120)})
	db.queueRows(
		bookTestColumns,
		availableBookRow(51, "Book Fifty-One"),
		issuedBookRow(52, "Book Fifty-Two", "user-1", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)),
	)
	store := newTestStore(t, db)

	// act
	books, totalCount, err := store.ListBooks(context.Background(), 2, 50)

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(120), totalCount)
	require.Len(t, books, 2)

	assert.Equal(t, int64(51), books[0].ID)
	assert.True(t, books[0].Status.IsAvailable())
	assert.Equal(t, "Book Fifty-One", books[0].Attributes["title"])

	assert.Equal(t, int64(52), books[1].ID)
	assert.Equal(t, catalog.StatusIssued, books[1].Status)
	require.NotNil(t, books[1].IssuedTo)
	assert.Equal(t, "user-1", *books[1].IssuedTo)

	require.Len(t, db.queries, 2)
	assert.Contains(t, db.queries[0], "COUNT(*)")
	assert.Contains(t, db.queries[1], `ORDER BY "id" ASC`)
	assert.Contains(t, db.queries[1], "LIMIT 50")
	assert.Contains(t, db.queries[1], "OFFSET 50")
}

func Test_ListBooks_When_PageIsZero_DefaultsToFirstPage(t *testing.T) {
	// setup
	db := &fakeDB{}
	db.queueRows([]string{"count"}, []any{int64(0)})
	db.queueRows(bookTestColumns)
	store := newTestStore(t, db)

	// act
	books, totalCount, err := store.ListBooks(context.Background(), 0, 0)

	// assert
	require.NoError(t, err)
	assert.Empty(t, books)
	assert.Zero(t, totalCount)

	require.Len(t, db.queries, 2)
	assert.Contains(t, db.queries[1], "LIMIT 50")
	assert.NotContains(t, db.queries[1], "OFFSET 50")
}

func Test_AddBook_InsertsOnlyWritableFields(t *testing.T) {
	// setup
	db := &fakeDB{}
	db.queueRows(bookTestColumns, availableBookRow(9, "Refactoring"))
	store := newTestStore(t, db)
	schema := catalog.BuildSchema(bookTestColumns)

	fields := map[string]any{
		"title":     "Refactoring",
		"author":    "Martin Fowler",
		"status":    "issued",
		"issued_to": "nobody",
		"publisher": "unknown column",
	}

	// act
	book, err := store.AddBook(context.Background(), schema, fields)

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(9), book.ID)
	assert.True(t, book.Status.IsAvailable())

	require.Len(t, db.queries, 1)
	assert.Contains(t, db.queries[0], `INSERT INTO "books"`)
	assert.Contains(t, db.queries[0], "'Refactoring'")
	assert.Contains(t, db.queries[0], "'Martin Fowler'")
	assert.Contains(t, db.queries[0], "RETURNING *")
	assert.NotContains(t, db.queries[0], "publisher")
	assert.NotContains(t, db.queries[0], "issued_to")
	assert.NotContains(t, db.queries[0], "'issued'")
}

func Test_AddBook_When_NoRecognizedFields_Fails(t *testing.T) {
	// setup
	db := &fakeDB{}
	store := newTestStore(t, db)
	schema := catalog.BuildSchema(bookTestColumns)

	// act
	_, err := store.AddBook(context.Background(), schema, map[string]any{
		"publisher": "unknown column",
		"status":    "issued",
	})

	// assert
	assert.ErrorIs(t, err, catalog.ErrNoRecognizedBookFields)
	assert.Empty(t, db.queries)
}

func Test_IssueBook_When_BookAvailable_IssuesAndCommits(t *testing.T) {
	// setup
	issuedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	db := &fakeDB{}
	db.queueRows(bookTestColumns, availableBookRow(7, "Domain-Driven Design"))
	db.queueRows(bookTestColumns, issuedBookRow(7, "Domain-Driven Design", "user-1", issuedAt))
	db.queueRows(nil, []any{int64(1), int64(7), "user-1", "Jamie Reader", issuedAt, nil})
	store := newTestStore(t, db)

	// act
	book, issue, err := store.IssueBook(context.Background(), 7, "user-1", "Jamie Reader")

	// assert
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusIssued, book.Status)
	require.NotNil(t, book.IssuedTo)
	assert.Equal(t, "user-1", *book.IssuedTo)

	assert.Equal(t, int64(1), issue.ID)
	assert.Equal(t, int64(7), issue.BookID)
	assert.Equal(t, "Jamie Reader", issue.UserName)
	assert.True(t, issue.IsOpen())

	require.NotNil(t, db.tx)
	assert.Equal(t, 1, db.tx.commits)
	assert.Equal(t, 1, db.tx.rollbacks)

	require.Len(t, db.queries, 3)
	assert.Contains(t, db.queries[0], "FOR UPDATE")
	assert.Contains(t, db.queries[1], `UPDATE "books"`)
	assert.Contains(t, db.queries[1], "'issued'")
	assert.Contains(t, db.queries[2], `INSERT INTO "book_issues"`)
}

func Test_IssueBook_When_BookNotFound_RollsBackWithoutCommit(t *testing.T) {
	// setup
	db := &fakeDB{}
	db.queueRows(bookTestColumns)
	store := newTestStore(t, db)

	// act
	_, _, err := store.IssueBook(context.Background(), 999, "user-1", "Jamie Reader")

	// assert
	assert.ErrorIs(t, err, catalog.ErrBookNotFound)

	require.NotNil(t, db.tx)
	assert.Zero(t, db.tx.commits)
	assert.Equal(t, 1, db.tx.rollbacks)
	assert.Len(t, db.queries, 1)
}

func Test_IssueBook_When_BookAlreadyIssued_ReportsConflict(t *testing.T) {
	// setup
	metrics := newFakeMetrics()
	db := &fakeDB{}
	db.queueRows(bookTestColumns, issuedBookRow(7, "Domain-Driven Design", "other-user", time.Now().UTC()))
	store := newTestStore(t, db, WithMetrics(metrics))

	// act
	_, _, err := store.IssueBook(context.Background(), 7, "user-1", "Jamie Reader")

	// assert
	assert.ErrorIs(t, err, catalog.ErrBookNotAvailable)

	require.NotNil(t, db.tx)
	assert.Zero(t, db.tx.commits)
	assert.Equal(t, 1, db.tx.rollbacks)

	assert.Equal(t, 1, metrics.counters[metricIssueConflicts])
	assert.Equal(t, operationIssueBook, metrics.counterLabels[metricIssueConflicts][labelOperation])
}

func Test_IssueBook_When_BeginTxFails_WrapsError(t *testing.T) {
	// setup
	db := &fakeDB{beginErr: assert.AnError}
	store := newTestStore(t, db)

	// act
	_, _, err := store.IssueBook(context.Background(), 7, "user-1", "Jamie Reader")

	// assert
	assert.ErrorIs(t, err, catalog.ErrBeginningTransactionFailed)
	assert.Empty(t, db.queries)
}

func Test_ReturnBook_When_BookIssued_ClosesOpenRecordAndCommits(t *testing.T) {
	// setup
	issuedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	returnedAt := time.Date(2024, 3, 8, 15, 30, 0, 0, time.UTC)
	db := &fakeDB{}
	db.queueRows(bookTestColumns, issuedBookRow(7, "Domain-Driven Design", "user-1", issuedAt))
	db.queueRows(nil, []any{int64(3), int64(7), "user-1", "Jamie Reader", issuedAt, nil})
	db.queueRows(bookTestColumns, availableBookRow(7, "Domain-Driven Design"))
	db.queueRows(nil, []any{int64(3), int64(7), "user-1", "Jamie Reader", issuedAt, returnedAt})
	store := newTestStore(t, db)

	// act
	book, issue, err := store.ReturnBook(context.Background(), 7)

	// assert
	require.NoError(t, err)
	assert.True(t, book.Status.IsAvailable())
	assert.Nil(t, book.IssuedTo)

	assert.Equal(t, int64(3), issue.ID)
	assert.False(t, issue.IsOpen())
	require.NotNil(t, issue.ReturnDate)
	assert.Equal(t, returnedAt, *issue.ReturnDate)

	require.NotNil(t, db.tx)
	assert.Equal(t, 1, db.tx.commits)

	require.Len(t, db.queries, 4)
	assert.Contains(t, db.queries[0], "FOR UPDATE")
	assert.Contains(t, db.queries[1], `"return_date" IS NULL`)
	assert.Contains(t, db.queries[1], "LIMIT 1")
	assert.Contains(t, db.queries[2], "'available'")
	assert.Contains(t, db.queries[3], `UPDATE "book_issues"`)
}

func Test_ReturnBook_When_BookNotIssued_Fails(t *testing.T) {
	// setup
	db := &fakeDB{}
	db.queueRows(bookTestColumns, availableBookRow(7, "Domain-Driven Design"))
	store := newTestStore(t, db)

	// act
	_, _, err := store.ReturnBook(context.Background(), 7)

	// assert
	assert.ErrorIs(t, err, catalog.ErrBookNotIssued)

	require.NotNil(t, db.tx)
	assert.Zero(t, db.tx.commits)
	assert.Equal(t, 1, db.tx.rollbacks)
}

func Test_ReturnBook_When_NoOpenIssueRecord_ReportsLedgerInconsistency(t *testing.T) {
	// setup
	metrics := newFakeMetrics()
	logger := &fakeTestLogger{}
	db := &fakeDB{}
	db.queueRows(bookTestColumns, issuedBookRow(7, "Domain-Driven Design", "user-1", time.Now().UTC()))
	db.queueRows(nil)
	store := newTestStore(t, db, WithMetrics(metrics), WithLogger(logger))

	// act
	_, _, err := store.ReturnBook(context.Background(), 7)

	// assert
	assert.ErrorIs(t, err, catalog.ErrNoOpenIssueRecord)

	require.NotNil(t, db.tx)
	assert.Zero(t, db.tx.commits)

	assert.Equal(t, 1, metrics.counters[metricLedgerInconsistency])
	assert.Contains(t, logger.errorMsgs, logMsgLedgerInconsistent)
}

func Test_ReturnBook_When_CommitFails_WrapsError(t *testing.T) {
	// setup
	issuedAt := time.Now().UTC()
	db := &fakeDB{commitErr: assert.AnError}
	db.queueRows(bookTestColumns, issuedBookRow(7, "Domain-Driven Design", "user-1", issuedAt))
	db.queueRows(nil, []any{int64(3), int64(7), "user-1", "Jamie Reader", issuedAt, nil})
	db.queueRows(bookTestColumns, availableBookRow(7, "Domain-Driven Design"))
	db.queueRows(nil, []any{int64(3), int64(7), "user-1", "Jamie Reader", issuedAt, time.Now().UTC()})
	store := newTestStore(t, db)

	// act
	_, _, err := store.ReturnBook(context.Background(), 7)

	// assert
	assert.ErrorIs(t, err, catalog.ErrCommittingTransactionFailed)
}

func Test_ListIssued_JoinsBorrowerDetails(t *testing.T) {
	// setup
	issueDate := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	joinedColumns := append(append([]string{}, bookTestColumns...), "user_name", "issue_date")

	db := &fakeDB{}
	db.queueRows([]string{"count"}, []any{int64(1)})
	db.queueRows(
		joinedColumns,
		[]any{int64(7), "Domain-Driven Design", "Test Author", "issued", "user-1", issueDate, "Jamie Reader", issueDate},
	)
	store := newTestStore(t, db)

	// act
	issuedBooks, totalCount, err := store.ListIssued(context.Background(), 1, 50)

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(1), totalCount)
	require.Len(t, issuedBooks, 1)

	issuedBook := issuedBooks[0]
	assert.Equal(t, int64(7), issuedBook.Book.ID)
	assert.Equal(t, "Jamie Reader", issuedBook.UserName)
	assert.Equal(t, issueDate, issuedBook.IssueDate)
	assert.Equal(t, issueDate.Add(catalog.LoanPeriod), issuedBook.DueDate())
	assert.NotContains(t, issuedBook.Book.Attributes, "user_name")
	assert.NotContains(t, issuedBook.Book.Attributes, "issue_date")

	require.Len(t, db.queries, 2)
	assert.Contains(t, db.queries[0], "COUNT(*)")
	assert.Contains(t, db.queries[0], "'issued'")
	assert.Contains(t, db.queries[1], `ORDER BY "i"."issue_date" DESC`)
}

func Test_IssueHistory_AppliesFilters(t *testing.T) {
	// setup
	issuedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	db := &fakeDB{}
	db.queueRows(
		nil,
		[]any{int64(3), int64(7), "user-1", "Jamie Reader", issuedAt, nil, "Domain-Driven Design", nil},
	)
	store := newTestStore(t, db)

	// act
	entries, err := store.IssueHistory(context.Background(), catalog.HistoryFilter{BookID: 7, UserID: "user-1"})

	// assert
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(3), entries[0].ID)
	assert.True(t, entries[0].IsOpen())
	require.NotNil(t, entries[0].Title)
	assert.Equal(t, "Domain-Driven Design", *entries[0].Title)
	assert.Nil(t, entries[0].Author)

	require.Len(t, db.queries, 1)
	assert.Contains(t, db.queries[0], `"i"."book_id" = 7`)
	assert.Contains(t, db.queries[0], `"i"."user_id" = 'user-1'`)
	assert.Contains(t, db.queries[0], `ORDER BY "i"."issue_date" DESC`)
}

func Test_IssueHistory_WithoutFilters_OmitsWhereClause(t *testing.T) {
	// setup
	db := &fakeDB{}
	db.queueRows(nil)
	store := newTestStore(t, db)

	// act
	entries, err := store.IssueHistory(context.Background(), catalog.HistoryFilter{})

	// assert
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.Len(t, db.queries, 1)
	assert.NotContains(t, db.queries[0], "WHERE")
}
