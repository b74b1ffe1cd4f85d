package postgresengine

import (
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/openshelf/library-catalog/catalog"
)

const (
	dialectPostgres          = "postgres"
	informationSchema        = "information_schema"
	informationSchemaColumns = "columns"
	colColumnName            = "column_name"
	colTableName             = "table_name"
	colOrdinalPosition       = "ordinal_position"
	colID                    = "id"
	colStatus                = "status"
	colIssuedTo              = "issued_to"
	colIssuedDate            = "issued_date"
	colBookID                = "book_id"
	colUserID                = "user_id"
	colUserName              = "user_name"
	colIssueDate             = "issue_date"
	colReturnDate            = "return_date"
	colTitle                 = "title"
	colAuthor                = "author"
	aliasBooks               = "b"
	aliasIssues              = "i"
)

// issueRecordColumns is the fixed column order used whenever issue records are
// selected, so that they can be scanned with typed destinations.
var issueRecordColumns = []any{colID, colBookID, colUserID, colUserName, colIssueDate, colReturnDate}

func (cs CatalogStore) buildSchemaQuery() (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(goqu.S(informationSchema).Table(informationSchemaColumns)).
		Select(colColumnName).
		Where(goqu.Ex{colTableName: cs.booksTableName}).
		Order(goqu.I(colOrdinalPosition).Asc())

	return toSQL(selectStmt)
}

func (cs CatalogStore) buildCountBooksQuery() (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(cs.booksTableName).
		Select(goqu.COUNT(goqu.Star()))

	return toSQL(selectStmt)
}

func (cs CatalogStore) buildListBooksQuery(page int, pageSize int) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(cs.booksTableName).
		Select(goqu.Star()).
		Order(goqu.I(colID).Asc()).
		Limit(uint(pageSize)).
		Offset(uint((page - 1) * pageSize))

	return toSQL(selectStmt)
}

func (cs CatalogStore) buildInsertBookQuery(fields map[string]any) (sqlQueryString, error) {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(cs.booksTableName).
		Rows(goqu.Record(fields)).
		Returning(goqu.Star())

	return toSQL(insertStmt)
}

func (cs CatalogStore) buildLockBookRowQuery(bookID catalog.BookIDInt64) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(cs.booksTableName).
		Select(goqu.Star()).
		Where(goqu.Ex{colID: bookID}).
		ForUpdate(exp.Wait)

	return toSQL(selectStmt)
}

func (cs CatalogStore) buildMarkBookIssuedQuery(
	bookID catalog.BookIDInt64,
	userID string,
	issuedAt time.Time,
) (sqlQueryString, error) {

	updateStmt := goqu.Dialect(dialectPostgres).
		Update(cs.booksTableName).
		Set(goqu.Record{
			colStatus:     string(catalog.StatusIssued),
			colIssuedTo:   userID,
			colIssuedDate: issuedAt,
		}).
		Where(
			goqu.Ex{colID: bookID},
			goqu.Or(
				goqu.C(colStatus).IsNull(),
				goqu.C(colStatus).Eq(string(catalog.StatusAvailable)),
			),
		).
		Returning(goqu.Star())

	return toSQL(updateStmt)
}

func (cs CatalogStore) buildMarkBookReturnedQuery(bookID catalog.BookIDInt64) (sqlQueryString, error) {
	updateStmt := goqu.Dialect(dialectPostgres).
		Update(cs.booksTableName).
		Set(goqu.Record{
			colStatus:     string(catalog.StatusAvailable),
			colIssuedTo:   nil,
			colIssuedDate: nil,
		}).
		Where(
			goqu.Ex{colID: bookID},
			goqu.C(colStatus).Eq(string(catalog.StatusIssued)),
		).
		Returning(goqu.Star())

	return toSQL(updateStmt)
}

func (cs CatalogStore) buildInsertIssueRecordQuery(
	bookID catalog.BookIDInt64,
	userID string,
	userName string,
	issuedAt time.Time,
) (sqlQueryString, error) {

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(cs.issuesTableName).
		Rows(goqu.Record{
			colBookID:    bookID,
			colUserID:    userID,
			colUserName:  userName,
			colIssueDate: issuedAt,
		}).
		Returning(issueRecordColumns...)

	return toSQL(insertStmt)
}

func (cs CatalogStore) buildFindOpenIssueRecordQuery(bookID catalog.BookIDInt64) (sqlQueryString, error) {
	// Most recent issue_date wins as a defensive tie-break; more than one open
	// record per book is structurally impossible under the ledger invariant.
	selectStmt := goqu.Dialect(dialectPostgres).
		From(cs.issuesTableName).
		Select(issueRecordColumns...).
		Where(
			goqu.Ex{colBookID: bookID},
			goqu.C(colReturnDate).IsNull(),
		).
		Order(goqu.I(colIssueDate).Desc()).
		Limit(1).
		ForUpdate(exp.Wait)

	return toSQL(selectStmt)
}

func (cs CatalogStore) buildCloseIssueRecordQuery(
	issueID catalog.IssueIDInt64,
	returnedAt time.Time,
) (sqlQueryString, error) {

	updateStmt := goqu.Dialect(dialectPostgres).
		Update(cs.issuesTableName).
		Set(goqu.Record{colReturnDate: returnedAt}).
		Where(goqu.Ex{colID: issueID}).
		Returning(issueRecordColumns...)

	return toSQL(updateStmt)
}

func (cs CatalogStore) buildCountIssuedBooksQuery() (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(cs.booksTableName).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.C(colStatus).Eq(string(catalog.StatusIssued)))

	return toSQL(selectStmt)
}

func (cs CatalogStore) buildListIssuedBooksQuery(page int, pageSize int) (sqlQueryString, error) {
	books := goqu.T(cs.booksTableName).As(aliasBooks)
	issues := goqu.T(cs.issuesTableName).As(aliasIssues)

	selectStmt := goqu.Dialect(dialectPostgres).
		From(books).
		Join(issues, goqu.On(goqu.I(aliasBooks+"."+colID).Eq(goqu.I(aliasIssues+"."+colBookID)))).
		Select(
			goqu.I(aliasBooks+".*"),
			goqu.I(aliasIssues+"."+colUserName),
			goqu.I(aliasIssues+"."+colIssueDate),
		).
		Where(
			goqu.I(aliasBooks+"."+colStatus).Eq(string(catalog.StatusIssued)),
			goqu.I(aliasIssues+"."+colReturnDate).IsNull(),
		).
		Order(goqu.I(aliasIssues + "." + colIssueDate).Desc()).
		Limit(uint(pageSize)).
		Offset(uint((page - 1) * pageSize))

	return toSQL(selectStmt)
}

func (cs CatalogStore) buildIssueHistoryQuery(filter catalog.HistoryFilter) (sqlQueryString, error) {
	books := goqu.T(cs.booksTableName).As(aliasBooks)
	issues := goqu.T(cs.issuesTableName).As(aliasIssues)

	selectColumns := make([]any, 0, len(issueRecordColumns)+2)
	for _, column := range issueRecordColumns {
		selectColumns = append(selectColumns, goqu.I(aliasIssues+"."+column.(string)))
	}
	selectColumns = append(
		selectColumns,
		goqu.I(aliasBooks+"."+colTitle),
		goqu.I(aliasBooks+"."+colAuthor),
	)

	selectStmt := goqu.Dialect(dialectPostgres).
		From(issues).
		Join(books, goqu.On(goqu.I(aliasIssues+"."+colBookID).Eq(goqu.I(aliasBooks+"."+colID)))).
		Select(selectColumns...)

	if filter.HasBookID() {
		selectStmt = selectStmt.Where(goqu.I(aliasIssues + "." + colBookID).Eq(filter.BookID))
	}

	if filter.HasUserID() {
		selectStmt = selectStmt.Where(goqu.I(aliasIssues + "." + colUserID).Eq(filter.UserID))
	}

	selectStmt = selectStmt.Order(goqu.I(aliasIssues + "." + colIssueDate).Desc())

	return toSQL(selectStmt)
}

type sqlStatement interface {
	ToSQL() (string, []any, error)
}

func toSQL(statement sqlStatement) (sqlQueryString, error) {
	sqlQuery, _, toSQLErr := statement.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}
