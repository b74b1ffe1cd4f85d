package postgresengine

import (
	"errors"
	"time"

	"github.com/openshelf/library-catalog/catalog"

	"github.com/openshelf/library-catalog/catalog/postgresengine/internal/adapters"
)

// scanBookRows scans rows with a dynamic column set into Book records.
// The column set is taken from the result metadata, so this works for any
// introspected books schema as well as for the joined issued-books
// projection; the raw row maps are returned alongside for join columns.
func scanBookRows(rows adapters.DBRows) ([]catalog.Book, []map[string]any, error) {
	columns, columnsErr := rows.Columns()
	if columnsErr != nil {
		return nil, nil, errors.Join(catalog.ErrScanningDBRowFailed, columnsErr)
	}

	books := make([]catalog.Book, 0)
	rawRows := make([]map[string]any, 0)

	for rows.Next() {
		values := make([]any, len(columns))
		for i := range values {
			values[i] = new(any)
		}

		if scanErr := rows.Scan(values...); scanErr != nil {
			return nil, nil, errors.Join(catalog.ErrScanningDBRowFailed, scanErr)
		}

		raw := make(map[string]any, len(columns))
		for i, column := range columns {
			raw[column] = normalizeValue(*(values[i].(*any)))
		}

		books = append(books, bookFromRow(columns, raw))
		rawRows = append(rawRows, raw)
	}

	return books, rawRows, nil
}

// bookFromRow converts a raw row map into a Book, splitting lifecycle fields
// from the dynamic attributes. Columns not belonging to the books table
// (join projections) are left out of the attributes.
func bookFromRow(columns []string, raw map[string]any) catalog.Book {
	book := catalog.Book{Attributes: make(map[string]any)}

	for _, column := range columns {
		value := raw[column]

		switch column {
		case colID:
			book.ID = toInt64(value)

		case colStatus:
			if value != nil {
				book.Status = catalog.Status(toString(value))
			}

		case colIssuedTo:
			if value != nil {
				issuedTo := toString(value)
				book.IssuedTo = &issuedTo
			}

		case colIssuedDate:
			if issuedDate, ok := value.(time.Time); ok {
				book.IssuedDate = &issuedDate
			}

		case colUserName, colIssueDate:
			// joined issue columns, handled by the caller

		default:
			book.Attributes[column] = value
		}
	}

	return book
}

// scanIssueRecordRows scans rows selected with issueRecordColumns into IssueRecords.
func scanIssueRecordRows(rows adapters.DBRows) ([]catalog.IssueRecord, error) {
	records := make([]catalog.IssueRecord, 0)

	for rows.Next() {
		var record catalog.IssueRecord

		scanErr := rows.Scan(
			&record.ID,
			&record.BookID,
			&record.UserID,
			&record.UserName,
			&record.IssueDate,
			&record.ReturnDate,
		)
		if scanErr != nil {
			return nil, errors.Join(catalog.ErrScanningDBRowFailed, scanErr)
		}

		records = append(records, record)
	}

	return records, nil
}

// scanHistoryRows scans rows selected with issueRecordColumns plus book title
// and author into HistoryEntries.
func scanHistoryRows(rows adapters.DBRows) ([]catalog.HistoryEntry, error) {
	entries := make([]catalog.HistoryEntry, 0)

	for rows.Next() {
		var entry catalog.HistoryEntry

		scanErr := rows.Scan(
			&entry.ID,
			&entry.BookID,
			&entry.UserID,
			&entry.UserName,
			&entry.IssueDate,
			&entry.ReturnDate,
			&entry.Title,
			&entry.Author,
		)
		if scanErr != nil {
			return nil, errors.Join(catalog.ErrScanningDBRowFailed, scanErr)
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// scanColumnNames scans a single-column result of column names.
func scanColumnNames(rows adapters.DBRows) ([]string, error) {
	names := make([]string, 0)

	for rows.Next() {
		var name string

		if scanErr := rows.Scan(&name); scanErr != nil {
			return nil, errors.Join(catalog.ErrScanningDBRowFailed, scanErr)
		}

		names = append(names, name)
	}

	return names, nil
}

// scanCount scans a single COUNT(*) result.
func scanCount(rows adapters.DBRows) (int64, error) {
	var count int64

	if rows.Next() {
		if scanErr := rows.Scan(&count); scanErr != nil {
			return 0, errors.Join(catalog.ErrScanningDBRowFailed, scanErr)
		}
	}

	return count, nil
}

// normalizeValue maps driver-specific representations to plain Go values.
// database/sql drivers hand text columns back as []byte; pgx does not.
func normalizeValue(value any) any {
	if raw, ok := value.([]byte); ok {
		return string(raw)
	}

	return value
}

func toInt64(value any) int64 {
	switch v := value.(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	default:
		return 0
	}
}

func toString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}

	return ""
}
