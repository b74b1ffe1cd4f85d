package catalog

import (
	"encoding/json"
	"time"
)

// LoanPeriod is the fixed loan window used to compute a display-time due date.
// Due dates are a read-time projection of issue_date, never persisted state.
const LoanPeriod = 14 * 24 * time.Hour

// IssueRecord is one issue/return event in the permanent ledger.
//
// A record with a nil ReturnDate is "open": the book is currently out.
// At most one open record may exist per book at any time. Records are created
// on issue, mutated exactly once on return, and never deleted.
type IssueRecord struct {
	ID         IssueIDInt64 `json:"id"`
	BookID     BookIDInt64  `json:"book_id"`
	UserID     string       `json:"user_id"`
	UserName   string       `json:"user_name"`
	IssueDate  time.Time    `json:"issue_date"`
	ReturnDate *time.Time   `json:"return_date"`
}

// IsOpen reports whether the book of this record is still out.
func (r IssueRecord) IsOpen() bool {
	return r.ReturnDate == nil
}

// DueDate computes when the book of this record is due back.
func (r IssueRecord) DueDate() time.Time {
	return r.IssueDate.Add(LoanPeriod)
}

// IssuedBook is a Book joined with its single open IssueRecord,
// as produced by the currently-issued listing.
type IssuedBook struct {
	Book      Book
	UserName  string
	IssueDate time.Time
}

// DueDate computes when the book is due back.
func (ib IssuedBook) DueDate() time.Time {
	return ib.IssueDate.Add(LoanPeriod)
}

// MarshalJSON flattens the book row with the borrower name, issue date and the
// computed due date, mirroring the join produced by the issued-books listing.
func (ib IssuedBook) MarshalJSON() ([]byte, error) {
	bookJSON, err := ib.Book.MarshalJSON()
	if err != nil {
		return nil, err
	}

	row := make(map[string]any)
	if err = json.Unmarshal(bookJSON, &row); err != nil {
		return nil, err
	}

	row["user_name"] = ib.UserName
	row["issue_date"] = ib.IssueDate
	row["due_date"] = ib.DueDate()

	return json.Marshal(row)
}

// HistoryEntry is an IssueRecord joined with the book's title and author for display.
// Title and Author are pointers because the dynamic book schema does not guarantee
// either column to be non-null.
type HistoryEntry struct {
	IssueRecord
	Title  *string `json:"title"`
	Author *string `json:"author"`
}

// HistoryFilter narrows an issue-history query. Zero values mean "no filter".
type HistoryFilter struct {
	BookID BookIDInt64
	UserID string
}

// HasBookID reports whether the filter narrows by book.
func (f HistoryFilter) HasBookID() bool {
	return f.BookID != 0
}

// HasUserID reports whether the filter narrows by borrower.
func (f HistoryFilter) HasUserID() bool {
	return f.UserID != ""
}
