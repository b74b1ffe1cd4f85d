package catalog

import (
	"encoding/json"
	"time"
)

// Status represents the lifecycle state of a book.
// An empty Status (NULL in storage) is treated as available.
type Status string

const (
	StatusAvailable Status = "available"
	StatusIssued    Status = "issued"
)

// IsAvailable reports whether a book with this status may be issued.
func (s Status) IsAvailable() bool {
	return s == "" || s == StatusAvailable
}

// Book is a catalog record.
//
// The descriptive attributes (title, author, isbn, ...) are dynamic: their set
// is derived from the storage schema at startup, not hard-coded. The three
// lifecycle fields are owned exclusively by the issue/return transitions and
// can never be written through AddBook.
type Book struct {
	ID         BookIDInt64
	Status     Status
	IssuedTo   *string
	IssuedDate *time.Time
	Attributes map[string]any
}

// MarshalJSON flattens the dynamic attributes and the lifecycle fields into a
// single object, mirroring the shape of the underlying row.
func (b Book) MarshalJSON() ([]byte, error) {
	row := make(map[string]any, len(b.Attributes)+4)

	for name, value := range b.Attributes {
		row[name] = value
	}

	row["id"] = b.ID
	row["issued_to"] = b.IssuedTo
	row["issued_date"] = b.IssuedDate

	if b.Status == "" {
		row["status"] = nil
	} else {
		row["status"] = b.Status
	}

	return json.Marshal(row)
}

// TotalPagesUint computes the number of pages needed to list totalCount items
// with the given page size.
func TotalPagesUint(totalCount int64, pageSize int) uint {
	if pageSize <= 0 || totalCount <= 0 {
		return 0
	}

	return uint((totalCount + int64(pageSize) - 1) / int64(pageSize))
}
