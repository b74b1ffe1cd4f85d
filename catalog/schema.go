package catalog

const (
	idColumnName         = "id"
	statusColumnName     = "status"
	issuedToColumnName   = "issued_to"
	issuedDateColumnName = "issued_date"
)

// lifecycleColumnNames are the columns owned exclusively by the issue/return
// transitions, never writable through AddBook.
var lifecycleColumnNames = []string{statusColumnName, issuedToColumnName, issuedDateColumnName}

// Schema is an explicit typed description of the books table.
//
// It is introspected from storage once at initialization and passed by
// reference to the Catalog Store and its clients, so that the set of book
// attributes is treated as data rather than a fixed type.
type Schema struct {
	columns  []string
	writable map[string]struct{}
}

// BuildSchema creates a Schema from the ordered column names of the books table.
// The writable set is derived by removing the id column and the lifecycle columns.
func BuildSchema(columnNames []string) Schema {
	columns := make([]string, len(columnNames))
	copy(columns, columnNames)

	writable := make(map[string]struct{}, len(columnNames))
	for _, name := range columnNames {
		writable[name] = struct{}{}
	}

	delete(writable, idColumnName)
	for _, name := range lifecycleColumnNames {
		delete(writable, name)
	}

	return Schema{columns: columns, writable: writable}
}

// Columns returns the ordered column names of the books table.
func (s Schema) Columns() []string {
	columns := make([]string, len(s.columns))
	copy(columns, s.columns)

	return columns
}

// IsWritable reports whether the named column may be set through AddBook.
func (s Schema) IsWritable(columnName string) bool {
	_, ok := s.writable[columnName]
	return ok
}

// FilterWritable returns the subset of fields whose keys are writable columns.
// Unrecognized keys and lifecycle columns are silently dropped.
func (s Schema) FilterWritable(fields map[string]any) map[string]any {
	filtered := make(map[string]any, len(fields))

	for name, value := range fields {
		if s.IsWritable(name) {
			filtered[name] = value
		}
	}

	return filtered
}

// IsEmpty reports whether no columns were introspected.
func (s Schema) IsEmpty() bool {
	return len(s.columns) == 0
}
