package schema

import (
	"github.com/leengari/rtdb/internal/domain/data"
)

// Table is one immutable version of a table: its name, columns and records.
// Mutations never modify a Table in place; they build a new one with WithRecords.
type Table struct {
	Name    Identifier
	Columns Columns
	Records data.Records
}

// NewTable returns a snapshot holding a copy of records.
func NewTable(name Identifier, columns Columns, records data.Records) *Table {
	if records == nil {
		records = data.Records{}
	}
	return &Table{
		Name:    name,
		Columns: columns,
		Records: records.Copy(),
	}
}

// WithRecords returns a new snapshot sharing name and columns with t.
// The caller hands over ownership of records.
func (t *Table) WithRecords(records data.Records) *Table {
	if records == nil {
		records = data.Records{}
	}
	return &Table{
		Name:    t.Name,
		Columns: t.Columns,
		Records: records,
	}
}

// Equal compares name, columns and records.
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.Name == other.Name && t.Columns.Equal(other.Columns) && t.Records.Equal(other.Records)
}
