package schema

import (
	"fmt"

	"github.com/leengari/rtdb/internal/domain/data"
	"github.com/leengari/rtdb/internal/domain/errors"
)

type ColumnType int

const (
	ColumnTypeInteger ColumnType = iota + 1
	ColumnTypeText
	ColumnTypeBoolean
)

// String returns the on-disk spelling of the type.
func (c ColumnType) String() string {
	switch c {
	case ColumnTypeInteger:
		return "INTEGER"
	case ColumnTypeText:
		return "STRING"
	case ColumnTypeBoolean:
		return "BOOLEAN"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(c))
	}
}

// ParseColumnType maps the on-disk spelling back to a ColumnType.
func ParseColumnType(s string) (ColumnType, bool) {
	switch s {
	case "INTEGER":
		return ColumnTypeInteger, true
	case "STRING":
		return ColumnTypeText, true
	case "BOOLEAN":
		return ColumnTypeBoolean, true
	}
	return 0, false
}

// Accepts reports whether p is the variant this column type stores.
func (c ColumnType) Accepts(p data.Property) bool {
	switch p.(type) {
	case data.Int:
		return c == ColumnTypeInteger
	case data.Text:
		return c == ColumnTypeText
	case data.Bool:
		return c == ColumnTypeBoolean
	default:
		return false
	}
}

type Column struct {
	Name       Identifier
	Type       ColumnType
	PrimaryKey bool
}

// String renders the column the way the file header spells it: name:TYPE:P|N.
func (c Column) String() string {
	pk := "N"
	if c.PrimaryKey {
		pk = "P"
	}
	return fmt.Sprintf("%s:%s:%s", c.Name, c.Type, pk)
}

// Columns is the ordered column list of a table. Order defines the position of
// each property in every record.
type Columns []Column

// NewColumns checks that the list is non-empty, names are unique and exactly
// one column is the primary key.
func NewColumns(cols ...Column) (Columns, error) {
	if len(cols) == 0 {
		return nil, &errors.ConfigurationError{Reason: "columns should contain at least one column"}
	}

	seen := make(map[Identifier]bool, len(cols))
	primaryKeys := 0
	for _, col := range cols {
		if col.Name.IsZero() {
			return nil, &errors.ConfigurationError{Reason: "column name is empty"}
		}
		if _, ok := ParseColumnType(col.Type.String()); !ok {
			return nil, &errors.ConfigurationError{Reason: fmt.Sprintf("column %s has unknown type", col.Name)}
		}
		if seen[col.Name] {
			return nil, &errors.ConfigurationError{Reason: fmt.Sprintf("column %s declared twice", col.Name)}
		}
		seen[col.Name] = true
		if col.PrimaryKey {
			primaryKeys++
		}
	}

	if primaryKeys != 1 {
		return nil, &errors.ConfigurationError{
			Reason: fmt.Sprintf("table columns should contain exactly one primary key, got %d", primaryKeys),
		}
	}

	out := make(Columns, len(cols))
	copy(out, cols)
	return out, nil
}

// IndexOf returns the position of the named column, or -1.
func (c Columns) IndexOf(name Identifier) int {
	for i, col := range c {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// PrimaryKeyIndex returns the position of the primary key column, or -1.
func (c Columns) PrimaryKeyIndex() int {
	for i, col := range c {
		if col.PrimaryKey {
			return i
		}
	}
	return -1
}

// PrimaryKey returns the primary key column.
func (c Columns) PrimaryKey() (Column, bool) {
	i := c.PrimaryKeyIndex()
	if i < 0 {
		return Column{}, false
	}
	return c[i], true
}

// Equal compares count and every (name, type, primary key) triple in order.
func (c Columns) Equal(other Columns) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

// Check verifies that rec has one property per column and that each property
// has its column's type. table and rowIndex are only used for error reporting.
func (c Columns) Check(table string, rec data.Record, rowIndex int) error {
	if len(rec) != len(c) {
		return &errors.ConstraintError{
			Table:      table,
			Constraint: "arity",
			Reason:     fmt.Sprintf("record has %d properties, table has %d columns", len(rec), len(c)),
			RowIndex:   rowIndex,
		}
	}
	for i, prop := range rec {
		if prop == nil || !c[i].Type.Accepts(prop) {
			return errors.NewTypeMismatch(table, c[i].Name.String(), prop, c[i].Type.String(), rowIndex)
		}
	}
	return nil
}
