package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure by where it can happen and who has to act on it.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindSchemaDrift
	KindFormat
	KindValidation
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindSchemaDrift:
		return "schema_drift"
	case KindFormat:
		return "format"
	case KindValidation:
		return "validation"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

var (
	// ErrNotFound is returned by first/delete/update-where operations when nothing matches.
	ErrNotFound = errors.New("no such value in table")

	// ErrNoSuchColumn is returned when a matcher names a column the table does not have.
	ErrNoSuchColumn = errors.New("no such column")

	// ErrTypeMismatch is returned when a comparison is applied to a column of the wrong type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrClosed is returned for transactions submitted after the table was closed.
	ErrClosed = errors.New("table is closed")
)

// ConfigurationError reports a table declared or wired incorrectly:
// wrong storage extension, empty column list, not exactly one primary key.
type ConfigurationError struct {
	Table  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error in table %s: %s", e.Table, e.Reason)
}

func (e *ConfigurationError) Kind() Kind { return KindConfiguration }

// SchemaDriftError reports a stored header that disagrees with the declared columns.
type SchemaDriftError struct {
	Table    string
	Index    int    // column position, -1 for count mismatches
	Expected string // declared column spec
	Found    string // stored column spec
	Reason   string
}

func (e *SchemaDriftError) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("schema drift in table %s", e.Table))
	if e.Index >= 0 {
		parts = append(parts, fmt.Sprintf("column %d", e.Index))
	}
	if e.Expected != "" || e.Found != "" {
		parts = append(parts, fmt.Sprintf("expected %s, found %s", e.Expected, e.Found))
	}
	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}
	return strings.Join(parts, " - ")
}

func (e *SchemaDriftError) Kind() Kind { return KindSchemaDrift }

// FormatError reports content that does not follow the on-disk grammar.
type FormatError struct {
	Line    int // 1-based line number among non-blank lines, 0 if unknown
	Content string
	Reason  string
	Err     error
}

func (e *FormatError) Error() string {
	var b strings.Builder
	b.WriteString("format error")
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Content != "" {
		fmt.Fprintf(&b, " (%q)", e.Content)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) Kind() Kind { return KindFormat }

// ConstraintError represents a violation of a table constraint
// (arity, type, primary key, input text rules).
type ConstraintError struct {
	Table      string // table name
	Column     string // column name (empty if record-level constraint)
	Value      any    // offending value (may be nil)
	Constraint string // "arity", "type_mismatch", "primary_key", "input_text", ...
	Reason     string // human-readable explanation (optional)
	RowIndex   int    // record position (0-based) where violation occurred (-1 if unknown)
	Err        error
}

func (e *ConstraintError) Error() string {
	var parts []string

	switch {
	case e.Column != "":
		parts = append(parts, fmt.Sprintf("constraint violation in %s.%s", e.Table, e.Column))
	case e.Table != "":
		parts = append(parts, fmt.Sprintf("constraint violation in %s", e.Table))
	default:
		parts = append(parts, "constraint violation")
	}

	if e.Constraint != "" {
		parts = append(parts, fmt.Sprintf("(%s)", e.Constraint))
	}

	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}

	if e.RowIndex >= 0 {
		parts = append(parts, fmt.Sprintf("at row %d", e.RowIndex))
	}

	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	return strings.Join(parts, " - ")
}

func (e *ConstraintError) Unwrap() error { return e.Err }

func (e *ConstraintError) Kind() Kind { return KindValidation }

// IOError wraps a failure of the storage handle.
type IOError struct {
	Op  string // "read", "write", "append"
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Kind() Kind { return KindIO }

func NewPrimaryKeyViolation(table, column string, value any, rowIndex int) *ConstraintError {
	return &ConstraintError{
		Table:      table,
		Column:     column,
		Value:      value,
		Constraint: "primary_key",
		Reason:     "duplicate primary key",
		RowIndex:   rowIndex,
	}
}

func NewTypeMismatch(table, column string, value any, expectedType string, rowIndex int) *ConstraintError {
	return &ConstraintError{
		Table:      table,
		Column:     column,
		Value:      value,
		Constraint: "type_mismatch",
		Reason:     fmt.Sprintf("expected type %s", expectedType),
		RowIndex:   rowIndex,
		Err:        ErrTypeMismatch,
	}
}

// KindOf classifies err, looking through wrapped errors.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var k interface{ Kind() Kind }
	if errors.As(err, &k) {
		return k.Kind()
	}

	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoSuchColumn) || errors.Is(err, ErrTypeMismatch) {
		return KindValidation
	}

	return KindUnknown
}
