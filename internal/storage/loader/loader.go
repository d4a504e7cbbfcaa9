// Package loader checks the content behind a storage handle before a table is
// opened on it, and loads it when it is usable.
package loader

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/leengari/rtdb/internal/domain/errors"
	"github.com/leengari/rtdb/internal/domain/schema"
	"github.com/leengari/rtdb/internal/storage"
	"github.com/leengari/rtdb/internal/storage/codec"
	"github.com/leengari/rtdb/internal/validation"
)

// Status is the outcome of a successful validation.
type Status int

const (
	// StatusEmpty means there is nothing worth keeping: the caller must write
	// a fresh header.
	StatusEmpty Status = iota + 1
	// StatusPopulated means the content holds a header and at least one valid
	// record and can be adopted as is.
	StatusPopulated
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "valid-but-empty"
	case StatusPopulated:
		return "valid-and-populated"
	default:
		return "unknown"
	}
}

// Validate checks the handle's content against the declared columns.
// Any returned error is fatal for opening the table.
func Validate(h storage.Handle, table string, declared schema.Columns) (Status, error) {
	// 1. Extension
	if ext := h.Extension(); ext != storage.Extension {
		return 0, &errors.ConfigurationError{
			Table:  table,
			Reason: fmt.Sprintf("extension is not .%s (got %q)", storage.Extension, ext),
		}
	}

	text, err := h.Read()
	if err != nil {
		return 0, &errors.IOError{Op: "read", Err: err}
	}

	// 2. Nothing stored yet
	lines := codec.NonEmptyLines(text)
	if len(lines) == 0 {
		return StatusEmpty, nil
	}

	// 3. Title
	if !validation.IsTitle(lines[0]) {
		return 0, &errors.FormatError{Line: 1, Reason: "title format is invalid", Content: lines[0]}
	}

	// 4. Column header
	if len(lines) < 2 {
		return 0, &errors.FormatError{Line: 2, Reason: "missing column header"}
	}
	stored, err := parseHeader(lines[1])
	if err != nil {
		return 0, err
	}
	if err := compareColumns(table, declared, stored); err != nil {
		return 0, err
	}

	// 5. Header only
	if len(lines) == 2 {
		return StatusEmpty, nil
	}

	// 6. Records
	for i, line := range lines[2:] {
		if err := checkRecordLine(line, declared); err != nil {
			if fe, ok := err.(*errors.FormatError); ok {
				fe.Line = i + 3
			}
			return 0, err
		}
	}

	// 7. All good
	return StatusPopulated, nil
}

func parseHeader(line string) ([]schema.Column, error) {
	content, err := codec.InBrackets(line)
	if err != nil {
		return nil, withLine(err, 2)
	}
	cols, err := codec.ParseColumns(content)
	if err != nil {
		return nil, withLine(err, 2)
	}
	return cols, nil
}

func compareColumns(table string, declared schema.Columns, stored []schema.Column) error {
	primaryKeys := 0
	for _, col := range stored {
		if col.PrimaryKey {
			primaryKeys++
		}
	}
	if primaryKeys != 1 {
		return &errors.SchemaDriftError{
			Table:  table,
			Index:  -1,
			Reason: fmt.Sprintf("table should contain exactly one primary key, found %d", primaryKeys),
		}
	}

	if len(stored) != len(declared) {
		return &errors.SchemaDriftError{
			Table:    table,
			Index:    -1,
			Expected: fmt.Sprintf("%d columns", len(declared)),
			Found:    fmt.Sprintf("%d columns", len(stored)),
			Reason:   "existing column count does not match declared column count",
		}
	}

	for i := range declared {
		if declared[i] != stored[i] {
			return &errors.SchemaDriftError{
				Table:    table,
				Index:    i,
				Expected: declared[i].String(),
				Found:    stored[i].String(),
				Reason:   "existing columns do not match declared columns",
			}
		}
	}
	return nil
}

func checkRecordLine(line string, cols schema.Columns) error {
	if !validation.IsRecordLine(line) {
		return &errors.FormatError{Reason: "record syntax is invalid", Content: line}
	}
	fields := strings.Split(line, codec.Separator)
	if len(fields) != len(cols) {
		return &errors.FormatError{
			Reason:  fmt.Sprintf("record has %d fields, table has %d columns", len(fields), len(cols)),
			Content: line,
		}
	}
	for i, field := range fields {
		if _, err := codec.ParseProperty(field, cols[i].Type); err != nil {
			return err
		}
	}
	return nil
}

func withLine(err error, line int) error {
	if fe, ok := err.(*errors.FormatError); ok {
		fe.Line = line
	}
	return err
}

// Load validates the handle and, when it is populated, decodes its content.
// It returns a nil table with StatusEmpty.
func Load(h storage.Handle, table string, declared schema.Columns) (*schema.Table, Status, error) {
	status, err := Validate(h, table, declared)
	if err != nil {
		slog.Error("table validation failed",
			slog.String("table", table),
			slog.Any("error", err),
		)
		return nil, 0, err
	}
	if status == StatusEmpty {
		return nil, status, nil
	}

	text, err := h.Read()
	if err != nil {
		return nil, 0, &errors.IOError{Op: "read", Err: err}
	}
	t, err := codec.Decode(text)
	if err != nil {
		return nil, 0, err
	}

	slog.Debug("table content loaded",
		slog.String("table", table),
		slog.Int("row_count", len(t.Records)),
	)
	return t, status, nil
}
