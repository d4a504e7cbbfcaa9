// Package codec converts table snapshots to and from the flat .rtdb text format:
//
//	[<table-name>]
//	[<col>:<TYPE>:<P|N>|<col>:<TYPE>:<P|N>|...]
//	<val>|<val>|...
//
// Lines end with '\n' and blank lines are ignored. Integers are unsigned decimal
// literals, booleans are TRUE or FALSE, and text stores every space as '?'.
package codec

import (
	"fmt"
	"strings"

	"github.com/leengari/rtdb/internal/domain/data"
	"github.com/leengari/rtdb/internal/domain/errors"
	"github.com/leengari/rtdb/internal/domain/schema"
	"github.com/leengari/rtdb/internal/validation"
)

const (
	Separator     = "|"
	TypeSeparator = ":"
	PrimaryKey    = "P"
	NonPrimaryKey = "N"
	True          = "TRUE"
	False         = "FALSE"
)

// Encode renders the full file content for t.
func Encode(t *schema.Table) (string, error) {
	body, err := EncodeRecords(t.Records)
	if err != nil {
		return "", err
	}
	return EncodeTitle(t.Name) + EncodeHeader(t.Columns) + body, nil
}

// EncodeTitle renders the table name line.
func EncodeTitle(name schema.Identifier) string {
	return "[" + name.String() + "]\n"
}

// EncodeHeader renders the column header line.
func EncodeHeader(cols schema.Columns) string {
	specs := make([]string, len(cols))
	for i, col := range cols {
		specs[i] = col.String()
	}
	return "[" + strings.Join(specs, Separator) + "]\n"
}

// EncodeRecords renders one line per record.
func EncodeRecords(records data.Records) (string, error) {
	var b strings.Builder
	for i, rec := range records {
		line, err := EncodeRecord(rec)
		if err != nil {
			return "", fmt.Errorf("record %d: %w", i, err)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// EncodeRecord renders a single record line without the trailing newline.
func EncodeRecord(rec data.Record) (string, error) {
	fields := make([]string, len(rec))
	for i, prop := range rec {
		field, err := EncodeProperty(prop)
		if err != nil {
			return "", err
		}
		fields[i] = field
	}
	return strings.Join(fields, Separator), nil
}

// EncodeProperty renders one field. It refuses values that could not be read back.
func EncodeProperty(p data.Property) (string, error) {
	switch v := p.(type) {
	case data.Int:
		if v < 0 {
			return "", &errors.FormatError{Reason: "integer literal cannot be negative", Content: v.String()}
		}
		return v.String(), nil
	case data.Text:
		stored := strings.ReplaceAll(string(v), " ", string(validation.Sentinel))
		if !validation.IsStoredText(stored) {
			return "", &errors.FormatError{Reason: "text cannot be stored", Content: string(v)}
		}
		return stored, nil
	case data.Bool:
		if v {
			return True, nil
		}
		return False, nil
	default:
		return "", &errors.FormatError{Reason: fmt.Sprintf("unsupported property %T", p)}
	}
}
