package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leengari/rtdb/internal/domain/data"
	"github.com/leengari/rtdb/internal/domain/errors"
	"github.com/leengari/rtdb/internal/domain/schema"
	"github.com/leengari/rtdb/internal/validation"
)

// NonEmptyLines splits text into lines and drops the blank ones.
func NonEmptyLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// InBrackets returns everything between the first '[' and the last ']' of a
// line that starts with '[' and ends with ']'.
func InBrackets(line string) (string, error) {
	if len(line) < 2 || line[0] != '[' || line[len(line)-1] != ']' {
		return "", &errors.FormatError{Reason: "value should be in brackets", Content: line}
	}
	start := strings.IndexByte(line, '[')
	end := strings.LastIndexByte(line, ']')
	return line[start+1 : end], nil
}

// ParseColumns parses the content of a header line. It checks the syntax of
// every column spec but not the one-primary-key rule; callers decide how to
// report that.
func ParseColumns(content string) ([]schema.Column, error) {
	specs := strings.Split(content, Separator)
	cols := make([]schema.Column, 0, len(specs))
	for _, spec := range specs {
		col, err := ParseColumn(spec)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// ParseColumn parses one name:TYPE:P|N spec.
func ParseColumn(spec string) (schema.Column, error) {
	fields := strings.Split(spec, TypeSeparator)
	if len(fields) != 3 {
		return schema.Column{}, &errors.FormatError{
			Reason:  fmt.Sprintf("column spec should have 3 fields, got %d", len(fields)),
			Content: spec,
		}
	}

	name, err := schema.NewIdentifier(fields[0])
	if err != nil {
		return schema.Column{}, &errors.FormatError{Reason: "invalid column name", Content: spec, Err: err}
	}

	typ, ok := schema.ParseColumnType(fields[1])
	if !ok {
		return schema.Column{}, &errors.FormatError{Reason: "column type is invalid", Content: spec}
	}

	var pk bool
	switch fields[2] {
	case PrimaryKey:
		pk = true
	case NonPrimaryKey:
		pk = false
	default:
		return schema.Column{}, &errors.FormatError{Reason: "column does not contain primary key marker", Content: spec}
	}

	return schema.Column{Name: name, Type: typ, PrimaryKey: pk}, nil
}

// ParseProperty parses a stored field according to its column type.
func ParseProperty(raw string, typ schema.ColumnType) (data.Property, error) {
	switch typ {
	case schema.ColumnTypeInteger:
		if !validation.IsInteger(raw) {
			return nil, &errors.FormatError{Reason: "integer property is syntactically invalid", Content: raw}
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, &errors.FormatError{Reason: "integer property is out of range", Content: raw, Err: err}
		}
		return data.Int(n), nil
	case schema.ColumnTypeText:
		if !validation.IsStoredText(raw) {
			return nil, &errors.FormatError{Reason: "string property is syntactically invalid", Content: raw}
		}
		return data.Text(strings.ReplaceAll(raw, string(validation.Sentinel), " ")), nil
	case schema.ColumnTypeBoolean:
		switch raw {
		case True:
			return data.Bool(true), nil
		case False:
			return data.Bool(false), nil
		}
		return nil, &errors.FormatError{Reason: "boolean property is syntactically invalid", Content: raw}
	default:
		return nil, &errors.FormatError{Reason: fmt.Sprintf("unknown column type %v", typ), Content: raw}
	}
}

// ParseRecord splits a record line into exactly len(cols) typed properties.
func ParseRecord(line string, cols schema.Columns) (data.Record, error) {
	fields := strings.Split(line, Separator)
	if len(fields) != len(cols) {
		return nil, &errors.FormatError{
			Reason:  fmt.Sprintf("record has %d fields, table has %d columns", len(fields), len(cols)),
			Content: line,
		}
	}

	rec := make(data.Record, len(fields))
	for i, field := range fields {
		prop, err := ParseProperty(field, cols[i].Type)
		if err != nil {
			return nil, err
		}
		rec[i] = prop
	}
	return rec, nil
}

// DecodeHeader reads only the title and column header of stored content.
func DecodeHeader(text string) (schema.Identifier, schema.Columns, error) {
	lines := NonEmptyLines(text)
	return decodeHeader(lines)
}

func decodeHeader(lines []string) (schema.Identifier, schema.Columns, error) {
	if len(lines) < 2 {
		return schema.Identifier{}, nil, &errors.FormatError{
			Line:   len(lines) + 1,
			Reason: "missing table title or column header",
		}
	}

	title, err := InBrackets(lines[0])
	if err != nil {
		return schema.Identifier{}, nil, atLine(err, 1)
	}
	name, err := schema.NewIdentifier(title)
	if err != nil {
		return schema.Identifier{}, nil, &errors.FormatError{Line: 1, Reason: "invalid table name", Content: lines[0], Err: err}
	}

	content, err := InBrackets(lines[1])
	if err != nil {
		return schema.Identifier{}, nil, atLine(err, 2)
	}
	parsed, err := ParseColumns(content)
	if err != nil {
		return schema.Identifier{}, nil, atLine(err, 2)
	}
	cols, err := schema.NewColumns(parsed...)
	if err != nil {
		return schema.Identifier{}, nil, &errors.FormatError{Line: 2, Reason: "invalid column header", Content: lines[1], Err: err}
	}

	return name, cols, nil
}

// Decode parses full stored content into a snapshot.
func Decode(text string) (*schema.Table, error) {
	lines := NonEmptyLines(text)
	name, cols, err := decodeHeader(lines)
	if err != nil {
		return nil, err
	}

	records := make(data.Records, 0, len(lines)-2)
	for i, line := range lines[2:] {
		rec, err := ParseRecord(line, cols)
		if err != nil {
			return nil, atLine(err, i+3)
		}
		records = append(records, rec)
	}

	return &schema.Table{Name: name, Columns: cols, Records: records}, nil
}

// atLine stamps a line number on format errors that do not carry one yet.
func atLine(err error, line int) error {
	if fe, ok := err.(*errors.FormatError); ok && fe.Line == 0 {
		fe.Line = line
	}
	return err
}
