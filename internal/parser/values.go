package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leengari/rtdb/internal/domain/data"
	"github.com/leengari/rtdb/internal/domain/errors"
	"github.com/leengari/rtdb/internal/domain/schema"
)

// ParseRecord converts raw values, one per column, into a record.
// Integers are base 10, booleans are true/false in any case, text is taken as is.
func ParseRecord(values []string, cols schema.Columns) (data.Record, error) {
	if len(values) != len(cols) {
		return nil, &errors.ConstraintError{
			Constraint: "arity",
			Reason:     fmt.Sprintf("expected %d values, got %d", len(cols), len(values)),
			RowIndex:   -1,
		}
	}

	rec := make(data.Record, len(cols))
	for i, col := range cols {
		p, err := ParseValue(values[i], col)
		if err != nil {
			return nil, err
		}
		rec[i] = p
	}
	return rec, nil
}

// ParseValue converts one raw value for col.
func ParseValue(raw string, col schema.Column) (data.Property, error) {
	switch col.Type {
	case schema.ColumnTypeInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, errors.NewTypeMismatch("", col.Name.String(), raw, col.Type.String(), -1)
		}
		return data.Int(n), nil
	case schema.ColumnTypeBoolean:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true":
			return data.Bool(true), nil
		case "false":
			return data.Bool(false), nil
		}
		return nil, errors.NewTypeMismatch("", col.Name.String(), raw, col.Type.String(), -1)
	case schema.ColumnTypeText:
		return data.Text(raw), nil
	}
	return nil, &errors.ConfigurationError{Reason: fmt.Sprintf("column %s has no type", col.Name)}
}
