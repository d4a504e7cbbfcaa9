package validation

import (
	"github.com/leengari/rtdb/internal/domain/data"
	"github.com/leengari/rtdb/internal/domain/errors"
	"github.com/leengari/rtdb/internal/domain/schema"
	"github.com/leengari/rtdb/internal/validation"
)

// ValidateRecord checks a record handed in by a caller before it is written:
// - every text property follows the input rules (no sentinel, not blank)
// - integers are not negative, since the stored literal has no sign
// - arity and per-column type match the table
// Returns ConstraintError for better error handling
func ValidateRecord(table *schema.Table, rec data.Record, rowIndex int) error {
	name := table.Name.String()

	if err := table.Columns.Check(name, rec, rowIndex); err != nil {
		return err
	}

	for i, prop := range rec {
		col := table.Columns[i]
		switch v := prop.(type) {
		case data.Text:
			if !validation.IsInputText(string(v)) {
				return &errors.ConstraintError{
					Table:      name,
					Column:     col.Name.String(),
					Value:      string(v),
					Constraint: "input_text",
					Reason:     "provided string property does not match input rules [A-Za-z0-9 _-]+",
					RowIndex:   rowIndex,
				}
			}
		case data.Int:
			if v < 0 {
				return &errors.ConstraintError{
					Table:      name,
					Column:     col.Name.String(),
					Value:      int64(v),
					Constraint: "input_integer",
					Reason:     "integer property cannot be negative",
					RowIndex:   rowIndex,
				}
			}
		case data.Bool:
			// any boolean is storable
		}
	}

	return nil
}

// CheckPrimaryKeyUniqueness fails when rec's primary key value is already held
// by one of records. The record at position skip is ignored (-1 checks all).
func CheckPrimaryKeyUniqueness(table *schema.Table, records data.Records, rec data.Record, skip int) error {
	pk := table.Columns.PrimaryKeyIndex()
	if pk < 0 || pk >= len(rec) {
		return &errors.ConfigurationError{Table: table.Name.String(), Reason: "table has no primary key"}
	}

	for i, existing := range records {
		if i == skip {
			continue
		}
		if existing[pk] == rec[pk] {
			return errors.NewPrimaryKeyViolation(table.Name.String(), table.Columns[pk].Name.String(), rec[pk], i)
		}
	}
	return nil
}

// HasUniquePrimaryKeys reports whether all primary key values are pairwise distinct.
func HasUniquePrimaryKeys(table *schema.Table) bool {
	pk := table.Columns.PrimaryKeyIndex()
	if pk < 0 {
		return false
	}

	seen := make(map[data.Property]struct{}, len(table.Records))
	for _, rec := range table.Records {
		if pk >= len(rec) {
			return false
		}
		if _, dup := seen[rec[pk]]; dup {
			return false
		}
		seen[rec[pk]] = struct{}{}
	}
	return true
}
