package schema

import (
	"github.com/leengari/rtdb/internal/domain/errors"
	"github.com/leengari/rtdb/internal/validation"
)

// Identifier is a validated table or column name.
// The zero value is not a valid identifier; use NewIdentifier.
type Identifier struct {
	value string
}

// NewIdentifier validates value against [A-Za-z0-9_-]+.
func NewIdentifier(value string) (Identifier, error) {
	if !validation.IsLexeme(value) {
		return Identifier{}, &errors.ConstraintError{
			Value:      value,
			Constraint: "identifier",
			Reason:     "name must match [A-Za-z0-9_-]+",
			RowIndex:   -1,
		}
	}
	return Identifier{value: value}, nil
}

// NewTableName validates value as a table name. A table name is stored as the
// title line of its file, which admits letters only.
func NewTableName(value string) (Identifier, error) {
	if !validation.IsTableName(value) {
		return Identifier{}, &errors.ConfigurationError{
			Table:  value,
			Reason: "table name must contain letters only",
		}
	}
	return NewIdentifier(value)
}

// MustIdentifier is NewIdentifier for literals known to be valid. It panics otherwise.
func MustIdentifier(value string) Identifier {
	id, err := NewIdentifier(value)
	if err != nil {
		panic(err)
	}
	return id
}

func (i Identifier) String() string {
	return i.value
}

// IsZero reports whether i was never constructed.
func (i Identifier) IsZero() bool {
	return i.value == ""
}
