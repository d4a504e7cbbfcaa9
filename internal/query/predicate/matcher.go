// Package predicate holds the composable matchers used to filter records.
package predicate

import (
	"fmt"
	"strings"

	"github.com/leengari/rtdb/internal/domain/data"
	"github.com/leengari/rtdb/internal/domain/errors"
	"github.com/leengari/rtdb/internal/domain/schema"
)

// Matcher tests a record against the columns of its table.
// The implementations in this package are the complete set; matchers are
// pure, so evaluation order of And/Or branches is not observable.
type Matcher interface {
	Match(rec data.Record, cols schema.Columns) (bool, error)
	String() string
	matcher()
}

// Eq matches records whose Column equals Value.
type Eq struct {
	Column schema.Identifier
	Value  data.Property
}

// Contains matches records whose text Column contains Substring.
type Contains struct {
	Column    schema.Identifier
	Substring string
}

// LessThan matches records whose integer Column is strictly below Value.
type LessThan struct {
	Column schema.Identifier
	Value  int64
}

// MoreThan matches records whose integer Column is strictly above Value.
type MoreThan struct {
	Column schema.Identifier
	Value  int64
}

type And struct {
	Left, Right Matcher
}

type Or struct {
	Left, Right Matcher
}

type Not struct {
	Inner Matcher
}

func (Eq) matcher()       {}
func (Contains) matcher() {}
func (LessThan) matcher() {}
func (MoreThan) matcher() {}
func (And) matcher()      {}
func (Or) matcher()       {}
func (Not) matcher()      {}

// lookup returns the property stored under name in rec.
func lookup(rec data.Record, cols schema.Columns, name schema.Identifier) (data.Property, schema.Column, error) {
	idx := cols.IndexOf(name)
	if idx < 0 {
		return nil, schema.Column{}, fmt.Errorf("%w: %s", errors.ErrNoSuchColumn, name)
	}
	if idx >= len(rec) {
		return nil, schema.Column{}, &errors.ConstraintError{
			Column:     name.String(),
			Constraint: "arity",
			Reason:     fmt.Sprintf("record has %d properties, column %s is at position %d", len(rec), name, idx),
			RowIndex:   -1,
		}
	}
	return rec[idx], cols[idx], nil
}

func mismatch(col schema.Column, op string) error {
	return fmt.Errorf("%w: %s cannot be applied to %s column %s", errors.ErrTypeMismatch, op, col.Type, col.Name)
}

func (m Eq) Match(rec data.Record, cols schema.Columns) (bool, error) {
	prop, col, err := lookup(rec, cols, m.Column)
	if err != nil {
		return false, err
	}
	if m.Value == nil || !col.Type.Accepts(m.Value) {
		return false, mismatch(col, "eq")
	}
	return prop == m.Value, nil
}

func (m Contains) Match(rec data.Record, cols schema.Columns) (bool, error) {
	prop, col, err := lookup(rec, cols, m.Column)
	if err != nil {
		return false, err
	}
	text, ok := prop.(data.Text)
	if !ok || col.Type != schema.ColumnTypeText {
		return false, mismatch(col, "contains")
	}
	return strings.Contains(string(text), m.Substring), nil
}

func (m LessThan) Match(rec data.Record, cols schema.Columns) (bool, error) {
	n, err := intAt(rec, cols, m.Column, "less than")
	if err != nil {
		return false, err
	}
	return n < m.Value, nil
}

func (m MoreThan) Match(rec data.Record, cols schema.Columns) (bool, error) {
	n, err := intAt(rec, cols, m.Column, "more than")
	if err != nil {
		return false, err
	}
	return n > m.Value, nil
}

func intAt(rec data.Record, cols schema.Columns, name schema.Identifier, op string) (int64, error) {
	prop, col, err := lookup(rec, cols, name)
	if err != nil {
		return 0, err
	}
	n, ok := prop.(data.Int)
	if !ok || col.Type != schema.ColumnTypeInteger {
		return 0, mismatch(col, op)
	}
	return int64(n), nil
}

func (m And) Match(rec data.Record, cols schema.Columns) (bool, error) {
	left, err := m.Left.Match(rec, cols)
	if err != nil {
		return false, err
	}
	right, err := m.Right.Match(rec, cols)
	if err != nil {
		return false, err
	}
	return left && right, nil
}

func (m Or) Match(rec data.Record, cols schema.Columns) (bool, error) {
	left, err := m.Left.Match(rec, cols)
	if err != nil {
		return false, err
	}
	right, err := m.Right.Match(rec, cols)
	if err != nil {
		return false, err
	}
	return left || right, nil
}

func (m Not) Match(rec data.Record, cols schema.Columns) (bool, error) {
	ok, err := m.Inner.Match(rec, cols)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (m Eq) String() string { return fmt.Sprintf("%s = %s", m.Column, quote(m.Value)) }
func (m Contains) String() string {
	return fmt.Sprintf("%s contains %q", m.Column, m.Substring)
}
func (m LessThan) String() string { return fmt.Sprintf("%s < %d", m.Column, m.Value) }
func (m MoreThan) String() string { return fmt.Sprintf("%s > %d", m.Column, m.Value) }
func (m And) String() string      { return fmt.Sprintf("(%s and %s)", m.Left, m.Right) }
func (m Or) String() string       { return fmt.Sprintf("(%s or %s)", m.Left, m.Right) }
func (m Not) String() string      { return fmt.Sprintf("not %s", m.Inner) }

func quote(p data.Property) string {
	if t, ok := p.(data.Text); ok {
		return fmt.Sprintf("%q", string(t))
	}
	if p == nil {
		return "<nil>"
	}
	return p.String()
}

// Filter returns the records of t matching m, in table order.
func Filter(t *schema.Table, m Matcher) (data.Records, error) {
	out := data.Records{}
	for _, rec := range t.Records {
		ok, err := m.Match(rec, t.Columns)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// IndexOfFirst returns the position of the first record of t matching m, or -1.
func IndexOfFirst(t *schema.Table, m Matcher) (int, error) {
	for i, rec := range t.Records {
		ok, err := m.Match(rec, t.Columns)
		if err != nil {
			return -1, err
		}
		if ok {
			return i, nil
		}
	}
	return -1, nil
}
