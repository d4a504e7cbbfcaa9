package parser

import (
	"fmt"
	"strings"

	"github.com/leengari/rtdb/internal/domain/data"
	"github.com/leengari/rtdb/internal/domain/schema"
	"github.com/leengari/rtdb/internal/query/predicate"
)

// Compile parses input and builds the matcher it describes.
func Compile(input string) (predicate.Matcher, error) {
	expr, err := Parse(input)
	if err != nil {
		return nil, err
	}
	return expr.Matcher()
}

// Matcher builds the predicate tree. Column names and literal types are
// checked against a table only when the matcher runs.
//
//	a != v   not (a = v)
//	a <= n   not (a > n)
//	a >= n   not (a < n)
func (e *Expression) Matcher() (predicate.Matcher, error) {
	var out predicate.Matcher
	for _, term := range e.Or {
		m, err := term.matcher()
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = m
			continue
		}
		out = predicate.Or{Left: out, Right: m}
	}
	return out, nil
}

func (a *AndTerm) matcher() (predicate.Matcher, error) {
	var out predicate.Matcher
	for _, u := range a.And {
		m, err := u.matcher()
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = m
			continue
		}
		out = predicate.And{Left: out, Right: m}
	}
	return out, nil
}

func (u *Unary) matcher() (predicate.Matcher, error) {
	if u.Not != nil {
		inner, err := u.Not.matcher()
		if err != nil {
			return nil, err
		}
		return predicate.Not{Inner: inner}, nil
	}
	if u.Term.Group != nil {
		return u.Term.Group.Matcher()
	}
	return u.Term.Comparison.matcher()
}

func (c *Comparison) matcher() (predicate.Matcher, error) {
	col, err := schema.NewIdentifier(c.Column)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Pos, err)
	}

	op := strings.ToLower(c.Op)
	switch op {
	case "=", "!=", "<>":
		var eq predicate.Matcher = predicate.Eq{Column: col, Value: c.Value.Property()}
		if op != "=" {
			eq = predicate.Not{Inner: eq}
		}
		return eq, nil

	case "contains":
		if c.Value.Str == nil {
			return nil, fmt.Errorf("%s: contains needs a string, got %s", c.Pos, c.Value)
		}
		return predicate.Contains{Column: col, Substring: c.Value.Text()}, nil

	case "<", ">", "<=", ">=":
		if c.Value.Num == nil {
			return nil, fmt.Errorf("%s: %s needs a number, got %s", c.Pos, op, c.Value)
		}
		n := *c.Value.Num
		switch op {
		case "<":
			return predicate.LessThan{Column: col, Value: n}, nil
		case ">":
			return predicate.MoreThan{Column: col, Value: n}, nil
		case "<=":
			return predicate.Not{Inner: predicate.MoreThan{Column: col, Value: n}}, nil
		default:
			return predicate.Not{Inner: predicate.LessThan{Column: col, Value: n}}, nil
		}
	}

	return nil, fmt.Errorf("%s: unknown operator %q", c.Pos, c.Op)
}

// Property converts the literal to the property it denotes.
func (v *Value) Property() data.Property {
	switch {
	case v.Num != nil:
		return data.Int(*v.Num)
	case v.Bool != nil:
		return data.Bool(strings.EqualFold(*v.Bool, "true"))
	default:
		return data.Text(v.Text())
	}
}
