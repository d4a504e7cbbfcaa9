package rtdb

import (
	"github.com/leengari/rtdb/internal/domain/schema"
	"github.com/leengari/rtdb/internal/parser"
	"github.com/leengari/rtdb/internal/query/predicate"
)

// Query selects records. A Query built from an invalid column name or value
// carries the error and every table operation given it returns that error.
type Query struct {
	m   predicate.Matcher
	err error
}

func (q Query) String() string {
	if q.err != nil {
		return "invalid query: " + q.err.Error()
	}
	return q.m.String()
}

// Err reports why the query is invalid, if it is.
func (q Query) Err() error {
	return q.err
}

func column(name string, build func(schema.Identifier) predicate.Matcher) Query {
	id, err := schema.NewIdentifier(name)
	if err != nil {
		return Query{err: err}
	}
	return Query{m: build(id)}
}

// Eq matches records whose column equals v (an integer, string or bool).
func Eq(col string, v any) Query {
	p, err := toProperty(v)
	if err != nil {
		return Query{err: err}
	}
	return column(col, func(id schema.Identifier) predicate.Matcher {
		return predicate.Eq{Column: id, Value: p}
	})
}

// Contains matches text columns holding sub.
func Contains(col, sub string) Query {
	return column(col, func(id schema.Identifier) predicate.Matcher {
		return predicate.Contains{Column: id, Substring: sub}
	})
}

func LessThan(col string, n int64) Query {
	return column(col, func(id schema.Identifier) predicate.Matcher {
		return predicate.LessThan{Column: id, Value: n}
	})
}

func MoreThan(col string, n int64) Query {
	return column(col, func(id schema.Identifier) predicate.Matcher {
		return predicate.MoreThan{Column: id, Value: n}
	})
}

func And(a, b Query) Query {
	if a.err != nil {
		return a
	}
	if b.err != nil {
		return b
	}
	return Query{m: predicate.And{Left: a.m, Right: b.m}}
}

func Or(a, b Query) Query {
	if a.err != nil {
		return a
	}
	if b.err != nil {
		return b
	}
	return Query{m: predicate.Or{Left: a.m, Right: b.m}}
}

func Not(q Query) Query {
	if q.err != nil {
		return q
	}
	return Query{m: predicate.Not{Inner: q.m}}
}

// Where parses a textual expression:
//
//	name contains "Al" and (age >= 18 or not student = true)
func Where(expr string) Query {
	m, err := parser.Compile(expr)
	if err != nil {
		return Query{err: err}
	}
	return Query{m: m}
}
