package predicate

import (
	stderrors "errors"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/rtdb/internal/domain/data"
	"github.com/leengari/rtdb/internal/domain/errors"
	"github.com/leengari/rtdb/internal/domain/schema"
)

var (
	name      = schema.MustIdentifier("name")
	age       = schema.MustIdentifier("age")
	isStudent = schema.MustIdentifier("is_student")
)

func studentTable(t *testing.T) *schema.Table {
	t.Helper()
	cols, err := schema.NewColumns(
		schema.Column{Name: name, Type: schema.ColumnTypeText, PrimaryKey: true},
		schema.Column{Name: age, Type: schema.ColumnTypeInteger},
		schema.Column{Name: isStudent, Type: schema.ColumnTypeBoolean},
	)
	assert.NilError(t, err)
	return schema.NewTable(schema.MustIdentifier("students"), cols, data.Records{
		data.NewRecord(data.Text("Alex"), data.Int(33), data.Bool(false)),
		data.NewRecord(data.Text("Bob"), data.Int(12), data.Bool(true)),
		data.NewRecord(data.Text("Alice"), data.Int(13), data.Bool(false)),
		data.NewRecord(data.Text("Ivan"), data.Int(23), data.Bool(false)),
	})
}

func names(t *testing.T, records data.Records) []string {
	t.Helper()
	out := []string{}
	for _, rec := range records {
		out = append(out, rec[0].String())
	}
	return out
}

func TestMatchers(t *testing.T) {
	tbl := studentTable(t)

	tests := []struct {
		matcher Matcher
		want    []string
	}{
		{Eq{Column: name, Value: data.Text("Bob")}, []string{"Bob"}},
		{Eq{Column: age, Value: data.Int(13)}, []string{"Alice"}},
		{Eq{Column: isStudent, Value: data.Bool(false)}, []string{"Alex", "Alice", "Ivan"}},
		{Contains{Column: name, Substring: "Al"}, []string{"Alex", "Alice"}},
		{Contains{Column: name, Substring: "zz"}, []string{}},
		{LessThan{Column: age, Value: 20}, []string{"Bob", "Alice"}},
		{MoreThan{Column: age, Value: 20}, []string{"Alex", "Ivan"}},
		{MoreThan{Column: age, Value: 33}, []string{}},
		{Not{Inner: Contains{Column: name, Substring: "Al"}}, []string{"Bob", "Ivan"}},
		{
			Or{
				Left: And{
					Left:  And{Left: LessThan{Column: age, Value: 20}, Right: MoreThan{Column: age, Value: 10}},
					Right: Contains{Column: name, Substring: "Al"},
				},
				Right: Eq{Column: isStudent, Value: data.Bool(true)},
			},
			[]string{"Bob", "Alice"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.matcher.String(), func(t *testing.T) {
			got, err := Filter(tbl, tt.matcher)
			assert.NilError(t, err)
			assert.DeepEqual(t, names(t, got), tt.want)
		})
	}
}

func TestComposition(t *testing.T) {
	tbl := studentTable(t)
	a := MoreThan{Column: age, Value: 12}
	b := Eq{Column: isStudent, Value: data.Bool(false)}

	inA, err := Filter(tbl, a)
	assert.NilError(t, err)
	inB, err := Filter(tbl, b)
	assert.NilError(t, err)

	setA := map[string]bool{}
	for _, n := range names(t, inA) {
		setA[n] = true
	}
	setB := map[string]bool{}
	for _, n := range names(t, inB) {
		setB[n] = true
	}

	and, err := Filter(tbl, And{Left: a, Right: b})
	assert.NilError(t, err)
	or, err := Filter(tbl, Or{Left: a, Right: b})
	assert.NilError(t, err)

	for _, rec := range tbl.Records {
		n := rec[0].String()
		assert.Equal(t, contains(names(t, and), n), setA[n] && setB[n], "and: %s", n)
		assert.Equal(t, contains(names(t, or), n), setA[n] || setB[n], "or: %s", n)
	}

	swapped, err := Filter(tbl, And{Left: b, Right: a})
	assert.NilError(t, err)
	assert.Assert(t, swapped.Equal(and))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestMatcherErrors(t *testing.T) {
	tbl := studentTable(t)
	missing := schema.MustIdentifier("missing")

	tests := []struct {
		name    string
		matcher Matcher
		target  error
	}{
		{"no such column", Eq{Column: missing, Value: data.Int(1)}, errors.ErrNoSuchColumn},
		{"contains on integer", Contains{Column: age, Substring: "1"}, errors.ErrTypeMismatch},
		{"less than on text", LessThan{Column: name, Value: 3}, errors.ErrTypeMismatch},
		{"more than on boolean", MoreThan{Column: isStudent, Value: 0}, errors.ErrTypeMismatch},
		{"eq with wrong type", Eq{Column: age, Value: data.Text("33")}, errors.ErrTypeMismatch},
		{"error inside and", And{Left: Eq{Column: name, Value: data.Text("Bob")}, Right: LessThan{Column: missing, Value: 1}}, errors.ErrNoSuchColumn},
		{"error inside or", Or{Left: Contains{Column: age, Substring: "x"}, Right: Eq{Column: name, Value: data.Text("Bob")}}, errors.ErrTypeMismatch},
		{"error inside not", Not{Inner: Contains{Column: missing, Substring: "x"}}, errors.ErrNoSuchColumn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Filter(tbl, tt.matcher)
			assert.Assert(t, stderrors.Is(err, tt.target), "got %v", err)
			assert.Equal(t, errors.KindOf(err), errors.KindValidation)
		})
	}
}

func TestIndexOfFirst(t *testing.T) {
	tbl := studentTable(t)

	idx, err := IndexOfFirst(tbl, Eq{Column: isStudent, Value: data.Bool(false)})
	assert.NilError(t, err)
	assert.Equal(t, idx, 0)

	idx, err = IndexOfFirst(tbl, Eq{Column: name, Value: data.Text("Nobody")})
	assert.NilError(t, err)
	assert.Equal(t, idx, -1)
}

func TestString(t *testing.T) {
	m := Or{
		Left:  And{Left: Eq{Column: name, Value: data.Text("Bob")}, Right: LessThan{Column: age, Value: 20}},
		Right: Not{Inner: Contains{Column: name, Substring: "Al"}},
	}
	assert.Equal(t, m.String(), `((name = "Bob" and age < 20) or not name contains "Al")`)
}
