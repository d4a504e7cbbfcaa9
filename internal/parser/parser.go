// Package parser turns textual where expressions into matchers and textual
// values into records. It is the input surface of the CLI and the REPL; the
// table itself only ever sees the built matchers and records.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Expression is a disjunction of conjunctions. "and" binds tighter than "or".
type Expression struct {
	Or []*AndTerm `@@ ( "or" @@ )*`
}

type AndTerm struct {
	And []*Unary `@@ ( "and" @@ )*`
}

type Unary struct {
	Not  *Unary `  "not" @@`
	Term *Term  `| @@`
}

type Term struct {
	Group      *Expression `  "(" @@ ")"`
	Comparison *Comparison `| @@`
}

// Comparison is a single column test: name = "Bob", age >= 3, name contains "o".
type Comparison struct {
	Pos lexer.Position

	Column string `@Ident`
	Op     string `( @Operator | @"contains" )`
	Value  *Value `@@`
}

// Value is a literal on the right-hand side of a comparison.
type Value struct {
	Str  *string `  @String`
	Num  *int64  `| @Number`
	Bool *string `| @( "true" | "false" )`
}

var whereParser = participle.MustBuild[Expression](
	participle.Lexer(whereLexer),
	participle.Elide("Whitespace"),
	participle.CaseInsensitive("Keyword"),
)

// Parse parses a where expression without resolving it against any table.
func Parse(input string) (*Expression, error) {
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("where expression is empty")
	}

	expr, err := whereParser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("failed to parse where expression %q: %w", input, err)
	}
	return expr, nil
}

// Text returns the unquoted string literal.
func (v *Value) Text() string {
	s := *v.Str
	if strings.HasPrefix(s, "'") {
		return strings.Trim(s, "'")
	}
	unquoted, err := strconv.Unquote(s)
	if err != nil {
		return strings.Trim(s, `"`)
	}
	return unquoted
}

func (v *Value) String() string {
	switch {
	case v.Str != nil:
		return *v.Str
	case v.Num != nil:
		return strconv.FormatInt(*v.Num, 10)
	case v.Bool != nil:
		return strings.ToUpper(*v.Bool)
	default:
		return "<nil>"
	}
}
