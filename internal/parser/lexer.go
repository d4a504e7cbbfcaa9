package parser

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// whereLexer tokenizes where expressions such as
//
//	name contains "Al" and not (age < 20 or is_student = true)
//
// Keywords are matched case-insensitively and must come before Ident so that
// "and" is never read as a column name.
var whereLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `(?i)\b(?:and|or|not|contains|true|false)\b`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
	{Name: "Number", Pattern: `\d+`},
	// 'single' or "double" quoted, double quoted strings take Go escapes
	{Name: "String", Pattern: `'[^']*'|"(?:\\.|[^"\\])*"`},
	{Name: "Operator", Pattern: `!=|<>|<=|>=|[=<>]`},
	{Name: "Punct", Pattern: `[()]`},
	{Name: "Whitespace", Pattern: `\s+`},
})
