package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/leengari/rtdb/internal/domain/data"
	"github.com/leengari/rtdb/internal/domain/schema"
	"github.com/leengari/rtdb/internal/parser"
	"github.com/leengari/rtdb/internal/query/predicate"
	"github.com/leengari/rtdb/internal/storage/codec"
	"github.com/leengari/rtdb/internal/storage/manager"
	"github.com/leengari/rtdb/internal/table"
)

const help = `Commands:
  ls                                   list tables
  use <table>                          select a table
  create <table> <col:TYPE:P|N> ...    create and select a table
  insert <v1> | <v2> ...               insert one record
  select [where <expr>]                show matching records
  first where <expr>                   show the first matching record
  update where <expr> set <v1> | ...   replace the first matching record
  delete [first] [where <expr>]        delete matching records
  check                                check primary key uniqueness
  dump                                 print the table as stored
  help                                 show this text
  exit, \q                             quit

Table names are letters only. Text values may use letters, digits and
spaces; other characters are accepted on insert but the file will not
open again.`

// Result is what a command produced: a message, records, or both.
type Result struct {
	Message string
	Columns schema.Columns
	Records data.Records
}

// Session executes commands against the tables of a registry.
type Session struct {
	registry *manager.Registry
	current  *table.Table
}

func NewSession(registry *manager.Registry) *Session {
	return &Session{registry: registry}
}

// Use selects the table following commands run against.
func (s *Session) Use(ctx context.Context, name string) error {
	t, err := s.registry.Open(ctx, name)
	if err != nil {
		return err
	}
	s.current = t
	return nil
}

func Start(ctx context.Context, registry *manager.Registry) {
	Run(ctx, NewSession(registry), os.Stdin, os.Stdout)
}

// Run reads commands from in until exit or EOF.
func Run(ctx context.Context, s *Session, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "Welcome to rtdb")
	fmt.Fprintln(out, "Type 'help' for commands, 'exit' or '\\q' to quit.")

	for {
		fmt.Fprint(out, s.prompt())
		if !scanner.Scan() {
			fmt.Fprintln(out)
			if err := scanner.Err(); err != nil {
				fmt.Fprintf(out, "Error: reading input: %v\n", err)
			}
			return
		}
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		if line == "exit" || line == "\\q" {
			return
		}

		result, err := s.Execute(ctx, line)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}

		// Print Result
		PrintResult(out, result)
	}
}

func (s *Session) prompt() string {
	if s.current == nil {
		return "> "
	}
	return s.current.Name() + "> "
}

// Execute runs a single command line.
func (s *Session) Execute(ctx context.Context, line string) (*Result, error) {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "help":
		return &Result{Message: help}, nil
	case "ls", "list":
		return s.list()
	case "use":
		if err := s.Use(ctx, rest); err != nil {
			return nil, err
		}
		return &Result{Message: fmt.Sprintf("Switched to table '%s'", rest)}, nil
	case "create":
		return s.create(ctx, rest)
	}

	if s.current == nil {
		return nil, fmt.Errorf("no table selected. Use 'use <table>' to select one")
	}

	switch strings.ToLower(cmd) {
	case "insert":
		rec, err := s.record(rest)
		if err != nil {
			return nil, err
		}
		if err := s.current.Insert(ctx, rec); err != nil {
			return nil, err
		}
		return &Result{Message: "1 record inserted"}, nil

	case "select":
		m, err := optionalWhere(rest)
		if err != nil {
			return nil, err
		}
		var records data.Records
		if m == nil {
			records, err = s.current.SelectAll()
		} else {
			records, err = s.current.SelectAllWhere(m)
		}
		if err != nil {
			return nil, err
		}
		return &Result{Columns: s.current.Columns(), Records: records}, nil

	case "first":
		m, err := requiredWhere(rest)
		if err != nil {
			return nil, err
		}
		rec, err := s.current.SelectFirstWhere(m)
		if err != nil {
			return nil, err
		}
		return &Result{Columns: s.current.Columns(), Records: data.Records{rec}}, nil

	case "update":
		expr, values, ok := cutKeyword(rest, "set")
		if !ok {
			return nil, fmt.Errorf("usage: update where <expr> set <v1> | <v2> ...")
		}
		m, err := requiredWhere(expr)
		if err != nil {
			return nil, err
		}
		rec, err := s.record(values)
		if err != nil {
			return nil, err
		}
		if err := s.current.UpdateFirstWhere(ctx, m, rec); err != nil {
			return nil, err
		}
		return &Result{Message: "1 record updated"}, nil

	case "delete":
		return s.delete(ctx, rest)

	case "check":
		ok, err := s.current.CheckPrimaryKeys()
		if err != nil {
			return nil, err
		}
		if !ok {
			return &Result{Message: "primary keys are NOT unique"}, nil
		}
		return &Result{Message: "primary keys are unique"}, nil

	case "dump":
		content, err := codec.Encode(s.current.Snapshot())
		if err != nil {
			return nil, err
		}
		return &Result{Message: strings.TrimSuffix(content, "\n")}, nil
	}

	return nil, fmt.Errorf("unknown command %q, type 'help'", cmd)
}

func (s *Session) list() (*Result, error) {
	names, err := s.registry.List()
	if err != nil {
		return nil, fmt.Errorf("error listing tables: %w", err)
	}
	var b strings.Builder
	b.WriteString("Available tables:")
	for _, name := range names {
		fmt.Fprintf(&b, "\n  - %s", name)
	}
	return &Result{Message: b.String()}, nil
}

func (s *Session) create(ctx context.Context, rest string) (*Result, error) {
	fields := strings.Fields(rest)
	if len(fields) < 2 {
		return nil, fmt.Errorf("usage: create <table> <col:TYPE:P|N> ...")
	}

	cols, err := ParseColumnSpecs(fields[1:])
	if err != nil {
		return nil, err
	}

	t, err := s.registry.Create(ctx, fields[0], cols)
	if err != nil {
		return nil, err
	}
	s.current = t
	return &Result{Message: fmt.Sprintf("Table '%s' created", fields[0])}, nil
}

func (s *Session) delete(ctx context.Context, rest string) (*Result, error) {
	first := false
	if after, ok := cutPrefixFold(rest, "first"); ok {
		first = true
		rest = after
	}

	m, err := optionalWhere(rest)
	if err != nil {
		return nil, err
	}

	switch {
	case first && m == nil:
		return nil, fmt.Errorf("usage: delete first where <expr>")
	case first:
		err = s.current.DeleteFirstWhere(ctx, m)
	case m == nil:
		err = s.current.DeleteAll(ctx)
	default:
		err = s.current.DeleteAllWhere(ctx, m)
	}
	if err != nil {
		return nil, err
	}
	return &Result{Message: "deleted"}, nil
}

func (s *Session) record(values string) (data.Record, error) {
	return parser.ParseRecord(SplitValues(values), s.current.Columns())
}

// ParseColumnSpecs parses column declarations such as "name:STRING:P".
func ParseColumnSpecs(specs []string) (schema.Columns, error) {
	cols := make([]schema.Column, 0, len(specs))
	for _, spec := range specs {
		col, err := codec.ParseColumn(spec)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return schema.NewColumns(cols...)
}

// SplitValues splits "Uncle Bob | 44 | true" into trimmed values.
func SplitValues(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func optionalWhere(rest string) (predicate.Matcher, error) {
	if rest == "" {
		return nil, nil
	}
	return requiredWhere(rest)
}

func requiredWhere(rest string) (predicate.Matcher, error) {
	expr, ok := cutPrefixFold(rest, "where")
	if !ok || expr == "" {
		return nil, fmt.Errorf("expected 'where <expr>', got %q", rest)
	}
	return parser.Compile(expr)
}

func cutPrefixFold(s, word string) (string, bool) {
	if len(s) < len(word) || !strings.EqualFold(s[:len(word)], word) {
		return s, false
	}
	after := s[len(word):]
	if after != "" && after[0] != ' ' {
		return s, false
	}
	return strings.TrimSpace(after), true
}

// cutKeyword splits s around the first standalone occurrence of word.
func cutKeyword(s, word string) (before, after string, found bool) {
	fields := strings.Fields(s)
	for i, f := range fields {
		if strings.EqualFold(f, word) {
			return strings.Join(fields[:i], " "), strings.Join(fields[i+1:], " "), true
		}
	}
	return s, "", false
}

func PrintResult(w io.Writer, res *Result) {
	if res.Message != "" {
		fmt.Fprintln(w, res.Message)
	}

	if len(res.Columns) == 0 {
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	// Header - name and type
	for i, col := range res.Columns {
		fmt.Fprintf(tw, "%s (%s)", col.Name, col.Type)
		if i < len(res.Columns)-1 {
			fmt.Fprintf(tw, "\t")
		}
	}
	fmt.Fprintln(tw)

	// Separator
	for i := range res.Columns {
		fmt.Fprintf(tw, "---")
		if i < len(res.Columns)-1 {
			fmt.Fprintf(tw, "\t")
		}
	}
	fmt.Fprintln(tw)

	// Rows
	for _, rec := range res.Records {
		for i, p := range rec {
			fmt.Fprintf(tw, "%s", p)
			if i < len(rec)-1 {
				fmt.Fprintf(tw, "\t")
			}
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()

	fmt.Fprintf(w, "(%d records)\n", len(res.Records))
}
