// Command rtdb manages the .rtdb tables of a directory.
//
// Usage:
//
//	rtdb create people name:STRING:P age:INTEGER:N
//	rtdb insert people "Uncle Bob" 44
//	rtdb select people --where 'age > 20 and name contains "Bob"'
//	rtdb delete people --where 'age > 40'
//	rtdb repl people
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/leengari/rtdb/internal/config"
	"github.com/leengari/rtdb/internal/domain/data"
	"github.com/leengari/rtdb/internal/engine"
	"github.com/leengari/rtdb/internal/logging"
	"github.com/leengari/rtdb/internal/parser"
	"github.com/leengari/rtdb/internal/repl"
	"github.com/leengari/rtdb/internal/storage/codec"
	"github.com/leengari/rtdb/internal/storage/manager"
	"github.com/leengari/rtdb/internal/table"
)

// CLI defines the command-line interface for rtdb.
type CLI struct {
	// Global flags
	Config   string `help:"Config file (default ./rtdb.json when present)" type:"path"`
	Dir      string `help:"Directory holding the table files" type:"path"`
	LogLevel string `name:"log-level" help:"Log level: debug, info, warn, error"`

	Create CreateCmd `cmd:"" help:"Create a table"`
	Ls     LsCmd     `cmd:"" help:"List tables"`
	Insert InsertCmd `cmd:"" help:"Insert one record"`
	Select SelectCmd `cmd:"" help:"Print records"`
	Delete DeleteCmd `cmd:"" help:"Delete records"`
	Update UpdateCmd `cmd:"" help:"Replace the first matching record"`
	Dump   DumpCmd   `cmd:"" help:"Print a table as stored"`
	Check  CheckCmd  `cmd:"" help:"Check primary key uniqueness"`
	Repl   ReplCmd   `cmd:"" help:"Start an interactive shell"`
}

// App is what every command runs against.
type App struct {
	ctx      context.Context
	registry *manager.Registry
	out      io.Writer
}

func (a *App) open(name string) (*table.Table, error) {
	return a.registry.Open(a.ctx, name)
}

// CreateCmd creates a table.
type CreateCmd struct {
	Table   string   `arg:"" help:"Table name"`
	Columns []string `arg:"" help:"Columns as name:TYPE:P|N, exactly one P"`
}

func (c *CreateCmd) Run(app *App) error {
	cols, err := repl.ParseColumnSpecs(c.Columns)
	if err != nil {
		return err
	}
	if _, err := app.registry.Create(app.ctx, c.Table, cols); err != nil {
		return err
	}
	fmt.Fprintf(app.out, "Table '%s' created\n", c.Table)
	return nil
}

// LsCmd lists tables.
type LsCmd struct{}

func (c *LsCmd) Run(app *App) error {
	names, err := app.registry.List()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(app.out, name)
	}
	return nil
}

// InsertCmd inserts one record.
type InsertCmd struct {
	Table  string   `arg:"" help:"Table name"`
	Values []string `arg:"" help:"One value per column"`
}

func (c *InsertCmd) Run(app *App) error {
	t, err := app.open(c.Table)
	if err != nil {
		return err
	}
	rec, err := parser.ParseRecord(c.Values, t.Columns())
	if err != nil {
		return err
	}
	return t.Insert(app.ctx, rec)
}

// SelectCmd prints records.
type SelectCmd struct {
	Table string `arg:"" help:"Table name"`
	Where string `short:"w" help:"Where expression, all records when empty"`
	First bool   `help:"Print only the first match"`
}

func (c *SelectCmd) Run(app *App) error {
	t, err := app.open(c.Table)
	if err != nil {
		return err
	}

	var records data.Records
	switch {
	case c.Where == "" && c.First:
		return fmt.Errorf("--first needs --where")
	case c.Where == "":
		records, err = t.SelectAll()
	default:
		m, perr := parser.Compile(c.Where)
		if perr != nil {
			return perr
		}
		if c.First {
			var rec data.Record
			rec, err = t.SelectFirstWhere(m)
			records = data.Records{rec}
		} else {
			records, err = t.SelectAllWhere(m)
		}
	}
	if err != nil {
		return err
	}

	repl.PrintResult(app.out, &repl.Result{Columns: t.Columns(), Records: records})
	return nil
}

// DeleteCmd deletes records.
type DeleteCmd struct {
	Table string `arg:"" help:"Table name"`
	Where string `short:"w" help:"Where expression"`
	First bool   `help:"Delete only the first match"`
	All   bool   `help:"Delete every record"`
}

func (c *DeleteCmd) Run(app *App) error {
	t, err := app.open(c.Table)
	if err != nil {
		return err
	}

	if c.All {
		if c.Where != "" || c.First {
			return fmt.Errorf("--all cannot be combined with --where or --first")
		}
		return t.DeleteAll(app.ctx)
	}
	if c.Where == "" {
		return fmt.Errorf("either --where or --all is required")
	}

	m, err := parser.Compile(c.Where)
	if err != nil {
		return err
	}
	if c.First {
		return t.DeleteFirstWhere(app.ctx, m)
	}
	return t.DeleteAllWhere(app.ctx, m)
}

// UpdateCmd replaces the first matching record.
type UpdateCmd struct {
	Table  string   `arg:"" help:"Table name"`
	Where  string   `short:"w" required:"" help:"Where expression"`
	Values []string `arg:"" help:"Replacement values, one per column"`
}

func (c *UpdateCmd) Run(app *App) error {
	t, err := app.open(c.Table)
	if err != nil {
		return err
	}
	m, err := parser.Compile(c.Where)
	if err != nil {
		return err
	}
	rec, err := parser.ParseRecord(c.Values, t.Columns())
	if err != nil {
		return err
	}
	return t.UpdateFirstWhere(app.ctx, m, rec)
}

// DumpCmd prints a table in its file format.
type DumpCmd struct {
	Table string `arg:"" help:"Table name"`
}

func (c *DumpCmd) Run(app *App) error {
	t, err := app.open(c.Table)
	if err != nil {
		return err
	}
	content, err := codec.Encode(t.Snapshot())
	if err != nil {
		return err
	}
	_, err = io.WriteString(app.out, content)
	return err
}

// CheckCmd validates table files. Opening a table runs every check on its
// file; without a table name every table in the directory is checked.
type CheckCmd struct {
	Table string `arg:"" optional:"" help:"Table name, all tables when empty"`
}

func (c *CheckCmd) Run(app *App) error {
	var tables []*table.Table
	if c.Table == "" {
		all, err := app.registry.OpenAll(app.ctx)
		if err != nil {
			return err
		}
		tables = all
	} else {
		t, err := app.open(c.Table)
		if err != nil {
			return err
		}
		tables = append(tables, t)
	}

	for _, t := range tables {
		ok, err := t.CheckPrimaryKeys()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("table '%s': primary keys are not unique", t.Name())
		}
		fmt.Fprintf(app.out, "%s: ok\n", t.Name())
	}
	return nil
}

// ReplCmd starts the interactive shell.
type ReplCmd struct {
	Table string `arg:"" optional:"" help:"Table to select on start"`
}

func (c *ReplCmd) Run(app *App) error {
	s := repl.NewSession(app.registry)
	if c.Table != "" {
		if err := s.Use(app.ctx, c.Table); err != nil {
			return err
		}
	}
	repl.Run(app.ctx, s, os.Stdin, app.out)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "rtdb: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var cli CLI
	p, err := kong.New(&cli,
		kong.Name("rtdb"),
		kong.Description("Embedded single-file record store.\n\n"+
			"Table names are letters only. Text values may use letters, digits and spaces; "+
			"other characters are accepted on insert but the file will not open again."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	if err != nil {
		return err
	}

	kctx, err := p.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	_, closeFn := logging.SetupLogger(logging.Options{Level: level, SeqURL: cfg.SeqURL, Output: stderr})
	defer closeFn()

	opts := []manager.Option{manager.WithObserver(engine.NewLoggingObserver())}
	if cfg.AtomicWrites {
		opts = append(opts, manager.WithAtomicWrites())
	}
	registry := manager.NewRegistry(cfg.Dir, opts...)
	defer registry.CloseAll()

	slog.Debug("Starting rtdb", slog.String("dir", cfg.Dir), slog.String("command", kctx.Command()))

	return kctx.Run(&App{ctx: ctx, registry: registry, out: stdout})
}

// loadConfig merges defaults, the config file and the global flags.
func loadConfig(cli CLI) (config.Config, error) {
	path, mustExist := cli.Config, true
	if path == "" {
		path, mustExist = config.FileName, false
	}

	return config.Load(path, mustExist, func(c *config.Config) {
		if cli.Dir != "" {
			c.Dir = cli.Dir
		}
		if cli.LogLevel != "" {
			c.LogLevel = cli.LogLevel
		}
	})
}
