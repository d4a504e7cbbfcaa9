// Package rtdb is an embedded single-file record store.
//
// A table is a typed, ordered list of records kept in one .rtdb text file:
//
//	people, err := rtdb.Open(ctx, rtdb.Options{
//		Path:       "data/people.rtdb",
//		PrimaryKey: "name",
//		Columns:    []rtdb.ColumnDef{rtdb.TextColumn("name"), rtdb.IntColumn("age")},
//	})
//	rec, _ := rtdb.Row("Uncle Bob", 44)
//	err = people.Insert(ctx, rec)
//	adults, err := people.SelectAllWhere(rtdb.MoreThan("age", 17))
//
// Writes are serialised and persisted before they become visible; reads never
// block.
package rtdb

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/leengari/rtdb/internal/domain/data"
	"github.com/leengari/rtdb/internal/domain/errors"
	"github.com/leengari/rtdb/internal/domain/schema"
	"github.com/leengari/rtdb/internal/engine"
	"github.com/leengari/rtdb/internal/storage"
	"github.com/leengari/rtdb/internal/table"
)

type (
	Property = data.Property
	Record   = data.Record
	Records  = data.Records
	Int      = data.Int
	Text     = data.Text
	Bool     = data.Bool
)

// Error sentinels and kinds, for errors.Is and Kind checks.
var (
	ErrNotFound     = errors.ErrNotFound
	ErrNoSuchColumn = errors.ErrNoSuchColumn
	ErrTypeMismatch = errors.ErrTypeMismatch
	ErrClosed       = errors.ErrClosed
)

type Kind = errors.Kind

const (
	KindConfiguration = errors.KindConfiguration
	KindSchemaDrift   = errors.KindSchemaDrift
	KindFormat        = errors.KindFormat
	KindValidation    = errors.KindValidation
	KindIO            = errors.KindIO
)

// KindOf classifies an error returned by this package.
func KindOf(err error) Kind {
	return errors.KindOf(err)
}

// ColumnDef declares one column; the primary key is chosen in Options.
type ColumnDef struct {
	Name string
	Type schema.ColumnType
}

func TextColumn(name string) ColumnDef { return ColumnDef{Name: name, Type: schema.ColumnTypeText} }
func IntColumn(name string) ColumnDef  { return ColumnDef{Name: name, Type: schema.ColumnTypeInteger} }
func BoolColumn(name string) ColumnDef { return ColumnDef{Name: name, Type: schema.ColumnTypeBoolean} }

// Options describe the table to open.
type Options struct {
	// Path of the table file; its extension must be .rtdb.
	Path string
	// Name of the table, the file's base name when empty.
	Name string
	// PrimaryKey names one of Columns.
	PrimaryKey string
	Columns    []ColumnDef
	// AtomicWrites rewrites the file through a temp file and a rename.
	AtomicWrites bool
	// LogEvents logs every transaction through slog.
	LogEvents bool
}

func (o Options) schema() (schema.Identifier, schema.Columns, error) {
	name := o.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(o.Path), filepath.Ext(o.Path))
	}
	id, err := schema.NewTableName(name)
	if err != nil {
		return schema.Identifier{}, nil, err
	}

	cols := make([]schema.Column, 0, len(o.Columns))
	for _, def := range o.Columns {
		colName, err := schema.NewIdentifier(def.Name)
		if err != nil {
			return schema.Identifier{}, nil, &errors.ConfigurationError{Table: name, Reason: err.Error()}
		}
		cols = append(cols, schema.Column{
			Name:       colName,
			Type:       def.Type,
			PrimaryKey: def.Name == o.PrimaryKey,
		})
	}

	columns, err := schema.NewColumns(cols...)
	if err != nil {
		return schema.Identifier{}, nil, err
	}
	return id, columns, nil
}

// Table is an opened table. It is safe for concurrent use.
type Table struct {
	t *table.Table
}

// Open opens or creates the table file at opts.Path.
func Open(ctx context.Context, opts Options) (*Table, error) {
	id, cols, err := opts.schema()
	if err != nil {
		return nil, err
	}

	var fileOpts []storage.FileOption
	if opts.AtomicWrites {
		fileOpts = append(fileOpts, storage.WithAtomicWrites())
	}
	h, err := storage.OpenFile(opts.Path, fileOpts...)
	if err != nil {
		return nil, &errors.IOError{Op: "open", Err: err}
	}

	var engineOpts []engine.Option
	if opts.LogEvents {
		engineOpts = append(engineOpts, engine.WithObserver(engine.NewLoggingObserver()))
	}

	t, err := table.Open(ctx, id, cols, h, engineOpts...)
	if err != nil {
		return nil, err
	}
	return &Table{t: t}, nil
}

func (t *Table) Name() string { return t.t.Name() }

// Close stops the table's writer. Reads still see the last committed records.
func (t *Table) Close() error { return t.t.Close() }

func (t *Table) Insert(ctx context.Context, rec Record) error {
	return t.t.Insert(ctx, rec)
}

func (t *Table) InsertAll(ctx context.Context, recs Records) error {
	return t.t.InsertAll(ctx, recs)
}

func (t *Table) DeleteFirstWhere(ctx context.Context, q Query) error {
	if q.err != nil {
		return q.err
	}
	return t.t.DeleteFirstWhere(ctx, q.m)
}

// DeleteAllWhere fails with ErrNotFound when nothing matches q.
func (t *Table) DeleteAllWhere(ctx context.Context, q Query) error {
	if q.err != nil {
		return q.err
	}
	return t.t.DeleteAllWhere(ctx, q.m)
}

func (t *Table) DeleteAll(ctx context.Context) error {
	return t.t.DeleteAll(ctx)
}

func (t *Table) UpdateFirstWhere(ctx context.Context, q Query, rec Record) error {
	if q.err != nil {
		return q.err
	}
	return t.t.UpdateFirstWhere(ctx, q.m, rec)
}

func (t *Table) SelectFirstWhere(q Query) (Record, error) {
	if q.err != nil {
		return nil, q.err
	}
	return t.t.SelectFirstWhere(q.m)
}

func (t *Table) SelectAllWhere(q Query) (Records, error) {
	if q.err != nil {
		return nil, q.err
	}
	return t.t.SelectAllWhere(q.m)
}

func (t *Table) SelectAll() (Records, error) {
	return t.t.SelectAll()
}

func (t *Table) CheckPrimaryKeys() (bool, error) {
	return t.t.CheckPrimaryKeys()
}

// Row builds a record from Go values: integers, strings and bools.
func Row(values ...any) (Record, error) {
	rec := make(Record, len(values))
	for i, v := range values {
		p, err := toProperty(v)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		rec[i] = p
	}
	return rec, nil
}

// MustRow is Row for literals known to be valid. It panics on error.
func MustRow(values ...any) Record {
	rec, err := Row(values...)
	if err != nil {
		panic(err)
	}
	return rec
}

func toProperty(v any) (Property, error) {
	switch v := v.(type) {
	case Property:
		return v, nil
	case string:
		return data.Text(v), nil
	case bool:
		return data.Bool(v), nil
	case int:
		return data.Int(v), nil
	case int8:
		return data.Int(v), nil
	case int16:
		return data.Int(v), nil
	case int32:
		return data.Int(v), nil
	case int64:
		return data.Int(v), nil
	case uint8:
		return data.Int(v), nil
	case uint16:
		return data.Int(v), nil
	case uint32:
		return data.Int(v), nil
	}
	return nil, fmt.Errorf("%w: unsupported value %v (%T)", errors.ErrTypeMismatch, v, v)
}
