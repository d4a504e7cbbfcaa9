// Package table binds the CRUD operations to a table engine.
package table

import (
	"context"

	"github.com/leengari/rtdb/internal/domain/data"
	"github.com/leengari/rtdb/internal/domain/errors"
	"github.com/leengari/rtdb/internal/domain/schema"
	"github.com/leengari/rtdb/internal/domain/transaction"
	"github.com/leengari/rtdb/internal/engine"
	"github.com/leengari/rtdb/internal/query/operations/crud"
	"github.com/leengari/rtdb/internal/query/predicate"
	"github.com/leengari/rtdb/internal/storage"
)

// Table is an opened table. It is safe for concurrent use.
type Table struct {
	engine *engine.Engine
}

// Open validates the content behind h against columns, initialises or adopts
// it, and asserts that the stored primary keys are unique.
func Open(ctx context.Context, name schema.Identifier, columns schema.Columns, h storage.Handle, opts ...engine.Option) (*Table, error) {
	eng, err := engine.New(ctx, name, columns, h, opts...)
	if err != nil {
		return nil, err
	}

	t := &Table{engine: eng}

	unique, err := t.CheckPrimaryKeys()
	if err != nil {
		eng.Close()
		return nil, err
	}
	if !unique {
		eng.Close()
		pk, _ := columns.PrimaryKey()
		return nil, &errors.ConstraintError{
			Table:      name.String(),
			Column:     pk.Name.String(),
			Constraint: "primary_key",
			Reason:     "stored records share a primary key value",
			RowIndex:   -1,
		}
	}

	return t, nil
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.engine.Name()
}

// Columns returns the table's columns.
func (t *Table) Columns() schema.Columns {
	return t.engine.Snapshot().Columns
}

// Snapshot returns the committed snapshot. Callers must not modify it.
func (t *Table) Snapshot() *schema.Table {
	return t.engine.Snapshot()
}

// Close stops the table's worker. Reads keep returning the last committed
// records; writes fail with ErrClosed.
func (t *Table) Close() error {
	return t.engine.Close()
}

func (t *Table) Insert(ctx context.Context, rec data.Record) error {
	return t.engine.Transaction(ctx, transaction.OpInsert, func(cur *schema.Table) (*schema.Table, error) {
		return crud.Insert(cur, rec)
	})
}

func (t *Table) InsertAll(ctx context.Context, recs data.Records) error {
	return t.engine.Transaction(ctx, transaction.OpInsertAll, func(cur *schema.Table) (*schema.Table, error) {
		return crud.InsertAll(cur, recs)
	})
}

func (t *Table) DeleteFirstWhere(ctx context.Context, m predicate.Matcher) error {
	if m == nil {
		return errNilMatcher
	}
	return t.engine.Transaction(ctx, transaction.OpDeleteFirst, func(cur *schema.Table) (*schema.Table, error) {
		return crud.DeleteFirstWhere(cur, m)
	})
}

// DeleteAllWhere removes every record matching m and fails with ErrNotFound
// when there is none.
func (t *Table) DeleteAllWhere(ctx context.Context, m predicate.Matcher) error {
	if m == nil {
		return errNilMatcher
	}
	return t.engine.Transaction(ctx, transaction.OpDeleteAllWhere, func(cur *schema.Table) (*schema.Table, error) {
		return crud.DeleteAllWhere(cur, m)
	})
}

func (t *Table) DeleteAll(ctx context.Context) error {
	return t.engine.Transaction(ctx, transaction.OpDeleteAll, crud.DeleteAll)
}

func (t *Table) UpdateFirstWhere(ctx context.Context, m predicate.Matcher, rec data.Record) error {
	if m == nil {
		return errNilMatcher
	}
	return t.engine.Transaction(ctx, transaction.OpUpdateFirst, func(cur *schema.Table) (*schema.Table, error) {
		return crud.UpdateFirstWhere(cur, m, rec)
	})
}

func (t *Table) SelectFirstWhere(m predicate.Matcher) (data.Record, error) {
	if m == nil {
		return nil, errNilMatcher
	}
	return engine.Provide(t.engine, func(cur *schema.Table) (data.Record, error) {
		return crud.SelectFirstWhere(cur, m)
	})
}

func (t *Table) SelectAllWhere(m predicate.Matcher) (data.Records, error) {
	if m == nil {
		return nil, errNilMatcher
	}
	return engine.Provide(t.engine, func(cur *schema.Table) (data.Records, error) {
		return crud.SelectAllWhere(cur, m)
	})
}

func (t *Table) SelectAll() (data.Records, error) {
	return engine.Provide(t.engine, crud.SelectAll)
}

// CheckPrimaryKeys reports whether all primary key values are pairwise distinct.
func (t *Table) CheckPrimaryKeys() (bool, error) {
	return engine.Provide(t.engine, crud.CheckPrimaryKeys)
}

var errNilMatcher = &errors.ConstraintError{Constraint: "matcher", Reason: "matcher is nil", RowIndex: -1}
