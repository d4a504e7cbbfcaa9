// Package engine owns one table: its committed snapshot, its storage handle and
// the single worker that applies transactions to both.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leengari/rtdb/internal/domain/errors"
	"github.com/leengari/rtdb/internal/domain/schema"
	"github.com/leengari/rtdb/internal/domain/transaction"
	"github.com/leengari/rtdb/internal/storage"
	"github.com/leengari/rtdb/internal/storage/loader"
	"github.com/leengari/rtdb/internal/storage/writer"
)

// Transform builds the next snapshot from the current one. It must not modify
// its argument.
type Transform func(current *schema.Table) (*schema.Table, error)

// Engine is the main entry point for a single table
type Engine struct {
	name    string
	handle  storage.Handle
	current atomic.Pointer[schema.Table]

	requests  chan request
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	mu        sync.RWMutex
	observers []Observer // Observers for lifecycle events
}

type request struct {
	ctx    context.Context
	tx     *transaction.Transaction
	fn     Transform
	result chan error
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithObserver registers an observer before the table is opened, so it also
// sees the open event and the initialising transaction.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, o)
	}
}

// New opens a table on h. Empty content gets a fresh header written by an
// initialising transaction; populated content is adopted as the initial
// snapshot without being rewritten. Any validation failure is returned and no
// engine is created.
func New(ctx context.Context, name schema.Identifier, columns schema.Columns, h storage.Handle, opts ...Option) (*Engine, error) {
	if h == nil {
		return nil, &errors.ConfigurationError{Table: name.String(), Reason: "no storage handle"}
	}
	if name.IsZero() {
		return nil, &errors.ConfigurationError{Reason: "table name is empty"}
	}
	if _, err := schema.NewTableName(name.String()); err != nil {
		return nil, err
	}
	if _, err := schema.NewColumns(columns...); err != nil {
		return nil, fmt.Errorf("invalid columns for %s: %w", name, err)
	}

	e := &Engine{
		name:     name.String(),
		handle:   h,
		requests: make(chan request),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	loaded, status, err := loader.Load(h, e.name, columns)
	if err != nil {
		return nil, fmt.Errorf("failed to open table %s: %w", name, err)
	}

	go e.run()

	switch status {
	case loader.StatusPopulated:
		e.current.Store(loaded)
	default:
		err := e.Transaction(ctx, transaction.OpInit, func(*schema.Table) (*schema.Table, error) {
			return schema.NewTable(name, columns, nil), nil
		})
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("failed to initialise table %s: %w", name, err)
		}
	}

	snap := e.current.Load()
	slog.Info("Table opened",
		slog.String("table", e.name),
		slog.String("status", status.String()),
		slog.Int("row_count", len(snap.Records)),
	)
	e.notify(Event{Type: EventOpen, Data: status.String()})

	return e, nil
}

// Name returns the table name the engine was opened with.
func (e *Engine) Name() string {
	return e.name
}

// Snapshot returns the committed snapshot. It never blocks on the worker.
func (e *Engine) Snapshot() *schema.Table {
	return e.current.Load()
}

// Transaction queues fn behind every transaction submitted before it and
// waits for the outcome. The new snapshot becomes visible only after it has
// been persisted; on any failure the committed snapshot is unchanged.
//
// ctx only bounds the wait for the worker: once fn has started, the
// transaction runs to completion.
func (e *Engine) Transaction(ctx context.Context, op transaction.Op, fn Transform) error {
	tx := transaction.NewTransaction(e.name, op)
	req := request{ctx: ctx, tx: tx, fn: fn, result: make(chan error, 1)}

	select {
	case <-e.done:
		return fmt.Errorf("%s %s: %w", op, e.name, errors.ErrClosed)
	case <-ctx.Done():
		return ctx.Err()
	case e.requests <- req:
	}

	return <-req.result
}

// Provide applies read to the committed snapshot. Reads never wait for a
// running transaction and never see a half-applied one.
func Provide[T any](e *Engine, read func(*schema.Table) (T, error)) (T, error) {
	return read(e.current.Load())
}

// Close stops the worker after the transaction in flight, if any, finishes.
// Later transactions fail with ErrClosed. Close is idempotent.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		close(e.done)
		<-e.stopped
		slog.Debug("Table closed", slog.String("table", e.name))
		e.notify(Event{Type: EventClose})
	})
	return nil
}

func (e *Engine) run() {
	defer close(e.stopped)
	for {
		select {
		case <-e.done:
			return
		case req := <-e.requests:
			req.result <- e.apply(req)
		}
	}
}

// apply runs on the worker goroutine only.
func (e *Engine) apply(req request) (err error) {
	tx := req.tx
	defer tx.Close()

	if err := req.ctx.Err(); err != nil {
		return err
	}

	e.notify(Event{Type: EventTxBegin, TxID: tx.ID, Op: string(tx.Op)})
	defer func() {
		if err != nil {
			e.notify(Event{Type: EventTxRollback, TxID: tx.ID, Op: string(tx.Op), Data: err.Error()})
		}
	}()

	committed := e.current.Load()

	next, err := e.transform(req.fn, committed)
	if err != nil {
		slog.Debug("Transaction rolled back",
			slog.String("tx_id", tx.ID),
			slog.String("table", e.name),
			slog.String("op", string(tx.Op)),
			slog.Any("error", err),
		)
		return err
	}

	if err := writer.SaveTable(e.handle, next); err != nil {
		if committed != nil && errors.KindOf(err) == errors.KindIO {
			if rerr := writer.RestoreTable(e.handle, committed); rerr != nil {
				slog.Error("Storage no longer matches committed table",
					slog.String("table", e.name),
					slog.Any("error", rerr),
				)
			}
		}
		slog.Warn("Failed to persist transaction",
			slog.String("tx_id", tx.ID),
			slog.String("table", e.name),
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to persist %s on %s: %w", tx.Op, e.name, err)
	}

	e.current.Store(next)

	slog.Debug("Transaction committed",
		slog.String("tx_id", tx.ID),
		slog.Uint64("tx_seq", tx.TxID),
		slog.String("table", e.name),
		slog.String("op", string(tx.Op)),
		slog.Int("row_count", len(next.Records)),
		slog.Duration("duration", time.Since(tx.StartTime)),
	)
	e.notify(Event{Type: EventTxCommit, TxID: tx.ID, Op: string(tx.Op), Data: len(next.Records)})

	return nil
}

// transform calls fn and turns a panic into an error so the worker survives.
func (e *Engine) transform(fn Transform, committed *schema.Table) (next *schema.Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			next, err = nil, fmt.Errorf("transaction on %s panicked: %v", e.name, r)
		}
	}()

	next, err = fn(committed)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, fmt.Errorf("transaction on %s produced no table", e.name)
	}
	return next, nil
}

// AddObserver registers an observer to receive lifecycle events
func (e *Engine) AddObserver(observer Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, observer)
}

// RemoveObserver unregisters an observer
func (e *Engine) RemoveObserver(observer Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, o := range e.observers {
		if o == observer {
			e.observers = append(e.observers[:i:i], e.observers[i+1:]...)
			return
		}
	}
}

// notify sends an event to all registered observers
func (e *Engine) notify(event Event) {
	event.Table = e.name
	event.Timestamp = time.Now()

	e.mu.RLock()
	observers := e.observers
	e.mu.RUnlock()

	for _, observer := range observers {
		observer.OnEvent(event)
	}
}
