package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/leengari/rtdb/internal/domain/data"
	"github.com/leengari/rtdb/internal/domain/errors"
	"github.com/leengari/rtdb/internal/domain/schema"
	"github.com/leengari/rtdb/internal/domain/transaction"
	"github.com/leengari/rtdb/internal/storage"
	"github.com/leengari/rtdb/internal/storage/codec"
)

const emptyPeople = "[people]\n[name:STRING:P|age:INTEGER:N]\n"

func peopleColumns(t *testing.T) schema.Columns {
	t.Helper()
	cols, err := schema.NewColumns(
		schema.Column{Name: schema.MustIdentifier("name"), Type: schema.ColumnTypeText, PrimaryKey: true},
		schema.Column{Name: schema.MustIdentifier("age"), Type: schema.ColumnTypeInteger},
	)
	assert.NilError(t, err)
	return cols
}

func newTestEngine(t *testing.T, h storage.Handle, opts ...Option) *Engine {
	t.Helper()
	eng, err := New(context.Background(), schema.MustIdentifier("people"), peopleColumns(t), h, opts...)
	assert.NilError(t, err)
	t.Cleanup(func() { eng.Close() })
	return eng
}

// insertPerson is a minimal transform; primary key checks live in crud.
func insertPerson(name string, age int64) Transform {
	return func(cur *schema.Table) (*schema.Table, error) {
		for _, rec := range cur.Records {
			if rec[0] == data.Text(name) {
				return nil, errors.NewPrimaryKeyViolation(cur.Name.String(), "name", name, -1)
			}
		}
		records := append(cur.Records.Copy(), data.NewRecord(data.Text(name), data.Int(age)))
		return cur.WithRecords(records), nil
	}
}

func rowCount(t *testing.T, eng *Engine) int {
	t.Helper()
	n, err := Provide(eng, func(tbl *schema.Table) (int, error) {
		return len(tbl.Records), nil
	})
	assert.NilError(t, err)
	return n
}

func TestNewInitialisesEmptyStorage(t *testing.T) {
	h := storage.NewMemory(storage.Extension)
	eng := newTestEngine(t, h)

	content, err := h.Read()
	assert.NilError(t, err)
	assert.Equal(t, content, emptyPeople)
	assert.Equal(t, rowCount(t, eng), 0)
	assert.Equal(t, eng.Name(), "people")
}

func TestNewAdoptsPopulatedStorageWithoutRewriting(t *testing.T) {
	h := storage.NewMemoryWith(storage.Extension, emptyPeople+"JOHN?SMITH|21\n")
	eng := newTestEngine(t, h)

	assert.Equal(t, h.Writes(), 0)
	rec, err := Provide(eng, func(tbl *schema.Table) (data.Record, error) {
		return tbl.Records[0], nil
	})
	assert.NilError(t, err)
	assert.Assert(t, rec.Equal(data.NewRecord(data.Text("JOHN SMITH"), data.Int(21))))
}

func TestNewFailures(t *testing.T) {
	tests := []struct {
		name string
		h    storage.Handle
		kind errors.Kind
	}{
		{"wrong extension", storage.NewMemory("txt"), errors.KindConfiguration},
		{"schema drift", storage.NewMemoryWith(storage.Extension, "[people]\n[fullname:STRING:P|age:INTEGER:N]\n"), errors.KindSchemaDrift},
		{"corrupt record", storage.NewMemoryWith(storage.Extension, emptyPeople+"BOB|old\n"), errors.KindFormat},
		{"nil handle", nil, errors.KindConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, err := New(context.Background(), schema.MustIdentifier("people"), peopleColumns(t), tt.h)
			assert.Assert(t, eng == nil)
			assert.Equal(t, errors.KindOf(err), tt.kind, "error: %v", err)
		})
	}
}

func TestNewFailsWhenInitialWriteFails(t *testing.T) {
	h := storage.NewMemory(storage.Extension)
	boom := stderrors.New("disk full")
	h.FailWrites(boom)

	eng, err := New(context.Background(), schema.MustIdentifier("people"), peopleColumns(t), h)
	assert.Assert(t, eng == nil)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, errors.KindOf(err), errors.KindIO)
}

func TestTransactionCommitsAndPersists(t *testing.T) {
	h := storage.NewMemory(storage.Extension)
	eng := newTestEngine(t, h)

	err := eng.Transaction(context.Background(), transaction.OpInsert, insertPerson("JOHN SMITH", 21))
	assert.NilError(t, err)

	content, err := h.Read()
	assert.NilError(t, err)
	assert.Equal(t, content, emptyPeople+"JOHN?SMITH|21\n")
	assert.Equal(t, rowCount(t, eng), 1)
}

func TestTransactionRollsBackOnTransformError(t *testing.T) {
	h := storage.NewMemory(storage.Extension)
	eng := newTestEngine(t, h)
	assert.NilError(t, eng.Transaction(context.Background(), transaction.OpInsert, insertPerson("BOB", 21)))
	writes := h.Writes()
	before := eng.Snapshot()

	err := eng.Transaction(context.Background(), transaction.OpInsert, insertPerson("BOB", 40))
	assert.Equal(t, errors.KindOf(err), errors.KindValidation)

	assert.Equal(t, h.Writes(), writes)
	assert.Assert(t, eng.Snapshot() == before)
}

func TestTransactionDoesNotCommitWhenPersistFails(t *testing.T) {
	h := storage.NewMemory(storage.Extension)
	eng := newTestEngine(t, h)
	assert.NilError(t, eng.Transaction(context.Background(), transaction.OpInsert, insertPerson("BOB", 21)))
	committed, err := h.Read()
	assert.NilError(t, err)

	boom := stderrors.New("disk full")
	h.FailAppends(boom)

	err = eng.Transaction(context.Background(), transaction.OpInsert, insertPerson("ALICE", 30))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, errors.KindOf(err), errors.KindIO)
	assert.Equal(t, rowCount(t, eng), 1)

	// the title was already rewritten; the committed content is put back
	content, err := h.Read()
	assert.NilError(t, err)
	assert.Equal(t, content, committed)

	h.FailAppends(nil)
	assert.NilError(t, eng.Transaction(context.Background(), transaction.OpInsert, insertPerson("ALICE", 30)))
	assert.Equal(t, rowCount(t, eng), 2)
}

func TestTransactionRejectsUnencodableSnapshot(t *testing.T) {
	h := storage.NewMemory(storage.Extension)
	eng := newTestEngine(t, h)
	writes := h.Writes()

	err := eng.Transaction(context.Background(), transaction.OpInsert, insertPerson("BOB", -3))
	assert.Equal(t, errors.KindOf(err), errors.KindFormat)
	assert.Equal(t, h.Writes(), writes)
	assert.Equal(t, rowCount(t, eng), 0)
}

func TestTransactionRecoversFromPanic(t *testing.T) {
	eng := newTestEngine(t, storage.NewMemory(storage.Extension))

	err := eng.Transaction(context.Background(), transaction.OpInsert, func(*schema.Table) (*schema.Table, error) {
		panic("boom")
	})
	assert.ErrorContains(t, err, "panicked")

	err = eng.Transaction(context.Background(), transaction.OpInsert, func(*schema.Table) (*schema.Table, error) {
		return nil, nil
	})
	assert.ErrorContains(t, err, "produced no table")

	assert.NilError(t, eng.Transaction(context.Background(), transaction.OpInsert, insertPerson("BOB", 1)))
}

func TestConcurrentTransactionsAreSerialised(t *testing.T) {
	h := storage.NewMemory(storage.Extension)
	eng := newTestEngine(t, h)

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- eng.Transaction(context.Background(), transaction.OpInsert, insertPerson(fmt.Sprintf("P%d", i), int64(i)))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NilError(t, err)
	}

	assert.Equal(t, rowCount(t, eng), n)

	content, err := h.Read()
	assert.NilError(t, err)
	decoded, err := codec.Decode(content)
	assert.NilError(t, err)
	assert.Assert(t, decoded.Equal(eng.Snapshot()))
}

func TestProvideDoesNotWaitForRunningTransaction(t *testing.T) {
	eng := newTestEngine(t, storage.NewMemory(storage.Extension))

	started := make(chan struct{})
	release := make(chan struct{})
	finished := make(chan error, 1)
	go func() {
		finished <- eng.Transaction(context.Background(), transaction.OpInsert, func(cur *schema.Table) (*schema.Table, error) {
			close(started)
			<-release
			return insertPerson("BOB", 21)(cur)
		})
	}()

	<-started
	assert.Equal(t, rowCount(t, eng), 0)

	// queued behind the running transaction, gives up while waiting
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := eng.Transaction(ctx, transaction.OpInsert, insertPerson("ALICE", 3))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	assert.NilError(t, <-finished)
	assert.Equal(t, rowCount(t, eng), 1)
}

func TestProvidePropagatesReadError(t *testing.T) {
	eng := newTestEngine(t, storage.NewMemory(storage.Extension))
	boom := stderrors.New("read failed")

	_, err := Provide(eng, func(*schema.Table) (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestClose(t *testing.T) {
	eng := newTestEngine(t, storage.NewMemory(storage.Extension))
	assert.NilError(t, eng.Transaction(context.Background(), transaction.OpInsert, insertPerson("BOB", 21)))

	assert.NilError(t, eng.Close())
	assert.NilError(t, eng.Close())

	err := eng.Transaction(context.Background(), transaction.OpInsert, insertPerson("ALICE", 3))
	assert.ErrorIs(t, err, errors.ErrClosed)

	// the last committed snapshot stays readable
	assert.Equal(t, rowCount(t, eng), 1)
}

func TestNewRejectsTableNameThatCannotBeStored(t *testing.T) {
	h := storage.NewMemory(storage.Extension)

	eng, err := New(context.Background(), schema.MustIdentifier("people2"), peopleColumns(t), h)
	assert.Assert(t, eng == nil)
	assert.Equal(t, errors.KindOf(err), errors.KindConfiguration, "error: %v", err)
	assert.Equal(t, h.Writes(), 0)
}
