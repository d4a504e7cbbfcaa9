package transaction

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// txIDCounter is an atomic counter for generating ordered numeric transaction IDs
var txIDCounter uint64

// Op names the table operation a transaction carries out.
type Op string

const (
	OpInit           Op = "INIT"
	OpInsert         Op = "INSERT"
	OpInsertAll      Op = "INSERT_ALL"
	OpDeleteFirst    Op = "DELETE_FIRST"
	OpDeleteAllWhere Op = "DELETE_ALL_WHERE"
	OpDeleteAll      Op = "DELETE_ALL"
	OpUpdateFirst    Op = "UPDATE_FIRST"
)

// Transaction is the tracing context of one read-modify-write-persist cycle.
type Transaction struct {
	ID        string    // Unique transaction identifier (UUID)
	TxID      uint64    // Monotonic numeric ID, reflects submission order
	Table     string    // Table the transaction runs against
	Op        Op        // Operation being applied
	Active    bool      // Whether transaction is still running
	StartTime time.Time // When the transaction was submitted
	EndTime   time.Time // When it committed or rolled back
}

// NewTransaction creates a new transaction with a unique ID
func NewTransaction(table string, op Op) *Transaction {
	return &Transaction{
		ID:        uuid.New().String(),
		TxID:      atomic.AddUint64(&txIDCounter, 1),
		Table:     table,
		Op:        op,
		Active:    true,
		StartTime: time.Now(),
	}
}

// Close marks the transaction as inactive
func (tx *Transaction) Close() {
	tx.Active = false
	tx.EndTime = time.Now()
}

// Duration reports how long the transaction took, or has taken so far.
func (tx *Transaction) Duration() time.Duration {
	if tx.Active || tx.EndTime.IsZero() {
		return time.Since(tx.StartTime)
	}
	return tx.EndTime.Sub(tx.StartTime)
}
