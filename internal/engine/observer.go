package engine

import "time"

// EventType represents different lifecycle phases of a table engine
type EventType string

const (
	EventOpen       EventType = "open"
	EventTxBegin    EventType = "tx_begin"
	EventTxCommit   EventType = "tx_commit"
	EventTxRollback EventType = "tx_rollback"
	EventClose      EventType = "close"
)

// Event represents a lifecycle event of a table engine
type Event struct {
	Type      EventType // Type of event
	Table     string    // Table the engine serves
	TxID      string    // Transaction ID for tracing, empty for open/close
	Op        string    // Operation of the transaction, empty for open/close
	Timestamp time.Time // When the event occurred
	Data      any       // Phase-specific data (row count, error, duration)
}

// Observer interface for event subscribers
// Transaction events are delivered on the engine's worker goroutine, open and
// close events on the goroutine calling New or Close. Observers must not block.
type Observer interface {
	OnEvent(event Event)
}
