package engine

import (
	"context"
	"log/slog"
)

// LoggingObserver is a simple observer that logs all events using structured logging
type LoggingObserver struct {
	logger *slog.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver() *LoggingObserver {
	return &LoggingObserver{
		logger: slog.Default(),
	}
}

// OnEvent implements the Observer interface
// Rollbacks are logged at warn level, everything else at debug.
func (lo *LoggingObserver) OnEvent(event Event) {
	level := slog.LevelDebug
	if event.Type == EventTxRollback {
		level = slog.LevelWarn
	}
	lo.logger.Log(context.Background(), level, "table_lifecycle",
		"event", event.Type,
		"table", event.Table,
		"tx_id", event.TxID,
		"op", event.Op,
		"timestamp", event.Timestamp,
		"data", event.Data,
	)
}
