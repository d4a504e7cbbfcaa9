package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leengari/rtdb/internal/logging"
	"github.com/leengari/rtdb/pkg/rtdb"
)

func main() {
	logger, closeFn := logging.SetupLogger(logging.Options{Level: slog.LevelDebug})
	defer closeFn()

	logger.Info("Starting application...")
	ctx := context.Background()

	if err := os.MkdirAll("data", 0o755); err != nil {
		logger.Error("failed to create data directory", "error", err)
		closeFn()
		os.Exit(1)
	}

	// 1. Open (or create) the students table
	students, err := rtdb.Open(ctx, rtdb.Options{
		Path:       filepath.Join("data", "students.rtdb"),
		PrimaryKey: "name",
		Columns: []rtdb.ColumnDef{
			rtdb.TextColumn("name"),
			rtdb.IntColumn("age"),
			rtdb.BoolColumn("is_student"),
		},
		LogEvents: true,
	})
	if err != nil {
		logger.Error("failed to open table", "error", err)
		closeFn()
		os.Exit(1)
	}
	defer students.Close()

	// 2. Start from an empty table so the demo is repeatable
	if err := students.DeleteAll(ctx); err != nil {
		logger.Error("failed to clear table", "error", err)
		closeFn()
		os.Exit(1)
	}

	// 3. Insert a batch; either every record lands or none does
	newStudents := rtdb.Records{
		rtdb.MustRow("Alex", 33, false),
		rtdb.MustRow("Bob", 12, true),
		rtdb.MustRow("Alice", 13, false),
		rtdb.MustRow("Ivan", 23, false),
	}
	if err := students.InsertAll(ctx, newStudents); err != nil {
		logger.Error("failed to insert students", "error", err)
		closeFn()
		os.Exit(1)
	}

	// 4. A duplicate primary key is rejected and leaves the table unchanged
	if err := students.Insert(ctx, rtdb.MustRow("Bob", 40, false)); err != nil {
		logger.Info("duplicate rejected", "kind", rtdb.KindOf(err).String(), "error", err)
	}

	// 5. Select All
	all, err := students.SelectAll()
	if err != nil {
		logger.Error("select failed", "error", err)
		closeFn()
		os.Exit(1)
	}
	logger.Info("all records", "count", len(all), "records", all)

	// 6. Select with a composed query
	teens := rtdb.And(
		rtdb.And(rtdb.LessThan("age", 20), rtdb.MoreThan("age", 10)),
		rtdb.Contains("name", "Al"),
	)
	found, err := students.SelectAllWhere(rtdb.Or(teens, rtdb.Eq("is_student", true)))
	if err != nil {
		logger.Error("select failed", "error", err)
		closeFn()
		os.Exit(1)
	}
	logger.Info("young Al* or students", "records", found)

	// 7. Update through a parsed where expression
	if err := students.UpdateFirstWhere(ctx, rtdb.Where(`name = "Ivan"`), rtdb.MustRow("Ivan", 24, true)); err != nil {
		logger.Warn("update failed", "error", err)
	}

	// 8. Delete everyone older than 30
	if err := students.DeleteAllWhere(ctx, rtdb.MoreThan("age", 30)); err != nil {
		logger.Warn("delete failed", "error", err)
	}

	ok, err := students.CheckPrimaryKeys()
	logger.Info("Application ready", "unique_keys", ok, "error", err)
}
