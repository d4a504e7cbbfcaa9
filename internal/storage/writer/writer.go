package writer

import (
	"fmt"
	"log/slog"

	"github.com/leengari/rtdb/internal/domain/errors"
	"github.com/leengari/rtdb/internal/domain/schema"
	"github.com/leengari/rtdb/internal/storage"
	"github.com/leengari/rtdb/internal/storage/codec"
)

// SaveTable rewrites the whole content behind h with t: the title replaces the
// old content, then the column header and the records are appended.
// Nothing is written when t cannot be encoded.
func SaveTable(h storage.Handle, t *schema.Table) error {
	if t == nil {
		return fmt.Errorf("cannot save nil table")
	}

	header := codec.EncodeHeader(t.Columns)
	body, err := codec.EncodeRecords(t.Records)
	if err != nil {
		return fmt.Errorf("failed to encode records for %s: %w", t.Name, err)
	}

	if err := h.Write(codec.EncodeTitle(t.Name)); err != nil {
		return &errors.IOError{Op: "write", Err: err}
	}
	if err := h.Append(header); err != nil {
		return &errors.IOError{Op: "append", Err: err}
	}
	if body != "" {
		if err := h.Append(body); err != nil {
			return &errors.IOError{Op: "append", Err: err}
		}
	}

	slog.Debug("Table saved",
		slog.String("table", t.Name.String()),
		slog.Int("row_count", len(t.Records)),
	)

	return nil
}

// RestoreTable puts the committed snapshot back after a failed save.
// It is best effort: the returned error only reports that the restore failed too.
func RestoreTable(h storage.Handle, committed *schema.Table) error {
	content, err := codec.Encode(committed)
	if err != nil {
		return fmt.Errorf("failed to encode committed table %s: %w", committed.Name, err)
	}
	if err := h.Write(content); err != nil {
		slog.Error("failed to restore table content after failed save",
			slog.String("table", committed.Name.String()),
			slog.Any("error", err),
		)
		return &errors.IOError{Op: "write", Err: err}
	}
	return nil
}
