package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

type failingHandler struct {
	slog.Handler
}

func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("sink down")
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}}
	logger := slog.New(h).With("table", "people")

	logger.Debug("only b")
	logger.Info("both")

	assert.Assert(t, !strings.Contains(a.String(), "only b"))
	assert.Assert(t, strings.Contains(b.String(), "only b"))
	assert.Assert(t, strings.Contains(a.String(), "msg=both table=people"))
	assert.Assert(t, strings.Contains(b.String(), "msg=both table=people"))
}

func TestMultiHandlerEnabled(t *testing.T) {
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}),
		slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}}

	assert.Assert(t, h.Enabled(context.Background(), slog.LevelWarn))
	assert.Assert(t, !h.Enabled(context.Background(), slog.LevelInfo))
}

func TestMultiHandlerReportsSinkError(t *testing.T) {
	var buf bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&buf, nil),
		failingHandler{slog.NewTextHandler(&buf, nil)},
	}}

	err := h.Handle(context.Background(), slog.NewRecord(time.Time{}, slog.LevelInfo, "x", 0))
	assert.ErrorContains(t, err, "sink down")
}

func TestSetupLoggerConsoleOnly(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger, cleanup := SetupLogger(Options{Level: slog.LevelWarn, Output: &buf})
	defer cleanup()

	logger.Info("hidden")
	slog.Warn("shown", "table", "people")

	assert.Assert(t, !strings.Contains(buf.String(), "hidden"))
	assert.Assert(t, strings.Contains(buf.String(), "shown"))
	assert.Assert(t, strings.Contains(buf.String(), "table=people"))
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("DEBUG")
	assert.NilError(t, err)
	assert.Equal(t, level, slog.LevelDebug)

	level, err = ParseLevel("warn")
	assert.NilError(t, err)
	assert.Equal(t, level, slog.LevelWarn)

	_, err = ParseLevel("loud")
	assert.ErrorContains(t, err, "invalid log level")
}
