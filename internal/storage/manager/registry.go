// Package manager keeps the tables of one directory, one .rtdb file per table.
package manager

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/leengari/rtdb/internal/domain/schema"
	"github.com/leengari/rtdb/internal/engine"
	"github.com/leengari/rtdb/internal/storage"
	"github.com/leengari/rtdb/internal/table"
)

// Registry manages opened tables in a thread-safe way
type Registry struct {
	mu        sync.Mutex
	loaded    map[string]*table.Table
	basePath  string
	fileOpts  []storage.FileOption
	tableOpts []engine.Option
}

// Option configures a Registry.
type Option func(*Registry)

// WithAtomicWrites makes every table file rewrite go through a rename.
func WithAtomicWrites() Option {
	return func(r *Registry) {
		r.fileOpts = append(r.fileOpts, storage.WithAtomicWrites())
	}
}

// WithObserver attaches o to every table the registry opens.
func WithObserver(o engine.Observer) Option {
	return func(r *Registry) {
		r.tableOpts = append(r.tableOpts, engine.WithObserver(o))
	}
}

// NewRegistry creates a registry over the table files in basePath
func NewRegistry(basePath string, opts ...Option) *Registry {
	r := &Registry{
		loaded:   make(map[string]*table.Table),
		basePath: basePath,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BasePath returns the directory the registry manages.
func (r *Registry) BasePath() string {
	return r.basePath
}

// List returns the names of all table files, opened or not.
func (r *Registry) List() ([]string, error) {
	return ListTables(r.basePath)
}

// Open returns the table called name, opening it on first use with the
// columns its file declares.
func (r *Registry) Open(ctx context.Context, name string) (*table.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check cache
	if t, ok := r.loaded[name]; ok {
		return t, nil
	}

	id, err := schema.NewIdentifier(name)
	if err != nil {
		return nil, err
	}

	path := TablePath(r.basePath, name)
	_, cols, err := ReadSchema(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table '%s': %w", name, err)
	}

	t, err := r.open(ctx, id, cols, path)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// OpenAll opens every table file in the directory. It stops at the first
// table that fails to open.
func (r *Registry) OpenAll(ctx context.Context) ([]*table.Table, error) {
	names, err := r.List()
	if err != nil {
		return nil, fmt.Errorf("failed to read table directory: %w", err)
	}

	tables := make([]*table.Table, 0, len(names))
	for _, name := range names {
		t, err := r.Open(ctx, name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	slog.Info("Tables loaded successfully",
		slog.String("path", r.basePath),
		slog.Int("table_count", len(tables)),
	)
	return tables, nil
}

// Create creates a new table file with the given columns and opens it.
func (r *Registry) Create(ctx context.Context, name string, cols schema.Columns) (*table.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := schema.NewTableName(name)
	if err != nil {
		return nil, err
	}

	path := TablePath(r.basePath, name)
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("table '%s' already exists", name)
	}

	return r.open(ctx, id, cols, path)
}

// open must be called with r.mu held.
func (r *Registry) open(ctx context.Context, id schema.Identifier, cols schema.Columns, path string) (*table.Table, error) {
	h, err := storage.OpenFile(path, r.fileOpts...)
	if err != nil {
		return nil, err
	}

	t, err := table.Open(ctx, id, cols, h, r.tableOpts...)
	if err != nil {
		return nil, err
	}

	r.loaded[id.String()] = t
	slog.Debug("Table registered", slog.String("table", id.String()), slog.String("path", path))
	return t, nil
}

// Drop closes and deletes a table
func (r *Registry) Drop(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.loaded[name]; ok {
		t.Close()
		delete(r.loaded, name)
	}

	return DropTable(r.basePath, name)
}

// CloseAll stops every opened table (call on shutdown)
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, t := range r.loaded {
		if err := t.Close(); err != nil {
			slog.Error("failed to close table", "name", name, "error", err)
		}
		delete(r.loaded, name)
	}
}
