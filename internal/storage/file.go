package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

const filePerm = 0o644

// File is a Handle backed by a file on disk.
type File struct {
	path   string
	atomic bool
}

// FileOption configures a File.
type FileOption func(*File)

// WithAtomicWrites makes Write go through a temp file and a rename, so a crash
// mid-write leaves either the old or the new content. Append is unaffected.
func WithAtomicWrites() FileOption {
	return func(f *File) {
		f.atomic = true
	}
}

// OpenFile returns a Handle for path, creating the parent directory and an
// empty file when they do not exist yet.
func OpenFile(path string, opts ...FileOption) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("storage path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, filePerm)
	if err != nil {
		return nil, fmt.Errorf("failed to open table file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close table file %s: %w", path, err)
	}

	file := &File{path: path}
	for _, opt := range opts {
		opt(file)
	}
	return file, nil
}

// Path returns the file location.
func (f *File) Path() string {
	return f.path
}

func (f *File) Write(text string) error {
	if f.atomic {
		if err := atomic.WriteFile(f.path, strings.NewReader(text)); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.path, err)
		}
		return nil
	}

	if err := os.WriteFile(f.path, []byte(text), filePerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.path, err)
	}
	return nil
}

func (f *File) Append(text string) error {
	fh, err := os.OpenFile(f.path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, filePerm)
	if err != nil {
		return fmt.Errorf("failed to open %s for append: %w", f.path, err)
	}

	if _, err := fh.WriteString(text); err != nil {
		_ = fh.Close()
		return fmt.Errorf("failed to append to %s: %w", f.path, err)
	}

	if err := fh.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", f.path, err)
	}
	return nil
}

func (f *File) Read() (string, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	return string(b), nil
}

func (f *File) Extension() string {
	return strings.TrimPrefix(filepath.Ext(f.path), ".")
}
