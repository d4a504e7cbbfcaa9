package manager

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leengari/rtdb/internal/domain/errors"
	"github.com/leengari/rtdb/internal/domain/schema"
	"github.com/leengari/rtdb/internal/storage"
	"github.com/leengari/rtdb/internal/storage/codec"
)

// TablePath returns where the table called name lives under basePath.
func TablePath(basePath, name string) string {
	return filepath.Join(basePath, name+"."+storage.Extension)
}

// ListTables returns the names of the table files in basePath, sorted.
// A missing directory holds no tables.
func ListTables(basePath string) ([]string, error) {
	entries, err := os.ReadDir(basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list tables in %s: %w", basePath, err)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, ok := strings.CutSuffix(entry.Name(), "."+storage.Extension)
		if ok && name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// ReadSchema reads the columns a table file declares in its header.
func ReadSchema(path string) (schema.Identifier, schema.Columns, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return schema.Identifier{}, nil, fmt.Errorf("%w: table file %s", errors.ErrNotFound, path)
		}
		return schema.Identifier{}, nil, &errors.IOError{Op: "read", Err: err}
	}

	if len(codec.NonEmptyLines(string(raw))) == 0 {
		return schema.Identifier{}, nil, &errors.ConfigurationError{
			Reason: fmt.Sprintf("%s is empty, its columns are unknown", path),
		}
	}

	return codec.DecodeHeader(string(raw))
}

// DropTable removes a table file.
func DropTable(basePath, name string) error {
	path := TablePath(basePath, name)

	// Check if exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("%w: table '%s' does not exist", errors.ErrNotFound, name)
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove table file: %w", err)
	}

	return nil
}
