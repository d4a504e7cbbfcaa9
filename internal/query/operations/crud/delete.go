package crud

import (
	"fmt"

	"github.com/leengari/rtdb/internal/domain/data"
	"github.com/leengari/rtdb/internal/domain/errors"
	"github.com/leengari/rtdb/internal/domain/schema"
	"github.com/leengari/rtdb/internal/query/predicate"
)

// DeleteFirstWhere removes the first record, in table order, matching m.
func DeleteFirstWhere(t *schema.Table, m predicate.Matcher) (*schema.Table, error) {
	idx, err := predicate.IndexOfFirst(t, m)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, notFound(t, m)
	}

	records := make(data.Records, 0, len(t.Records)-1)
	records = append(records, t.Records[:idx]...)
	records = append(records, t.Records[idx+1:]...)
	return t.WithRecords(records), nil
}

// DeleteAllWhere removes every record matching m. Unlike SelectAllWhere it
// fails with ErrNotFound when nothing matches.
func DeleteAllWhere(t *schema.Table, m predicate.Matcher) (*schema.Table, error) {
	idx, err := predicate.IndexOfFirst(t, m)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, notFound(t, m)
	}

	records := make(data.Records, 0, len(t.Records))
	records = append(records, t.Records[:idx]...)
	for _, rec := range t.Records[idx+1:] {
		ok, err := m.Match(rec, t.Columns)
		if err != nil {
			return nil, err
		}
		if !ok {
			records = append(records, rec)
		}
	}
	return t.WithRecords(records), nil
}

// DeleteAll removes every record. It never fails.
func DeleteAll(t *schema.Table) (*schema.Table, error) {
	return t.WithRecords(data.Records{}), nil
}

func notFound(t *schema.Table, m predicate.Matcher) error {
	return fmt.Errorf("%w: %s where %s", errors.ErrNotFound, t.Name, m)
}
