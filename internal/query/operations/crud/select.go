package crud

import (
	"github.com/leengari/rtdb/internal/domain/data"
	"github.com/leengari/rtdb/internal/domain/schema"
	"github.com/leengari/rtdb/internal/query/predicate"
	"github.com/leengari/rtdb/internal/query/validation"
)

// SelectFirstWhere returns the first record matching m, or ErrNotFound.
func SelectFirstWhere(t *schema.Table, m predicate.Matcher) (data.Record, error) {
	idx, err := predicate.IndexOfFirst(t, m)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, notFound(t, m)
	}
	return t.Records[idx].Copy(), nil
}

// SelectAllWhere returns every record matching m in table order. No match is
// an empty result, not an error.
func SelectAllWhere(t *schema.Table, m predicate.Matcher) (data.Records, error) {
	records, err := predicate.Filter(t, m)
	if err != nil {
		return nil, err
	}
	return records.Copy(), nil
}

// SelectAll returns every record in table order.
func SelectAll(t *schema.Table) (data.Records, error) {
	return t.Records.Copy(), nil
}

// CheckPrimaryKeys reports whether all primary key values are pairwise distinct.
func CheckPrimaryKeys(t *schema.Table) (bool, error) {
	return validation.HasUniquePrimaryKeys(t), nil
}
