package crud

import (
	"github.com/leengari/rtdb/internal/domain/data"
	"github.com/leengari/rtdb/internal/domain/schema"
	"github.com/leengari/rtdb/internal/query/predicate"
	"github.com/leengari/rtdb/internal/query/validation"
)

// UpdateFirstWhere replaces the first record matching m with rec.
// rec is validated like an insert. Its primary key may equal the key of the
// record it replaces, but not the key of any other record.
func UpdateFirstWhere(t *schema.Table, m predicate.Matcher, rec data.Record) (*schema.Table, error) {
	idx, err := predicate.IndexOfFirst(t, m)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, notFound(t, m)
	}

	if err := validation.ValidateRecord(t, rec, idx); err != nil {
		return nil, err
	}
	if err := validation.CheckPrimaryKeyUniqueness(t, t.Records, rec, idx); err != nil {
		return nil, err
	}

	records := make(data.Records, len(t.Records))
	copy(records, t.Records)
	records[idx] = rec.Copy()
	return t.WithRecords(records), nil
}
