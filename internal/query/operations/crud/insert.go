// Package crud implements table operations as pure functions over a snapshot.
// Mutations return a new snapshot and never modify their input; reads return
// records the caller may keep.
package crud

import (
	"github.com/leengari/rtdb/internal/domain/data"
	"github.com/leengari/rtdb/internal/domain/schema"
	"github.com/leengari/rtdb/internal/query/validation"
)

// Insert appends rec after checking its shape, its input values and the
// uniqueness of its primary key.
func Insert(t *schema.Table, rec data.Record) (*schema.Table, error) {
	if err := validation.ValidateRecord(t, rec, len(t.Records)); err != nil {
		return nil, err
	}
	if err := validation.CheckPrimaryKeyUniqueness(t, t.Records, rec, -1); err != nil {
		return nil, err
	}

	records := make(data.Records, 0, len(t.Records)+1)
	records = append(records, t.Records...)
	records = append(records, rec.Copy())
	return t.WithRecords(records), nil
}

// InsertAll appends every record in call order. All records are checked
// before any is appended; the first violation rejects the whole batch.
// Primary keys must be unique against the table and within the batch.
func InsertAll(t *schema.Table, recs data.Records) (*schema.Table, error) {
	records := make(data.Records, 0, len(t.Records)+len(recs))
	records = append(records, t.Records...)

	for _, rec := range recs {
		if err := validation.ValidateRecord(t, rec, len(records)); err != nil {
			return nil, err
		}
		if err := validation.CheckPrimaryKeyUniqueness(t, records, rec, -1); err != nil {
			return nil, err
		}
		records = append(records, rec.Copy())
	}

	return t.WithRecords(records), nil
}
