package data

import (
	"strconv"
)

// Kind names the variant of a Property.
type Kind int

const (
	KindInteger Kind = iota + 1
	KindText
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "INTEGER"
	case KindText:
		return "STRING"
	case KindBoolean:
		return "BOOLEAN"
	default:
		return "UNKNOWN"
	}
}

// Property is a single typed cell value.
// The set of implementations is closed: Int, Text and Bool.
type Property interface {
	Kind() Kind
	String() string
	isProperty()
}

// Int is an integer property.
type Int int64

// Text is a text property. The value is the user-facing form, with real spaces.
type Text string

// Bool is a boolean property.
type Bool bool

func (Int) Kind() Kind  { return KindInteger }
func (Text) Kind() Kind { return KindText }
func (Bool) Kind() Kind { return KindBoolean }

func (p Int) String() string  { return strconv.FormatInt(int64(p), 10) }
func (p Text) String() string { return string(p) }
func (p Bool) String() string { return strconv.FormatBool(bool(p)) }

func (Int) isProperty()  {}
func (Text) isProperty() {}
func (Bool) isProperty() {}

// Record is an ordered list of properties, positionally mapped to a table's columns.
type Record []Property

// NewRecord builds a record from the given properties.
func NewRecord(props ...Property) Record {
	return Record(props)
}

// Equal reports whether both records hold the same properties in the same order.
func (r Record) Equal(other Record) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if r[i] != other[i] {
			return false
		}
	}
	return true
}

// Copy returns a record backed by a new slice so callers cannot alias table state.
func (r Record) Copy() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	copy(out, r)
	return out
}

// Records is an ordered list of records. Order is insertion order.
type Records []Record

// Equal reports whether both lists hold equal records in the same order.
func (rs Records) Equal(other Records) bool {
	if len(rs) != len(other) {
		return false
	}
	for i := range rs {
		if !rs[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// Copy returns a deep copy of the list.
func (rs Records) Copy() Records {
	out := make(Records, len(rs))
	for i, r := range rs {
		out[i] = r.Copy()
	}
	return out
}
