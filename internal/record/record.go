/*
Package record handles imported case data.

A dataset is a set of string-keyed, string-valued rows imported from a CSV
export (e.g. a Salesforce report). Field iteration order is fixed by the
header row at import time so that fuzzy matching downstream is deterministic.
*/
package record

import "fmt"

// Record is one row of imported case data.
//
// Fields are immutable after import. Keys preserves the column order from
// the source file; iterate over Keys rather than Fields when order matters.
type Record struct {
	// Keys holds the field names in source column order.
	Keys []string

	// Fields maps field name to value.
	Fields map[string]string
}

// New creates a Record from ordered keys and values.
// Keys and values must have the same length.
func New(keys, values []string) (Record, error) {
	if len(keys) != len(values) {
		return Record{}, fmt.Errorf("record has %d columns but %d values", len(keys), len(values))
	}

	fields := make(map[string]string, len(keys))
	for i, key := range keys {
		fields[key] = values[i]
	}

	return Record{Keys: keys, Fields: fields}, nil
}

// Get returns the value for a field name, or "" if absent.
func (r Record) Get(key string) string {
	return r.Fields[key]
}

// Has reports whether the record contains a non-empty value for key.
func (r Record) Has(key string) bool {
	return r.Fields[key] != ""
}

// IsZero reports whether the record holds no fields.
func (r Record) IsZero() bool {
	return len(r.Keys) == 0
}

// Dataset is an imported collection of records sharing one header.
type Dataset struct {
	// Columns holds the header field names in source order.
	Columns []string

	// Records holds one Record per data row, in file order.
	Records []Record
}

// Count returns the number of records in the dataset.
func (d *Dataset) Count() int {
	return len(d.Records)
}

// Record returns the record at index, or an error if out of range.
func (d *Dataset) Record(index int) (Record, error) {
	if index < 0 || index >= len(d.Records) {
		return Record{}, fmt.Errorf("record index %d out of range (dataset has %d records)", index, len(d.Records))
	}
	return d.Records[index], nil
}
