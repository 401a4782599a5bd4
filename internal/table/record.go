// Package table flattens HTML report tables into named sections of records.
//
// A section is identified by the text of the heading that precedes its
// tables. The first table under a heading fixes the section's field order;
// every later table under the same heading, in the same or a later document,
// contributes only rows whose cell count matches that header.
package table

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
)

// Record is one table row: values keyed by header label, in header order.
type Record struct {
	fields []string
	values map[string]string
}

// NewRecord zips fields with values by position. Extra values are ignored
// and missing ones are empty. A repeated label keeps its first position and
// its last value.
func NewRecord(fields, values []string) Record {
	r := Record{
		fields: make([]string, 0, len(fields)),
		values: make(map[string]string, len(fields)),
	}
	for i, f := range fields {
		if _, seen := r.values[f]; !seen {
			r.fields = append(r.fields, f)
		}
		v := ""
		if i < len(values) {
			v = values[i]
		}
		r.values[f] = v
	}
	return r
}

// Get returns the value stored under field.
func (r Record) Get(field string) (string, bool) {
	v, ok := r.values[field]
	return v, ok
}

// Fields returns the header labels in order.
func (r Record) Fields() []string {
	return slices.Clone(r.fields)
}

// Values returns the values in header order.
func (r Record) Values() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		out[i] = r.values[f]
	}
	return out
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.fields)
}

// Map returns a copy of the record as a plain map.
func (r Record) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Key is the exact-duplicate key: the values joined by tabs in header order.
func (r Record) Key() string {
	return strings.Join(r.Values(), "\t")
}

// MarshalJSON writes the record as an object with keys in header order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[f])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Section is the ordered records collected under one heading.
type Section struct {
	Name    string   `json:"name"`
	Header  []string `json:"header"`
	Records []Record `json:"records"`
}

// NoSection names tables that have no preceding heading.
const NoSection = ""

// SectionName turns heading text into a section name by replacing each run
// of whitespace with an underscore.
func SectionName(heading string) string {
	return strings.Join(strings.Fields(heading), "_")
}
