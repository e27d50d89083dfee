package domain

import (
	"bytes"
	"encoding/json"
)

// SelectorKind names which subset of records a query selects.
type SelectorKind string

const (
	SelectAll    SelectorKind = "all"
	SelectByID   SelectorKind = "byId"
	SelectByType SelectorKind = "byType"
)

func (k SelectorKind) String() string { return string(k) }

func (k SelectorKind) IsValid() bool {
	switch k {
	case SelectAll, SelectByID, SelectByType:
		return true
	}
	return false
}

// Selector picks the records a query projects. ID is used by SelectByID and
// Type by SelectByType.
type Selector struct {
	Kind SelectorKind
	ID   string
	Type string
}

// Query is a structured, read-only request for a field projection over a
// subset of records.
type Query struct {
	Selector Selector
	Fields   []string
}

// ProjectedField is a single field of a projected record.
type ProjectedField struct {
	Name  string
	Value any
}

// Projection is a partial record holding only the requested fields, in the
// order they were requested.
type Projection []ProjectedField

// Get returns the value of field, if it was projected.
func (p Projection) Get(field string) (any, bool) {
	for _, f := range p {
		if f.Name == field {
			return f.Value, true
		}
	}
	return nil, false
}

// Names returns the projected field names in order.
func (p Projection) Names() []string {
	names := make([]string, len(p))
	for i, f := range p {
		names[i] = f.Name
	}
	return names
}

// MarshalJSON encodes the projection as an object preserving field order.
func (p Projection) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
