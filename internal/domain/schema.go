package domain

import "strings"

// Public field names of a service record. These are the names used in JSON
// bodies, GraphQL selections and structured queries.
const (
	FieldID        = "id"
	FieldType      = "type"
	FieldName      = "name"
	FieldAddress   = "address"
	FieldHours     = "hours"
	FieldPhone     = "phone"
	FieldUpdatedAt = "updatedAt"
)

// FieldRule describes one public attribute of a service record.
type FieldRule struct {
	Name     string
	Required bool // must be present and non-blank on create and replace
	Writable bool // may be supplied by clients
}

// FieldRules is the record schema. Order matches the JSON representation.
var FieldRules = []FieldRule{
	{Name: FieldID},
	{Name: FieldType, Required: true, Writable: true},
	{Name: FieldName, Required: true, Writable: true},
	{Name: FieldAddress, Writable: true},
	{Name: FieldHours, Writable: true},
	{Name: FieldPhone, Writable: true},
	{Name: FieldUpdatedAt},
}

func (r FieldRule) check(value string) []FieldError {
	if r.Required && strings.TrimSpace(value) == "" {
		return []FieldError{{Field: r.Name, Message: "required"}}
	}
	return nil
}

// LookupField returns the rule for a public field name.
func LookupField(name string) (FieldRule, bool) {
	for _, r := range FieldRules {
		if r.Name == name {
			return r, true
		}
	}
	return FieldRule{}, false
}

// FieldValue returns the public value of field on rec. Timestamps are returned
// as time.Time; everything else is a string.
func FieldValue(rec ServiceRecord, field string) (any, bool) {
	switch field {
	case FieldID:
		return rec.ID, true
	case FieldType:
		return string(rec.Type), true
	case FieldName:
		return rec.Name, true
	case FieldAddress:
		return rec.Address, true
	case FieldHours:
		return rec.Hours, true
	case FieldPhone:
		return rec.Phone, true
	case FieldUpdatedAt:
		return rec.UpdatedAt, true
	}
	return nil, false
}
