package domain

import (
	"strings"
	"time"
)

// ServiceType is the category of a municipal service. The registry treats it
// as an opaque slug; the constants below are the categories known today.
type ServiceType string

const (
	ServiceTypeLibrary ServiceType = "library"
	ServiceTypePark    ServiceType = "park"
	ServiceTypeClinic  ServiceType = "clinic"
)

func (t ServiceType) String() string { return string(t) }

// ServiceRecord is a single municipal service entry.
//
// Revision is private to the store: it is bumped on every mutation and is the
// source of the record's entity tag, but it is never serialized to clients.
type ServiceRecord struct {
	ID        string      `json:"id"`
	Type      ServiceType `json:"type"`
	Name      string      `json:"name"`
	Address   string      `json:"address"`
	Hours     string      `json:"hours"`
	Phone     string      `json:"phone"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Revision  uint64      `json:"-"`
}

// Attributes holds the client-writable attributes of a record.
type Attributes struct {
	Type    string
	Name    string
	Address string
	Hours   string
	Phone   string
}

// Normalize trims surrounding whitespace from every attribute.
func (a Attributes) Normalize() Attributes {
	return Attributes{
		Type:    strings.TrimSpace(a.Type),
		Name:    strings.TrimSpace(a.Name),
		Address: strings.TrimSpace(a.Address),
		Hours:   strings.TrimSpace(a.Hours),
		Phone:   strings.TrimSpace(a.Phone),
	}
}

// Validate checks the attributes against FieldRules and collects all errors.
func (a Attributes) Validate() error {
	var errs []FieldError
	for _, rule := range FieldRules {
		if !rule.Writable {
			continue
		}
		errs = append(errs, rule.check(a.value(rule.Name))...)
	}
	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

func (a Attributes) value(field string) string {
	switch field {
	case FieldType:
		return a.Type
	case FieldName:
		return a.Name
	case FieldAddress:
		return a.Address
	case FieldHours:
		return a.Hours
	case FieldPhone:
		return a.Phone
	}
	return ""
}

// Attributes returns the writable attributes of the record.
func (r ServiceRecord) Attributes() Attributes {
	return Attributes{
		Type:    string(r.Type),
		Name:    r.Name,
		Address: r.Address,
		Hours:   r.Hours,
		Phone:   r.Phone,
	}
}

// WithAttributes returns a copy of r with every writable attribute replaced by a.
func (r ServiceRecord) WithAttributes(a Attributes) ServiceRecord {
	r.Type = ServiceType(a.Type)
	r.Name = a.Name
	r.Address = a.Address
	r.Hours = a.Hours
	r.Phone = a.Phone
	return r
}

// AttributePatch holds a partial update. Nil fields are left untouched.
type AttributePatch struct {
	Type    *string
	Name    *string
	Address *string
	Hours   *string
	Phone   *string
}

// Apply overlays the supplied fields of p onto a.
func (p AttributePatch) Apply(a Attributes) Attributes {
	if p.Type != nil {
		a.Type = *p.Type
	}
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Address != nil {
		a.Address = *p.Address
	}
	if p.Hours != nil {
		a.Hours = *p.Hours
	}
	if p.Phone != nil {
		a.Phone = *p.Phone
	}
	return a
}
