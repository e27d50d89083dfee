package registry

import (
	"strings"

	"github.com/heartmarshall/civic-registry/internal/domain"
)

// CreateInput holds the attributes of a new service record.
type CreateInput struct {
	Type    string
	Name    string
	Address string
	Hours   string
	Phone   string
}

// Attributes returns the normalized attributes.
func (i CreateInput) Attributes() domain.Attributes {
	return domain.Attributes{
		Type:    i.Type,
		Name:    i.Name,
		Address: i.Address,
		Hours:   i.Hours,
		Phone:   i.Phone,
	}.Normalize()
}

// Validate checks all fields and collects all errors.
func (i CreateInput) Validate() error {
	return i.Attributes().Validate()
}

// ReplaceInput holds the full set of attributes that overwrite a record.
type ReplaceInput struct {
	ID     string
	Fields CreateInput
}

// Validate checks all fields and collects all errors.
func (i ReplaceInput) Validate() error {
	return i.Fields.Validate()
}

// PatchInput holds a partial update. Nil fields are left untouched.
type PatchInput struct {
	ID      string
	Type    *string
	Name    *string
	Address *string
	Hours   *string
	Phone   *string
}

func (i PatchInput) patch() domain.AttributePatch {
	return domain.AttributePatch{
		Type:    i.Type,
		Name:    i.Name,
		Address: i.Address,
		Hours:   i.Hours,
		Phone:   i.Phone,
	}
}

// ListInput filters a listing. An empty Type lists every record.
type ListInput struct {
	Type string
}

func (i ListInput) typeFilter() string {
	return strings.TrimSpace(i.Type)
}

// Conditional is the outcome of a conditional read. When NotModified is set
// the caller already holds the current version and Record must not be sent.
type Conditional struct {
	Record      domain.ServiceRecord
	ETag        string
	NotModified bool
}
