package query

import (
	"strings"

	"github.com/heartmarshall/civic-registry/internal/domain"
)

// plan is a validated query.
type plan struct {
	selector domain.Selector
	fields   []string
}

func compile(q domain.Query) (plan, error) {
	sel := q.Selector
	if sel.Kind == "" {
		sel.Kind = domain.SelectAll
	}
	if !sel.Kind.IsValid() {
		return plan{}, domain.NewUnknownSelectorError(sel.Kind.String())
	}
	sel.ID = strings.TrimSpace(sel.ID)
	sel.Type = strings.TrimSpace(sel.Type)
	switch {
	case sel.Kind == domain.SelectByID && sel.ID == "":
		return plan{}, &domain.QueryError{Selector: sel.Kind.String(), Message: "id is required"}
	case sel.Kind == domain.SelectByType && sel.Type == "":
		return plan{}, &domain.QueryError{Selector: sel.Kind.String(), Message: "type is required"}
	}

	if len(q.Fields) == 0 {
		return plan{}, &domain.QueryError{Message: "no fields selected"}
	}

	fields := make([]string, 0, len(q.Fields))
	seen := make(map[string]struct{}, len(q.Fields))
	for _, f := range q.Fields {
		if _, ok := domain.LookupField(f); !ok {
			return plan{}, domain.NewUnknownFieldError(f)
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		fields = append(fields, f)
	}

	return plan{selector: sel, fields: fields}, nil
}

func (p plan) matches(rec domain.ServiceRecord) bool {
	switch p.selector.Kind {
	case domain.SelectByID:
		return rec.ID == p.selector.ID
	case domain.SelectByType:
		return string(rec.Type) == p.selector.Type
	default:
		return true
	}
}

func (p plan) run(snap []domain.ServiceRecord) []domain.Projection {
	out := make([]domain.Projection, 0)
	for _, rec := range snap {
		if !p.matches(rec) {
			continue
		}
		out = append(out, p.project(rec))
		if p.selector.Kind == domain.SelectByID {
			break
		}
	}
	return out
}

func (p plan) project(rec domain.ServiceRecord) domain.Projection {
	proj := make(domain.Projection, 0, len(p.fields))
	for _, f := range p.fields {
		v, _ := domain.FieldValue(rec, f)
		proj = append(proj, domain.ProjectedField{Name: f, Value: v})
	}
	return proj
}
