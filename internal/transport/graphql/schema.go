// Package graphql serves the query document endpoint. The schema is small and
// fixed, so execution is implemented directly against the query resolver
// rather than generated.
package graphql

import (
	"context"
	_ "embed"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/heartmarshall/civic-registry/internal/domain"
	"github.com/heartmarshall/civic-registry/internal/notify"
)

//go:embed schema.graphql
var schemaSDL string

var parsedSchema = gqlparser.MustLoadSchema(&ast.Source{Name: "schema.graphql", Input: schemaSDL})

const (
	typeQuery        = "Query"
	typeSubscription = "Subscription"
	typeService      = "Service"
	fieldTypename    = "__typename"
)

// introspectionError is built per request because the executor stamps a
// path onto the error it is given.
func introspectionError() error {
	return &gqlerror.Error{
		Message:    "introspection is not supported",
		Extensions: map[string]interface{}{"code": CodeIntrospection},
	}
}

type queryResolver interface {
	ResolveBatch(ctx context.Context, qs []domain.Query) ([][]domain.Projection, error)
	Projector(fields []string) (func(domain.ServiceRecord) domain.Projection, error)
}

type eventSource interface {
	Subscribe() *notify.Subscription
	Unsubscribe(sub *notify.Subscription)
}

// ExecutableSchema implements graphql.ExecutableSchema over the query
// resolver and the change notifier.
type ExecutableSchema struct {
	resolver queryResolver
	events   eventSource
	log      *slog.Logger
}

var _ graphql.ExecutableSchema = (*ExecutableSchema)(nil)

// NewExecutableSchema creates the executable schema.
func NewExecutableSchema(resolver queryResolver, events eventSource, log *slog.Logger) *ExecutableSchema {
	return &ExecutableSchema{resolver: resolver, events: events, log: log.With("component", "graphql")}
}

// Schema returns the parsed schema.
func (e *ExecutableSchema) Schema() *ast.Schema { return parsedSchema }

// Complexity leaves every field at the default cost.
func (e *ExecutableSchema) Complexity(_ context.Context, _, _ string, _ int, _ map[string]any) (int, bool) {
	return 0, false
}

// Exec returns the response handler for the current operation.
func (e *ExecutableSchema) Exec(ctx context.Context) graphql.ResponseHandler {
	opCtx := graphql.GetOperationContext(ctx)

	switch opCtx.Operation.Operation {
	case ast.Query:
		done := false
		return func(ctx context.Context) *graphql.Response {
			if done {
				return nil
			}
			done = true
			return e.execQuery(ctx, opCtx)
		}
	case ast.Subscription:
		return e.execSubscription(ctx, opCtx)
	default:
		return graphql.OneShot(graphql.ErrorResponse(ctx, "unsupported GraphQL operation"))
	}
}

// rootField is a top-level field of a query document translated to a
// structured query.
type rootField struct {
	key      string
	name     string
	query    domain.Query
	children []graphql.CollectedField
}

func (e *ExecutableSchema) execQuery(ctx context.Context, opCtx *graphql.OperationContext) *graphql.Response {
	fields := graphql.CollectFields(opCtx, opCtx.Operation.SelectionSet, []string{typeQuery})

	var roots []rootField
	out := make(domain.Projection, 0, len(fields))
	for _, f := range fields {
		switch f.Name {
		case fieldTypename:
			continue
		case "__schema", "__type":
			graphql.AddError(ctx, introspectionError())
			return &graphql.Response{}
		}

		children := graphql.CollectFields(opCtx, f.Selections, []string{typeService})
		q := domain.Query{Fields: recordFields(children)}
		args := f.ArgumentMap(opCtx.Variables)
		switch f.Name {
		case "services":
			// An empty filter means no filter, as on the REST list.
			if t, _ := args["type"].(string); strings.TrimSpace(t) != "" {
				q.Selector = domain.Selector{Kind: domain.SelectByType, Type: t}
			} else {
				q.Selector = domain.Selector{Kind: domain.SelectAll}
			}
		case "service":
			id, _ := args["id"].(string)
			q.Selector = domain.Selector{Kind: domain.SelectByID, ID: id}
		default:
			graphql.AddError(ctx, domain.NewUnknownSelectorError(f.Name))
			return &graphql.Response{}
		}
		roots = append(roots, rootField{key: f.Alias, name: f.Name, query: q, children: children})
	}

	queries := make([]domain.Query, len(roots))
	for i, r := range roots {
		queries[i] = r.query
	}

	// One snapshot for the whole document.
	results, err := e.resolver.ResolveBatch(ctx, queries)
	if err != nil {
		graphql.AddError(ctx, err)
		return &graphql.Response{}
	}

	ri := 0
	for _, f := range fields {
		if f.Name == fieldTypename {
			out = append(out, domain.ProjectedField{Name: f.Alias, Value: typeQuery})
			continue
		}
		r, projs := roots[ri], results[ri]
		ri++

		if r.name == "service" {
			if len(projs) == 0 {
				out = append(out, domain.ProjectedField{Name: r.key, Value: nil})
			} else {
				out = append(out, domain.ProjectedField{Name: r.key, Value: shape(projs[0], r.children)})
			}
			continue
		}
		list := make([]domain.Projection, len(projs))
		for i, p := range projs {
			list[i] = shape(p, r.children)
		}
		out = append(out, domain.ProjectedField{Name: r.key, Value: list})
	}

	return e.respond(ctx, out)
}

func (e *ExecutableSchema) execSubscription(ctx context.Context, opCtx *graphql.OperationContext) graphql.ResponseHandler {
	fields := graphql.CollectFields(opCtx, opCtx.Operation.SelectionSet, []string{typeSubscription})
	if len(fields) != 1 || fields[0].Name != "serviceCreated" {
		return graphql.OneShot(graphql.ErrorResponse(ctx, "subscriptions must select exactly serviceCreated"))
	}
	root := fields[0]
	children := graphql.CollectFields(opCtx, root.Selections, []string{typeService})

	project, err := e.resolver.Projector(recordFields(children))
	if err != nil {
		return func(ctx context.Context) *graphql.Response {
			graphql.AddError(ctx, err)
			return &graphql.Response{}
		}
	}

	sub := e.events.Subscribe()
	go func() {
		<-ctx.Done()
		e.events.Unsubscribe(sub)
	}()

	return func(ctx context.Context) *graphql.Response {
		select {
		case ev, ok := <-sub.Events():
			if !ok || ev.Service == nil {
				return nil
			}
			out := domain.Projection{{Name: root.Alias, Value: shape(project(*ev.Service), children)}}
			return e.respond(ctx, out)
		case <-ctx.Done():
			return nil
		}
	}
}

func (e *ExecutableSchema) respond(ctx context.Context, data domain.Projection) *graphql.Response {
	raw, err := json.Marshal(data)
	if err != nil {
		graphql.AddError(ctx, err)
		return &graphql.Response{}
	}
	return &graphql.Response{Data: raw}
}

// recordFields lists the record fields a selection needs. A selection of
// only __typename still reads the id so the record itself is resolved.
func recordFields(sel []graphql.CollectedField) []string {
	names := make([]string, 0, len(sel))
	for _, f := range sel {
		if f.Name != fieldTypename {
			names = append(names, f.Name)
		}
	}
	if len(names) == 0 {
		names = append(names, domain.FieldID)
	}
	return names
}

// shape renames projected fields to their response keys and fills
// __typename, following selection order.
func shape(p domain.Projection, sel []graphql.CollectedField) domain.Projection {
	out := make(domain.Projection, 0, len(sel))
	for _, f := range sel {
		if f.Name == fieldTypename {
			out = append(out, domain.ProjectedField{Name: f.Alias, Value: typeService})
			continue
		}
		v, _ := p.Get(f.Name)
		out = append(out, domain.ProjectedField{Name: f.Alias, Value: formatValue(v)})
	}
	return out
}

func formatValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.Format(time.RFC3339Nano)
	}
	return v
}
