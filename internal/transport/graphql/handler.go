package graphql

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/extension"
	"github.com/99designs/gqlgen/graphql/handler/lru"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/gorilla/websocket"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Options tunes the GraphQL server.
type Options struct {
	ComplexityLimit   int // 0 disables the limit
	QueryCacheSize    int
	KeepAliveInterval time.Duration
	CheckOrigin       func(r *http.Request) bool
}

// NewHandler builds the GraphQL HTTP handler serving queries over GET and
// POST and subscriptions over graphql-ws.
func NewHandler(schema graphql.ExecutableSchema, opts Options, log *slog.Logger) *handler.Server {
	if opts.QueryCacheSize <= 0 {
		opts.QueryCacheSize = 1000
	}

	srv := handler.New(schema)

	srv.AddTransport(transport.Websocket{
		KeepAlivePingInterval: opts.KeepAliveInterval,
		Upgrader: websocket.Upgrader{
			CheckOrigin:     opts.CheckOrigin,
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	})
	srv.AddTransport(transport.Options{})
	srv.AddTransport(transport.GET{})
	srv.AddTransport(transport.POST{})

	srv.SetQueryCache(lru.New[*ast.QueryDocument](opts.QueryCacheSize))
	srv.Use(extension.AutomaticPersistedQuery{Cache: lru.New[string](100)})
	if opts.ComplexityLimit > 0 {
		srv.Use(extension.FixedComplexityLimit(opts.ComplexityLimit))
	}

	srv.SetErrorPresenter(NewErrorPresenter(log))
	srv.SetRecoverFunc(func(ctx context.Context, err any) error {
		log.ErrorContext(ctx, "GraphQL panic recovered", slog.Any("panic", err))
		return &gqlerror.Error{
			Message:    "internal error",
			Extensions: map[string]interface{}{"code": CodeInternal},
		}
	})

	return srv
}
