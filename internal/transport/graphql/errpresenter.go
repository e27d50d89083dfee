package graphql

import (
	"context"
	"errors"
	"log/slog"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/heartmarshall/civic-registry/internal/domain"
	"github.com/heartmarshall/civic-registry/pkg/ctxutil"
)

// Error extension codes.
const (
	CodeNotFound   = "NOT_FOUND"
	CodeValidation = "VALIDATION"
	CodeQuery      = "QUERY"
	CodeInternal   = "INTERNAL"

	CodeIntrospection = "INTROSPECTION_DISABLED"
)

// NewErrorPresenter returns a gqlgen error presenter that maps domain errors
// to GraphQL error codes.
func NewErrorPresenter(log *slog.Logger) graphql.ErrorPresenterFunc {
	return func(ctx context.Context, err error) *gqlerror.Error {
		gqlErr := graphql.DefaultErrorPresenter(ctx, err)

		var qe *domain.QueryError
		var ve *domain.ValidationError
		switch {
		case errors.As(err, &qe):
			gqlErr.Extensions = map[string]interface{}{"code": CodeQuery}
			if qe.Field != "" {
				gqlErr.Extensions["field"] = qe.Field
			}
			if qe.Selector != "" {
				gqlErr.Extensions["selector"] = qe.Selector
			}

		case errors.Is(err, domain.ErrNotFound):
			gqlErr.Extensions = map[string]interface{}{"code": CodeNotFound}

		case errors.As(err, &ve):
			gqlErr.Extensions = map[string]interface{}{
				"code":   CodeValidation,
				"fields": ve.Errors,
			}

		case gqlErr.Err == nil:
			// Parse and validation errors from the executor already carry
			// their own message and code.

		default:
			// Unexpected error - log it, return generic message to client
			log.ErrorContext(ctx, "unexpected GraphQL error",
				slog.String("error", err.Error()),
				slog.String("request_id", ctxutil.RequestIDFromCtx(ctx)),
			)
			gqlErr.Message = "internal error"
			gqlErr.Extensions = map[string]interface{}{"code": CodeInternal}
		}

		return gqlErr
	}
}
