package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/civic-registry/internal/domain"
)

type queryResolver interface {
	Resolve(ctx context.Context, q domain.Query) ([]domain.Projection, error)
}

// QueryHandler serves structured projection queries over the record set.
type QueryHandler struct {
	resolver queryResolver
	path     string
	log      *slog.Logger
}

// NewQueryHandler creates a QueryHandler mounted at path.
func NewQueryHandler(resolver queryResolver, path string, logger *slog.Logger) *QueryHandler {
	return &QueryHandler{resolver: resolver, path: path, log: logger.With("handler", "query")}
}

// Register mounts the handler on mux.
func (h *QueryHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST "+h.path, h.Query)
}

type queryRequest struct {
	Selector struct {
		Kind string `json:"kind"`
		ID   string `json:"id"`
		Type string `json:"type"`
	} `json:"selector"`
	Fields []string `json:"fields"`
}

func (r queryRequest) query() domain.Query {
	return domain.Query{
		Selector: domain.Selector{
			Kind: domain.SelectorKind(r.Selector.Kind),
			ID:   r.Selector.ID,
			Type: r.Selector.Type,
		},
		Fields: r.Fields,
	}
}

// Query handles POST /api/v1/query. The response is a JSON array with one
// object per matching record, holding exactly the requested fields.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidBody, "invalid request body")
		return
	}

	out, err := h.resolver.Resolve(r.Context(), req.query())
	if err != nil {
		var qe *domain.QueryError
		if errors.As(err, &qe) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:    CodeQuery,
				Message:  qe.Error(),
				Field:    qe.Field,
				Selector: qe.Selector,
			})
			return
		}
		h.log.ErrorContext(r.Context(), "query failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, CodeInternal, "internal server error")
		return
	}
	if out == nil {
		out = []domain.Projection{}
	}
	writeJSON(w, http.StatusOK, out)
}
