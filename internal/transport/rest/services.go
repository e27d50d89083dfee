package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/civic-registry/internal/domain"
	"github.com/heartmarshall/civic-registry/internal/etag"
	"github.com/heartmarshall/civic-registry/internal/service/registry"
)

// cacheControl forces clients to revalidate with If-None-Match on every read.
const cacheControl = "private, max-age=0, must-revalidate"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

type registryService interface {
	Create(ctx context.Context, input registry.CreateInput) (domain.ServiceRecord, error)
	GetConditional(ctx context.Context, id, ifNoneMatch string) (registry.Conditional, error)
	List(ctx context.Context, input registry.ListInput) ([]domain.ServiceRecord, error)
	Replace(ctx context.Context, input registry.ReplaceInput) (domain.ServiceRecord, error)
	Patch(ctx context.Context, input registry.PatchInput) (domain.ServiceRecord, error)
	Delete(ctx context.Context, id string) error
}

// ServicesHandler serves the versioned service record endpoints.
type ServicesHandler struct {
	svc    registryService
	prefix string
	log    *slog.Logger
}

// NewServicesHandler creates a ServicesHandler. prefix is the collection path,
// e.g. "/api/v1/services", and is used to build Location headers.
func NewServicesHandler(svc registryService, prefix string, logger *slog.Logger) *ServicesHandler {
	return &ServicesHandler{svc: svc, prefix: prefix, log: logger.With("handler", "services")}
}

// Register mounts the handler on mux under its prefix.
func (h *ServicesHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST "+h.prefix, h.Create)
	mux.HandleFunc("GET "+h.prefix, h.List)
	mux.HandleFunc("GET "+h.prefix+"/{id}", h.Get)
	mux.HandleFunc("PUT "+h.prefix+"/{id}", h.Replace)
	mux.HandleFunc("PATCH "+h.prefix+"/{id}", h.Patch)
	mux.HandleFunc("DELETE "+h.prefix+"/{id}", h.Delete)
}

// serviceRequest is the body of create and replace requests. Server-managed
// fields (id, updatedAt) are ignored if present.
type serviceRequest struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Hours   string `json:"hours"`
	Phone   string `json:"phone"`
}

func (r serviceRequest) input() registry.CreateInput {
	return registry.CreateInput{
		Type:    r.Type,
		Name:    r.Name,
		Address: r.Address,
		Hours:   r.Hours,
		Phone:   r.Phone,
	}
}

// patchRequest is the body of a partial update. Absent or null fields are
// left unchanged.
type patchRequest struct {
	Type    *string `json:"type"`
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Hours   *string `json:"hours"`
	Phone   *string `json:"phone"`
}

// Create handles POST /api/v1/services.
func (h *ServicesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if !h.decode(w, r, &req) {
		return
	}

	rec, err := h.svc.Create(r.Context(), req.input())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	w.Header().Set("Location", h.prefix+"/"+rec.ID)
	h.writeRecord(w, http.StatusCreated, rec)
}

// List handles GET /api/v1/services?type=.
func (h *ServicesHandler) List(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.List(r.Context(), registry.ListInput{Type: r.URL.Query().Get("type")})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if recs == nil {
		recs = []domain.ServiceRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// Get handles GET /api/v1/services/{id}, honouring If-None-Match.
func (h *ServicesHandler) Get(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.GetConditional(r.Context(), r.PathValue("id"), r.Header.Get("If-None-Match"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	w.Header().Set("ETag", res.ETag)
	w.Header().Set("Cache-Control", cacheControl)
	if res.NotModified {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, res.Record)
}

// Replace handles PUT /api/v1/services/{id}.
func (h *ServicesHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if !h.decode(w, r, &req) {
		return
	}

	rec, err := h.svc.Replace(r.Context(), registry.ReplaceInput{ID: r.PathValue("id"), Fields: req.input()})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeRecord(w, http.StatusOK, rec)
}

// Patch handles PATCH /api/v1/services/{id}.
func (h *ServicesHandler) Patch(w http.ResponseWriter, r *http.Request) {
	var req patchRequest
	if !h.decode(w, r, &req) {
		return
	}

	rec, err := h.svc.Patch(r.Context(), registry.PatchInput{
		ID:      r.PathValue("id"),
		Type:    req.Type,
		Name:    req.Name,
		Address: req.Address,
		Hours:   req.Hours,
		Phone:   req.Phone,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeRecord(w, http.StatusOK, rec)
}

// Delete handles DELETE /api/v1/services/{id}.
func (h *ServicesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ServicesHandler) writeRecord(w http.ResponseWriter, status int, rec domain.ServiceRecord) {
	w.Header().Set("ETag", etag.Compute(rec.ID, rec.Revision))
	writeJSON(w, status, rec)
}

func (h *ServicesHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidBody, "invalid request body")
		return false
	}
	return true
}

func (h *ServicesHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, CodeValidation, ve.Error(), ve.Errors...)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, "service not found")
	default:
		h.log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, CodeInternal, "internal server error")
	}
}
