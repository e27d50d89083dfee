package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/heartmarshall/civic-registry/internal/domain"
	"github.com/heartmarshall/civic-registry/internal/etag"
)

type recordSnapshotter interface {
	Snapshot(ctx context.Context) []domain.ServiceRecord
}

// DebugHandler exposes store internals for troubleshooting. It is only
// mounted when debug endpoints are enabled in config.
type DebugHandler struct {
	records recordSnapshotter
	log     *slog.Logger
}

// NewDebugHandler creates a DebugHandler.
func NewDebugHandler(records recordSnapshotter, logger *slog.Logger) *DebugHandler {
	return &DebugHandler{records: records, log: logger.With("handler", "debug")}
}

type debugRecord struct {
	domain.ServiceRecord
	Revision uint64 `json:"revision"`
	ETag     string `json:"etag"`
}

type debugDump struct {
	Count    int           `json:"count"`
	Services []debugRecord `json:"services"`
	TakenAt  time.Time     `json:"takenAt"`
}

// Services dumps every live record with its private revision and entity tag.
// GET /debug/services
func (h *DebugHandler) Services(w http.ResponseWriter, r *http.Request) {
	snap := h.records.Snapshot(r.Context())

	out := make([]debugRecord, len(snap))
	for i, rec := range snap {
		out[i] = debugRecord{
			ServiceRecord: rec,
			Revision:      rec.Revision,
			ETag:          etag.Compute(rec.ID, rec.Revision),
		}
	}

	h.log.DebugContext(r.Context(), "store dumped", slog.Int("count", len(out)))
	writeJSON(w, http.StatusOK, debugDump{Count: len(out), Services: out, TakenAt: time.Now().UTC()})
}
