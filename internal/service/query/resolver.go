// Package query resolves structured, read-only projections over the record
// store. Every call works on a single consistent snapshot.
package query

import (
	"context"
	"log/slog"
	"time"

	"github.com/heartmarshall/civic-registry/internal/domain"
)

type snapshotter interface {
	Snapshot(ctx context.Context) []domain.ServiceRecord
}

type metricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Resolver evaluates queries against the record store.
type Resolver struct {
	records snapshotter
	metrics metricsRecorder
	log     *slog.Logger
}

// NewResolver creates a Resolver. metrics may be nil.
func NewResolver(log *slog.Logger, records snapshotter, metrics metricsRecorder) *Resolver {
	return &Resolver{
		records: records,
		metrics: metrics,
		log:     log.With("service", "query"),
	}
}

// Resolve evaluates a single query.
func (r *Resolver) Resolve(ctx context.Context, q domain.Query) ([]domain.Projection, error) {
	out, err := r.ResolveBatch(ctx, []domain.Query{q})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// ResolveBatch validates every query and then evaluates all of them against
// one snapshot, so results of the batch never disagree with each other. The
// first invalid query fails the whole batch before the store is read.
func (r *Resolver) ResolveBatch(ctx context.Context, qs []domain.Query) (out [][]domain.Projection, err error) {
	start := time.Now()
	defer func() {
		if r.metrics != nil {
			r.metrics.Observe(ctx, "query", err == nil, time.Since(start))
		}
	}()

	plans := make([]plan, len(qs))
	for i, q := range qs {
		p, err := compile(q)
		if err != nil {
			r.log.DebugContext(ctx, "query rejected", slog.String("error", err.Error()))
			return nil, err
		}
		plans[i] = p
	}

	snap := r.records.Snapshot(ctx)

	out = make([][]domain.Projection, len(plans))
	for i, p := range plans {
		out[i] = p.run(snap)
	}
	return out, nil
}

// Projector validates fields once and returns a function projecting single
// records onto them. It serves push paths that receive records one at a time
// instead of reading the store.
func (r *Resolver) Projector(fields []string) (func(domain.ServiceRecord) domain.Projection, error) {
	p, err := compile(domain.Query{Fields: fields})
	if err != nil {
		return nil, err
	}
	return p.project, nil
}
