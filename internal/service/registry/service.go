// Package registry implements the service record use cases on top of the
// record repository: validation, conditional reads and creation events.
package registry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/heartmarshall/civic-registry/internal/domain"
)

type recordRepo interface {
	GetByID(ctx context.Context, id string) (domain.ServiceRecord, error)
	Snapshot(ctx context.Context) []domain.ServiceRecord
	Create(ctx context.Context, attrs domain.Attributes) (domain.ServiceRecord, error)
	Update(ctx context.Context, id string, fn func(domain.ServiceRecord) (domain.ServiceRecord, error)) (domain.ServiceRecord, error)
	Delete(ctx context.Context, id string) error
}

type eventPublisher interface {
	Publish(rec domain.ServiceRecord)
}

type metricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Service provides service record operations.
type Service struct {
	records recordRepo
	events  eventPublisher
	metrics metricsRecorder
	log     *slog.Logger

	// createMu orders insertion and publication together, so observers see
	// creation events in the order records were created.
	createMu sync.Mutex
}

// NewService creates a new registry service. metrics may be nil.
func NewService(
	log *slog.Logger,
	records recordRepo,
	events eventPublisher,
	metrics metricsRecorder,
) *Service {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Service{
		records: records,
		events:  events,
		metrics: metrics,
		log:     log.With("service", "registry"),
	}
}

// track starts timing op. The returned func records the outcome held in
// *errp and is meant to be deferred.
func (s *Service) track(ctx context.Context, op string) func(errp *error) {
	start := time.Now()
	return func(errp *error) {
		s.metrics.Observe(ctx, op, *errp == nil, time.Since(start))
	}
}

type nopMetrics struct{}

func (nopMetrics) Observe(context.Context, string, bool, time.Duration) {}
