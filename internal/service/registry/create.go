package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/civic-registry/internal/domain"
)

// Create validates input, stores a new record and publishes a creation event.
func (s *Service) Create(ctx context.Context, input CreateInput) (rec domain.ServiceRecord, err error) {
	defer s.track(ctx, "create")(&err)

	if err = input.Validate(); err != nil {
		return domain.ServiceRecord{}, err
	}

	s.createMu.Lock()
	rec, err = s.records.Create(ctx, input.Attributes())
	if err == nil {
		s.events.Publish(rec)
	}
	s.createMu.Unlock()

	if err != nil {
		return domain.ServiceRecord{}, fmt.Errorf("create service: %w", err)
	}

	s.log.InfoContext(ctx, "service created",
		slog.String("service_id", rec.ID),
		slog.String("type", rec.Type.String()),
	)

	return rec, nil
}
