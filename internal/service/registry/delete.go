package registry

import (
	"context"
	"fmt"
	"log/slog"
)

// Delete removes a record. Its id is never reused.
func (s *Service) Delete(ctx context.Context, id string) (err error) {
	defer s.track(ctx, "delete")(&err)

	if err = s.records.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete service: %w", err)
	}

	s.log.InfoContext(ctx, "service deleted", slog.String("service_id", id))
	return nil
}
