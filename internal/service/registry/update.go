package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/civic-registry/internal/domain"
)

// Replace overwrites every writable attribute of a record. An unknown id is
// reported before invalid fields.
func (s *Service) Replace(ctx context.Context, input ReplaceInput) (rec domain.ServiceRecord, err error) {
	defer s.track(ctx, "replace")(&err)

	attrs := input.Fields.Attributes()
	rec, err = s.records.Update(ctx, input.ID, func(cur domain.ServiceRecord) (domain.ServiceRecord, error) {
		if err := input.Validate(); err != nil {
			return cur, err
		}
		return cur.WithAttributes(attrs), nil
	})
	if err != nil {
		return domain.ServiceRecord{}, fmt.Errorf("replace service: %w", err)
	}

	s.log.InfoContext(ctx, "service replaced",
		slog.String("service_id", rec.ID),
		slog.Uint64("revision", rec.Revision),
	)
	return rec, nil
}

// Patch applies the supplied attributes to a record. The patched record must
// still satisfy the field rules.
func (s *Service) Patch(ctx context.Context, input PatchInput) (rec domain.ServiceRecord, err error) {
	defer s.track(ctx, "patch")(&err)

	patch := input.patch()
	rec, err = s.records.Update(ctx, input.ID, func(cur domain.ServiceRecord) (domain.ServiceRecord, error) {
		attrs := patch.Apply(cur.Attributes()).Normalize()
		if err := attrs.Validate(); err != nil {
			return cur, err
		}
		return cur.WithAttributes(attrs), nil
	})
	if err != nil {
		return domain.ServiceRecord{}, fmt.Errorf("patch service: %w", err)
	}

	s.log.InfoContext(ctx, "service patched",
		slog.String("service_id", rec.ID),
		slog.Uint64("revision", rec.Revision),
	)
	return rec, nil
}
