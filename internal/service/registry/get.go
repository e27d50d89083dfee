package registry

import (
	"context"
	"fmt"

	"github.com/heartmarshall/civic-registry/internal/domain"
	"github.com/heartmarshall/civic-registry/internal/etag"
)

// Get returns a record by id.
func (s *Service) Get(ctx context.Context, id string) (rec domain.ServiceRecord, err error) {
	defer s.track(ctx, "get")(&err)

	rec, err = s.records.GetByID(ctx, id)
	if err != nil {
		return domain.ServiceRecord{}, fmt.Errorf("get service: %w", err)
	}
	return rec, nil
}

// GetConditional returns a record together with its current entity tag.
// If ifNoneMatch matches that tag, the result is marked NotModified.
func (s *Service) GetConditional(ctx context.Context, id, ifNoneMatch string) (res Conditional, err error) {
	defer s.track(ctx, "get")(&err)

	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return Conditional{}, fmt.Errorf("get service: %w", err)
	}

	tag := etag.Compute(rec.ID, rec.Revision)
	if etag.Match(ifNoneMatch, tag) {
		return Conditional{ETag: tag, NotModified: true}, nil
	}
	return Conditional{Record: rec, ETag: tag}, nil
}

// List returns live records in insertion order, optionally filtered by type.
func (s *Service) List(ctx context.Context, input ListInput) (recs []domain.ServiceRecord, err error) {
	defer s.track(ctx, "list")(&err)

	all := s.records.Snapshot(ctx)
	filter := input.typeFilter()
	if filter == "" {
		return all, nil
	}

	recs = make([]domain.ServiceRecord, 0, len(all))
	for _, r := range all {
		if string(r.Type) == filter {
			recs = append(recs, r)
		}
	}
	return recs, nil
}
