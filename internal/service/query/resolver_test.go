package query

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/civic-registry/internal/domain"
)

type staticSnapshot struct {
	recs  []domain.ServiceRecord
	calls atomic.Int32
}

func (s *staticSnapshot) Snapshot(context.Context) []domain.ServiceRecord {
	s.calls.Add(1)
	return s.recs
}

var testRecords = []domain.ServiceRecord{
	{
		ID: "a", Type: domain.ServiceTypeLibrary, Name: "Central Library", Address: "Main St 1",
		Hours: "9-5", UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), Revision: 3,
	},
	{
		ID: "b", Type: domain.ServiceTypePark, Name: "Riverside", Address: "River Rd",
		UpdatedAt: time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC), Revision: 1,
	},
}

func newTestResolver(recs []domain.ServiceRecord) (*Resolver, *staticSnapshot) {
	src := &staticSnapshot{recs: recs}
	return NewResolver(slog.Default(), src, nil), src
}

func TestResolve_ProjectsOnlyRequestedFields(t *testing.T) {
	t.Parallel()

	r, _ := newTestResolver(testRecords)

	got, err := r.Resolve(context.Background(), domain.Query{
		Selector: domain.Selector{Kind: domain.SelectAll},
		Fields:   []string{"id", "name"},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	for i, proj := range got {
		assert.Equal(t, []string{"id", "name"}, proj.Names())
		id, _ := proj.Get("id")
		assert.Equal(t, testRecords[i].ID, id)
		for _, omitted := range []string{"address", "hours", "updatedAt", "revision"} {
			_, ok := proj.Get(omitted)
			assert.False(t, ok, "%s must be omitted", omitted)
		}
	}
}

func TestResolve_UnknownField(t *testing.T) {
	t.Parallel()

	r, src := newTestResolver(testRecords)

	for _, field := range []string{"color", "revision"} {
		_, err := r.Resolve(context.Background(), domain.Query{Fields: []string{"id", field}})
		require.ErrorIs(t, err, domain.ErrQuery)

		var qe *domain.QueryError
		require.True(t, errors.As(err, &qe))
		assert.Equal(t, field, qe.Field)
	}
	assert.Zero(t, src.calls.Load(), "invalid queries must not read the store")
}

func TestResolve_UnknownSelector(t *testing.T) {
	t.Parallel()

	r, _ := newTestResolver(testRecords)

	_, err := r.Resolve(context.Background(), domain.Query{
		Selector: domain.Selector{Kind: "byColor"},
		Fields:   []string{"id"},
	})
	var qe *domain.QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, "byColor", qe.Selector)
}

func TestResolve_Selectors(t *testing.T) {
	t.Parallel()

	r, _ := newTestResolver(testRecords)

	tests := []struct {
		name    string
		sel     domain.Selector
		wantIDs []string
		wantErr bool
	}{
		{name: "default is all", sel: domain.Selector{}, wantIDs: []string{"a", "b"}},
		{name: "by id", sel: domain.Selector{Kind: domain.SelectByID, ID: "b"}, wantIDs: []string{"b"}},
		{name: "by id unknown", sel: domain.Selector{Kind: domain.SelectByID, ID: "zzz"}, wantIDs: []string{}},
		{name: "by type", sel: domain.Selector{Kind: domain.SelectByType, Type: "library"}, wantIDs: []string{"a"}},
		{name: "by id without id", sel: domain.Selector{Kind: domain.SelectByID}, wantErr: true},
		{name: "by type without type", sel: domain.Selector{Kind: domain.SelectByType, Type: " "}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := r.Resolve(context.Background(), domain.Query{Selector: tt.sel, Fields: []string{"id"}})
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrQuery)
				return
			}
			require.NoError(t, err)

			ids := make([]string, 0, len(got))
			for _, p := range got {
				v, _ := p.Get("id")
				ids = append(ids, v.(string))
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestResolve_DuplicateFieldsCollapsed(t *testing.T) {
	t.Parallel()

	r, _ := newTestResolver(testRecords[:1])

	got, err := r.Resolve(context.Background(), domain.Query{Fields: []string{"name", "id", "name"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"name", "id"}, got[0].Names())
}

func TestResolve_NoFields(t *testing.T) {
	t.Parallel()

	r, _ := newTestResolver(testRecords)
	_, err := r.Resolve(context.Background(), domain.Query{})
	assert.ErrorIs(t, err, domain.ErrQuery)
}

func TestResolveBatch_SingleSnapshot(t *testing.T) {
	t.Parallel()

	r, src := newTestResolver(testRecords)

	out, err := r.ResolveBatch(context.Background(), []domain.Query{
		{Fields: []string{"id"}},
		{Selector: domain.Selector{Kind: domain.SelectByID, ID: "a"}, Fields: []string{"updatedAt"}},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Len(t, out[0], 2)
	require.Len(t, out[1], 1)

	ts, _ := out[1][0].Get("updatedAt")
	assert.Equal(t, testRecords[0].UpdatedAt, ts)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestResolveBatch_OneBadQueryFailsAll(t *testing.T) {
	t.Parallel()

	r, src := newTestResolver(testRecords)

	_, err := r.ResolveBatch(context.Background(), []domain.Query{
		{Fields: []string{"id"}},
		{Fields: []string{"nope"}},
	})
	require.ErrorIs(t, err, domain.ErrQuery)
	assert.Zero(t, src.calls.Load())
}

func TestProjector(t *testing.T) {
	t.Parallel()

	r, src := newTestResolver(testRecords)

	project, err := r.Projector([]string{"name", "type"})
	require.NoError(t, err)
	proj := project(testRecords[1])
	assert.Equal(t, []string{"name", "type"}, proj.Names())
	typ, _ := proj.Get("type")
	assert.Equal(t, "park", typ)
	assert.Zero(t, src.calls.Load())

	_, err = r.Projector([]string{"revision"})
	assert.ErrorIs(t, err, domain.ErrQuery)
}
