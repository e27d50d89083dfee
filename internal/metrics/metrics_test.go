package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve_CountsByResult(t *testing.T) {
	t.Parallel()

	m := New()
	ctx := context.Background()

	m.Observe(ctx, "create", true, time.Millisecond)
	m.Observe(ctx, "create", true, time.Millisecond)
	m.Observe(ctx, "create", false, time.Millisecond)
	m.Observe(ctx, "", true, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("create", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("create", "error")))
}

func TestNotifierMetrics(t *testing.T) {
	t.Parallel()

	m := New()
	m.SubscribersChanged(3)
	m.EventPublished()
	m.ObserverDropped("slow")

	assert.Equal(t, 3.0, testutil.ToFloat64(m.subscribers))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.published))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dropped.WithLabelValues("slow")))
}

func TestHandler_ExposesRecordGauge(t *testing.T) {
	t.Parallel()

	m := New()
	m.TrackRecords(func() int { return 42 })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "civic_registry_records 42"), "body: %s", body)
}
