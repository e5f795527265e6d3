package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := New()

	m.ObserveIngest("NEW")
	m.ObserveIngest("NEW")
	m.ObserveIngest("UNCHANGED")
	m.ObserveIngestFailure()
	m.ObserveVerdict(true)
	m.ObserveRank(time.Now())

	assert.InDelta(t, 2, testutil.ToFloat64(m.IngestItemsTotal.WithLabelValues("NEW")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.IngestItemsTotal.WithLabelValues("UNCHANGED")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.IngestFailuresTotal), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.AgentVerdictsTotal.WithLabelValues("true")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.RankDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveIngest("NEW")
		m.ObserveIngestFailure()
		m.ObserveVerdict(false)
		m.ObserveRank(time.Now())
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveIngest("CHANGED")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `gamerec_ingest_items_total{classification="CHANGED"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
