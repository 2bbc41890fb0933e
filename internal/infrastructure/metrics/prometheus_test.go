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

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveHTTPRequest("GET", "/v4/company", "200", 15*time.Millisecond)
	m.ObserveHTTPRequest("GET", "/v4/company", "200", 20*time.Millisecond)
	m.JobEnqueued("long-running", "virus_scan_document")
	m.JobProcessed("long-running", "virus_scan_document", "failed", time.Second)
	m.DocumentScanned("infected")
	m.SearchDocumentsSynced("company", 25)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/v4/company", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobsEnqueuedTotal.WithLabelValues("long-running", "virus_scan_document")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobsProcessedTotal.WithLabelValues("long-running", "virus_scan_document", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.documentScansTotal.WithLabelValues("infected")))
	assert.Equal(t, 25.0, testutil.ToFloat64(m.searchSyncTotal.WithLabelValues("company")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest("GET", "/", "200", time.Millisecond)
		m.JobEnqueued("q", "f")
		m.JobProcessed("q", "f", "succeeded", time.Millisecond)
		m.DocumentScanned("clean")
		m.SearchDocumentsSynced("company", 1)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.JobEnqueued("short-running", "sync_object")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `datahub_queue_jobs_enqueued_total{function="sync_object",queue="short-running"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
