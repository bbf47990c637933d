package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryosukesatoh/doc-digest/internal/extract"
)

func TestCountSummary(t *testing.T) {
	m := New()
	m.CountSummary("ok")
	m.CountSummary("ok")
	m.CountSummary("extraction_error")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.summaries.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.summaries.WithLabelValues("extraction_error")))
}

func TestArtifactsRemoved(t *testing.T) {
	m := New()
	m.AddArtifactsRemoved(3)
	m.AddArtifactsRemoved(0)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.artifactsRemoved))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveRequest("POST", "/", "200", 20*time.Millisecond)
	m.ObserveExtraction(extract.PDF, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	out := string(body)
	assert.True(t, strings.Contains(out, `http_requests_total{method="POST",path="/",status="200"} 1`))
	assert.Contains(t, out, `extraction_duration_seconds_count{kind="pdf"} 1`)
}
