package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsNoop(t *testing.T) {
	SetRecorder(nil)
	assert.NotPanics(t, func() {
		done := TimeCohortOp("similar")
		done(true)
		Default().IncEmbeddingCache(true)
	})
}

func TestPrometheusHandlerExposesCounters(t *testing.T) {
	handler := EnablePrometheus()
	defer SetRecorder(nil)

	TimeCohortOp("lab_comparison")(true)
	Default().IncDataQualityIssue("data_cast")
	Default().IncEmbeddingCache(false)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `cohort_ops_total{op="lab_comparison",success="true"} 1`)
	assert.Contains(t, string(body), `data_quality_issues_total{kind="data_cast"} 1`)
	assert.Contains(t, string(body), `embedding_cache_requests_total{result="miss"} 1`)
}
