package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(costsAdded.WithLabelValues("food"))
	CostAdded("food")
	assert.Equal(t, before+1, testutil.ToFloat64(costsAdded.WithLabelValues("food")))

	hits := testutil.ToFloat64(reportCache.WithLabelValues("hit"))
	ReportCacheLookup(true)
	ReportCacheLookup(false)
	assert.Equal(t, hits+1, testutil.ToFloat64(reportCache.WithLabelValues("hit")))

	errs := testutil.ToFloat64(reportsBuilt.WithLabelValues("error"))
	ReportBuilt(false)
	assert.Equal(t, errs+1, testutil.ToFloat64(reportsBuilt.WithLabelValues("error")))

	fixed := testutil.ToFloat64(reconcileFixed)
	TotalsFixed(3)
	assert.Equal(t, fixed+3, testutil.ToFloat64(reconcileFixed))
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveRequest(http.MethodGet, "/api/about", http.StatusOK, 3*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "costs_http_request_duration_seconds")
}
