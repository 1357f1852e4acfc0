package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counts(t *testing.T) {
	r := New()
	r.ObserveUpstream("solscan_meta", "ok", 20*time.Millisecond)
	r.ObserveUpstream("solscan_meta", "ok", 30*time.Millisecond)
	r.ObserveUpstream("openai", "UPSTREAM_ERROR", time.Second)
	r.ObserveRoute("chat", "ok")

	require.Equal(t, 2.0, testutil.ToFloat64(r.upstreamTotal.WithLabelValues("solscan_meta", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.upstreamTotal.WithLabelValues("openai", "UPSTREAM_ERROR")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.analyzeTotal.WithLabelValues("chat", "ok")))
	require.Equal(t, 2, testutil.CollectAndCount(r.upstreamDuration))
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.ObserveRoute("analysis", "UPSTREAM_EMPTY")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `rai_analyze_requests_total{outcome="UPSTREAM_EMPTY",route="analysis"} 1`)
	require.Contains(t, string(body), "go_goroutines")
}
