package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("compile", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncStageResult("compile", ResultSuccess)
	pr.IncBuildOutcome("success")
	pr.IncPageResult(PageCompiled)
	pr.IncPageResult(PageCompiled)
	pr.IncPageResult(PageFailed)
	pr.SetRoutes(12)
	pr.IncBrokenLinks(2)
	pr.IncBrokenLinks(0)

	require.InDelta(t, 2, testutil.ToFloat64(pr.pageResults.WithLabelValues(string(PageCompiled))), 0)
	require.InDelta(t, 1, testutil.ToFloat64(pr.pageResults.WithLabelValues(string(PageFailed))), 0)
	require.InDelta(t, 12, testutil.ToFloat64(pr.routes), 0)
	require.InDelta(t, 2, testutil.ToFloat64(pr.brokenLinks), 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)
	require.Same(t, reg, pr.Registry())
}

func TestPrometheusRecorder_WriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncBuildOutcome("success")
	path := filepath.Join(t.TempDir(), "pagebuilder.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `pagebuilder_build_outcomes_total{outcome="success"} 1`)
}

func TestHandler(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.SetRoutes(4)
	rec := httptest.NewRecorder()
	pr.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "pagebuilder_routes 4")
}
