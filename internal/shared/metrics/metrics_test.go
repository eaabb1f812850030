package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(analysesTotal.WithLabelValues(OutcomeSuccess))
	IncAnalysis(OutcomeSuccess)
	if got := testutil.ToFloat64(analysesTotal.WithLabelValues(OutcomeSuccess)); got != before+1 {
		t.Fatalf("expected %v, got %v", before+1, got)
	}

	beforeLLM := testutil.ToFloat64(llmRequestsTotal.WithLabelValues("analysis", OutcomeFailed))
	IncLLMRequest("analysis", OutcomeFailed)
	if got := testutil.ToFloat64(llmRequestsTotal.WithLabelValues("analysis", OutcomeFailed)); got != beforeLLM+1 {
		t.Fatalf("expected %v, got %v", beforeLLM+1, got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	IncAnalysis(OutcomeInvalid)
	ObserveAnalysisDuration(1500 * time.Millisecond)

	r := gin.New()
	r.GET("/metrics", Handler())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`contract_analyses_total{outcome="invalid"}`,
		"contract_analysis_duration_seconds_bucket",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in metrics output", want)
		}
	}
}
