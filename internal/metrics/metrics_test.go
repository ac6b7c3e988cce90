package metrics_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/raysh454/safelink/internal/metrics"
)

func TestMetrics_CountsAndExposes(t *testing.T) {
	t.Parallel()
	m := metrics.New()

	m.ObserveCheck(metrics.OutcomeOK)
	m.ObserveCheck(metrics.OutcomeOK)
	m.ObserveCheck(metrics.OutcomeBusy)
	m.ObserveAI(metrics.AIDegraded)
	m.HistoryFailure()
	m.ObserveScore(72)

	if n, err := promtest.GatherAndCount(m.Registry(), "safelink_checks_total"); err != nil || n != 2 {
		t.Fatalf("checks_total series = %d, %v; want 2", n, err)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`safelink_checks_total{outcome="ok"} 2`,
		`safelink_ai_assessments_total{outcome="degraded"} 1`,
		`safelink_history_persist_failures_total 1`,
		`safelink_final_score_count 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	t.Parallel()
	var m *metrics.Metrics
	m.ObserveCheck(metrics.OutcomeOK)
	m.ObserveAI(metrics.AISkipped)
	m.ObserveScore(10)
	m.HistoryFailure()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Fatalf("nil handler status = %d", rec.Code)
	}
}
