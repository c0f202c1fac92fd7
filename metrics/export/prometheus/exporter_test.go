package prometheus

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MrEthical07/sessionkit"
	"github.com/prometheus/client_golang/prometheus"
)

type fakeSource struct {
	snapshot sessionkit.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() sessionkit.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                        { return f.dropped }

func TestCollectorGathersCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollectorFromSource(fakeSource{
		snapshot: sessionkit.MetricsSnapshot{
			Counters: map[sessionkit.MetricID]uint64{
				sessionkit.MetricLoginSuccess:         7,
				sessionkit.MetricRefreshReuseDetected: 2,
			},
			Histograms: map[sessionkit.MetricID][]uint64{
				sessionkit.MetricAuthorizeLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 3,
	}))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	byName := map[string]float64{}
	var histCount uint64
	var firstBucket uint64
	for _, mf := range families {
		m := mf.GetMetric()[0]
		switch {
		case m.GetCounter() != nil:
			byName[mf.GetName()] = m.GetCounter().GetValue()
		case m.GetHistogram() != nil:
			histCount = m.GetHistogram().GetSampleCount()
			firstBucket = m.GetHistogram().GetBucket()[0].GetCumulativeCount()
		}
	}

	if byName["sessionkit_login_success_total"] != 7 {
		t.Fatalf("expected login success 7, got %v", byName["sessionkit_login_success_total"])
	}
	if byName["sessionkit_refresh_reuse_detected_total"] != 2 {
		t.Fatalf("expected reuse 2, got %v", byName["sessionkit_refresh_reuse_detected_total"])
	}
	if byName["sessionkit_audit_dropped_total"] != 3 {
		t.Fatalf("expected audit dropped 3, got %v", byName["sessionkit_audit_dropped_total"])
	}
	if histCount != 36 || firstBucket != 1 {
		t.Fatalf("unexpected histogram count=%d first=%d", histCount, firstBucket)
	}
}

func TestHandlerServesTextFormat(t *testing.T) {
	h := Handler(NewCollectorFromSource(fakeSource{
		snapshot: sessionkit.MetricsSnapshot{
			Counters:   map[sessionkit.MetricID]uint64{sessionkit.MetricLogout: 1},
			Histograms: map[sessionkit.MetricID][]uint64{},
		},
	}))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "sessionkit_logout_total 1") {
		t.Fatalf("expected logout counter in output, got:\n%s", body)
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Fatal("expected runtime collectors in output")
	}
}
