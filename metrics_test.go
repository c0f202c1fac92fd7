package sessionkit

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricLoginSuccess)

	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if snap := m.Snapshot(); len(snap.Counters) != 0 {
		t.Fatalf("expected empty snapshot, got %v", snap.Counters)
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricRefreshSuccess)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricRefreshSuccess); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsHistogramBucketCorrectness(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})

	observations := []time.Duration{
		5 * time.Millisecond,
		10 * time.Millisecond,
		25 * time.Millisecond,
		50 * time.Millisecond,
		100 * time.Millisecond,
		250 * time.Millisecond,
		500 * time.Millisecond,
		700 * time.Millisecond,
	}
	for _, d := range observations {
		m.Observe(MetricAuthorizeLatency, d)
	}
	// Counters have no histogram.
	m.Observe(MetricLoginSuccess, time.Millisecond)

	snap := m.Snapshot()
	buckets := snap.Histograms[MetricAuthorizeLatency]
	if len(buckets) != 8 {
		t.Fatalf("expected 8 buckets, got %d", len(buckets))
	}
	for i, v := range buckets {
		if v != 1 {
			t.Fatalf("bucket %d expected 1, got %d", i, v)
		}
	}
	if _, ok := snap.Histograms[MetricLoginSuccess]; ok {
		t.Fatal("unexpected histogram for a counter")
	}
	if _, ok := snap.Counters[MetricAuthorizeLatency]; ok {
		t.Fatal("latency must not appear as a counter")
	}
}

func TestEngineCountsSessionEvents(t *testing.T) {
	h := newEngineHarness(t, engineTestConfig())
	h.register(t, "juan@example.com", "password123")

	pair, err := h.engine.Login(context.Background(), "juan@example.com", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := h.engine.Authorize(context.Background(), pair.AccessToken); err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	if err := h.engine.Logout(context.Background(), pair.AccessToken, pair.AccessToken); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	_, _ = h.engine.Authorize(context.Background(), pair.AccessToken)

	snap := h.engine.MetricsSnapshot()
	want := map[MetricID]uint64{
		MetricRegisterSuccess:      1,
		MetricLoginSuccess:         1,
		MetricSessionCreated:       1,
		MetricAuthorizeSuccess:     1,
		MetricAuthorizeBlacklisted: 1,
		MetricLogout:               1,
		MetricSessionInvalidated:   1,
	}
	for id, v := range want {
		if snap.Counters[id] != v {
			t.Fatalf("metric %d: expected %d, got %d", id, v, snap.Counters[id])
		}
	}

	var total uint64
	for _, v := range snap.Histograms[MetricAuthorizeLatency] {
		total += v
	}
	if total != 2 {
		t.Fatalf("expected 2 authorize latency observations, got %d", total)
	}
}

func TestEngineMetricsDisabled(t *testing.T) {
	cfg := engineTestConfig()
	cfg.Metrics.Enabled = false
	h := newEngineHarness(t, cfg)
	h.register(t, "juan@example.com", "password123")

	if got := h.engine.MetricsSnapshot().Counters[MetricRegisterSuccess]; got != 0 {
		t.Fatalf("expected no counting when disabled, got %d", got)
	}
}
