package metrics

import (
	"testing"
	"time"
)

func TestCounters(t *testing.T) {
	t.Parallel()
	mc := NewMetricsCollector()

	mc.IncrementCounter("requests", nil)
	mc.IncrementCounter("requests", nil)
	mc.IncrementCounter("requests", map[string]string{"path": "/documents"})

	counters := mc.GetCounters()
	if counters["requests"]["default"] != 2 {
		t.Errorf("default counter: got %d, want 2", counters["requests"]["default"])
	}
	if counters["requests"]["path:/documents"] != 1 {
		t.Errorf("labeled counter: got %d, want 1", counters["requests"]["path:/documents"])
	}
}

func TestLatencyAverage(t *testing.T) {
	t.Parallel()
	mc := NewMetricsCollector()

	mc.ObserveLatency("op", 10*time.Millisecond)
	mc.ObserveLatency("op", 30*time.Millisecond)

	latencies := mc.GetLatencies()
	if got := latencies["op"]["avg_ms"]; got != 20 {
		t.Errorf("avg_ms: got %v, want 20", got)
	}
}

func TestSizeObservationsCapped(t *testing.T) {
	t.Parallel()
	mc := NewMetricsCollector()

	for i := 0; i < maxObservations+50; i++ {
		mc.ObserveSize("upload", float64(i))
	}

	mc.mutex.RLock()
	n := len(mc.sizes["upload"])
	mc.mutex.RUnlock()
	if n != maxObservations {
		t.Errorf("retained observations: got %d, want %d", n, maxObservations)
	}

	sizes := mc.GetSizes()
	if got := sizes["upload"]["max_bytes"]; got != float64(maxObservations+49) {
		t.Errorf("max_bytes: got %v, want %v", got, maxObservations+49)
	}
}
