package metrics

import (
	"sync"
	"time"
)

const maxObservations = 100

// MetricsCollector is a small in-process collector: counters, recent
// latencies, and recent size observations, served on the /metrics endpoint.
type MetricsCollector struct {
	counters  map[string]map[string]int64
	latencies map[string][]time.Duration
	sizes     map[string][]float64
	mutex     sync.RWMutex
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		counters:  make(map[string]map[string]int64),
		latencies: make(map[string][]time.Duration),
		sizes:     make(map[string][]float64),
	}
}

func (mc *MetricsCollector) IncrementCounter(name string, labels map[string]string) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	labelKey := "default"
	for k, v := range labels {
		labelKey = k + ":" + v
		break
	}

	if _, exists := mc.counters[name]; !exists {
		mc.counters[name] = make(map[string]int64)
	}
	mc.counters[name][labelKey]++
}

func (mc *MetricsCollector) ObserveLatency(name string, duration time.Duration) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	mc.latencies[name] = append(mc.latencies[name], duration)
	if len(mc.latencies[name]) > maxObservations {
		mc.latencies[name] = mc.latencies[name][len(mc.latencies[name])-maxObservations:]
	}
}

func (mc *MetricsCollector) ObserveSize(name string, size float64) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	mc.sizes[name] = append(mc.sizes[name], size)
	if len(mc.sizes[name]) > maxObservations {
		mc.sizes[name] = mc.sizes[name][len(mc.sizes[name])-maxObservations:]
	}
}

func (mc *MetricsCollector) GetCounters() map[string]map[string]int64 {
	mc.mutex.RLock()
	defer mc.mutex.RUnlock()

	counters := make(map[string]map[string]int64)
	for name, labels := range mc.counters {
		counters[name] = make(map[string]int64)
		for label, value := range labels {
			counters[name][label] = value
		}
	}
	return counters
}

func (mc *MetricsCollector) GetLatencies() map[string]map[string]float64 {
	mc.mutex.RLock()
	defer mc.mutex.RUnlock()

	result := make(map[string]map[string]float64)
	for name, durations := range mc.latencies {
		if len(durations) == 0 {
			continue
		}

		var sum time.Duration
		for _, d := range durations {
			sum += d
		}
		result[name] = map[string]float64{
			"avg_ms": float64(sum) / float64(len(durations)) / float64(time.Millisecond),
		}
	}
	return result
}

func (mc *MetricsCollector) GetSizes() map[string]map[string]float64 {
	mc.mutex.RLock()
	defer mc.mutex.RUnlock()

	result := make(map[string]map[string]float64)
	for name, observations := range mc.sizes {
		if len(observations) == 0 {
			continue
		}

		var sum, max float64
		for _, v := range observations {
			sum += v
			if v > max {
				max = v
			}
		}
		result[name] = map[string]float64{
			"avg_bytes": sum / float64(len(observations)),
			"max_bytes": max,
		}
	}
	return result
}
