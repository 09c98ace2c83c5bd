package metrics

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

type Metrics struct {
	mutex         sync.RWMutex
	requests      map[string]int64
	failures      map[string]int64
	responseTimes map[string][]time.Duration
	statusCodes   map[string]map[int]int64
	startTime     time.Time
}

type Snapshot struct {
	TotalRequests int64                  `json:"total_requests"`
	Elapsed       time.Duration          `json:"elapsed"`
	Hosts         map[string]HostMetrics `json:"hosts"`
}

type HostMetrics struct {
	Requests    int64         `json:"requests"`
	Failures    int64         `json:"failures"`
	AvgResponse time.Duration `json:"avg_response"`
	P50Response time.Duration `json:"p50_response"`
	P95Response time.Duration `json:"p95_response"`
	StatusCodes map[int]int64 `json:"status_codes"`
}

// RecordFetch records one completed request. A zero status code means the
// request failed before a response arrived.
func (m *Metrics) RecordFetch(host string, duration time.Duration, statusCode int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.requests[host]++
	m.responseTimes[host] = append(m.responseTimes[host], duration)

	if statusCode == 0 {
		m.failures[host]++
		return
	}

	if m.statusCodes[host] == nil {
		m.statusCodes[host] = make(map[int]int64)
	}
	m.statusCodes[host][statusCode]++
}

func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		Elapsed: time.Since(m.startTime),
		Hosts:   make(map[string]HostMetrics, len(m.requests)),
	}

	for host, requests := range m.requests {
		snap.TotalRequests += requests

		hm := HostMetrics{
			Requests:    requests,
			Failures:    m.failures[host],
			StatusCodes: make(map[int]int64, len(m.statusCodes[host])),
		}
		for code, n := range m.statusCodes[host] {
			hm.StatusCodes[code] = n
		}

		durations := m.responseTimes[host]
		if len(durations) > 0 {
			sorted := make([]time.Duration, len(durations))
			copy(sorted, durations)
			sort.Slice(sorted, func(i, j int) bool {
				return sorted[i] < sorted[j]
			})

			hm.AvgResponse = average(sorted)
			hm.P50Response = percentile(sorted, 0.50)
			hm.P95Response = percentile(sorted, 0.95)
		}

		snap.Hosts[host] = hm
	}

	return snap
}

// LogValue renders the snapshot as a group of per-host attributes.
func (s Snapshot) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("total_requests", s.TotalRequests),
		slog.Duration("elapsed", s.Elapsed),
	}
	for host, hm := range s.Hosts {
		attrs = append(attrs, slog.Group(host,
			slog.Int64("requests", hm.Requests),
			slog.Int64("failures", hm.Failures),
			slog.Duration("avg", hm.AvgResponse),
			slog.Duration("p50", hm.P50Response),
			slog.Duration("p95", hm.P95Response),
			slog.Any("status_codes", hm.StatusCodes),
		))
	}
	return slog.GroupValue(attrs...)
}

func NewMetrics() *Metrics {
	return &Metrics{
		requests:      make(map[string]int64),
		failures:      make(map[string]int64),
		responseTimes: make(map[string][]time.Duration),
		statusCodes:   make(map[string]map[int]int64),
		startTime:     time.Now(),
	}
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
