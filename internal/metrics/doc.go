// Package metrics records per-host statistics for the HTTP fetches issued
// during a run.
//
// It tracks:
//   - Request counts per host
//   - Transport failures (requests that produced no status code)
//   - HTTP status code distribution
//   - Response times with percentile calculations (P50, P95)
//
// The fetch client records every completed request; the report driver logs a
// snapshot at debug level once the run is over.
//
// Example usage:
//
//	m := metrics.NewMetrics()
//	m.RecordFetch("pagure.io", 150*time.Millisecond, 200)
//	snapshot := m.Snapshot()
package metrics
