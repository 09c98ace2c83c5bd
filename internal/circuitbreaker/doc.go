// Package circuitbreaker keeps one circuit breaker per remote host.
//
// Breakers come from github.com/sony/gobreaker and have three states:
//
//   - CLOSED: Normal operation, requests pass through
//   - OPEN: Host failing, requests fail fast with gobreaker.ErrOpenState
//   - HALF-OPEN: Testing if the host recovered
//
// Usage:
//
//	registry := circuitbreaker.NewRegistry(circuitbreaker.Settings{Threshold: 5, Timeout: 30 * time.Second})
//	cb := registry.GetBreaker("pagure.io")
//	_, err := cb.Execute(func() (interface{}, error) {
//	    return client.Do(req)
//	})
package circuitbreaker
