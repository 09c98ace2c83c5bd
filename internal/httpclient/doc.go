// Package httpclient is the HTTP fetch capability shared by the owner-alias
// resolver and the health-report fetcher. Each GET passes through a rate
// limiter and a per-host circuit breaker and is recorded in the fetch
// metrics. Non-2xx responses surface as *StatusError so callers can tell an
// HTTP error status apart from a transport failure.
package httpclient
