package circuitbreaker

import (
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

type Settings struct {
	// Threshold is the number of consecutive failures that opens a breaker.
	Threshold int
	// Timeout is how long a breaker stays open before probing again.
	Timeout time.Duration
	// IsSuccessful classifies the error returned by a guarded call.
	// Defaults to treating only nil as success.
	IsSuccessful func(err error) bool
	Logger       *slog.Logger
}

type Registry struct {
	mutex    sync.RWMutex
	breakers map[string]*gobreaker.CircuitBreaker
	settings Settings
}

func NewRegistry(settings Settings) *Registry {
	if settings.Threshold < 1 {
		settings.Threshold = 1
	}
	if settings.IsSuccessful == nil {
		settings.IsSuccessful = func(err error) bool { return err == nil }
	}
	if settings.Logger == nil {
		settings.Logger = slog.Default()
	}

	return &Registry{
		breakers: make(map[string]*gobreaker.CircuitBreaker),
		settings: settings,
	}
}

func (r *Registry) GetBreaker(host string) *gobreaker.CircuitBreaker {
	r.mutex.RLock()
	cb, exists := r.breakers[host]
	r.mutex.RUnlock()

	if exists {
		return cb
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	// Double-check: another goroutine may have created it
	if cb, exists = r.breakers[host]; exists {
		return cb
	}

	cb = gobreaker.NewCircuitBreaker(r.newSettings(host))
	r.breakers[host] = cb
	return cb
}

func (r *Registry) newSettings(host string) gobreaker.Settings {
	threshold := uint32(r.settings.Threshold)
	logger := r.settings.Logger

	return gobreaker.Settings{
		Name:        host,
		MaxRequests: 1,
		Timeout:     r.settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				slog.String("host", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
		IsSuccessful: r.settings.IsSuccessful,
	}
}

func (r *Registry) Stats() map[string]gobreaker.State {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	stats := make(map[string]gobreaker.State, len(r.breakers))
	for host, cb := range r.breakers {
		stats[host] = cb.State()
	}
	return stats
}
