package circuitbreaker_test

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sony/gobreaker"

	"github.com/angeloszaimis/pkghealth/internal/circuitbreaker"
)

var errBoom = errors.New("boom")
var errNotFound = errors.New("not found")

func fail(cb *gobreaker.CircuitBreaker, err error) {
	_, _ = cb.Execute(func() (interface{}, error) { return nil, err })
}

var _ = Describe("Registry", func() {
	var (
		registry *circuitbreaker.Registry
		log      *slog.Logger
	)

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
		registry = circuitbreaker.NewRegistry(circuitbreaker.Settings{
			Threshold: 2,
			Timeout:   50 * time.Millisecond,
			Logger:    log,
		})
	})

	Describe("GetBreaker", func() {
		It("should create a closed breaker for an unknown host", func() {
			cb := registry.GetBreaker("pagure.io")
			Expect(cb).NotTo(BeNil())
			Expect(cb.State()).To(Equal(gobreaker.StateClosed))
			Expect(cb.Name()).To(Equal("pagure.io"))
		})

		It("should return the same breaker for the same host", func() {
			Expect(registry.GetBreaker("pagure.io")).To(BeIdenticalTo(registry.GetBreaker("pagure.io")))
		})

		It("should return different breakers for different hosts", func() {
			Expect(registry.GetBreaker("pagure.io")).NotTo(BeIdenticalTo(registry.GetBreaker("src.fedoraproject.org")))
		})

		It("should open after the configured consecutive failures", func() {
			cb := registry.GetBreaker("pagure.io")
			fail(cb, errBoom)
			Expect(cb.State()).To(Equal(gobreaker.StateClosed))
			fail(cb, errBoom)
			Expect(cb.State()).To(Equal(gobreaker.StateOpen))

			_, err := cb.Execute(func() (interface{}, error) { return "ok", nil })
			Expect(err).To(MatchError(gobreaker.ErrOpenState))
		})

		It("should half-open after the timeout", func() {
			cb := registry.GetBreaker("pagure.io")
			fail(cb, errBoom)
			fail(cb, errBoom)

			Eventually(cb.State).WithTimeout(time.Second).Should(Equal(gobreaker.StateHalfOpen))
		})

		It("should honour the success classifier", func() {
			registry = circuitbreaker.NewRegistry(circuitbreaker.Settings{
				Threshold: 1,
				Timeout:   time.Minute,
				Logger:    log,
				IsSuccessful: func(err error) bool {
					return err == nil || errors.Is(err, errNotFound)
				},
			})
			cb := registry.GetBreaker("pagure.io")

			fail(cb, errNotFound)
			Expect(cb.State()).To(Equal(gobreaker.StateClosed))

			fail(cb, errBoom)
			Expect(cb.State()).To(Equal(gobreaker.StateOpen))
		})
	})

	Describe("Concurrent access", func() {
		It("should handle concurrent GetBreaker calls safely", func() {
			var wg sync.WaitGroup
			for i := 0; i < 100; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					Expect(registry.GetBreaker("pagure.io")).NotTo(BeNil())
				}()
			}
			wg.Wait()

			Expect(registry.Stats()).To(HaveLen(1))
		})
	})

	Describe("Stats", func() {
		It("should report the state of every breaker", func() {
			registry.GetBreaker("a.example")
			b := registry.GetBreaker("b.example")
			fail(b, errBoom)
			fail(b, errBoom)

			Expect(registry.Stats()).To(Equal(map[string]gobreaker.State{
				"a.example": gobreaker.StateClosed,
				"b.example": gobreaker.StateOpen,
			}))
		})
	})
})
