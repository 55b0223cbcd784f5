package provider

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerProvider wraps a Provider with a circuit breaker so a flapping
// payment network fails fast instead of tying up refund requests.
type BreakerProvider struct {
	inner   Provider
	breaker *gobreaker.CircuitBreaker[*RefundResult]
}

// WithBreaker wraps the provider with a circuit breaker.
func WithBreaker(inner Provider) *BreakerProvider {
	settings := gobreaker.Settings{
		Name:        inner.Name(),
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &BreakerProvider{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[*RefundResult](settings),
	}
}

// Name returns the wrapped provider's name.
func (p *BreakerProvider) Name() string {
	return p.inner.Name()
}

// CreateRefund executes the reversal through the breaker. An open
// breaker returns an error without touching the network, which callers
// treat the same as any other provider failure: nothing persisted,
// safe to retry.
func (p *BreakerProvider) CreateRefund(ctx context.Context, input *RefundInput) (*RefundResult, error) {
	return p.breaker.Execute(func() (*RefundResult, error) {
		return p.inner.CreateRefund(ctx, input)
	})
}
