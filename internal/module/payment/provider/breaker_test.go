package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
)

type flakyProvider struct {
	calls int
	err   error
}

func (f *flakyProvider) Name() string { return "flaky" }

func (f *flakyProvider) CreateRefund(ctx context.Context, input *RefundInput) (*RefundResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &RefundResult{ProviderRefundID: "re_ok", Status: RefundStatusSucceeded}, nil
}

func TestBreaker_PassesThroughSuccess(t *testing.T) {
	inner := &flakyProvider{}
	p := WithBreaker(inner)

	result, err := p.CreateRefund(context.Background(), &RefundInput{ChargeID: "ch_1"})
	assert.NoError(t, err)
	assert.Equal(t, RefundStatusSucceeded, result.Status)
	assert.Equal(t, "flaky", p.Name())
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyProvider{err: errors.New("gateway down")}
	p := WithBreaker(inner)

	for i := 0; i < 5; i++ {
		_, err := p.CreateRefund(context.Background(), &RefundInput{ChargeID: "ch_1"})
		assert.Error(t, err)
	}
	assert.Equal(t, 5, inner.calls)

	// Breaker is open now: the call fails fast without reaching the network.
	_, err := p.CreateRefund(context.Background(), &RefundInput{ChargeID: "ch_1"})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 5, inner.calls)
}
