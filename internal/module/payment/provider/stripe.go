package provider

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/refund"
)

// StripeProvider implements Provider for Stripe.
type StripeProvider struct {
	apiKey string
}

// StripeConfig holds Stripe configuration.
type StripeConfig struct {
	APIKey string
}

// NewStripeProvider creates a new Stripe provider.
func NewStripeProvider(config *StripeConfig) *StripeProvider {
	stripe.Key = config.APIKey
	return &StripeProvider{apiKey: config.APIKey}
}

// Name returns the provider name.
func (p *StripeProvider) Name() string {
	return "stripe"
}

// CreateRefund executes a refund against the original charge.
func (p *StripeProvider) CreateRefund(ctx context.Context, input *RefundInput) (*RefundResult, error) {
	params := &stripe.RefundParams{
		Charge: stripe.String(input.ChargeID),
	}
	// Omitting Amount refunds the full captured amount.
	if input.Amount > 0 {
		params.Amount = stripe.Int64(input.Amount)
	}
	// Stripe's reason field only accepts its own enum; free-text reasons
	// travel as metadata.
	if input.Reason != "" {
		params.AddMetadata("reason", input.Reason)
	}
	params.AddMetadata("refund_id", input.RefundID)
	for k, v := range input.Metadata {
		params.AddMetadata(k, v)
	}

	r, err := refund.New(params)
	if err != nil {
		return nil, fmt.Errorf("create refund: %w", err)
	}

	return &RefundResult{
		ProviderRefundID: r.ID,
		Amount:           r.Amount,
		Status:           mapStripeRefundStatus(r.Status),
	}, nil
}

func mapStripeRefundStatus(status stripe.RefundStatus) RefundStatus {
	switch status {
	case stripe.RefundStatusSucceeded:
		return RefundStatusSucceeded
	case stripe.RefundStatusPending:
		return RefundStatusPending
	case stripe.RefundStatusFailed, stripe.RefundStatusCanceled:
		return RefundStatusFailed
	default:
		return RefundStatusPending
	}
}
