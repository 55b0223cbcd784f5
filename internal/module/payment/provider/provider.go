package provider

import (
	"context"
)

// RefundStatus is the provider-reported outcome of a refund. The engine
// never infers success from transport-level success alone.
type RefundStatus string

const (
	RefundStatusSucceeded RefundStatus = "succeeded"
	RefundStatusPending   RefundStatus = "pending"
	RefundStatusFailed    RefundStatus = "failed"
)

// RefundInput holds the parameters for a monetary reversal.
type RefundInput struct {
	ChargeID    string // Provider capture reference of the original charge
	RefundID    string // Our refund identifier, passed through for provider-side idempotency
	Amount      int64  // Minor units; 0 means refund the full captured amount
	TotalAmount int64  // Original capture amount in minor units
	Reason      string
	Metadata    map[string]string
}

// RefundResult is the provider's response to a refund request.
type RefundResult struct {
	ProviderRefundID string
	Amount           int64 // Minor units actually refunded
	Status           RefundStatus
}

// Provider executes monetary reversals against a payment network.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// CreateRefund executes the reversal. A returned error means the call
	// itself failed (network, rejection) and nothing happened; a result
	// with a non-succeeded status means the provider accepted the request
	// but reported that outcome.
	CreateRefund(ctx context.Context, input *RefundInput) (*RefundResult, error)
}
