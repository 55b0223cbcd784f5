package refund

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/storefleet/server/internal/module/payment/provider"
)

// CreateRefundRequest is the request body for creating a refund.
// Amount is in major currency units (e.g. dollars) and is required for
// partial refunds only.
type CreateRefundRequest struct {
	Type   Type               `json:"type" binding:"required"`
	Amount *float64           `json:"amount,omitempty"`
	Reason string             `json:"reason,omitempty"`
	Items  []CreateRefundItem `json:"items,omitempty"`
}

// CreateRefundItem is one order line to refund in a partial refund.
type CreateRefundItem struct {
	ProductID uuid.UUID  `json:"product_id" binding:"required"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Quantity  int        `json:"quantity" binding:"required"`
}

// RefundResponse is the API representation of a refund.
type RefundResponse struct {
	ID                uuid.UUID             `json:"id"`
	RefundNo          string                `json:"refund_no"`
	OrderID           uuid.UUID             `json:"order_id"`
	Type              Type                  `json:"type"`
	Reason            string                `json:"reason,omitempty"`
	Amount            string                `json:"amount"` // Major-unit decimal, e.g. "100.00"
	Currency          string                `json:"currency"`
	Provider          string                `json:"provider"`
	ProviderRefundID  string                `json:"provider_refund_id"`
	Status            provider.RefundStatus `json:"status"`
	InventoryRestored bool                  `json:"inventory_restored"`
	Items             []RefundItemResponse  `json:"items,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
}

// RefundItemResponse is the API representation of a refunded line.
type RefundItemResponse struct {
	ProductID uuid.UUID  `json:"product_id"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Quantity  int        `json:"quantity"`
	Amount    string     `json:"amount"` // Major-unit decimal
}

// ToResponse converts a Refund to its API representation.
func (r *Refund) ToResponse() *RefundResponse {
	resp := &RefundResponse{
		ID:                r.ID,
		RefundNo:          r.RefundNo,
		OrderID:           r.OrderID,
		Type:              r.Type,
		Reason:            r.Reason,
		Amount:            MinorToDecimal(r.Amount),
		Currency:          r.Currency,
		Provider:          r.Provider,
		ProviderRefundID:  r.ProviderRefundID,
		Status:            r.ProviderStatus,
		InventoryRestored: r.InventoryRestored,
		CreatedAt:         r.CreatedAt,
	}
	for _, item := range r.Items {
		resp.Items = append(resp.Items, RefundItemResponse{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			Amount:    MinorToDecimal(item.Amount),
		})
	}
	return resp
}

// MajorToMinor converts a major-unit decimal amount to minor units,
// rounding half up. All stored amounts are integer minor units; this is
// the single place decimal input crosses that boundary.
func MajorToMinor(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// MinorToDecimal formats minor units as a major-unit decimal string
// using integer math only.
func MinorToDecimal(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
