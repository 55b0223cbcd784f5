package refund

import (
	"github.com/google/uuid"

	"github.com/storefleet/server/internal/module/order"
	"github.com/storefleet/server/internal/module/payment"
)

// Breakdown is the monetary and per-item result of a refund calculation.
// All amounts are in minor units.
type Breakdown struct {
	Amount int64
	Items  []BreakdownItem
}

// BreakdownItem is one refunded line in a breakdown.
type BreakdownItem struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
	UnitPrice int64
	Amount    int64
}

// Calculator computes refund breakdowns from validated requests.
type Calculator struct{}

// NewCalculator creates a new refund calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Build computes the breakdown for a validated request. For a full
// refund the amount is the payment amount and every order line is
// refunded at its full quantity; for a partial refund the amount is the
// requested amount and each requested line contributes unitPrice×qty.
func (c *Calculator) Build(req *CreateRefundRequest, o *order.Order, p *payment.Payment) *Breakdown {
	if req.Type == TypeFull {
		b := &Breakdown{Amount: p.Amount}
		for i := range o.Items {
			line := &o.Items[i]
			b.Items = append(b.Items, BreakdownItem{
				ProductID: line.ProductID,
				VariantID: line.VariantID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				Amount:    line.UnitPrice * int64(line.Quantity),
			})
		}
		return b
	}

	b := &Breakdown{Amount: MajorToMinor(*req.Amount)}
	for _, reqItem := range req.Items {
		line := o.FindItem(reqItem.ProductID, reqItem.VariantID)
		// Carry the order line's variant, not the request's: restoration
		// must credit the exact supplier pool the line was fulfilled from.
		b.Items = append(b.Items, BreakdownItem{
			ProductID: reqItem.ProductID,
			VariantID: line.VariantID,
			Quantity:  reqItem.Quantity,
			UnitPrice: line.UnitPrice,
			Amount:    line.UnitPrice * int64(reqItem.Quantity),
		})
	}
	return b
}
