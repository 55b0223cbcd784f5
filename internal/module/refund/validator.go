package refund

import (
	"fmt"

	"github.com/storefleet/server/internal/module/order"
	"github.com/storefleet/server/internal/module/payment"
	apperrors "github.com/storefleet/server/internal/shared/errors"
)

// Validator checks refund requests against the order and payment they
// target. Every failure names the offending field or item; no provider
// call happens after a validation failure.
type Validator struct{}

// NewValidator creates a new request validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks the request. alreadyRefunded is the sum of amounts of
// prior non-failed refunds against the same payment, in minor units.
func (v *Validator) Validate(req *CreateRefundRequest, o *order.Order, p *payment.Payment, alreadyRefunded int64) error {
	if !req.Type.Valid() {
		return apperrors.Validation(fmt.Sprintf("type must be %q or %q", TypeFull, TypePartial))
	}
	if !o.IsPaid() {
		return apperrors.State(fmt.Sprintf("order %s is not refundable in status %q", o.OrderNo, o.Status))
	}

	switch req.Type {
	case TypeFull:
		if req.Amount != nil {
			return apperrors.Validation("amount must not be set for a full refund")
		}
		if len(req.Items) > 0 {
			return apperrors.Validation("items must not be set for a full refund")
		}
		if alreadyRefunded > 0 {
			return apperrors.Validation("payment was already partially refunded; use a partial refund for the remainder")
		}
		return nil
	case TypePartial:
		return v.validatePartial(req, o, p, alreadyRefunded)
	}
	return nil
}

func (v *Validator) validatePartial(req *CreateRefundRequest, o *order.Order, p *payment.Payment, alreadyRefunded int64) error {
	if req.Amount == nil {
		return apperrors.Validation("amount is required for a partial refund")
	}
	if *req.Amount <= 0 {
		return apperrors.Validation("amount must be greater than zero")
	}
	if len(req.Items) == 0 {
		return apperrors.Validation("items are required for a partial refund")
	}

	var itemsTotal int64
	for _, reqItem := range req.Items {
		line := o.FindItem(reqItem.ProductID, reqItem.VariantID)
		if line == nil {
			if reqItem.VariantID == nil && o.CountProductLines(reqItem.ProductID) > 1 {
				return apperrors.Validation(fmt.Sprintf(
					"item %s: variant_id is required, the product appears on multiple order lines",
					reqItem.ProductID,
				))
			}
			return apperrors.Validation(fmt.Sprintf("item %s is not on the order", reqItem.ProductID))
		}
		if reqItem.Quantity <= 0 {
			return apperrors.Validation(fmt.Sprintf("item %s: quantity must be greater than zero", reqItem.ProductID))
		}
		if reqItem.Quantity > line.Quantity {
			return apperrors.Validation(fmt.Sprintf(
				"item %s: quantity %d exceeds ordered quantity %d",
				reqItem.ProductID, reqItem.Quantity, line.Quantity,
			))
		}
		itemsTotal += line.UnitPrice * int64(reqItem.Quantity)
	}

	amount := MajorToMinor(*req.Amount)
	if amount != itemsTotal {
		return apperrors.Validation(fmt.Sprintf(
			"amount %s does not match the refunded items total %s",
			MinorToDecimal(amount), MinorToDecimal(itemsTotal),
		))
	}
	if amount > p.Amount {
		return apperrors.Validation(fmt.Sprintf(
			"amount %s exceeds the payment amount %s",
			MinorToDecimal(amount), MinorToDecimal(p.Amount),
		))
	}
	if amount+alreadyRefunded > p.Amount {
		return apperrors.Validation(fmt.Sprintf(
			"amount %s exceeds the remaining refundable amount %s",
			MinorToDecimal(amount), MinorToDecimal(p.Amount-alreadyRefunded),
		))
	}
	return nil
}
