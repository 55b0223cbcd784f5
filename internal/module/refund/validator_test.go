package refund

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/storefleet/server/internal/module/order"
	"github.com/storefleet/server/internal/module/payment"
	apperrors "github.com/storefleet/server/internal/shared/errors"
)

func paidOrder() (*order.Order, *payment.Payment) {
	productA := uuid.New()
	productB := uuid.New()
	o := &order.Order{
		ID:       uuid.New(),
		StoreID:  uuid.New(),
		OrderNo:  "SO-1001",
		Status:   order.StatusPaid,
		Total:    10000,
		Currency: "usd",
		Items: []order.Item{
			{ProductID: productA, Quantity: 2, UnitPrice: 2500},
			{ProductID: productB, Quantity: 1, UnitPrice: 5000},
		},
	}
	p := &payment.Payment{
		ID:               uuid.New(),
		StoreID:          o.StoreID,
		OrderID:          o.ID,
		Provider:         "stripe",
		ProviderChargeID: "ch_test_123",
		Amount:           10000,
		Currency:         "usd",
		Status:           payment.StatusSucceeded,
	}
	return o, p
}

func amountPtr(v float64) *float64 { return &v }

func TestValidate_FullRefund(t *testing.T) {
	o, p := paidOrder()
	v := NewValidator()

	err := v.Validate(&CreateRefundRequest{Type: TypeFull}, o, p, 0)
	assert.NoError(t, err)
}

func TestValidate_FullRefundRejectsAmountAndItems(t *testing.T) {
	o, p := paidOrder()
	v := NewValidator()

	err := v.Validate(&CreateRefundRequest{Type: TypeFull, Amount: amountPtr(50)}, o, p, 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	err = v.Validate(&CreateRefundRequest{
		Type:  TypeFull,
		Items: []CreateRefundItem{{ProductID: o.Items[0].ProductID, Quantity: 1}},
	}, o, p, 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestValidate_UnpaidOrder(t *testing.T) {
	o, p := paidOrder()
	o.Status = order.StatusFulfilled
	v := NewValidator()

	err := v.Validate(&CreateRefundRequest{Type: TypeFull}, o, p, 0)
	assert.ErrorIs(t, err, apperrors.ErrState)
}

func TestValidate_UnknownType(t *testing.T) {
	o, p := paidOrder()
	v := NewValidator()

	err := v.Validate(&CreateRefundRequest{Type: "chargeback"}, o, p, 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestValidate_PartialRefund(t *testing.T) {
	o, p := paidOrder()
	v := NewValidator()

	err := v.Validate(&CreateRefundRequest{
		Type:   TypePartial,
		Amount: amountPtr(25.00),
		Items:  []CreateRefundItem{{ProductID: o.Items[0].ProductID, Quantity: 1}},
	}, o, p, 0)
	assert.NoError(t, err)
}

func TestValidate_PartialRefundRequiresAmountAndItems(t *testing.T) {
	o, p := paidOrder()
	v := NewValidator()

	err := v.Validate(&CreateRefundRequest{
		Type:  TypePartial,
		Items: []CreateRefundItem{{ProductID: o.Items[0].ProductID, Quantity: 1}},
	}, o, p, 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	err = v.Validate(&CreateRefundRequest{Type: TypePartial, Amount: amountPtr(25.00)}, o, p, 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestValidate_ItemNotOnOrderNamesItem(t *testing.T) {
	o, p := paidOrder()
	v := NewValidator()
	missing := uuid.New()

	err := v.Validate(&CreateRefundRequest{
		Type:   TypePartial,
		Amount: amountPtr(25.00),
		Items:  []CreateRefundItem{{ProductID: missing, Quantity: 1}},
	}, o, p, 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), missing.String())
}

func TestValidate_QuantityExceedsOrderedNamesItem(t *testing.T) {
	o, p := paidOrder()
	v := NewValidator()

	err := v.Validate(&CreateRefundRequest{
		Type:   TypePartial,
		Amount: amountPtr(75.00),
		Items:  []CreateRefundItem{{ProductID: o.Items[0].ProductID, Quantity: 3}},
	}, o, p, 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), o.Items[0].ProductID.String())
}

func TestValidate_MultiVariantProductRequiresVariant(t *testing.T) {
	o, p := paidOrder()
	productID := uuid.New()
	variantA := uuid.New()
	variantB := uuid.New()
	o.Items = []order.Item{
		{ProductID: productID, VariantID: &variantA, Quantity: 1, UnitPrice: 2500},
		{ProductID: productID, VariantID: &variantB, Quantity: 1, UnitPrice: 2500},
	}
	v := NewValidator()

	// Without a variant the line is ambiguous and must be rejected.
	err := v.Validate(&CreateRefundRequest{
		Type:   TypePartial,
		Amount: amountPtr(25.00),
		Items:  []CreateRefundItem{{ProductID: productID, Quantity: 1}},
	}, o, p, 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "variant_id is required")

	// Naming the variant resolves it.
	err = v.Validate(&CreateRefundRequest{
		Type:   TypePartial,
		Amount: amountPtr(25.00),
		Items:  []CreateRefundItem{{ProductID: productID, VariantID: &variantB, Quantity: 1}},
	}, o, p, 0)
	assert.NoError(t, err)
}

func TestValidate_AmountMustMatchItemsTotal(t *testing.T) {
	o, p := paidOrder()
	v := NewValidator()

	err := v.Validate(&CreateRefundRequest{
		Type:   TypePartial,
		Amount: amountPtr(30.00), // One unit of product A is 25.00
		Items:  []CreateRefundItem{{ProductID: o.Items[0].ProductID, Quantity: 1}},
	}, o, p, 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestValidate_CumulativeAmountCapped(t *testing.T) {
	o, p := paidOrder()
	v := NewValidator()

	// 75.00 already refunded; both items (100.00) no longer fit.
	err := v.Validate(&CreateRefundRequest{
		Type:   TypePartial,
		Amount: amountPtr(50.00),
		Items:  []CreateRefundItem{{ProductID: o.Items[0].ProductID, Quantity: 2}},
	}, o, p, 7500)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestValidate_FullRefundAfterPartialRejected(t *testing.T) {
	o, p := paidOrder()
	v := NewValidator()

	err := v.Validate(&CreateRefundRequest{Type: TypeFull}, o, p, 2500)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
